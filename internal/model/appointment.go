package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "Scheduled"
	AppointmentStatusWaiting   AppointmentStatus = "Waiting"
	AppointmentStatusCompleted AppointmentStatus = "Completed"
	AppointmentStatusFollowUp  AppointmentStatus = "Follow-up"
)

// Valid reports whether s is one of the four lifecycle states.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusWaiting,
		AppointmentStatusCompleted, AppointmentStatusFollowUp:
		return true
	}
	return false
}

// Appointment is a scheduled patient-doctor encounter. The patient and
// doctor name/specialty fields are snapshotted at creation time and are
// deliberately not kept in sync with later edits; SnapshotAt records when
// the copies were taken.
type Appointment struct {
	Base
	PatientID       uuid.UUID         `json:"patient_id" db:"patient_id"`
	PatientName     string            `json:"patient_name" db:"patient_name"`
	DoctorID        uuid.UUID         `json:"doctor_id" db:"doctor_id"`
	DoctorName      string            `json:"doctor_name" db:"doctor_name"`
	DoctorSpecialty string            `json:"doctor_specialty" db:"doctor_specialty"`
	DateTime        time.Time         `json:"date_time" db:"date_time"`
	Status          AppointmentStatus `json:"status" db:"status"`
	SnapshotAt      time.Time         `json:"snapshot_at" db:"snapshot_at"`
}

type CreateAppointmentRequest struct {
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
	DoctorID  uuid.UUID `json:"doctor_id" binding:"required"`
	DateTime  time.Time `json:"date_time" binding:"required"`
}

type TransitionStatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required,oneof=Scheduled Waiting Completed Follow-up"`
}

// TransitionResult reports what a status transition actually did. The
// invoice pointer is nil when no billing side effect applied (doctor has no
// service price, or this transition was already billed).
type TransitionResult struct {
	Appointment *Appointment `json:"appointment"`
	Invoice     *Transaction `json:"invoice,omitempty"`
}

type AppointmentFilters struct {
	PatientID uuid.UUID         `json:"patient_id" form:"patient_id"`
	DoctorID  uuid.UUID         `json:"doctor_id" form:"doctor_id"`
	Status    AppointmentStatus `json:"status" form:"status"`
	StartDate time.Time         `json:"start_date" form:"start_date"`
	EndDate   time.Time         `json:"end_date" form:"end_date"`
}

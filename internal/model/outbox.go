package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusRetry     OutboxStatus = "retry"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// Outbox event types published by the API and consumed by cmd/worker.
const (
	EventAppointmentCreated   = "appointment.created"
	EventAppointmentStatus    = "appointment.status_changed"
	EventAppointmentCompleted = "appointment.completed"
	EventPresenceChanged      = "presence.changed"
)

// OutboxEvent is written in the same database transaction as the business
// change it describes, then published asynchronously by the outbox
// processor.
type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	RetryAt      *time.Time      `db:"retry_at" json:"retry_at,omitempty"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// AppointmentCompletedEvent is the payload of EventAppointmentCompleted.
// TransitionID keys the exactly-once billing effect downstream.
type AppointmentCompletedEvent struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	TransitionID  uuid.UUID `json:"transition_id"`
	PatientID     uuid.UUID `json:"patient_id"`
	PatientName   string    `json:"patient_name"`
	DoctorID      uuid.UUID `json:"doctor_id"`
	ActorID       uuid.UUID `json:"actor_id"`
	CompletedAt   time.Time `json:"completed_at"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "Success"
	TransactionStatusFailed  TransactionStatus = "Failed"
)

// Transaction is an append-only billing record. There is no update or void
// operation: corrections are new rows.
//
// AppointmentID/TransitionID are set only for automatically generated
// invoices; together they carry a unique constraint so a completed
// transition can never bill twice.
type Transaction struct {
	ID            uuid.UUID         `json:"id" db:"id"`
	PatientID     uuid.UUID         `json:"patient_id" db:"patient_id"`
	PatientName   string            `json:"patient_name" db:"patient_name"`
	Date          time.Time         `json:"date" db:"date"`
	Amount        float64           `json:"amount" db:"amount"`
	Status        TransactionStatus `json:"status" db:"status"`
	Service       string            `json:"service" db:"service"`
	AppointmentID *uuid.UUID        `json:"appointment_id,omitempty" db:"appointment_id"`
	TransitionID  *uuid.UUID        `json:"transition_id,omitempty" db:"transition_id"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
}

type CreateTransactionRequest struct {
	PatientID uuid.UUID         `json:"patient_id" binding:"required"`
	Amount    float64           `json:"amount" binding:"required,gt=0"`
	Status    TransactionStatus `json:"status" binding:"required,oneof=Success Failed"`
	Service   string            `json:"service" binding:"required"`
}

type TransactionFilters struct {
	PatientID uuid.UUID         `json:"patient_id" form:"patient_id"`
	Status    TransactionStatus `json:"status" form:"status"`
	StartDate time.Time         `json:"start_date" form:"start_date"`
	EndDate   time.Time         `json:"end_date" form:"end_date"`
}

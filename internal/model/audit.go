package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog is an append-only record of who did what.
type AuditLog struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	UserID    uuid.UUID       `json:"user_id" db:"user_id"`
	Action    string          `json:"action" db:"action"`
	Details   json.RawMessage `json:"details" db:"details"`
	Section   string          `json:"section" db:"section"`
	IPAddress string          `json:"ip_address,omitempty" db:"ip_address"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// Audit action labels. Sections are derived from these in the audit
// service; labels not listed there fall back to the "general" section.
const (
	AuditActionCreatePatient     = "create patient"
	AuditActionUpdatePatient     = "update patient"
	AuditActionDeletePatient     = "delete patient"
	AuditActionCreateDoctor      = "create doctor"
	AuditActionUpdateDoctor      = "update doctor"
	AuditActionDeleteDoctor      = "delete doctor"
	AuditActionCreateAppointment = "create appointment"
	AuditActionUpdateStatus      = "update status"
	AuditActionCreateInvoice     = "create invoice (manual)"
	AuditActionAutoInvoice       = "create invoice (auto)"
	AuditActionCreateUser        = "create user"
	AuditActionUpdateUser        = "update user"
	AuditActionDeleteUser        = "delete user"
	AuditActionUpdatePermissions = "update permissions"
	AuditActionUpdateSettings    = "update settings"
)

type AuditLogFilters struct {
	UserID    uuid.UUID `json:"user_id" form:"user_id"`
	Section   string    `json:"section" form:"section"`
	Action    string    `json:"action" form:"action"`
	StartDate time.Time `json:"start_date" form:"start_date"`
	EndDate   time.Time `json:"end_date" form:"end_date"`
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
)

// ErrNotFound is returned by repositories when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConcurrentUpdate is returned when a compare-and-swap status update
// loses to a concurrent writer.
var ErrConcurrentUpdate = errors.New("concurrent update")

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error)
}

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	Update(ctx context.Context, patient *model.Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, doctor *model.Doctor) error
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	Update(ctx context.Context, doctor *model.Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, error)
}

type AppointmentRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
}

type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) error
	Get(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	List(ctx context.Context, filters *model.TransactionFilters) ([]*model.Transaction, error)
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.Transaction, error)
}

type AuditRepository interface {
	Create(ctx context.Context, log *model.AuditLog) error
	List(ctx context.Context, filters *model.AuditLogFilters, p *model.Pagination) ([]*model.AuditLog, int64, error)
	Cleanup(ctx context.Context, before time.Time) (int64, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}

// PermissionOverride is a persisted runtime edit to a role's capability set.
type PermissionOverride struct {
	Role      model.Role `db:"role" json:"role"`
	Key       string     `db:"key" json:"key"`
	Value     bool       `db:"value" json:"value"`
	Version   int64      `db:"version" json:"version"`
	UpdatedBy uuid.UUID  `db:"updated_by" json:"updated_by"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

type PermissionRepository interface {
	ListOverrides(ctx context.Context) ([]*PermissionOverride, error)
	UpsertOverride(ctx context.Context, o *PermissionOverride) error
}

type SettingsRepository interface {
	Get(ctx context.Context, key string) (*model.Setting, error)
	List(ctx context.Context) ([]*model.Setting, error)
	Upsert(ctx context.Context, setting *model.Setting) error
}

type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	ListConversation(ctx context.Context, a, b uuid.UUID, limit int) ([]*model.Message, error)
}

// Tx exposes the writes that must commit atomically with a status
// transition or appointment creation.
type Tx interface {
	GetAppointmentForUpdate(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	CreateAppointment(ctx context.Context, apt *model.Appointment) error
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus) error
	GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	// CreateAutoInvoice inserts an automatic invoice unless the appointment
	// was already billed; it reports whether a row was written.
	CreateAutoInvoice(ctx context.Context, txn *model.Transaction) (bool, error)
	CreateAuditLog(ctx context.Context, log *model.AuditLog) error
	CreateOutboxEvent(ctx context.Context, event *model.OutboxEvent) error
}

// TxRunner runs a function inside a single database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

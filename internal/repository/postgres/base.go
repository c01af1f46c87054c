package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// WithTx executes a function within a transaction. The txRepo passed to fn
// exposes the writes that must be atomic with each other.
func (r *BaseRepository) WithTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&txRepo{tx: tx}); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// txRepo implements repository.Tx over a live sqlx transaction.
type txRepo struct {
	tx *sqlx.Tx
}

func (t *txRepo) GetAppointmentForUpdate(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, patient_id, patient_name, doctor_id, doctor_name, doctor_specialty,
		       date_time, status, snapshot_at, created_at, updated_at
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`
	var apt model.Appointment
	if err := t.tx.GetContext(ctx, &apt, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

func (t *txRepo) CreateAppointment(ctx context.Context, apt *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, patient_name, doctor_id, doctor_name, doctor_specialty,
			date_time, status, snapshot_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := t.tx.ExecContext(ctx, query,
		apt.ID,
		apt.PatientID,
		apt.PatientName,
		apt.DoctorID,
		apt.DoctorName,
		apt.DoctorSpecialty,
		apt.DateTime,
		apt.Status,
		apt.SnapshotAt,
		apt.CreatedAt,
		apt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

// UpdateAppointmentStatus is a compare-and-swap: it only applies when the
// row still holds the status the caller read.
func (t *txRepo) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to model.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	result, err := t.tx.ExecContext(ctx, query, to, time.Now(), id, from)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrConcurrentUpdate
	}
	return nil
}

func (t *txRepo) GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT id, name, specialty, image, service_price, free_return_days, available_days,
		       created_at, updated_at
		FROM doctors
		WHERE id = $1
	`
	var doctor model.Doctor
	if err := t.tx.GetContext(ctx, &doctor, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (t *txRepo) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `
		SELECT id, name, email, role, password_hash, status, last_login_at,
		       login_attempts, last_login_attempt, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	var user model.User
	if err := t.tx.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (t *txRepo) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `
		SELECT id, name, dob, gender, phone, address, avatar_url, created_at, updated_at
		FROM patients
		WHERE id = $1
	`
	var patient model.Patient
	if err := t.tx.GetContext(ctx, &patient, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

// CreateAutoInvoice relies on the partial unique index on appointment_id
// for automatic invoices: a second completion of the same appointment is a
// silent no-op rather than a double bill.
func (t *txRepo) CreateAutoInvoice(ctx context.Context, txn *model.Transaction) (bool, error) {
	query := `
		INSERT INTO transactions (
			id, patient_id, patient_name, date, amount, status, service,
			appointment_id, transition_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (appointment_id) WHERE appointment_id IS NOT NULL DO NOTHING
	`
	result, err := t.tx.ExecContext(ctx, query,
		txn.ID,
		txn.PatientID,
		txn.PatientName,
		txn.Date,
		txn.Amount,
		txn.Status,
		txn.Service,
		txn.AppointmentID,
		txn.TransitionID,
		txn.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create invoice: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (t *txRepo) CreateAuditLog(ctx context.Context, log *model.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, user_id, action, details, section, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := t.tx.ExecContext(ctx, query,
		log.ID,
		log.UserID,
		log.Action,
		log.Details,
		log.Section,
		log.IPAddress,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

func (t *txRepo) CreateOutboxEvent(ctx context.Context, event *model.OutboxEvent) error {
	query := `
		INSERT INTO outbox_events (id, event_type, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.Status = model.OutboxStatusPending
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()

	_, err := t.tx.ExecContext(ctx, query,
		event.ID,
		event.EventType,
		event.Payload,
		event.Status,
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

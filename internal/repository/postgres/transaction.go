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

type transactionRepository struct {
	BaseRepository
}

func NewTransactionRepository(db *sqlx.DB) repository.TransactionRepository {
	return &transactionRepository{NewBaseRepository(db)}
}

func (r *transactionRepository) Create(ctx context.Context, txn *model.Transaction) error {
	query := `
		INSERT INTO transactions (id, patient_id, patient_name, date, amount, status, service, appointment_id, transition_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	txn.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
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
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	query := `
		SELECT id, patient_id, patient_name, date, amount, status, service, appointment_id, transition_id, created_at
		FROM transactions
		WHERE id = $1
	`
	var txn model.Transaction
	if err := r.db.GetContext(ctx, &txn, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &txn, nil
}

func (r *transactionRepository) List(ctx context.Context, filters *model.TransactionFilters) ([]*model.Transaction, error) {
	query := `
		SELECT id, patient_id, patient_name, date, amount, status, service, appointment_id, transition_id, created_at
		FROM transactions
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filters != nil {
		if filters.PatientID != uuid.Nil {
			query += fmt.Sprintf(" AND patient_id = $%d", argNum)
			args = append(args, filters.PatientID)
			argNum++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argNum)
			args = append(args, filters.Status)
			argNum++
		}
		if !filters.StartDate.IsZero() {
			query += fmt.Sprintf(" AND date >= $%d", argNum)
			args = append(args, filters.StartDate)
			argNum++
		}
		if !filters.EndDate.IsZero() {
			query += fmt.Sprintf(" AND date <= $%d", argNum)
			args = append(args, filters.EndDate)
			argNum++
		}
	}

	query += " ORDER BY date DESC"

	var txns []*model.Transaction
	if err := r.db.SelectContext(ctx, &txns, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

func (r *transactionRepository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.Transaction, error) {
	query := `
		SELECT id, patient_id, patient_name, date, amount, status, service, appointment_id, transition_id, created_at
		FROM transactions
		WHERE appointment_id = $1
		ORDER BY created_at DESC
	`
	var txns []*model.Transaction
	if err := r.db.SelectContext(ctx, &txns, query, appointmentID); err != nil {
		return nil, fmt.Errorf("failed to list transactions by appointment: %w", err)
	}
	return txns, nil
}

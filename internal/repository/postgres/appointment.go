package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
)

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{NewBaseRepository(db)}
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, patient_id, patient_name, doctor_id, doctor_name, doctor_specialty,
		       date_time, status, snapshot_at, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var apt model.Appointment
	if err := r.db.GetContext(ctx, &apt, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT id, patient_id, patient_name, doctor_id, doctor_name, doctor_specialty,
		       date_time, status, snapshot_at, created_at, updated_at
		FROM appointments
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
		if filters.DoctorID != uuid.Nil {
			query += fmt.Sprintf(" AND doctor_id = $%d", argNum)
			args = append(args, filters.DoctorID)
			argNum++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", argNum)
			args = append(args, filters.Status)
			argNum++
		}
		if !filters.StartDate.IsZero() {
			query += fmt.Sprintf(" AND date_time >= $%d", argNum)
			args = append(args, filters.StartDate)
			argNum++
		}
		if !filters.EndDate.IsZero() {
			query += fmt.Sprintf(" AND date_time <= $%d", argNum)
			args = append(args, filters.EndDate)
			argNum++
		}
	}

	query += " ORDER BY date_time DESC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

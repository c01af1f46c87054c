package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
)

type auditRepository struct {
	BaseRepository
}

func NewAuditRepository(db *sqlx.DB) repository.AuditRepository {
	return &auditRepository{NewBaseRepository(db)}
}

func (r *auditRepository) Create(ctx context.Context, log *model.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, user_id, action, details, section, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
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

func (r *auditRepository) List(ctx context.Context, filters *model.AuditLogFilters, p *model.Pagination) ([]*model.AuditLog, int64, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argNum := 1

	if filters != nil {
		if filters.UserID != uuid.Nil {
			where += fmt.Sprintf(" AND user_id = $%d", argNum)
			args = append(args, filters.UserID)
			argNum++
		}
		if filters.Section != "" {
			where += fmt.Sprintf(" AND section = $%d", argNum)
			args = append(args, filters.Section)
			argNum++
		}
		if filters.Action != "" {
			where += fmt.Sprintf(" AND action = $%d", argNum)
			args = append(args, filters.Action)
			argNum++
		}
		if !filters.StartDate.IsZero() {
			where += fmt.Sprintf(" AND created_at >= $%d", argNum)
			args = append(args, filters.StartDate)
			argNum++
		}
		if !filters.EndDate.IsZero() {
			where += fmt.Sprintf(" AND created_at <= $%d", argNum)
			args = append(args, filters.EndDate)
			argNum++
		}
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM audit_logs"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	query := `
		SELECT id, user_id, action, details, section, ip_address, created_at
		FROM audit_logs
	` + where + " ORDER BY created_at DESC"

	if p != nil && p.PageSize > 0 {
		page := p.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
		args = append(args, p.PageSize, (page-1)*p.PageSize)
	}

	var logs []*model.AuditLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, total, nil
}

func (r *auditRepository) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup audit logs: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
)

type permissionRepository struct {
	BaseRepository
}

func NewPermissionRepository(db *sqlx.DB) repository.PermissionRepository {
	return &permissionRepository{NewBaseRepository(db)}
}

func (r *permissionRepository) ListOverrides(ctx context.Context) ([]*repository.PermissionOverride, error) {
	query := `
		SELECT role, key, value, version, updated_by, updated_at
		FROM role_permission_overrides
		ORDER BY role, key
	`
	var overrides []*repository.PermissionOverride
	if err := r.db.SelectContext(ctx, &overrides, query); err != nil {
		return nil, fmt.Errorf("failed to list permission overrides: %w", err)
	}
	return overrides, nil
}

func (r *permissionRepository) UpsertOverride(ctx context.Context, o *repository.PermissionOverride) error {
	query := `
		INSERT INTO role_permission_overrides (role, key, value, version, updated_by, updated_at)
		VALUES ($1, $2, $3, 1, $4, $5)
		ON CONFLICT (role, key) DO UPDATE
		SET value = EXCLUDED.value,
			version = role_permission_overrides.version + 1,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at
	`
	o.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query, o.Role, o.Key, o.Value, o.UpdatedBy, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert permission override: %w", err)
	}
	return nil
}

package permission

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/audit"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/logger"
)

type fakePermissionRepo struct {
	rows []*repository.PermissionOverride
}

func (r *fakePermissionRepo) ListOverrides(ctx context.Context) ([]*repository.PermissionOverride, error) {
	return r.rows, nil
}

func (r *fakePermissionRepo) UpsertOverride(ctx context.Context, o *repository.PermissionOverride) error {
	for _, row := range r.rows {
		if row.Role == o.Role && row.Key == o.Key {
			row.Value = o.Value
			row.Version++
			return nil
		}
	}
	saved := *o
	saved.Version = 1
	r.rows = append(r.rows, &saved)
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (r *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}
func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, repository.ErrNotFound
}
func (r *fakeUserRepo) Update(ctx context.Context, user *model.User) error { return nil }
func (r *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error     { return nil }
func (r *fakeUserRepo) List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error) {
	return nil, nil
}

type fakeAuditRepo struct {
	entries []*model.AuditLog
}

func (r *fakeAuditRepo) Create(ctx context.Context, log *model.AuditLog) error {
	r.entries = append(r.entries, log)
	return nil
}
func (r *fakeAuditRepo) List(ctx context.Context, filters *model.AuditLogFilters, p *model.Pagination) ([]*model.AuditLog, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}
func (r *fakeAuditRepo) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func newTestService(t *testing.T, rows []*repository.PermissionOverride) (*Service, uuid.UUID, *fakeAuditRepo) {
	t.Helper()

	actorID := uuid.New()
	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{
		actorID: {Base: model.Base{ID: actorID}, Name: "Admin", Role: model.RoleAdmin},
	}}
	audits := &fakeAuditRepo{}
	log := logger.NewLogger(nil)

	svc := NewService(&fakePermissionRepo{rows: rows}, audit.NewService(audits, users, log), log)
	require.NoError(t, svc.Load(context.Background()))
	return svc, actorID, audits
}

func TestAdminHasEveryCapability(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	set := svc.GetPermissions(model.RoleAdmin)
	require.Len(t, set, len(Keys))
	for _, key := range Keys {
		assert.True(t, set[key], key)
		assert.True(t, svc.HasCapability(model.RoleAdmin, key), key)
	}
}

func TestUnknownRoleHasNothing(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	set := svc.GetPermissions(model.Role("guest"))
	for _, key := range Keys {
		assert.False(t, set[key], key)
	}
	assert.False(t, svc.HasCapability(model.Role("guest"), KeyViewDashboard))
}

func TestUnknownKeyDenied(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	assert.False(t, svc.HasCapability(model.RoleAdmin, "launchMissiles"))
}

func TestReceptionistDefaults(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	assert.True(t, svc.HasCapability(model.RoleReceptionist, KeyAddAppointment))
	assert.True(t, svc.HasCapability(model.RoleReceptionist, KeyAddTransaction))
	assert.False(t, svc.HasCapability(model.RoleReceptionist, KeyDeletePatient))
	assert.False(t, svc.HasCapability(model.RoleReceptionist, KeyViewAuditLog))

	assert.True(t, svc.HasCapability(model.RoleDoctor, KeyEditAppointment))
	assert.False(t, svc.HasCapability(model.RoleDoctor, KeyAddAppointment))
}

func TestSetCapabilityOverridesDefault(t *testing.T) {
	svc, actorID, audits := newTestService(t, nil)
	ctx := context.Background()

	require.False(t, svc.HasCapability(model.RoleDoctor, KeyViewBilling))
	v0 := svc.Version()

	require.NoError(t, svc.SetCapability(ctx, actorID, model.RoleDoctor, KeyViewBilling, true, "10.0.0.1"))
	assert.True(t, svc.HasCapability(model.RoleDoctor, KeyViewBilling))
	assert.Greater(t, svc.Version(), v0)

	require.Len(t, audits.entries, 1)
	assert.Equal(t, model.AuditActionUpdatePermissions, audits.entries[0].Action)

	// Revoking a granted default works the same way.
	require.NoError(t, svc.SetCapability(ctx, actorID, model.RoleReceptionist, KeyAddAppointment, false, "10.0.0.1"))
	assert.False(t, svc.HasCapability(model.RoleReceptionist, KeyAddAppointment))
}

func TestSetCapabilityRejections(t *testing.T) {
	svc, actorID, _ := newTestService(t, nil)
	ctx := context.Background()

	err := svc.SetCapability(ctx, actorID, model.RoleAdmin, KeyViewBilling, false, "10.0.0.1")
	assert.ErrorIs(t, err, ErrAdminImmutable)

	err = svc.SetCapability(ctx, actorID, model.Role("guest"), KeyViewBilling, true, "10.0.0.1")
	assert.ErrorIs(t, err, ErrUnknownRole)

	err = svc.SetCapability(ctx, actorID, model.RoleDoctor, "launchMissiles", true, "10.0.0.1")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestLoadSkipsInvalidOverrides(t *testing.T) {
	rows := []*repository.PermissionOverride{
		{Role: model.RoleDoctor, Key: KeyViewBilling, Value: true, Version: 4},
		{Role: model.RoleAdmin, Key: KeyViewBilling, Value: false, Version: 5},
		{Role: model.Role("guest"), Key: KeyViewBilling, Value: true, Version: 6},
		{Role: model.RoleDoctor, Key: "launchMissiles", Value: true, Version: 7},
	}
	svc, _, _ := newTestService(t, rows)

	assert.True(t, svc.HasCapability(model.RoleDoctor, KeyViewBilling))
	assert.True(t, svc.HasCapability(model.RoleAdmin, KeyViewBilling))
	assert.False(t, svc.HasCapability(model.Role("guest"), KeyViewBilling))
}

func TestOnChangeFires(t *testing.T) {
	svc, actorID, _ := newTestService(t, nil)

	fired := 0
	svc.OnChange(func() { fired++ })

	require.NoError(t, svc.SetCapability(context.Background(), actorID, model.RoleDoctor, KeyViewBilling, true, "10.0.0.1"))
	assert.Equal(t, 1, fired)
}

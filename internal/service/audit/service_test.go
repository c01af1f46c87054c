package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/logger"
)

type fakeAuditRepo struct {
	entries      []*model.AuditLog
	cleanedCount int64
	cleanedAfter time.Time
}

func (r *fakeAuditRepo) Create(ctx context.Context, log *model.AuditLog) error {
	r.entries = append(r.entries, log)
	return nil
}

func (r *fakeAuditRepo) List(ctx context.Context, filters *model.AuditLogFilters, p *model.Pagination) ([]*model.AuditLog, int64, error) {
	return r.entries, int64(len(r.entries)), nil
}

func (r *fakeAuditRepo) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	r.cleanedAfter = before
	return r.cleanedCount, nil
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

func TestSectionFor(t *testing.T) {
	cases := map[string]string{
		model.AuditActionCreatePatient:     "patients",
		model.AuditActionDeleteDoctor:      "doctors",
		model.AuditActionCreateAppointment: "appointments",
		model.AuditActionUpdateStatus:      "appointments",
		model.AuditActionAutoInvoice:       "billing",
		model.AuditActionCreateInvoice:     "billing",
		model.AuditActionUpdateUser:        "users",
		model.AuditActionUpdatePermissions: "permissions",
		model.AuditActionUpdateSettings:    "settings",
		"something nobody mapped":          SectionGeneral,
	}

	for action, want := range cases {
		assert.Equal(t, want, SectionFor(action), action)
	}
}

func TestRecordWritesEntry(t *testing.T) {
	actorID := uuid.New()
	repo := &fakeAuditRepo{}
	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{
		actorID: {Base: model.Base{ID: actorID}, Name: "Reception A"},
	}}
	svc := NewService(repo, users, logger.NewLogger(nil))

	err := svc.Record(context.Background(), actorID, model.AuditActionCreatePatient, map[string]interface{}{
		"patient_name": "Ahmed Said",
	}, "10.0.0.1")
	require.NoError(t, err)

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	assert.Equal(t, actorID, entry.UserID)
	assert.Equal(t, "patients", entry.Section)
	assert.Equal(t, "10.0.0.1", entry.IPAddress)
	assert.NotEqual(t, uuid.Nil, entry.ID)

	var details map[string]interface{}
	require.NoError(t, json.Unmarshal(entry.Details, &details))
	assert.Equal(t, "Ahmed Said", details["patient_name"])
}

func TestRecordRejectsMissingActor(t *testing.T) {
	repo := &fakeAuditRepo{}
	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{}}
	svc := NewService(repo, users, logger.NewLogger(nil))

	err := svc.Record(context.Background(), uuid.Nil, model.AuditActionCreatePatient, nil, "")
	require.Error(t, err)

	err = svc.Record(context.Background(), uuid.New(), model.AuditActionCreatePatient, nil, "")
	require.ErrorIs(t, err, repository.ErrNotFound)

	assert.Empty(t, repo.entries)
}

func TestEntryBuildsRow(t *testing.T) {
	actorID := uuid.New()

	entry, err := Entry(actorID, model.AuditActionUpdateStatus, map[string]string{"from": "Scheduled", "to": "Waiting"}, "10.0.0.2")
	require.NoError(t, err)

	assert.Equal(t, actorID, entry.UserID)
	assert.Equal(t, "appointments", entry.Section)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestCleanupUsesRetentionWindow(t *testing.T) {
	repo := &fakeAuditRepo{cleanedCount: 7}
	svc := NewService(repo, &fakeUserRepo{}, logger.NewLogger(nil))

	deleted, err := svc.Cleanup(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(7), deleted)
	assert.WithinDuration(t, time.Now().Add(-24*time.Hour), repo.cleanedAfter, time.Minute)
}

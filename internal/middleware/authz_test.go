package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/audit"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/permission"
	"github.com/saaabeeer7719-creator/sehatech-full-system/pkg/logger"
)

type fakePermissionRepo struct {
	rows []*repository.PermissionOverride
}

func (r *fakePermissionRepo) ListOverrides(ctx context.Context) ([]*repository.PermissionOverride, error) {
	return r.rows, nil
}

func (r *fakePermissionRepo) UpsertOverride(ctx context.Context, o *repository.PermissionOverride) error {
	saved := *o
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

type fakeAuditRepo struct{}

func (r *fakeAuditRepo) Create(ctx context.Context, log *model.AuditLog) error { return nil }
func (r *fakeAuditRepo) List(ctx context.Context, filters *model.AuditLogFilters, p *model.Pagination) ([]*model.AuditLog, int64, error) {
	return nil, 0, nil
}
func (r *fakeAuditRepo) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func newAuthzFixture(t *testing.T) (*AuthzMiddleware, *permission.Service, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	actorID := uuid.New()
	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{
		actorID: {Base: model.Base{ID: actorID}, Role: model.RoleAdmin},
	}}
	log := logger.NewLogger(nil)
	perms := permission.NewService(&fakePermissionRepo{}, audit.NewService(&fakeAuditRepo{}, users, log), log)
	require.NoError(t, perms.Load(context.Background()))

	return NewAuthzMiddleware(perms), perms, actorID
}

func request(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	r.ServeHTTP(w, req)
	return w
}

func probeRouter(authz *AuthzMiddleware, key string, role *model.Role) *gin.Engine {
	r := gin.New()
	r.GET("/probe", func(c *gin.Context) {
		if role != nil {
			c.Set(handler.CtxRole, *role)
		}
		c.Next()
	}, authz.RequireCapability(key), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequireCapabilityAllowsGrantedRole(t *testing.T) {
	authz, _, _ := newAuthzFixture(t)
	role := model.RoleReceptionist
	r := probeRouter(authz, permission.KeyAddAppointment, &role)

	w := request(r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireCapabilityDeniesMissingCapability(t *testing.T) {
	authz, _, _ := newAuthzFixture(t)
	role := model.RoleDoctor
	r := probeRouter(authz, permission.KeyAddAppointment, &role)

	w := request(r)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireCapabilityRejectsMissingRole(t *testing.T) {
	authz, _, _ := newAuthzFixture(t)
	r := probeRouter(authz, permission.KeyAddAppointment, nil)

	w := request(r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPermissionEditInvalidatesCache(t *testing.T) {
	authz, perms, actorID := newAuthzFixture(t)
	role := model.RoleDoctor
	r := probeRouter(authz, permission.KeyViewBilling, &role)

	// Cache the deny, then grant the capability.
	w := request(r)
	require.Equal(t, http.StatusForbidden, w.Code)

	require.NoError(t, perms.SetCapability(context.Background(), actorID, model.RoleDoctor, permission.KeyViewBilling, true, "10.0.0.1"))

	w = request(r)
	assert.Equal(t, http.StatusOK, w.Code)
}

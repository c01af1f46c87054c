package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/permission"
)

// AuthzMiddleware gates routes on role capabilities. Decisions are cached
// briefly; a permission edit flushes the cache through the service's
// change hook, so edits take effect on the next request.
type AuthzMiddleware struct {
	perms *permission.Service
	cache *cache.Cache
}

func NewAuthzMiddleware(perms *permission.Service) *AuthzMiddleware {
	m := &AuthzMiddleware{
		perms: perms,
		cache: cache.New(5*time.Minute, 10*time.Minute),
	}
	perms.OnChange(m.cache.Flush)
	return m
}

// RequireCapability rejects callers whose role does not hold key. Unknown
// roles and unknown keys both deny.
func (m *AuthzMiddleware) RequireCapability(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := c.Get(handler.CtxRole)
		if !ok {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authentication"))
			c.Abort()
			return
		}
		role, ok := raw.(model.Role)
		if !ok {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authentication"))
			c.Abort()
			return
		}

		cacheKey := fmt.Sprintf("%s:%s", role, key)
		allowed, found := m.cache.Get(cacheKey)
		if !found {
			allowed = m.perms.HasCapability(role, key)
			m.cache.Set(cacheKey, allowed, cache.DefaultExpiration)
		}

		if !allowed.(bool) {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("permission denied"))
			c.Abort()
			return
		}
		c.Next()
	}
}

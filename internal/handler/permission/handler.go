package permission

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/permission"
)

type Handler struct {
	service *permission.Service
}

func NewHandler(service *permission.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireCapability func(string) gin.HandlerFunc) {
	perms := r.Group("/permissions")
	{
		perms.GET("", h.ListPermissions)
		perms.GET("/:role", h.GetRolePermissions)
		perms.PUT("/:role", requireCapability("manageSettings"), h.SetCapability)
	}
}

// ListPermissions returns the effective capability set for every known
// role.
func (h *Handler) ListPermissions(c *gin.Context) {
	out := gin.H{}
	for _, role := range []model.Role{model.RoleAdmin, model.RoleReceptionist, model.RoleDoctor} {
		out[string(role)] = h.service.GetPermissions(role)
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}

func (h *Handler) GetRolePermissions(c *gin.Context) {
	role := model.Role(c.Param("role"))
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.service.GetPermissions(role)))
}

type setCapabilityRequest struct {
	Key   string `json:"key" binding:"required"`
	Value *bool  `json:"value" binding:"required"`
}

func (h *Handler) SetCapability(c *gin.Context) {
	actorID, ok := handler.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authentication"))
		return
	}

	role := model.Role(c.Param("role"))

	var req setCapabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	err := h.service.SetCapability(c.Request.Context(), actorID, role, req.Key, *req.Value, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, permission.ErrAdminImmutable):
			c.JSON(http.StatusForbidden, handler.NewErrorResponse(err.Error()))
		case errors.Is(err, permission.ErrUnknownRole), errors.Is(err, permission.ErrUnknownKey):
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to update permissions"))
		}
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.service.GetPermissions(role)))
}

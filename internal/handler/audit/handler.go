package audit

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/audit"
)

type Handler struct {
	service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireCapability func(string) gin.HandlerFunc) {
	r.GET("/audit-logs", requireCapability("viewAuditLog"), h.ListAuditLogs)
}

func (h *Handler) ListAuditLogs(c *gin.Context) {
	var filters model.AuditLogFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	var p model.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if p.PageSize <= 0 || p.PageSize > 200 {
		p.PageSize = 50
	}

	logs, total, err := h.service.List(c.Request.Context(), &filters, &p)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to list audit logs"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"logs":  logs,
		"total": total,
	}))
}

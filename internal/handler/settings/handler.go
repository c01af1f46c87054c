package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/settings"
	apperrors "github.com/saaabeeer7719-creator/sehatech-full-system/pkg/errors"
)

type Handler struct {
	service *settings.Service
}

func NewHandler(service *settings.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireCapability func(string) gin.HandlerFunc) {
	group := r.Group("/settings", requireCapability("manageSettings"))
	{
		group.GET("", h.ListSettings)
		group.GET("/:key", h.GetSetting)
		group.PUT("/:key", h.SetSetting)
	}
}

func (h *Handler) ListSettings(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(items))
}

func (h *Handler) GetSetting(c *gin.Context) {
	setting, err := h.service.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(setting))
}

func (h *Handler) SetSetting(c *gin.Context) {
	actorID, ok := handler.ActorID(c)
	if !ok {
		c.Error(apperrors.Unauthorized(nil))
		c.Abort()
		return
	}

	var req model.UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.BadRequest(err.Error(), err))
		c.Abort()
		return
	}

	setting, err := h.service.Set(c.Request.Context(), actorID, c.Param("key"), req.Value, c.ClientIP())
	if err != nil {
		c.Error(err)
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(setting))
}

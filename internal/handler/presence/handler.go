package presence

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/presence"
)

type Handler struct {
	service *presence.Service
}

func NewHandler(service *presence.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	group := r.Group("/presence")
	{
		group.POST("/heartbeat", h.Heartbeat)
		group.POST("/disconnect", h.Disconnect)
		group.GET("/:userId", h.GetPresence)
	}
}

// Heartbeat renews the caller's online lease.
func (h *Handler) Heartbeat(c *gin.Context) {
	actorID, ok := handler.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authentication"))
		return
	}

	if err := h.service.Heartbeat(c.Request.Context(), actorID); err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to record heartbeat"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) Disconnect(c *gin.Context) {
	actorID, ok := handler.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authentication"))
		return
	}

	if err := h.service.Disconnect(c.Request.Context(), actorID); err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to disconnect"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) GetPresence(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}

	p, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to resolve presence"))
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

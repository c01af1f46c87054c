package chat

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/chat"
)

type Handler struct {
	service *chat.Service
}

func NewHandler(service *chat.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireCapability func(string) gin.HandlerFunc) {
	group := r.Group("/chat", requireCapability("useChat"))
	{
		group.POST("/messages", h.SendMessage)
		group.GET("/conversations/:userId", h.GetConversation)
		group.GET("/stream", h.Stream)
	}
}

func (h *Handler) SendMessage(c *gin.Context) {
	actorID, ok := handler.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authentication"))
		return
	}

	var req model.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	msg, err := h.service.Send(c.Request.Context(), actorID, &req)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrSelfMessage):
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("recipient not found"))
		default:
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to send message"))
		}
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(msg))
}

func (h *Handler) GetConversation(c *gin.Context) {
	actorID, ok := handler.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authentication"))
		return
	}

	otherID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid user ID"))
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	msgs, err := h.service.Conversation(c.Request.Context(), actorID, otherID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to load conversation"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(msgs))
}

// Stream pushes the caller's incoming messages as server-sent events until
// the client goes away.
func (h *Handler) Stream(c *gin.Context) {
	actorID, ok := handler.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authentication"))
		return
	}

	feed, err := h.service.Subscribe(c.Request.Context(), actorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to subscribe"))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, open := <-feed:
			if !open {
				return false
			}
			c.SSEvent("message", string(msg))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

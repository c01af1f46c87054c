package assist

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/assist"
)

type Handler struct {
	service *assist.Service
}

func NewHandler(service *assist.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireCapability func(string) gin.HandlerFunc) {
	group := r.Group("/assist")
	{
		group.POST("/patients/:id/summary", requireCapability("viewPatients"), h.SummarizeHistory)
		group.POST("/appointments/:id/billing-suggestion", requireCapability("addTransaction"), h.SuggestBilling)
		group.POST("/doctors/:id/slot-suggestions", requireCapability("addAppointment"), h.SuggestSlots)
	}
}

func (h *Handler) SummarizeHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	summary, err := h.service.SummarizePatientHistory(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"summary": summary}))
}

func (h *Handler) SuggestBilling(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	suggestion, err := h.service.SuggestBillingService(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"suggestion": suggestion}))
}

func (h *Handler) SuggestSlots(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	slots, err := h.service.SuggestAppointmentSlots(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"slots": slots}))
}

func (h *Handler) writeError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("not found"))
		return
	}
	c.JSON(http.StatusBadGateway, handler.NewErrorResponse("assistant unavailable"))
}

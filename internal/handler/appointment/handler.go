package appointment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/appointment"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/billing"
)

type Handler struct {
	service    *appointment.Service
	billingSvc *billing.Service
}

func NewHandler(service *appointment.Service, billingSvc *billing.Service) *Handler {
	return &Handler{service: service, billingSvc: billingSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireCapability func(string) gin.HandlerFunc) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", requireCapability("addAppointment"), h.CreateAppointment)
		appointments.GET("", requireCapability("viewAppointments"), h.ListAppointments)
		appointments.GET("/:id", requireCapability("viewAppointments"), h.GetAppointment)
		appointments.PATCH("/:id/status", requireCapability("editAppointment"), h.TransitionStatus)
		appointments.GET("/:id/transactions", requireCapability("viewBilling"), h.ListTransactions)
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	actorID, ok := handler.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authentication"))
		return
	}

	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	apt, err := h.service.Create(c.Request.Context(), actorID, &req, c.ClientIP())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("patient or doctor not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to create appointment"))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(apt))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("appointment not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to get appointment"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

// TransitionStatus moves the appointment to a new lifecycle state. The
// response carries the updated appointment plus the invoice when the
// completion billed one.
func (h *Handler) TransitionStatus(c *gin.Context) {
	actorID, ok := handler.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authentication"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	var req model.TransitionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.service.TransitionStatus(c.Request.Context(), actorID, id, req.Status, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("appointment not found"))
		case errors.Is(err, appointment.ErrInvalidTransition):
			c.JSON(http.StatusUnprocessableEntity, handler.NewErrorResponse(err.Error()))
		case errors.Is(err, repository.ErrConcurrentUpdate):
			c.JSON(http.StatusConflict, handler.NewErrorResponse("appointment was modified concurrently"))
		default:
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to update status"))
		}
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) ListAppointments(c *gin.Context) {
	var filters model.AppointmentFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	appointments, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to list appointments"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) ListTransactions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid appointment ID"))
		return
	}

	txns, err := h.billingSvc.ListByAppointment(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to list transactions"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(txns))
}

package billing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/handler"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/repository"
	"github.com/saaabeeer7719-creator/sehatech-full-system/internal/service/billing"
)

type Handler struct {
	service *billing.Service
}

func NewHandler(service *billing.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireCapability func(string) gin.HandlerFunc) {
	transactions := r.Group("/transactions")
	{
		transactions.POST("", requireCapability("addTransaction"), h.CreateTransaction)
		transactions.GET("", requireCapability("viewBilling"), h.ListTransactions)
		transactions.GET("/:id", requireCapability("viewBilling"), h.GetTransaction)
	}
}

func (h *Handler) CreateTransaction(c *gin.Context) {
	actorID, ok := handler.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authentication"))
		return
	}

	var req model.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	txn, err := h.service.Create(c.Request.Context(), actorID, &req, c.ClientIP())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("patient not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to create transaction"))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(txn))
}

func (h *Handler) GetTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid transaction ID"))
		return
	}

	txn, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("transaction not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to get transaction"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(txn))
}

func (h *Handler) ListTransactions(c *gin.Context) {
	var filters model.TransactionFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	txns, err := h.service.List(c.Request.Context(), &filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to list transactions"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(txns))
}

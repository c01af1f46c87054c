package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// Context keys set by the authentication middleware.
const (
	CtxUserID = "userID"
	CtxRole   = "userRole"
)

// ActorID returns the authenticated user's ID from the request context.
func ActorID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := c.Get(CtxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := raw.(uuid.UUID)
	return id, ok
}

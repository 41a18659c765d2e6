// Package handlers maps HTTP requests onto the services and renders the
// stable response envelope.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"civicreport-be/internal/models"
	"civicreport-be/internal/query"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Envelope is the shape of every response body.
type Envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       interface{}     `json:"data,omitempty"`
	Pagination *query.PageMeta `json:"pagination,omitempty"`
	Timestamp  string          `json:"timestamp"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{
		Success:   status < 400,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func respondPage(c *gin.Context, message string, data interface{}, meta query.PageMeta) {
	c.JSON(http.StatusOK, Envelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: &meta,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

// respondError maps the error taxonomy onto HTTP codes. Unknown errors are
// logged and rendered as an opaque 500 so storage-engine details never
// reach callers.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var vErr *models.ValidationError

	switch {
	case errors.As(err, &vErr):
		respond(c, http.StatusBadRequest, vErr.Error(), gin.H{"field": vErr.Field})
	case errors.Is(err, models.ErrInvalidEnumValue):
		respond(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, models.ErrUnauthorized):
		respond(c, http.StatusUnauthorized, "Authentication required", nil)
	case errors.Is(err, models.ErrForbidden):
		respond(c, http.StatusForbidden, "You are not authorized to perform this action", nil)
	case errors.Is(err, models.ErrNotFound):
		respond(c, http.StatusNotFound, "Resource not found", nil)
	case errors.Is(err, models.ErrConflict):
		respond(c, http.StatusConflict, "Resource already exists", nil)
	default:
		log.Error("request failed", zap.Error(err))
		respond(c, http.StatusInternalServerError, "Something went wrong", nil)
	}
}

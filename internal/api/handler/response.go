package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/registry"
	"github.com/veer7783/guest-blog-validation-tool-sub001/internal/service"
	"gorm.io/gorm"
)

// respond writes the JSON envelope shared by all endpoints.
func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"success": status < http.StatusBadRequest,
		"message": message,
		"data":    data,
	})
}

// respondError maps service errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		respond(c, http.StatusNotFound, "record not found", nil)
	case errors.Is(err, service.ErrReconciliationInFlight):
		respond(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, service.ErrReconciliationFailed),
		errors.Is(err, registry.ErrUnavailable),
		errors.Is(err, registry.ErrAuthentication),
		errors.Is(err, registry.ErrRejected):
		respond(c, http.StatusBadGateway, err.Error(), nil)
	default:
		respond(c, http.StatusInternalServerError, err.Error(), nil)
	}
}

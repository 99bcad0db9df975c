package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/services"
)

// respondError maps service errors onto HTTP statuses: missing or
// unowned resources are 404, rejected input is 422, anything else is a
// 500 with a generic message so store errors never leak details.
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case services.IsValidation(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

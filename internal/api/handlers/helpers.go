package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/havenhq/haven/backend/internal/api/middleware"
)

// currentUserID returns the acting user's id placed in context by
// RequireLogin. Zero means the route was wired without the middleware.
func currentUserID(c *gin.Context) uint {
	if v, ok := c.Get(middleware.ContextUserIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// failWithError answers a persistence failure with a generic body, logging
// the detail server-side. Development mode includes the error text.
func failWithError(c *gin.Context, err error, production bool) {
	middleware.GetRequestLogger(c).WithError(err).Error("request failed")
	if production {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

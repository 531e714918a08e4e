package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error writes an API error. Every failure uses the same {"detail": ...} body.
func Error(c *gin.Context, httpStatus int, detail string) {
	c.JSON(httpStatus, gin.H{"detail": detail})
}

// Unauthorized writes a 401 with the bearer challenge header and aborts the
// handler chain.
func Unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detail})
}

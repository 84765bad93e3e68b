package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health is a plain liveness probe for the service itself.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

package handler

import (
	"net/http"

	"sunnah_sayings/internal/logger"

	"github.com/gin-gonic/gin"
)

// serverError logs err and writes a 500 whose "error" field is a
// best-effort diagnostic, not a contract
func serverError(c *gin.Context, key, message string, err error) {
	logger.FromContext(c.Request.Context()).Error(message, "path", c.FullPath(), "error", err)
	_ = c.Error(err)
	body := gin.H{key: message}
	if key != "error" {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request: " + err.Error()})
}

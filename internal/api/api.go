package api

import (
	"errors"
	"net/http"

	"github.com/cozy-creator/tf-adapter/internal/adapter"
	"github.com/cozy-creator/tf-adapter/internal/api/middleware"
	"github.com/cozy-creator/tf-adapter/internal/app"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func requestLogger(c *gin.Context, app *app.App) *zap.Logger {
	return app.Logger.With(zap.String("request_id", c.GetString(middleware.RequestIDKey)))
}

// writeError renders adapter failures with their own status code. Anything
// else is an internal error.
func writeError(c *gin.Context, err error) {
	var herr adapter.HandlerError
	if !errors.As(err, &herr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	status := herr.StatusCode()
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": herr.Error()})
}

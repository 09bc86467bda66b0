package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/cozy-creator/tf-adapter/internal/adapter"
	"github.com/cozy-creator/tf-adapter/internal/app"
	"github.com/cozy-creator/tf-adapter/internal/utils/hashutil"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Invocations runs one prediction: npy body in, backend call, adapted body out.
func Invocations(c *gin.Context) {
	app := c.MustGet("app").(*app.App)
	log := requestLogger(c, app)

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, app.Config().MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	rc := adapter.RequestContext{
		RequestContentType: c.GetHeader("Content-Type"),
		AcceptHeader:       c.GetHeader("Accept"),
	}

	log.Debug("invocation received",
		zap.String("content_type", rc.RequestContentType),
		zap.String("accept", rc.AcceptHeader),
		zap.Int("size", len(body)),
		zap.String("digest", hashutil.ShortDigest(body)),
	)

	payload, err := app.Adapter.HandleInput(bytes.NewReader(body), rc)
	if err != nil {
		var unsupported *adapter.UnsupportedContentTypeError
		if errors.As(err, &unsupported) && len(body) > 0 {
			log.Info("rejected request body", zap.String("detected_type", mimetype.Detect(body).String()))
		}
		writeError(c, err)
		return
	}

	resp, err := app.Backend.Predict(c.Request.Context(), payload)
	if err != nil {
		log.Error("backend request failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "prediction backend unavailable"})
		return
	}

	data, contentType, err := app.Adapter.HandleOutput(resp, rc)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Data(http.StatusOK, contentType, data)
}

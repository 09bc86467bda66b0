package server

import (
	"github.com/cozy-creator/tf-adapter/internal/api"
	"github.com/cozy-creator/tf-adapter/internal/api/middleware"
	"github.com/cozy-creator/tf-adapter/internal/app"
	"github.com/gin-gonic/gin"
)

func (s *Server) SetupRoutes(app *app.App) {
	// Health checks
	s.ginEngine.GET("/ping", api.Ping)
	s.ginEngine.GET("/healthz", api.Ping)

	s.ginEngine.POST("/invocations", middleware.RequestID, handlerWrapper(app, api.Invocations))
}

func handlerWrapper(app *app.App, f func(c *gin.Context)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set("app", app)
		f(ctx)
	}
}

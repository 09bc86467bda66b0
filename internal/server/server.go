package server

import (
	"context"
	"net/http"
	"time"

	"github.com/cozy-creator/tf-adapter/internal/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	listenAddr string
	ginEngine  *gin.Engine
	inner      *http.Server
}

func NewServer(config *config.Config) (*Server, error) {
	gin.SetMode(getGinMode(config.Environment))
	r := gin.New()

	// Setup logger middleware
	r.Use(logger.SetLogger(
		logger.WithUTC(true),
		logger.WithSkipPath([]string{"/ping", "/healthz"}),
	))

	// Setup CORS middleware
	r.Use(cors.New(
		cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:    []string{"Content-Type", "Accept", "X-Request-ID"},
			ExposeHeaders:   []string{"X-Request-ID"},
			MaxAge:          300 * time.Second,
		},
	))

	r.Use(gin.Recovery())

	return &Server{
		listenAddr: config.ListenAddr(),
		ginEngine:  r,
		inner: &http.Server{
			Handler:           r,
			Addr:              config.ListenAddr(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func (s *Server) Addr() string {
	return s.listenAddr
}

func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	return s.inner.Shutdown(ctx)
}

func getGinMode(env string) string {
	switch env {
	case config.EnvironmentDev:
		return gin.DebugMode
	case config.EnvironmentTest:
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}

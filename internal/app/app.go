package app

import (
	"context"
	"fmt"

	"github.com/cozy-creator/tf-adapter/internal/adapter"
	"github.com/cozy-creator/tf-adapter/internal/backend"
	"github.com/cozy-creator/tf-adapter/internal/config"
	"github.com/cozy-creator/tf-adapter/pkg/logger"
	"go.uber.org/zap"
)

// Predictor sends an encoded prediction request to the model backend.
type Predictor interface {
	Predict(ctx context.Context, body string) (adapter.BackendResponse, error)
}

type App struct {
	config     *config.Config
	ctx        context.Context
	cancelFunc context.CancelFunc

	Logger  *zap.Logger
	Adapter *adapter.Adapter
	Backend Predictor
}

// Option funcs used to initialize the App struct
type OptionFunc func(app *App) error

func WithLogger(logger *zap.Logger) OptionFunc {
	return func(app *App) error {
		app.Logger = logger
		return nil
	}
}

func WithBackend(backend Predictor) OptionFunc {
	return func(app *App) error {
		app.Backend = backend
		return nil
	}
}

func NewApp(cfg *config.Config, options ...OptionFunc) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		ctx:        ctx,
		config:     cfg,
		cancelFunc: cancel,
	}

	for _, opt := range options {
		if err := opt(app); err != nil {
			cancel()
			return nil, err
		}
	}

	if app.Logger == nil {
		l, err := logger.InitLogger(cfg)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		app.Logger = l
	}

	app.Adapter = adapter.New(adapter.WithLogger(app.Logger.Named("adapter")))

	if app.Backend == nil {
		client, err := backend.NewClient(
			cfg.Backend.URL,
			cfg.Backend.ModelName,
			cfg.Backend.Timeout,
			backend.WithLogger(app.Logger.Named("backend")),
		)
		if err != nil {
			cancel()
			return nil, fmt.Errorf("failed to create backend client: %w", err)
		}
		app.Backend = client
	}

	return app, nil
}

func (app *App) Close() {
	app.cancelFunc()
	_ = app.Logger.Sync()
}

func (app *App) Config() *config.Config {
	return app.config
}

func (app *App) Context() context.Context {
	return app.ctx
}

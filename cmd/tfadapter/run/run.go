package cmd

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cozy-creator/tf-adapter/internal/app"
	"github.com/cozy-creator/tf-adapter/internal/config"
	"github.com/cozy-creator/tf-adapter/internal/server"
	"github.com/cozy-creator/tf-adapter/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var Cmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gateway server",
	RunE:  runApp,
}

func init() {
	flags := Cmd.Flags()

	flags.Int("port", config.DefaultPort, "Port to run the server on")
	flags.String("host", config.DefaultHost, "Host to run the server on")
	flags.String("environment", config.EnvironmentDev, "Environment configuration: dev, test or prod")
	flags.Int64("max-body-bytes", config.DefaultMaxBodyBytes, "Largest accepted request body in bytes")

	flags.String("backend-url", config.DefaultBackendURL, "Base URL of the TensorFlow Serving REST API")
	flags.String("model-name", config.DefaultModelName, "Model name used in /v1/models/<name>:predict")
	flags.Duration("backend-timeout", config.DefaultBackendTimeout, "Timeout for a single prediction request")

	bindFlags()
}

func bindFlags() {
	flags := Cmd.Flags()

	viper.BindPFlag("port", flags.Lookup("port"))
	viper.BindPFlag("host", flags.Lookup("host"))
	viper.BindPFlag("environment", flags.Lookup("environment"))
	viper.BindPFlag("max_body_bytes", flags.Lookup("max-body-bytes"))

	// Backend (TFADAPTER_BACKEND_*)
	viper.BindPFlag("backend.url", flags.Lookup("backend-url"))
	viper.BindPFlag("backend.model_name", flags.Lookup("model-name"))
	viper.BindPFlag("backend.timeout", flags.Lookup("backend-timeout"))
}

func runApp(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	app, err := app.NewApp(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	server, err := server.NewServer(cfg)
	if err != nil {
		return err
	}
	server.SetupRoutes(app)

	errc := make(chan error, 1)
	go func() {
		logger.Info("gateway started",
			zap.String("addr", server.Addr()),
			zap.String("backend", cfg.Backend.URL),
			zap.String("model", cfg.Backend.ModelName),
		)
		errc <- server.Start()
	}()

	signalc := make(chan os.Signal, 1)
	signal.Notify(signalc, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signalc)

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-signalc:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		return server.Stop(app.Context())
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/envrole-service/internal/application"
	"github.com/eugenenazirov/envrole-service/internal/bootstrap"
	"github.com/eugenenazirov/envrole-service/internal/config"
	"github.com/eugenenazirov/envrole-service/internal/metrics"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("envrole-service", "Service that resolves role-scoped configuration and serves a small query API")
	configDir := kingpinApp.Flag("config-dir", "Directory holding the YAML configuration documents (defaults to $CONFIG_DIR or ./env)").String()
	port := kingpinApp.Flag("port", "Override the port from the service configuration").Default("-1").Int()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	result, err := bootstrap.Run(bootstrap.Options{
		ConfigDir: *configDir,
		Observer:  metrics.PipelineObserver{},
	})
	if err != nil {
		abort(os.Stderr, result, err)
	}
	defer result.Close()

	logger := result.Logger
	settings := result.Service
	config.CLIOverrides{Port: port}.Apply(&settings)

	app, err := application.New(settings, result.Role, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), settings.ShutdownGracePeriod, logger)
}

// abort reports a startup failure and exits. Once logging is installed the
// failure goes through it as well.
func abort(stderr io.Writer, result *bootstrap.Result, err error) {
	fmt.Fprintf(stderr, "startup aborted: %v\n", err)
	if result != nil && result.Logger != nil {
		result.Logger.Error("startup aborted", zap.Error(err))
		result.Close()
	}
	exit(1)
}

var exit = os.Exit

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}

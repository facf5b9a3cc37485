package application

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/eugenenazirov/envrole-service/internal/api"
	"github.com/eugenenazirov/envrole-service/internal/config"
)

const listenHost = "0.0.0.0"

// App encapsulates the application dependencies and HTTP server.
type App struct {
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	server  *http.Server
	addr    net.Addr
}

// New initializes the application from the resolved service settings.
func New(settings config.ServiceSettings, role string, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	handler := api.NewHandler(api.WithRole(role))
	apiRouter := api.NewRouter(handler, logger,
		api.WithLogging(settings.EnableRequestLogging),
		api.WithRateLimit(settings.RateLimitRPS, settings.RateLimitBurst),
	)

	return &App{
		handler: handler,
		router:  apiRouter,
		logger:  logger,
		server:  NewServer(settings, BuildRootHandler(apiRouter)),
	}, nil
}

// BuildRootHandler mounts the API under /api/ and /metrics, and answers / with
// an index of the available endpoints.
func BuildRootHandler(apiHandler http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.Handle("/metrics", apiHandler)
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = fmt.Fprintln(w, "GET /api/health\nGET /api/howdy\nGET /api/details\nGET /metrics")
	}))
	return mux
}

// NewServer creates and configures an HTTP server from the provided settings.
func NewServer(settings config.ServiceSettings, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ListenAddr(settings.Port),
		Handler:           handler,
		ReadHeaderTimeout: settings.ReadHeaderTimeout,
		WriteTimeout:      settings.WriteTimeout,
		IdleTimeout:       settings.IdleTimeout,
	}
}

// ListenAddr returns the address the server binds for port.
func ListenAddr(port int) string {
	return net.JoinHostPort(listenHost, strconv.Itoa(port))
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.server.Addr, err)
	}

	a.addr = listener.Addr()

	a.logger.Info(fmt.Sprintf("API: http://localhost:%d/api/howdy", a.addr.(*net.TCPAddr).Port),
		zap.String("addr", a.addr.String()),
	)
	go func() {
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Addr returns the bound address once Start succeeded, or the configured one.
func (a *App) Addr() string {
	if a.addr != nil {
		return a.addr.String()
	}
	return a.server.Addr
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

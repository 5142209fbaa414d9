package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"

	"github.com/SscSPs/inventory_management_app/internal/middleware"
	"github.com/SscSPs/inventory_management_app/internal/platform/config"
)

const shutdownTimeout = 10 * time.Second

// NewLogger builds the JSON logger both services write to stdout and installs it as the default.
func NewLogger(serviceName string) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("service", serviceName))
	slog.SetDefault(logger)
	return logger
}

// NewEngine creates the gin engine with the middleware chain shared by both services.
func NewEngine(cfg *config.Config, logger *slog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	rateLimiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return nil, err
	}

	// Tracing first so the request logger can pick up the trace id.
	r.Use(
		otelgin.Middleware(cfg.ServiceName),
		middleware.StructuredLoggingMiddleware(logger),
		gin.Recovery(),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.RequestMetrics(cfg.ServiceName),
		middleware.RateLimit(rateLimiter),
	)
	return r, nil
}

// Worker is a background loop that runs until its context is cancelled.
type Worker func(ctx context.Context) error

// Run serves handler on cfg.Port next to the workers until SIGINT/SIGTERM or the first failure,
// then shuts the server down and waits for every worker to return.
func Run(cfg *config.Config, logger *slog.Logger, handler http.Handler, workers ...Worker) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed to run: %w", err)
		}
		return nil
	})
	for _, worker := range workers {
		g.Go(func() error { return worker(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

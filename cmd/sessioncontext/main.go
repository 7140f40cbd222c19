// sessioncontext runs the event enrichment pipeline and context API: an
// ingestion queue, a batch worker that enriches raw events into sessions
// and semantic labels, a pattern engine, and an HTTP surface for both.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kodiak-labs/sessioncontext/pkg/api"
	"github.com/kodiak-labs/sessioncontext/pkg/config"
	"github.com/kodiak-labs/sessioncontext/pkg/database"
	"github.com/kodiak-labs/sessioncontext/pkg/queue"
	"github.com/kodiak-labs/sessioncontext/pkg/semantic"
	"github.com/kodiak-labs/sessioncontext/pkg/services"
	"github.com/kodiak-labs/sessioncontext/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./config"), "Path to configuration directory")
	httpAddr := flag.String("http-addr", getEnv("HTTP_ADDR", ":8080"), "HTTP listen address")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	slog.Info("starting "+version.AppName, "version", version.Full())

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Warn("could not load .env file, continuing with existing environment", "path", envPath, "error", err)
	} else {
		slog.Info("loaded environment", "path", envPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configDir, *httpAddr); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configDir, httpAddr string) error {
	cfg, err := config.Initialize(ctx, configDir)
	if err != nil {
		return fmt.Errorf("initializing configuration: %w", err)
	}

	dbCfg, err := database.LoadConfigFromEnv()
	if err != nil {
		return fmt.Errorf("loading database config: %w", err)
	}

	pool, err := database.NewPool(ctx, dbCfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()
	slog.Info("connected to database and applied migrations")

	sessions := services.NewSessionService(pool)
	labelBuilder := semantic.NewLabelBuilder(cfg.Label.CustomEventTemplates, cfg.Label.ElementEnrichmentRules, cfg.Label.MaxLength)
	enrichment := services.NewEnrichmentService(sessions, labelBuilder, cfg.Context.ExcludedKeys)
	contextSvc := services.NewContextService(pool, sessions, cfg.Patterns(), cfg.Context.PagesInSummaryLimit)

	worker := queue.NewWorker(version.AppName, pool, queue.Config{
		BatchSize:      cfg.Queue.BatchSize,
		MaxConcurrency: cfg.Queue.MaxConcurrency,
		WaitTime:       cfg.Queue.WaitTime,
	}, enrichment)
	worker.Start(ctx)
	defer worker.Stop()

	server := api.NewServer(cfg, pool, enrichment, contextSvc, worker)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", httpAddr)
		if err := server.Start(httpAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown", "error", err)
	}

	worker.Stop()
	slog.Info("shutdown complete")
	return nil
}

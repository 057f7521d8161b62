// Package main is the entry point for the upload server. It accepts Parquet
// uploads, writes the metadata workbook and serves it for download.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"parquet-meta/internal/api"
	"parquet-meta/internal/config"
	"parquet-meta/internal/domain"
	"parquet-meta/internal/engine"
	"parquet-meta/internal/extract"
	"parquet-meta/internal/middleware"
	"parquet-meta/internal/parquetschema"
	"parquet-meta/internal/report"
	"parquet-meta/internal/service/metadata"
	"parquet-meta/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	db, err := engine.Open(ctx, cfg.DuckDBMaxMemory)
	if err != nil {
		return err
	}
	defer db.Close()

	svc, err := newService(cfg, db, logger)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o700); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	h := api.NewHandler(svc, func(ctx context.Context) (string, error) {
		return engine.Version(ctx, db)
	}, cfg.UploadDir, cfg.MaxUploadBytes, logger.With("component", "api"))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newRouter(ctx, cfg, h, logger),
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("upload server listening", "addr", cfg.ListenAddr, "upload_dir", cfg.UploadDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// newService wires the extraction pipeline. S3 inputs are only accepted
// when credentials are configured.
func newService(cfg *config.Config, db *sql.DB, logger *slog.Logger) (*metadata.Service, error) {
	loader := engine.NewParquetLoader(db, logger.With("component", "engine"))
	extractor := extract.New(loader, parquetschema.NewReader(), cfg.SampleSeed, logger.With("component", "extract"))
	writer := report.NewWorkbookWriter(logger.With("component", "report"))

	var stagers []domain.Stager
	if cfg.HasS3Config() {
		stager, err := storage.NewS3Stager(cfg, logger.With("component", "storage"))
		if err != nil {
			return nil, fmt.Errorf("s3 stager: %w", err)
		}
		stagers = append(stagers, stager)
		logger.Info("S3 inputs enabled")
	}
	return metadata.NewService(extractor, writer, logger.With("component", "metadata"), stagers...), nil
}

// newRouter mounts the API behind the shared middleware stack.
func newRouter(ctx context.Context, cfg *config.Config, h *api.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(logger.With("component", "http")))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))
	r.Use(middleware.RateLimiter(ctx, middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))
	r.Mount("/", h.Routes())
	return r
}

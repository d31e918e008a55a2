package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/quake-data-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/quake-data-etl/internal/adapter/kafka"
	"github.com/couchcryptid/quake-data-etl/internal/adapter/kmoni"
	"github.com/couchcryptid/quake-data-etl/internal/adapter/s3"
	"github.com/couchcryptid/quake-data-etl/internal/config"
	"github.com/couchcryptid/quake-data-etl/internal/domain"
	"github.com/couchcryptid/quake-data-etl/internal/observability"
	"github.com/couchcryptid/quake-data-etl/internal/pipeline"
)

func main() {
	// Local development reads overrides from .env; a missing file means
	// the environment is already set up.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	registry, err := loadRegistry(cfg.StationsPath, logger)
	if err != nil {
		logger.Error("failed to load station registry", "path", cfg.StationsPath, "error", err)
		os.Exit(1)
	}
	logger.Info("station registry loaded", "stations", registry.Len())

	client := kmoni.NewClient(cfg.KmoniBaseURL, cfg.FetchTimeout, logger)
	fetcher := kmoni.NewCachedFetcher(client, cfg.FrameCacheSize, metrics)
	writer := kafkaadapter.NewWriter(cfg, logger)

	// Frame archiving is feature-flagged via ARCHIVE_ENABLED / MINIO_*.
	var archiver pipeline.FrameArchiver
	if cfg.ArchiveEnabled {
		s3archiver, err := s3.NewArchiver(cfg, logger)
		if err != nil {
			logger.Error("failed to create frame archiver", "error", err)
			os.Exit(1)
		}
		bucketCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = s3archiver.EnsureBucket(bucketCtx)
		cancel()
		if err != nil {
			logger.Error("failed to prepare archive bucket", "bucket", cfg.MinioBucket, "error", err)
			os.Exit(1)
		}
		archiver = s3archiver
		logger.Info("frame archiving enabled", "bucket", cfg.MinioBucket)
	} else {
		logger.Info("frame archiving disabled")
	}

	p := pipeline.New(fetcher, registry, writer, archiver, logger, metrics, clockwork.NewRealClock(), pipeline.Settings{
		Kind:          cfg.DataKind,
		Borehole:      cfg.Borehole,
		FetchInterval: cfg.FetchInterval,
		FrameDelay:    cfg.FrameDelay,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start frame pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// loadRegistry reads the station file, inferring the codec from the file
// extension. CSV line failures are logged and skipped; only an unreadable
// or structurally broken file stops startup.
func loadRegistry(path string, logger *slog.Logger) (*domain.Registry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pb", ".bin":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read station file: %w", err)
		}
		points, err := domain.DecodeBinary(data)
		if err != nil {
			return nil, err
		}
		return domain.NewRegistry(points)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open station file: %w", err)
		}
		defer f.Close()

		result, err := domain.DecodeCSV(f)
		if err != nil {
			return nil, err
		}
		for _, lineErr := range result.Errors {
			logger.Warn("station record skipped", "line", lineErr.Line, "error", lineErr.Err)
		}
		logger.Info("station file decoded", "path", path, "parsed", result.Parsed, "failed", result.Failed)
		return domain.NewRegistry(result.Points)
	}
}

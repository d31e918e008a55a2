package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers    []string
	KafkaSinkTopic  string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Station registry source.
	StationsPath string

	// Kyoshin monitor fetch configuration.
	KmoniBaseURL   string
	DataKind       domain.DataKind
	Borehole       bool
	FetchInterval  time.Duration
	FrameDelay     time.Duration
	FetchTimeout   time.Duration
	FrameCacheSize int

	// Optional S3-compatible frame archive.
	ArchiveEnabled bool
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	fetchInterval, err := parseDuration("FETCH_INTERVAL", "1s")
	if err != nil {
		return nil, err
	}
	frameDelay, err := parseDuration("FRAME_DELAY", "2s")
	if err != nil {
		return nil, err
	}
	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	dataKind, err := domain.ParseDataKind(envOrDefault("DATA_KIND", string(domain.KindRealtimeIntensity)))
	if err != nil {
		return nil, fmt.Errorf("invalid DATA_KIND: %w", err)
	}
	borehole, err := parseBool("BOREHOLE", false)
	if err != nil {
		return nil, err
	}
	useSSL, err := parseBool("MINIO_USE_SSL", false)
	if err != nil {
		return nil, err
	}

	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	archiveEnabled := minioEndpoint != ""
	if v := os.Getenv("ARCHIVE_ENABLED"); v != "" {
		archiveEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:    parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic:  envOrDefault("KAFKA_SINK_TOPIC", "station-intensity-readings"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		StationsPath: envOrDefault("STATIONS_PATH", "stations.csv"),

		KmoniBaseURL:   envOrDefault("KMONI_BASE_URL", "http://www.kmoni.bosai.go.jp"),
		DataKind:       dataKind,
		Borehole:       borehole,
		FetchInterval:  fetchInterval,
		FrameDelay:     frameDelay,
		FetchTimeout:   fetchTimeout,
		FrameCacheSize: parseFrameCacheSize(),

		ArchiveEnabled: archiveEnabled,
		MinioEndpoint:  minioEndpoint,
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    envOrDefault("MINIO_BUCKET", "intensity-frames"),
		MinioUseSSL:    useSSL,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.StationsPath == "" {
		return nil, errors.New("STATIONS_PATH is required")
	}
	if cfg.KmoniBaseURL == "" {
		return nil, errors.New("KMONI_BASE_URL is required")
	}
	if cfg.ArchiveEnabled {
		if cfg.MinioEndpoint == "" {
			return nil, errors.New("ARCHIVE_ENABLED is true but MINIO_ENDPOINT is not set")
		}
		if cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "" {
			return nil, errors.New("MINIO_ENDPOINT is set but MINIO_ACCESS_KEY/MINIO_SECRET_KEY are not")
		}
	}

	return cfg, nil
}

func envOrDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// parseBrokers splits a comma-separated broker list, dropping empty entries.
func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseDuration(name, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(name, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", name)
	}
	return d, nil
}

func parseBool(name string, fallback bool) (bool, error) {
	s := os.Getenv(name)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

func parseFrameCacheSize() int {
	if s := os.Getenv("FRAME_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 16
}

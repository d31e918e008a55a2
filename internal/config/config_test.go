package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quake-data-etl/internal/domain"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "station-intensity-readings", cfg.KafkaSinkTopic)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "stations.csv", cfg.StationsPath)
	assert.Equal(t, "http://www.kmoni.bosai.go.jp", cfg.KmoniBaseURL)
	assert.Equal(t, domain.KindRealtimeIntensity, cfg.DataKind)
	assert.False(t, cfg.Borehole)
	assert.Equal(t, 1*time.Second, cfg.FetchInterval)
	assert.Equal(t, 2*time.Second, cfg.FrameDelay)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 16, cfg.FrameCacheSize)
	assert.False(t, cfg.ArchiveEnabled)
	assert.Equal(t, "intensity-frames", cfg.MinioBucket)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-readings")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("STATIONS_PATH", "/etc/kmoni/stations.pb")
	t.Setenv("KMONI_BASE_URL", "http://kmoni.test")
	t.Setenv("DATA_KIND", "acmap")
	t.Setenv("BOREHOLE", "true")
	t.Setenv("FETCH_INTERVAL", "2s")
	t.Setenv("FRAME_DELAY", "3500ms")
	t.Setenv("FETCH_TIMEOUT", "10s")
	t.Setenv("FRAME_CACHE_SIZE", "64")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-readings", cfg.KafkaSinkTopic)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/etc/kmoni/stations.pb", cfg.StationsPath)
	assert.Equal(t, "http://kmoni.test", cfg.KmoniBaseURL)
	assert.Equal(t, domain.KindPeakAcceleration, cfg.DataKind)
	assert.True(t, cfg.Borehole)
	assert.Equal(t, 2*time.Second, cfg.FetchInterval)
	assert.Equal(t, 3500*time.Millisecond, cfg.FrameDelay)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 64, cfg.FrameCacheSize)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeFetchInterval(t *testing.T) {
	t.Setenv("FETCH_INTERVAL", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_INTERVAL")
}

func TestLoad_InvalidDataKind(t *testing.T) {
	t.Setenv("DATA_KIND", "wavemap")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATA_KIND")
}

func TestLoad_InvalidBorehole(t *testing.T) {
	t.Setenv("BOREHOLE", "maybe")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOREHOLE")
}

func TestLoad_BadFrameCacheSizeFallsBack(t *testing.T) {
	t.Setenv("FRAME_CACHE_SIZE", "-5")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.FrameCacheSize)
}

func TestLoad_EmptyBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " , ")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_ArchiveEndpointImpliesEnabled(t *testing.T) {
	t.Setenv("MINIO_ENDPOINT", "minio.test:9000")
	t.Setenv("MINIO_ACCESS_KEY", "minioadmin")
	t.Setenv("MINIO_SECRET_KEY", "minioadmin")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.ArchiveEnabled)
}

func TestLoad_ArchiveEnabledWithoutEndpoint(t *testing.T) {
	t.Setenv("ARCHIVE_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MINIO_ENDPOINT")
}

func TestLoad_ArchiveEndpointWithoutCredentials(t *testing.T) {
	t.Setenv("MINIO_ENDPOINT", "minio.test:9000")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MINIO_ACCESS_KEY")
}

func TestLoad_ArchiveExplicitlyDisabled(t *testing.T) {
	t.Setenv("MINIO_ENDPOINT", "minio.test:9000")
	t.Setenv("ARCHIVE_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.ArchiveEnabled)
}

package config

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "sqlite://mmel.db", cfg.DatabaseURL)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, 100, cfg.MaxQueueSize)
	assert.Equal(t, int64(52428800), cfg.MaxUploadBytes)
	assert.Equal(t, time.Hour, cfg.JobTTL)
	assert.True(t, cfg.PDFFallbackPdftotext)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("MMEL_PORT", "9000")
	t.Setenv("MMEL_API_KEY", "secret")
	t.Setenv("MMEL_WORKER_COUNT", "8")
	t.Setenv("MMEL_BATCH_CONCURRENCY", "0")
	t.Setenv("MMEL_JOB_TTL", "15m")
	t.Setenv("MMEL_PDF_FALLBACK_PDFTOTEXT", "false")
	t.Setenv("MMEL_FAMILIES_FILE", "/etc/mmel/families.yaml")
	t.Setenv("MMEL_LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "secret", cfg.APIKey)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.Equal(t, 8, cfg.BatchConcurrency)
	assert.Equal(t, 15*time.Minute, cfg.JobTTL)
	assert.False(t, cfg.PDFFallbackPdftotext)
	assert.Equal(t, "/etc/mmel/families.yaml", cfg.FamiliesFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "5000")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
}

func TestValidate(t *testing.T) {
	base := Config{APIKey: "k", DatabaseURL: "sqlite://x.db", LogFormat: "json", LogLevel: "info"}
	assert.NoError(t, base.Validate())

	missingKey := base
	missingKey.APIKey = ""
	assert.Error(t, missingKey.Validate())

	badFormat := base
	badFormat.LogFormat = "xml"
	assert.Error(t, badFormat.Validate())

	badLevel := base
	badLevel.LogLevel = "loud"
	assert.Error(t, badLevel.Validate())
}

func TestLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := Config{LogLevel: "warn", LogFormat: "text"}.Logger(&buf)
	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.True(t, log.Enabled(context.Background(), slog.LevelWarn))
}

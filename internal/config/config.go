package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Storage
	DatabaseURL string

	// Worker pool
	WorkerCount      int
	MaxQueueSize     int
	BatchConcurrency int

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration

	// Parsing
	PDFFallbackPdftotext bool
	FamiliesFile         string
	StatsWindow          time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

var keys = []string{
	"port", "api_key", "database_url",
	"worker_count", "max_queue_size", "batch_concurrency",
	"max_upload_bytes", "job_ttl",
	"pdf_fallback_pdftotext", "families_file", "stats_window",
	"log_level", "log_format",
}

// Load reads configuration from environment variables with the MMEL_
// prefix, e.g. MMEL_DATABASE_URL.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MMEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8090")
	v.SetDefault("database_url", "sqlite://mmel.db")
	v.SetDefault("worker_count", 4)
	v.SetDefault("max_queue_size", 100)
	v.SetDefault("batch_concurrency", 4)
	v.SetDefault("max_upload_bytes", 52428800) // 50MB
	v.SetDefault("job_ttl", "1h")
	v.SetDefault("pdf_fallback_pdftotext", true)
	v.SetDefault("families_file", "")
	v.SetDefault("stats_window", "1h")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	cfg := Config{
		Port:                 v.GetString("port"),
		APIKey:               v.GetString("api_key"),
		DatabaseURL:          v.GetString("database_url"),
		WorkerCount:          v.GetInt("worker_count"),
		MaxQueueSize:         v.GetInt("max_queue_size"),
		BatchConcurrency:     v.GetInt("batch_concurrency"),
		MaxUploadBytes:       v.GetInt64("max_upload_bytes"),
		JobTTL:               v.GetDuration("job_ttl"),
		PDFFallbackPdftotext: v.GetBool("pdf_fallback_pdftotext"),
		FamiliesFile:         v.GetString("families_file"),
		StatsWindow:          v.GetDuration("stats_window"),
		LogLevel:             strings.ToLower(v.GetString("log_level")),
		LogFormat:            strings.ToLower(v.GetString("log_format")),
	}

	// PaaS platforms set PORT; honor it unless MMEL_PORT is explicit.
	if port := os.Getenv("PORT"); port != "" && os.Getenv("MMEL_PORT") == "" {
		cfg.Port = port
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = cfg.WorkerCount
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg, nil
}

// Validate checks the settings the HTTP service cannot run without.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("MMEL_API_KEY is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("MMEL_DATABASE_URL is required")
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("MMEL_LOG_FORMAT must be json or text, got %q", c.LogFormat)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Logger builds the process logger writing to w.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("MMEL_LOG_LEVEL %q is not one of debug, info, warn, error", s)
}

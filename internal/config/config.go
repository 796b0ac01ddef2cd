package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Auth
	AssemblyAPIKey string

	// Every path in a request is resolved against DocumentRoot and must stay
	// inside it.
	DocumentRoot string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// HTTP limits
	MaxConnections  int
	MaxRequestBytes int64

	CORSAllowedOrigins []string

	// Job state
	JobTTL time.Duration

	LogLevel slog.Level

	// PDF
	PDFFallbackPdftotext bool
	PDFRelaxedValidation bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		AssemblyAPIKey: os.Getenv("ASSEMBLY_API_KEY"),

		DocumentRoot: envOr("DOCUMENT_ROOT", "."),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxConnections:  envInt("MAX_CONNECTIONS", 256),
		MaxRequestBytes: envInt64("MAX_REQUEST_BYTES", 1<<20), // 1MB

		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS"),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		LogLevel: envLevel("LOG_LEVEL", slog.LevelInfo),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
		PDFRelaxedValidation: envBool("PDF_RELAXED_VALIDATION", true),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = 256
	}
	if cfg.MaxRequestBytes <= 0 {
		cfg.MaxRequestBytes = 1 << 20
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if abs, err := filepath.Abs(cfg.DocumentRoot); err == nil {
		cfg.DocumentRoot = abs
	}

	return cfg
}

func (c Config) Validate() error {
	if c.AssemblyAPIKey == "" {
		return fmt.Errorf("ASSEMBLY_API_KEY is required")
	}
	info, err := os.Stat(c.DocumentRoot)
	if err != nil {
		return fmt.Errorf("DOCUMENT_ROOT: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("DOCUMENT_ROOT %s is not a directory", c.DocumentRoot)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma-separated value, dropping blanks.
func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err == nil {
			return lvl
		}
	}
	return fallback
}

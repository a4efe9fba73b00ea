package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the server.
type Config struct {
	Addr            string
	DatabaseURL     string
	JWTSecret       string
	JWTExpiration   time.Duration
	CORSOrigins     []string
	DefaultPageSize int
	MaxPageSize     int
	ReportTime      string // HH:MM, empty disables the daily summary job
	ReportInterval  time.Duration
	Development     bool
}

// Load reads configuration from environment variables with sane
// defaults. A .env file in the working directory is honored if present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:            envOr("ADDR", ":8080"),
		DatabaseURL:     envOr("DATABASE_URL", "tugasku.db"),
		JWTSecret:       envOr("JWT_SECRET", "change-me-in-production"),
		JWTExpiration:   time.Duration(envInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
		CORSOrigins:     splitList(envOr("CORS_ORIGINS", "http://localhost:3000")),
		DefaultPageSize: envInt("DEFAULT_PAGE_SIZE", 20),
		MaxPageSize:     envInt("MAX_PAGE_SIZE", 100),
		ReportTime:      strings.TrimSpace(os.Getenv("REPORT_TIME")),
		ReportInterval:  parseInterval(strings.TrimSpace(os.Getenv("REPORT_INTERVAL_HOURS"))),
		Development:     envBool("DEV_LOG"),
	}

	if cfg.DefaultPageSize < 1 {
		return cfg, fmt.Errorf("DEFAULT_PAGE_SIZE must be positive")
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		return cfg, fmt.Errorf("MAX_PAGE_SIZE must be >= DEFAULT_PAGE_SIZE")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL string
	ServerPort  int
	LogLevel    slog.Level

	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBPingTimeout     time.Duration

	DefaultCadence              string
	DefaultMatchDurationMinutes int
	AllowedTeamSizes            []int

	RateLimitRPS   float64
	RateLimitBurst int

	CORSAllowedOrigins []string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// SnapshotsEnabled reports whether object storage for schedule snapshots is configured.
func (c *Config) SnapshotsEnabled() bool {
	return c.R2AccountID != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	maxOpen, err := intEnv("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, err
	}
	maxIdle, err := intEnv("DB_MAX_IDLE_CONNS", maxOpen)
	if err != nil {
		return nil, err
	}
	if maxOpen <= 0 || maxIdle < 0 || maxIdle > maxOpen {
		return nil, fmt.Errorf("invalid database pool: DB_MAX_OPEN_CONNS=%d DB_MAX_IDLE_CONNS=%d", maxOpen, maxIdle)
	}
	lifetime, err := durationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	pingTimeout, err := durationEnv("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(stringEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
	}

	duration, err := intEnv("DEFAULT_MATCH_DURATION_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	if duration <= 0 {
		return nil, fmt.Errorf("DEFAULT_MATCH_DURATION_MINUTES must be positive, got %d", duration)
	}

	teamSizes, err := parseTeamSizes(stringEnv("ALLOWED_TEAM_SIZES", "2,4"))
	if err != nil {
		return nil, err
	}

	rps, err := strconv.ParseFloat(stringEnv("RATE_LIMIT_RPS", "5"), 64)
	if err != nil || rps <= 0 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS environment variable: %q", os.Getenv("RATE_LIMIT_RPS"))
	}
	burst, err := intEnv("RATE_LIMIT_BURST", 10)
	if err != nil {
		return nil, err
	}
	if burst <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_BURST must be positive, got %d", burst)
	}

	cfg := &Config{
		DatabaseURL:                 dbURL,
		ServerPort:                  port,
		LogLevel:                    level,
		DBMaxOpenConns:              maxOpen,
		DBMaxIdleConns:              maxIdle,
		DBConnMaxLifetime:           lifetime,
		DBPingTimeout:               pingTimeout,
		DefaultCadence:              stringEnv("DEFAULT_CADENCE", "weekly"),
		DefaultMatchDurationMinutes: duration,
		AllowedTeamSizes:            teamSizes,
		RateLimitRPS:                rps,
		RateLimitBurst:              burst,
		CORSAllowedOrigins:          splitList(stringEnv("CORS_ALLOWED_ORIGINS", "*")),
		R2AccountID:                 os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:               os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:           os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:                os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:             os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	if err := cfg.validateR2(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// R2 либо настроен полностью, либо не настроен вовсе.
func (c *Config) validateR2() error {
	fields := []string{c.R2AccountID, c.R2AccessKeyID, c.R2SecretAccessKey, c.R2BucketName, c.R2PublicBaseURL}
	set := 0
	for _, f := range fields {
		if f != "" {
			set++
		}
	}
	if set != 0 && set != len(fields) {
		return errors.New("incomplete R2 configuration: set all of R2_ACCOUNT_ID, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_BUCKET_NAME, R2_PUBLIC_BASE_URL or none")
	}
	return nil
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s environment variable: %q", key, v)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseTeamSizes(s string) ([]int, error) {
	parts := splitList(s)
	if len(parts) == 0 {
		return nil, errors.New("ALLOWED_TEAM_SIZES must list at least one size")
	}
	sizes := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid team size %q in ALLOWED_TEAM_SIZES", p)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}

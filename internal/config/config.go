package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"

	defaultDSN    = "host=localhost user=postgres password=postgres dbname=vortex port=5432 sslmode=disable"
	defaultOrigin = "http://localhost:5173"
)

type Config struct {
	HTTPPort      string
	StorageDriver string
	DatabaseDSN   string
	JWTSecret     string
	CORSOrigins   string
	LogLevel      string
	LogFormat     string
	RedisURL      string // empty disables the cross-instance relay
	RedisChannel  string

	// Warnings collects insecure defaults; logged once the logger exists.
	Warnings []string
}

// Load reads the environment, after merging an optional .env file from the
// working directory. Variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: .env okunamadı: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", DriverPostgres)),
		DatabaseDSN:   getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		CORSOrigins:   getEnv("CORS_ALLOWED_ORIGINS", defaultOrigin),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "json"),
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisChannel:  getEnv("REDIS_CHANNEL", "vortex:events"),
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("config: JWT_SECRET não definido")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("config: JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	switch cfg.StorageDriver {
	case DriverPostgres:
		if cfg.DatabaseDSN == defaultDSN {
			cfg.Warnings = append(cfg.Warnings, "DATABASE_DSN usando valor padrão; defina a conexão real em produção")
		}
	case DriverSQLite:
		if cfg.DatabaseDSN == defaultDSN {
			cfg.DatabaseDSN = "vortex.db"
		}
	case DriverMemory:
		cfg.Warnings = append(cfg.Warnings, "STORAGE_DRIVER=memory: os dados são perdidos ao reiniciar")
	default:
		return nil, fmt.Errorf("config: STORAGE_DRIVER inválido %q", cfg.StorageDriver)
	}

	if cfg.CORSOrigins == defaultOrigin {
		cfg.Warnings = append(cfg.Warnings, "CORS_ALLOWED_ORIGINS usando valor padrão; defina o domínio real em produção")
	}

	return cfg, nil
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

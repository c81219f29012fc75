package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageJSON     = "json"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"

	defaultDSN = "host=localhost user=postgres password=postgres dbname=shiftplan port=5432 sslmode=disable"
)

type Config struct {
	HTTPPort      string
	StorageDriver string
	DataDir       string // JSON files live here
	DatabaseDSN   string
	JWTSecret     string
	JWTTTL        time.Duration
	CORSOrigins   string
	LogLevel      string
	LogFormat     string
	MinRest       time.Duration // rest required between two shifts of one employee
	SeedDefaults  bool

	// Warnings collects non-fatal findings for the caller to log once a
	// logger exists.
	Warnings []string
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		HTTPPort:      getEnv("HTTP_PORT", "8080"),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageJSON)),
		DataDir:       getEnv("DATA_DIR", "shift_data"),
		DatabaseDSN:   getEnv("DATABASE_DSN", ""),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		CORSOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", "json")),
	}

	var err error
	if cfg.JWTTTL, err = getDuration("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.MinRest, err = getDuration("MIN_DOWNTIME", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SeedDefaults, err = getBool("SEED_DEFAULT_USERS", true); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET must be at least 32 characters")
	}

	switch cfg.StorageDriver {
	case StorageJSON:
	case StoragePostgres:
		if cfg.DatabaseDSN == "" {
			cfg.DatabaseDSN = defaultDSN
			cfg.Warnings = append(cfg.Warnings, "DATABASE_DSN not set, using the local development default")
		}
	case StorageSQLite:
		if cfg.DatabaseDSN == "" {
			cfg.DatabaseDSN = "shiftplan.db"
		}
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER must be json, postgres or sqlite, got %q", cfg.StorageDriver)
	}

	if cfg.CORSOrigins == "http://localhost:5173" {
		cfg.Warnings = append(cfg.Warnings, "CORS_ALLOWED_ORIGINS uses the default, set your own domain in production")
	}
	return cfg, nil
}

// Origins splits CORSOrigins on commas and trims each entry.
func (c *Config) Origins() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}

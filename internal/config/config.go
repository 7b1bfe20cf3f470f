package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	DefaultDatabaseDSN = "host=localhost user=postgres password=postgres dbname=bookkeeping port=5432 sslmode=disable"
	DefaultCORSOrigins = "http://localhost:5173"
)

type Config struct {
	HTTPPort       string
	DatabaseDriver string
	DatabaseDSN    string
	JWTSecret      string
	CORSOrigins    string
	LogMode        string // development | production
	SeedDefaults   bool
}

// Load reads the environment, after merging an optional .env file
// (existing variables win), and validates the result.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", DriverPostgres)),
		DatabaseDSN:    getEnv("DATABASE_DSN", DefaultDatabaseDSN),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		CORSOrigins:    getEnv("CORS_ALLOWED_ORIGINS", DefaultCORSOrigins),
		LogMode:        strings.ToLower(getEnv("LOG_MODE", "development")),
		SeedDefaults:   getEnvBool("SEED_DEFAULTS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.HTTPPort)
	if err != nil {
		return fmt.Errorf("invalid HTTP_PORT %q: must be a number", c.HTTPPort)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid HTTP_PORT %d: must be between 1 and 65535", port)
	}

	switch c.DatabaseDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("invalid DATABASE_DRIVER %q: must be %q or %q", c.DatabaseDriver, DriverPostgres, DriverSQLite)
	}
	if c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}

	switch c.LogMode {
	case "development", "production":
	default:
		return fmt.Errorf("invalid LOG_MODE %q: must be development or production", c.LogMode)
	}
	return nil
}

// Warnings lists settings left at development defaults.
func (c *Config) Warnings() []string {
	var out []string
	if c.DatabaseDriver == DriverPostgres && c.DatabaseDSN == DefaultDatabaseDSN {
		out = append(out, "DATABASE_DSN uses the default value, set your own Postgres connection for production")
	}
	if c.CORSOrigins == DefaultCORSOrigins {
		out = append(out, "CORS_ALLOWED_ORIGINS uses the default value, set your own domain for production")
	}
	return out
}

// CORSOriginList splits the comma separated origins and trims each entry.
func (c *Config) CORSOriginList() []string {
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

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

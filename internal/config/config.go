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
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	GinMode  string
	Port     string
	LogLevel string

	DBDriver          string
	TZ                string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPass            string
	DBName            string
	DBSSLMode         string
	SQLitePath        string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxIdleTime time.Duration

	CORSAllowedOrigins []string
	MetricsEnabled     bool
	ShutdownTimeout    time.Duration

	// EnvFileLoaded is the .env path that was applied, empty if none.
	EnvFileLoaded string
}

// Load reads configuration from the environment. In debug mode a .env file is
// applied first; variables already set in the environment win.
func Load() (*Config, error) {
	var loaded string
	if getenv("GIN_MODE", "debug") == "debug" {
		envPath := getenv("ENV_FILE", ".env")
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return nil, fmt.Errorf("load %s: %w", envPath, err)
			}
			loaded = envPath
		}
	}

	cfg := &Config{
		GinMode:  getenv("GIN_MODE", "debug"),
		Port:     getenv("APP_PORT", "8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		DBDriver:   strings.ToLower(getenv("DB_DRIVER", DriverPostgres)),
		TZ:         getenv("TZ", "UTC"),
		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPass:     getenv("DB_PASS", ""),
		DBName:     getenv("DB_NAME", "library"),
		DBSSLMode:  os.Getenv("DB_SSLMODE"),
		SQLitePath: getenv("SQLITE_PATH", "library.db"),

		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS",
			"http://localhost:3000,https://library-management-7bsg.onrender.com")),

		EnvFileLoaded: loaded,
	}

	if cfg.DBSSLMode == "" {
		if cfg.GinMode == "release" {
			cfg.DBSSLMode = "require"
		} else {
			cfg.DBSSLMode = "disable"
		}
	}

	var err error
	if cfg.DBMaxOpenConns, err = getenvInt("DB_MAX_OPEN_CONNS", 25); err != nil {
		return nil, err
	}
	if cfg.DBMaxIdleConns, err = getenvInt("DB_MAX_IDLE_CONNS", 25); err != nil {
		return nil, err
	}
	if cfg.DBConnMaxIdleTime, err = getenvDuration("DB_CONN_MAX_IDLE_TIME", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.MetricsEnabled, err = getenvBool("METRICS_ENABLED", true); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid APP_PORT %q", c.Port)
	}

	if len(c.CORSAllowedOrigins) == 0 {
		return errors.New("CORS_ALLOWED_ORIGINS must list at least one origin")
	}

	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}

	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) DSN() string {
	if c.DBDriver == DriverSQLite {
		return c.SQLitePath
	}

	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DBHost,
		c.DBUser,
		c.DBPass,
		c.DBName,
		c.DBPort,
		c.DBSSLMode,
		c.TZ,
	)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

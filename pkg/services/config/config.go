package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	EnvPrefix         = "REPORT_ATLAS"
	DefaultConfigFile = "report-atlas.yaml"
)

// ErrNoDatabase is returned when no connection string can be resolved.
var ErrNoDatabase = errors.New("no database configured: set database.url, a pg_service profile or DATABASE_URL")

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Output   OutputConfig   `mapstructure:"output"`
	History  HistoryConfig  `mapstructure:"history"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type DatabaseConfig struct {
	Driver         string        `mapstructure:"driver"`
	URL            string        `mapstructure:"url"`
	ServiceFile    string        `mapstructure:"service_file"`
	Service        string        `mapstructure:"service"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type OutputConfig struct {
	Directory      string `mapstructure:"directory"`
	ChartDirectory string `mapstructure:"chart_directory"`
	// Summary writes a YAML run summary next to every generated document.
	Summary bool `mapstructure:"summary"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadEnv reads .env files into the process environment. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Load reads the optional config file at path, applies defaults and REPORT_ATLAS_* overrides.
// An empty path falls back to report-atlas.yaml in the working directory when it exists.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "pgx")
	v.SetDefault("database.url", "")
	v.SetDefault("database.service_file", "")
	v.SetDefault("database.service", "")
	v.SetDefault("database.connect_timeout", 10*time.Second)

	v.SetDefault("output.directory", ".")
	v.SetDefault("output.chart_directory", "charts")
	v.SetDefault("output.summary", false)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "report-atlas.db")

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// DatabaseURL resolves the connection string: database.url, then the pg_service profile,
// then DATABASE_URL.
func (c *Config) DatabaseURL(ctx context.Context) (string, error) {
	if c.Database.URL != "" {
		return c.Database.URL, nil
	}

	if c.Database.Service != "" {
		registry, err := NewServiceRegistry(c.Database.ServiceFile)
		if err != nil {
			return "", fmt.Errorf("failed to read service file: %w", err)
		}
		dsn, err := registry.DSN(ctx, c.Database.Service)
		if err != nil {
			return "", err
		}
		return dsn, nil
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url, nil
	}
	return "", ErrNoDatabase
}

// NewLogger builds the process logger from the logging section.
func (c LoggingConfig) NewLogger(out io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	switch strings.ToLower(c.Format) {
	case "", "json":
		return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
	case "console":
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}).
			Level(level).With().Timestamp().Logger(), nil
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q", c.Format)
	}
}

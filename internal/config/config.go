package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Config holds all service configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logger     LoggerConfig     `yaml:"logger"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	JWT        JWTConfig        `yaml:"jwt"`
	Display    DisplayConfig    `yaml:"display"`
	Pagination PaginationConfig `yaml:"pagination"`
	Export     ExportConfig     `yaml:"export"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Mode            string        `yaml:"mode"`
	BasePath        string        `yaml:"base_path"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
}

type DatabaseConfig struct {
	URL             string        `yaml:"url"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

// GetDSN returns the postgres DSN, preferring an explicit URL
func (d DatabaseConfig) GetDSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig configures the optional tree cache. Empty URL and Addr disable it.
type RedisConfig struct {
	URL      string        `yaml:"url"`
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TreeTTL  time.Duration `yaml:"tree_ttl"`
}

// Enabled reports whether a redis endpoint is configured
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Addr != ""
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

type DisplayConfig struct {
	Timezone string `yaml:"timezone"`
}

// Location loads the configured display timezone
func (d DisplayConfig) Location() (*time.Location, error) {
	return time.LoadLocation(d.Timezone)
}

type PaginationConfig struct {
	PageSize    int `yaml:"page_size"`
	MaxPageSize int `yaml:"max_page_size"`
}

type ExportConfig struct {
	Gzip bool `yaml:"gzip"`
}

type MetricsConfig struct {
	CollectSchedule string `yaml:"collect_schedule"`
}

// Default returns the configuration used when no file or env override is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Mode:            "debug",
			BasePath:        "/api/comments",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Logger: LoggerConfig{Level: "info"},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Name:            "comments",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			AutoMigrate:     true,
		},
		Redis: RedisConfig{
			TreeTTL: 5 * time.Minute,
		},
		JWT: JWTConfig{
			TTL: 24 * time.Hour,
		},
		Display:    DisplayConfig{Timezone: "Europe/Moscow"},
		Pagination: PaginationConfig{PageSize: 10, MaxPageSize: 100},
		Metrics:    MetricsConfig{CollectSchedule: "@every 1m"},
	}
}

// Load reads the yaml file at path (if it exists) over the defaults and applies env overrides
func Load(path string) (*Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("SERVER_MODE"); v != "" {
		cfg.Server.Mode = v
	}
	if v := os.Getenv("SERVER_BASE_PATH"); v != "" {
		cfg.Server.BasePath = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = p
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("TREE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Redis.TreeTTL = d
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("DISPLAY_TIMEZONE"); v != "" {
		cfg.Display.Timezone = v
	}
	if v := os.Getenv("PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pagination.PageSize = n
		}
	}
	if v := os.Getenv("EXPORT_GZIP"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Export.Gzip = b
		}
	}
}

// Validate checks values that would otherwise fail at request time
func (c *Config) Validate() error {
	if _, err := c.Display.Location(); err != nil {
		return fmt.Errorf("invalid display timezone %q: %w", c.Display.Timezone, err)
	}
	if c.Pagination.PageSize <= 0 {
		return fmt.Errorf("pagination.page_size must be positive, got %d", c.Pagination.PageSize)
	}
	if c.Pagination.MaxPageSize < c.Pagination.PageSize {
		return fmt.Errorf("pagination.max_page_size (%d) must be >= page_size (%d)",
			c.Pagination.MaxPageSize, c.Pagination.PageSize)
	}
	if c.Server.Mode == "release" && c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required in release mode")
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

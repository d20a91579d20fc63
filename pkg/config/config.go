package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends accepted by STORAGE_BACKEND
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// DefaultAPIBaseURL is the commerce API the storefront talks to when API_BASE_URL is unset
const DefaultAPIBaseURL = "http://localhost:8082/api"

// Config holds every setting of the storefront client processes
type Config struct {
	APIBaseURL  string        `yaml:"api_base_url"`
	HTTPTimeout time.Duration `yaml:"http_timeout"` // 0 leaves the network stack default

	StorageBackend string `yaml:"storage_backend"`
	RedisAddr      string `yaml:"redis_addr"`
	RedisPassword  string `yaml:"redis_password"`

	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`

	HTTPAddr     string `yaml:"http_addr"`
	CatalogCache bool   `yaml:"catalog_cache"`
	TraceStdout  bool   `yaml:"trace_stdout"`
	AdminToken   string `yaml:"admin_token"`

	SessionIdleTimeout time.Duration `yaml:"session_idle_timeout"` // 0 keeps the web layer default
	MaxSessions        int           `yaml:"max_sessions"`         // 0 keeps the web layer default
}

// Load builds a Config from the environment, then applies the YAML file named by STOREFRONT_CONFIG if any
func Load() (Config, error) {
	cfg := Config{
		APIBaseURL:     getenv("API_BASE_URL", DefaultAPIBaseURL),
		StorageBackend: getenv("STORAGE_BACKEND", BackendMemory),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		DBHost:         os.Getenv("DB_HOST"),
		DBPort:         getenv("DB_PORT", "5432"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         os.Getenv("DB_NAME"),
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		AdminToken:     os.Getenv("ADMIN_TOKEN"),
	}

	var err error
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		if cfg.HTTPTimeout, err = time.ParseDuration(v); err != nil {
			return cfg, fmt.Errorf("invalid HTTP_TIMEOUT %q: %w", v, err)
		}
	}
	if v := os.Getenv("SESSION_IDLE_TIMEOUT"); v != "" {
		if cfg.SessionIdleTimeout, err = time.ParseDuration(v); err != nil {
			return cfg, fmt.Errorf("invalid SESSION_IDLE_TIMEOUT %q: %w", v, err)
		}
	}
	if v := os.Getenv("MAX_SESSIONS"); v != "" {
		if cfg.MaxSessions, err = strconv.Atoi(v); err != nil {
			return cfg, fmt.Errorf("invalid MAX_SESSIONS %q: %w", v, err)
		}
	}
	if cfg.CatalogCache, err = getbool("CATALOG_CACHE"); err != nil {
		return cfg, err
	}
	if cfg.TraceStdout, err = getbool("TRACE_STDOUT"); err != nil {
		return cfg, err
	}

	if path := os.Getenv("STOREFRONT_CONFIG"); path != "" {
		if err := cfg.overlay(path); err != nil {
			return cfg, err
		}
		log.Printf("Applied configuration overrides from %s", path)
	}

	return cfg, cfg.Validate()
}

// Validate checks the settings that cannot be defaulted
func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api base url must not be empty")
	}
	switch c.StorageBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR environment variable not set")
		}
	case BackendPostgres:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR environment variable not set (token and session scopes live in Redis)")
		}
		if c.DBHost == "" || c.DBName == "" {
			return fmt.Errorf("DB_HOST and DB_NAME are required for the postgres storage backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	if c.SessionIdleTimeout < 0 || c.MaxSessions < 0 {
		return fmt.Errorf("session idle timeout and max sessions must not be negative")
	}
	if c.CatalogCache && c.RedisAddr == "" {
		return fmt.Errorf("CATALOG_CACHE requires REDIS_ADDR")
	}
	return nil
}

// PostgresDSN renders the lib/pq connection string
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func (c *Config) overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	// Only keys present in the file replace env values.
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

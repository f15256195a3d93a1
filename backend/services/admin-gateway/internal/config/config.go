package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libconfig "schooladmin/backend/libs/config"
)

const (
	defaultPort             = "8080"
	defaultTimeout          = 10 * time.Second
	defaultDefaultFeeAmount = 10000
)

// Config defines gateway configuration.
type Config struct {
	HTTP struct {
		Port           string   `yaml:"port" env:"ADMIN_GATEWAY_HTTP_PORT"`
		AllowedOrigins []string `yaml:"allowedOrigins" env:"ADMIN_GATEWAY_ALLOWED_ORIGINS"`
	} `yaml:"http"`
	JWT struct {
		Secret string `yaml:"secret" env:"ADMIN_GATEWAY_JWT_SECRET"`
	} `yaml:"jwt"`
	Backend struct {
		URL     string        `yaml:"url" env:"SCHOOL_BACKEND_URL"`
		Timeout time.Duration `yaml:"timeout" env:"SCHOOL_BACKEND_TIMEOUT"`
	} `yaml:"backend"`
	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
		Key      string `yaml:"key" env:"ADMIN_GATEWAY_SELECTION_KEY"`
	} `yaml:"redis"`
	Fees struct {
		DefaultAmount int64 `yaml:"defaultAmount" env:"ADMIN_GATEWAY_DEFAULT_FEE"`
	} `yaml:"fees"`
}

// Load configuration via shared helper.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.HTTP.Port = defaultPort
	cfg.Backend.Timeout = defaultTimeout
	cfg.Fees.DefaultAmount = defaultDefaultFeeAmount

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("config: jwt secret required")
	}
	if strings.TrimSpace(c.Backend.URL) == "" {
		return errors.New("config: school backend url required")
	}
	if c.Fees.DefaultAmount <= 0 {
		return fmt.Errorf("config: default fee amount must be positive, got %d", c.Fees.DefaultAmount)
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = defaultPort
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// HTTPTimeout returns the timeout for calls to the school backend.
func (c *Config) HTTPTimeout() time.Duration {
	if c.Backend.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Backend.Timeout
}

// RedisEnabled reports whether the session selection should be persisted.
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.Redis.Addr) != ""
}

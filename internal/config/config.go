// Package config содержит логику чтения конфигурации бэк-офиса.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации бэк-офиса типографии.
type Config struct {
	RunAddress       string        `env:"RUN_ADDRESS"`
	DatabaseURI      string        `env:"DATABASE_URI"`
	StoreAPIAddress  string        `env:"STORE_API_ADDRESS"`
	AuthSecret       string        `env:"AUTH_SECRET"`
	FeedInterval     time.Duration `env:"FEED_INTERVAL"`
	RolloverInterval time.Duration `env:"ROLLOVER_INTERVAL"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных окружения.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envDatabaseURI := cfg.DatabaseURI
	envStoreAddress := cfg.StoreAPIAddress
	envAuthSecret := cfg.AuthSecret

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.DatabaseURI, "d", "", "database URI")
	flag.StringVar(&cfg.StoreAPIAddress, "r", "", "storefront order feed address")
	flag.StringVar(&cfg.AuthSecret, "s", "", "auth cookie secret")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envDatabaseURI != "" {
		cfg.DatabaseURI = envDatabaseURI
	}
	if envStoreAddress != "" {
		cfg.StoreAPIAddress = envStoreAddress
	}
	if envAuthSecret != "" {
		cfg.AuthSecret = envAuthSecret
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.FeedInterval <= 0 {
		cfg.FeedInterval = 5 * time.Second
	}
	if cfg.RolloverInterval <= 0 {
		cfg.RolloverInterval = time.Hour
	}

	return cfg, nil
}

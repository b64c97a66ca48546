// Package config reads the service configuration from the environment,
// loading a .env file first when one is present.
package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the runtime configuration of the timebank service.
type Config struct {
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	ServerRunAddress string `env:"SERVER_RUN_ADDRESS" envDefault:"0.0.0.0:8080"`
	DatabaseURI      string `env:"DATABASE_URI" envDefault:"host=db user=postgres password=password dbname=timebank sslmode=disable"`
	JWTSecret        string `env:"JWT_SECRET" envDefault:"timebank-secret"`
	// SweepSchedule is a cron expression for the posting-expiry sweep.
	SweepSchedule string `env:"SWEEP_SCHEDULE" envDefault:"@hourly"`
}

// Parse loads the .env file if present and parses the environment into a
// Config. Missing variables fall back to their defaults.
func Parse() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment values")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

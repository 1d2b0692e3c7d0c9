package utils

import (
	"fmt"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config is the process configuration, read from the environment after
// an optional .env file is loaded.
type Config struct {
	Port              string `env:"PORT" envDefault:"3000"`
	TwelveDataAPIKey  string `env:"TWELVEDATA_API_KEY"`
	TwelveDataBaseURL string `env:"TWELVEDATA_BASE_URL"`

	// WebhookAtomic switches webhook ingestion to all-or-nothing
	// batches instead of the default partial-application behavior.
	WebhookAtomic bool `env:"WEBHOOK_ATOMIC" envDefault:"false"`
}

func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}

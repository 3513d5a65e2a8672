package main

import (
	"github.com/caarlos0/env/v11"
)

// Config is everything the server reads from the environment. godotenv loads
// .env first in dev, so both paths end up here.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	NATSURL     string `env:"NATS_URL"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"false"`

	// AnniversaryDate anchors the days-together counter on the home screen.
	AnniversaryDate string `env:"ANNIVERSARY_DATE" envDefault:"2023-09-30"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

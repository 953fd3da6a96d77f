package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds process-level overrides.
type Env struct {
	DataDir  string `env:"FOLD_DATA_DIR" envDefault:"runs"`
	LogLevel string `env:"FOLD_LOG_LEVEL" envDefault:"info"`
	Workers  int    `env:"FOLD_WORKERS" envDefault:"1"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func LoadEnv() (Env, error) {
	var e Env
	if err := ParseEnv(&e); err != nil {
		return Env{}, err
	}
	return e, nil
}

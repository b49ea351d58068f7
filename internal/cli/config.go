package cli

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds defaults read from the environment. Flags override them.
type Config struct {
	Network string `env:"COUNTERSIM_NETWORK" envDefault:"undeployed"`
	DB      string `env:"COUNTERSIM_DB"`
	Format  string `env:"COUNTERSIM_FORMAT" envDefault:"text"`
	Verbose bool   `env:"COUNTERSIM_VERBOSE"`
}

// LoadConfig parses Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Package config loads the engine's tunable constants from a YAML
// file. Every empirically chosen number in the system lives here as a
// default that a deployment can override.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/pitchside/oddskit/pkg/edge"
	"github.com/pitchside/oddskit/pkg/rating"
)

// BankrollConfig holds the simulator's staking defaults.
type BankrollConfig struct {
	InitialBankroll float64       `yaml:"initial_bankroll" validate:"gt=0"`
	FlatUnit        float64       `yaml:"flat_unit" validate:"gt=0"`
	FlatPct         float64       `yaml:"flat_pct" validate:"gt=0,lt=1"`
	MinUnit         float64       `yaml:"min_unit" validate:"gt=0"`
	MaxUnit         float64       `yaml:"max_unit" validate:"gt=0"`
	KellyMultiplier float64       `yaml:"kelly_multiplier" validate:"gt=0,lte=1"`
	MaxStakePct     float64       `yaml:"max_stake_pct" validate:"gt=0,lte=1"`
	MinEdgePct      float64       `yaml:"min_edge_pct" validate:"gte=0"`
	Markets         []edge.Market `yaml:"markets"`
}

// Config is the full engine configuration.
type Config struct {
	Rating   rating.Params  `yaml:"rating"`
	Edge     edge.Config    `yaml:"edge"`
	Bankroll BankrollConfig `yaml:"bankroll"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Rating: rating.DefaultParams(),
		Edge:   *edge.DefaultConfig(),
		Bankroll: BankrollConfig{
			InitialBankroll: 1000,
			FlatUnit:        10,
			FlatPct:         0.02,
			MinUnit:         5,
			MaxUnit:         50,
			KellyMultiplier: 0.25,
			MaxStakePct:     0.05,
			MinEdgePct:      3.0,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks every field's constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Rating.DrawMin > c.Rating.DrawMax {
		return fmt.Errorf("rating: draw_min %.3f exceeds draw_max %.3f", c.Rating.DrawMin, c.Rating.DrawMax)
	}
	if c.Bankroll.MinUnit > c.Bankroll.MaxUnit {
		return fmt.Errorf("bankroll: min_unit %.2f exceeds max_unit %.2f", c.Bankroll.MinUnit, c.Bankroll.MaxUnit)
	}
	for _, m := range c.Bankroll.Markets {
		if !m.Valid() {
			return fmt.Errorf("bankroll: unknown market %q", m)
		}
	}
	return nil
}

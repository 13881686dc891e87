package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML): explicit path argument, else TRANSITFIT_CONFIG
//  3. env (prefix TRANSITFIT_)
func Load(path string) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path == "" {
		path = os.Getenv("TRANSITFIT_CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: TRANSITFIT_WALKERS, TRANSITFIT_LOG_LEVEL, ...
	// Keys keep their underscores to match the koanf tags on the struct.
	envProvider := env.Provider("TRANSITFIT_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "transitfit_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Width <= 0 {
		return fmt.Errorf("%w: width must be positive", ErrInvalidConfig)
	}
	if c.Walkers < 2 {
		return fmt.Errorf("%w: need at least 2 walkers", ErrInvalidConfig)
	}
	if c.Iters < 1 {
		return fmt.Errorf("%w: need at least 1 production iteration", ErrInvalidConfig)
	}
	if c.Burn < 0 {
		return fmt.Errorf("%w: burn must not be negative", ErrInvalidConfig)
	}
	for i, p := range c.Planets {
		if p.Period <= 0 {
			return fmt.Errorf("%w: planet %d period must be positive", ErrInvalidConfig, i)
		}
		if p.Duration <= 0 {
			return fmt.Errorf("%w: planet %d duration must be positive", ErrInvalidConfig, i)
		}
	}
	return nil
}

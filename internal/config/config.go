// Package config defines fitter configuration and its loading hooks.
//
// Conventions follow the rest of the project: defaults come from New, a
// YAML file and TRANSITFIT_-prefixed environment variables layer on top,
// and validation happens once at load time.
package config

import (
	"runtime"

	"github.com/SaeedTaghavi/transit-fitting/internal/domain/lightcurve"
	"github.com/SaeedTaghavi/transit-fitting/internal/domain/transit"
	"github.com/SaeedTaghavi/transit-fitting/internal/inference"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Width is the near-transit window half-width in transit durations.
	Width float64 `koanf:"width"`

	// ContinuumMethod selects the out-of-transit baseline strategy.
	ContinuumMethod string `koanf:"continuum_method"`

	// Walkers, Burn and Iters configure the ensemble sampler.
	Walkers int `koanf:"walkers"`
	Burn    int `koanf:"burn"`
	Iters   int `koanf:"iters"`

	// Workers bounds parallel walker evaluations during sampling.
	Workers int `koanf:"workers"`

	// Seed makes runs reproducible; zero draws a fresh seed.
	Seed int64 `koanf:"seed"`

	// Supersample is the per-cadence sample count for exposure smoothing.
	Supersample int `koanf:"supersample"`

	// Constants is the injected physical constant set.
	Constants Constants `koanf:"constants"`

	// Planets lists the transit candidates with their discovery
	// measurements and uncertainties.
	Planets []Planet `koanf:"planets"`
}

// Constants mirrors transit.Constants for configuration files.
type Constants struct {
	G    float64 `koanf:"g"`
	MSun float64 `koanf:"m_sun"`
	RSun float64 `koanf:"r_sun"`
	Day  float64 `koanf:"day"`
}

// Planet configures one transit candidate.
type Planet struct {
	Name      string  `koanf:"name"`
	Period    float64 `koanf:"period"`
	PeriodErr float64 `koanf:"period_err"`
	Epoch     float64 `koanf:"epoch"`
	EpochErr  float64 `koanf:"epoch_err"`
	Duration  float64 `koanf:"duration"`
}

// New creates a Config with defaults.
func New() *Config {
	c := transit.DefaultConstants()
	return &Config{
		LogLevel:        "info",
		Width:           2,
		ContinuumMethod: "constant",
		Walkers:         200,
		Burn:            10,
		Iters:           100,
		Workers:         runtime.NumCPU(),
		Supersample:     7,
		Constants: Constants{
			G:    c.G,
			MSun: c.MSun,
			RSun: c.RSun,
			Day:  c.Day,
		},
	}
}

// TransitConstants converts the configured constant block.
func (c *Config) TransitConstants() transit.Constants {
	return transit.Constants{
		G:    c.Constants.G,
		MSun: c.Constants.MSun,
		RSun: c.Constants.RSun,
		Day:  c.Constants.Day,
	}
}

// LightCurvePlanets converts the configured candidates.
func (c *Config) LightCurvePlanets() []lightcurve.Planet {
	out := make([]lightcurve.Planet, len(c.Planets))
	for i, p := range c.Planets {
		out[i] = lightcurve.Planet{
			Name:      p.Name,
			Period:    p.Period,
			PeriodErr: p.PeriodErr,
			Epoch:     p.Epoch,
			EpochErr:  p.EpochErr,
			Duration:  p.Duration,
		}
	}
	return out
}

// EngineOptions assembles inference options from the configuration.
func (c *Config) EngineOptions() []inference.Option {
	opts := []inference.Option{
		inference.WithWidth(c.Width),
		inference.WithContinuumMethod(c.ContinuumMethod),
		inference.WithWalkers(c.Walkers),
		inference.WithBurn(c.Burn),
		inference.WithIters(c.Iters),
		inference.WithWorkers(c.Workers),
		inference.WithConstants(c.TransitConstants()),
		inference.WithEvaluator(transit.NewQuadLimbDark(
			transit.WithConstants(c.TransitConstants()),
			transit.WithSupersample(c.Supersample),
		)),
	}
	if c.Seed != 0 {
		opts = append(opts, inference.WithSeed(c.Seed))
	}
	return opts
}

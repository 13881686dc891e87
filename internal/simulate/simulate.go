// Package simulate generates synthetic transit light curves for exercising
// the fitter end to end without real photometry.
package simulate

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"

	"github.com/SaeedTaghavi/transit-fitting/internal/domain/lightcurve"
)

// Default simulation constants.
const (
	defaultSpan    = 30.0 // days
	defaultCadence = 0.02 // days, ~30 min
	defaultNoise   = 1e-4 // relative flux
	defaultDepth   = 0.01 // fractional transit depth
	defaultSeed    = 42
)

// Planet is a transit candidate plus the injected depth.
type Planet struct {
	lightcurve.Planet
	Depth float64
}

// Option applies a configuration option to a Generator.
type Option func(*Generator)

// WithSpan sets the observation span in days.
func WithSpan(days float64) Option {
	return func(g *Generator) {
		if days > 0 {
			g.span = days
		}
	}
}

// WithCadence sets the time spacing in days.
func WithCadence(days float64) Option {
	return func(g *Generator) {
		if days > 0 {
			g.cadence = days
		}
	}
}

// WithNoise sets the white-noise level in relative flux.
func WithNoise(sigma float64) Option {
	return func(g *Generator) {
		if sigma >= 0 {
			g.noise = sigma
		}
	}
}

// WithSeed makes the generated noise reproducible.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // synthetic data
	}
}

// Generator produces synthetic light curves with box-shaped transits and
// white noise.
type Generator struct {
	span    float64
	cadence float64
	noise   float64
	rng     *rand.Rand
}

// New creates a Generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		span:    defaultSpan,
		cadence: defaultCadence,
		noise:   defaultNoise,
		rng:     rand.New(rand.NewSource(defaultSeed)), //nolint:gosec // synthetic data
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// LightCurve generates a light curve with the given candidates injected.
func (g *Generator) LightCurve(planets []Planet) (*lightcurve.LightCurve, error) {
	if len(planets) == 0 {
		return nil, fmt.Errorf("simulate: no planets to inject")
	}
	n := int(g.span/g.cadence) + 1
	times := make([]float64, n)
	flux := make([]float64, n)
	fluxErr := make([]float64, n)
	for i := 0; i < n; i++ {
		t := float64(i) * g.cadence
		f := 1.0
		for _, p := range planets {
			depth := p.Depth
			if depth == 0 {
				depth = defaultDepth
			}
			if inTransit(t, p.Planet) {
				f -= depth
			}
		}
		times[i] = t
		flux[i] = f + g.rng.NormFloat64()*g.noise
		fluxErr[i] = math.Max(g.noise, 1e-8)
	}

	lcPlanets := make([]lightcurve.Planet, len(planets))
	for i, p := range planets {
		lcPlanets[i] = p.Planet
	}
	return lightcurve.New(times, flux, fluxErr,
		lightcurve.WithPlanets(lcPlanets...),
		lightcurve.WithoutDetrend(),
	)
}

// inTransit applies the box window: within half a duration of a center.
func inTransit(t float64, p lightcurve.Planet) bool {
	m := math.Mod(t-p.Epoch+p.Period/2, p.Period)
	if m < 0 {
		m += p.Period
	}
	return math.Abs(m-p.Period/2) < p.Duration/2
}

// WriteCSV writes a light curve in the CSV layout FromCSV reads.
func WriteCSV(w io.Writer, lc *lightcurve.LightCurve) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "flux", "flux_err"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	times := lc.RawTime()
	flux := lc.RawFluxFull()
	fluxErr := lc.FluxErrFull()
	for i := range times {
		rec := []string{
			strconv.FormatFloat(times[i], 'g', -1, 64),
			strconv.FormatFloat(flux[i], 'g', -1, 64),
			strconv.FormatFloat(fluxErr[i], 'g', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

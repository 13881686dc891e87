// Package model builds the predicted flux sequence for a light curve from a
// flat parameter vector. This is the hot path of the fitter: during ensemble
// sampling Evaluate runs once per walker per step.
package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/SaeedTaghavi/transit-fitting/internal/domain/lightcurve"
	"github.com/SaeedTaghavi/transit-fitting/internal/domain/params"
	"github.com/SaeedTaghavi/transit-fitting/internal/domain/transit"
	"github.com/SaeedTaghavi/transit-fitting/pkg/metrics"
)

// Default model configuration constants.
const (
	// DefaultWidth is the near-transit window half-width in units of
	// transit duration.
	DefaultWidth = 2.0

	// ContinuumConstant identifies the constant baseline strategy.
	ContinuumConstant = "constant"
)

// ErrUnknownContinuum indicates an unrecognized continuum strategy name.
var ErrUnknownContinuum = errors.New("unknown continuum method")

// ContinuumFunc computes the out-of-transit baseline at the given times.
type ContinuumFunc func(level float64, t []float64) []float64

// constantContinuum applies a single level uniformly.
func constantContinuum(level float64, t []float64) []float64 {
	out := make([]float64, len(t))
	for i := range out {
		out[i] = level
	}
	return out
}

// continuumMethods maps strategy identifiers to implementations. Constant is
// the only strategy for now; the slot exists for non-constant baselines.
var continuumMethods = map[string]ContinuumFunc{
	ContinuumConstant: constantContinuum,
}

// Option applies a configuration option to a FluxModel.
type Option func(*FluxModel)

// WithWidth sets the near-transit window width in duration units.
func WithWidth(w float64) Option {
	return func(m *FluxModel) {
		if w > 0 {
			m.width = w
		}
	}
}

// WithContinuumMethod selects the continuum strategy by identifier.
func WithContinuumMethod(name string) Option {
	return func(m *FluxModel) {
		m.continuumMethod = name
	}
}

// WithEvaluator overrides the transit-physics capability.
func WithEvaluator(e transit.Evaluator) Option {
	return func(m *FluxModel) {
		m.eval = e
	}
}

// FluxModel evaluates the predicted flux for one light curve.
type FluxModel struct {
	lc   *lightcurve.LightCurve
	eval transit.Evaluator

	width           float64
	continuumMethod string
	continuum       ContinuumFunc
}

// New creates a FluxModel for the given light curve.
func New(lc *lightcurve.LightCurve, opts ...Option) (*FluxModel, error) {
	m := &FluxModel{
		lc:              lc,
		eval:            transit.NewQuadLimbDark(),
		width:           DefaultWidth,
		continuumMethod: ContinuumConstant,
	}
	for _, opt := range opts {
		opt(m)
	}
	fn, ok := continuumMethods[m.continuumMethod]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContinuum, m.continuumMethod)
	}
	m.continuum = fn
	return m, nil
}

// LightCurve returns the light curve the model is bound to.
func (m *FluxModel) LightCurve() *lightcurve.LightCurve { return m.lc }

// Width returns the near-transit window width in duration units.
func (m *FluxModel) Width() float64 { return m.width }

// ContinuumMethod returns the continuum strategy identifier.
func (m *FluxModel) ContinuumMethod() string { return m.continuumMethod }

// Dim returns the expected parameter vector length.
func (m *FluxModel) Dim() int { return params.Dim(m.lc.NPlanets()) }

// Evaluate computes the predicted flux at the light curve's unmasked times.
// The continuum fills the whole series; points near any candidate's transit
// window are overwritten with the transit-physics model, evaluated in one
// batch with the series' exposure time. Unphysical parameters propagate as
// transit.ErrInvalidParams.
func (m *FluxModel) Evaluate(v []float64) ([]float64, error) {
	if len(v) != m.Dim() {
		return nil, fmt.Errorf("%w: got %d, want %d", params.ErrDimension, len(v), m.Dim())
	}
	start := time.Now()
	defer func() {
		metrics.RecordEvaluationSeconds(time.Since(start).Seconds())
	}()
	metrics.RecordModelEvaluation()

	t := m.lc.Time()
	f := m.continuum(v[0], t)

	close := m.lc.AnyClose(m.width)
	nClose := 0
	for _, c := range close {
		if c {
			nClose++
		}
	}
	if nClose == 0 {
		return f, nil
	}

	closeTimes := make([]float64, 0, nClose)
	for i, c := range close {
		if c {
			closeTimes = append(closeTimes, t[i])
		}
	}

	tf, err := m.eval.EvaluateTransit(v[1:], closeTimes, m.lc.Texp())
	if err != nil {
		if errors.Is(err, transit.ErrInvalidParams) {
			metrics.RecordInvalidParameters()
		}
		return nil, err
	}

	j := 0
	for i, c := range close {
		if c {
			f[i] = tf[j]
			j++
		}
	}
	return f, nil
}

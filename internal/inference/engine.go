// Package inference computes the log-posterior of transit model parameters
// and drives local optimization and ensemble posterior sampling.
package inference

import (
	"math"

	"github.com/SaeedTaghavi/transit-fitting/internal/domain/lightcurve"
	"github.com/SaeedTaghavi/transit-fitting/internal/domain/params"
	"github.com/SaeedTaghavi/transit-fitting/internal/domain/samples"
	"github.com/SaeedTaghavi/transit-fitting/internal/domain/transit"
	"github.com/SaeedTaghavi/transit-fitting/internal/model"
	"github.com/SaeedTaghavi/transit-fitting/pkg/logger"
)

// Default sampling configuration constants.
const (
	defaultWalkers      = 200
	defaultBurn         = 10
	defaultIters        = 100
	defaultPerturbScale = 1e-3

	// Starting guesses for parameters the caller did not supply.
	defaultRhoStar = 1.41 // roughly solar bulk density, g/cm^3
	defaultQ       = 0.5
	defaultB       = 0.3
	defaultRpRs    = 0.02
)

// Option applies a configuration option to an Engine.
type Option func(*Engine)

// WithWidth sets the near-transit window width in duration units.
func WithWidth(w float64) Option {
	return func(e *Engine) {
		if w > 0 {
			e.width = w
		}
	}
}

// WithContinuumMethod selects the continuum strategy identifier.
func WithContinuumMethod(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.continuumMethod = name
		}
	}
}

// WithEvaluator overrides the transit-physics capability.
func WithEvaluator(ev transit.Evaluator) Option {
	return func(e *Engine) {
		e.evaluator = ev
	}
}

// WithConstants overrides the injected physical constants.
func WithConstants(c transit.Constants) Option {
	return func(e *Engine) {
		e.consts = c
	}
}

// WithWalkers sets the ensemble size.
func WithWalkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.walkers = n
		}
	}
}

// WithBurn sets the number of burn-in iterations.
func WithBurn(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.burn = n
		}
	}
}

// WithIters sets the number of production iterations.
func WithIters(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.iters = n
		}
	}
}

// WithWorkers bounds parallel walker evaluations during sampling.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithSeed seeds walker initialization and the sampler for reproducibility.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
		e.seeded = true
	}
}

// Engine evaluates prior, likelihood and posterior for one light curve's
// flux model and runs fits against them.
type Engine struct {
	fluxModel *model.FluxModel
	consts    transit.Constants

	width           float64
	continuumMethod string
	evaluator       transit.Evaluator

	walkers int
	burn    int
	iters   int
	workers int
	seed    int64
	seeded  bool

	// Fit results. Samples supersede the point estimate once sampling has
	// executed; the table is materialized lazily from the flat chain.
	bestFit     []float64
	flatChain   [][]float64
	sampleTable *samples.Table

	log logger.Logger
}

// New creates an Engine for the given light curve.
func New(lc *lightcurve.LightCurve, opts ...Option) (*Engine, error) {
	e := &Engine{
		consts:          transit.DefaultConstants(),
		width:           model.DefaultWidth,
		continuumMethod: model.ContinuumConstant,
		walkers:         defaultWalkers,
		burn:            defaultBurn,
		iters:           defaultIters,
		log:             logger.Named("inference"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.evaluator == nil {
		e.evaluator = transit.NewQuadLimbDark(transit.WithConstants(e.consts))
	}
	fm, err := model.New(lc,
		model.WithWidth(e.width),
		model.WithContinuumMethod(e.continuumMethod),
		model.WithEvaluator(e.evaluator),
	)
	if err != nil {
		return nil, err
	}
	e.fluxModel = fm
	return e, nil
}

// Model returns the underlying flux model.
func (e *Engine) Model() *model.FluxModel { return e.fluxModel }

// LightCurve returns the observed series under fit.
func (e *Engine) LightCurve() *lightcurve.LightCurve { return e.fluxModel.LightCurve() }

// Width returns the near-transit window width in duration units.
func (e *Engine) Width() float64 { return e.width }

// ContinuumMethod returns the continuum strategy identifier.
func (e *Engine) ContinuumMethod() string { return e.continuumMethod }

// Dim returns the parameter vector length for this light curve.
func (e *Engine) Dim() int { return e.fluxModel.Dim() }

// DefaultParams builds a reasonable starting record from the attached
// candidates' discovery measurements.
func (e *Engine) DefaultParams() params.Params {
	planets := e.LightCurve().Planets()
	p := params.Params{
		Star: params.Star{
			FluxZeroPoint: 1,
			RhoStar:       defaultRhoStar,
			Q1:            defaultQ,
			Q2:            defaultQ,
			Dilution:      0,
		},
		Planets: make([]params.PlanetParams, len(planets)),
	}
	for i, pl := range planets {
		p.Planets[i] = params.PlanetParams{
			Period: pl.Period,
			Epoch:  pl.Epoch,
			B:      defaultB,
			RpRs:   defaultRpRs,
			Ecc:    0,
			Omega:  0,
		}
	}
	return p
}

// LnPrior returns the log-prior of a parameter vector: -Inf for impossible
// parameters, otherwise the sum of the candidates' discovery-measurement
// Gaussian terms and a log-flat prior on each radius ratio.
func (e *Engine) LnPrior(v []float64) float64 {
	if len(v) != e.Dim() {
		return math.Inf(-1)
	}
	rho, q1, q2, dilution := v[1], v[2], v[3], v[4]
	if q1 < 0 || q1 > 1 || q2 < 0 || q2 > 1 {
		return math.Inf(-1)
	}
	if rho < 0 {
		return math.Inf(-1)
	}
	if dilution < 0 || dilution >= 1 {
		return math.Inf(-1)
	}

	planets := e.LightCurve().Planets()
	tot := 0.0
	for i, pl := range planets {
		o := params.StarDim + params.PlanetDim*i
		period, epoch, b, rprs, ecc, omega := v[o], v[o+1], v[o+2], v[o+3], v[o+4], v[o+5]

		if period <= 0 {
			return math.Inf(-1)
		}
		if ecc < 0 || ecc >= 1 {
			return math.Inf(-1)
		}
		if b < 0 {
			return math.Inf(-1)
		}
		if rprs <= 0 {
			return math.Inf(-1)
		}

		// Eccentricity-adjusted geometry: the orbit must be able to
		// produce a transit at all.
		factor := 1.0
		if ecc > 0 {
			factor = (1 + ecc*math.Sin(omega)) / (1 - ecc*ecc)
		}
		aR := transit.ScaledSemiMajorAxis(rho, period, e.consts)
		arg := b * factor / aR
		if math.IsNaN(arg) || arg > 1 {
			return math.Inf(-1)
		}

		// Gaussian priors on period and epoch from the discovery
		// measurements.
		if pl.PeriodErr > 0 {
			d := (period - pl.Period) / pl.PeriodErr
			tot += -0.5 * d * d
		}
		if pl.EpochErr > 0 {
			d := (epoch - pl.Epoch) / pl.EpochErr
			tot += -0.5 * d * d
		}

		// Log-flat prior on radius ratio.
		tot += -math.Log(rprs)
	}
	return tot
}

// LnLike returns the Gaussian log-likelihood of a parameter vector, or -Inf
// when the flux model signals invalid physical parameters.
func (e *Engine) LnLike(v []float64) float64 {
	predicted, err := e.fluxModel.Evaluate(v)
	if err != nil {
		return math.Inf(-1)
	}
	flux := e.LightCurve().Flux()
	fluxErr := e.LightCurve().FluxErr()
	sum := 0.0
	for i, m := range predicted {
		d := (m - flux[i]) / fluxErr[i]
		sum += d * d
	}
	return -0.5 * sum
}

// LnPost returns the log-posterior. The likelihood is never evaluated when
// the prior is non-finite; it is far more expensive and meaningless for
// invalid geometry.
func (e *Engine) LnPost(v []float64) float64 {
	prior := e.LnPrior(v)
	if math.IsInf(prior, 0) || math.IsNaN(prior) {
		return math.Inf(-1)
	}
	return prior + e.LnLike(v)
}

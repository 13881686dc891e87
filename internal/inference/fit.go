package inference

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/optimize"

	"github.com/SaeedTaghavi/transit-fitting/internal/domain/params"
	"github.com/SaeedTaghavi/transit-fitting/internal/inference/ensemble"
	"github.com/SaeedTaghavi/transit-fitting/pkg/logger"
	"github.com/SaeedTaghavi/transit-fitting/pkg/metrics"
)

// FitLocal minimizes the negative log-posterior from p0 with a
// derivative-free simplex method and stores the best vector. The objective
// has hard -Inf walls from the prior, so gradient-based methods are not
// usable here.
func (e *Engine) FitLocal(ctx context.Context, p0 []float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(p0) != e.Dim() {
		return nil, fmt.Errorf("%w: got %d, want %d", params.ErrDimension, len(p0), e.Dim())
	}
	if math.IsInf(e.LnPost(p0), 0) {
		return nil, ErrBadStart
	}

	// The simplex still probes outside the prior's support; those points get
	// a large finite cost instead of +Inf so the method can contract away.
	const wallCost = 1e30
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			lp := e.LnPost(x)
			if math.IsInf(lp, -1) || math.IsNaN(lp) {
				return wallCost
			}
			return -lp
		},
	}
	result, err := optimize.Minimize(problem, p0, nil, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("local optimization: %w", err)
	}

	e.bestFit = append([]float64(nil), result.X...)
	e.log.Info(ctx, "local fit finished",
		logger.Float64("neg_lnpost", result.F),
		logger.Int("evaluations", result.FuncEvaluations),
	)
	return append([]float64(nil), e.bestFit...), nil
}

// BestFit returns the point estimate from the last FitLocal run.
func (e *Engine) BestFit() ([]float64, error) {
	if e.bestFit == nil {
		return nil, ErrNoFit
	}
	return append([]float64(nil), e.bestFit...), nil
}

// Sample runs ensemble posterior sampling from p0 (DefaultParams when nil):
// walkers start from small Gaussian perturbations of p0, a burn-in phase
// runs and is discarded, and the production chain is retained as the draw
// history. Walker log-posterior evaluations run in parallel up to the
// configured worker width.
func (e *Engine) Sample(ctx context.Context, p0 []float64) error {
	if p0 == nil {
		p0 = e.DefaultParams().Vector()
	}
	if len(p0) != e.Dim() {
		return fmt.Errorf("%w: got %d, want %d", params.ErrDimension, len(p0), e.Dim())
	}

	seed := e.seed
	if !e.seeded {
		seed = rand.Int63() //nolint:gosec // statistical sampling, not crypto
	}
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // statistical sampling, not crypto

	walkers := e.walkers
	if walkers < 2*e.Dim() {
		walkers = 2 * e.Dim()
	}
	if walkers%2 != 0 {
		walkers++
	}

	runID := uuid.New().String()
	e.log.Info(ctx, "starting ensemble sampling",
		logger.String("run_id", runID),
		logger.Int("walkers", walkers),
		logger.Int("burn", e.burn),
		logger.Int("iters", e.iters),
		logger.Int("dim", e.Dim()),
	)
	metrics.UpdateWalkerCount(walkers)

	start := e.initWalkers(rng, p0, walkers)

	opts := []ensemble.Option{ensemble.WithSeed(rng.Int63())}
	if e.workers > 0 {
		opts = append(opts, ensemble.WithWorkers(e.workers))
	}
	sampler, err := ensemble.New(walkers, e.Dim(), e.LnPost, opts...)
	if err != nil {
		return fmt.Errorf("build sampler: %w", err)
	}
	if err := sampler.Init(start); err != nil {
		return fmt.Errorf("init walkers: %w", err)
	}

	if err := sampler.Run(ctx, e.burn); err != nil {
		return fmt.Errorf("burn-in: %w", err)
	}
	metrics.RecordSamplerSteps(e.burn)
	sampler.Reset()

	if err := sampler.Run(ctx, e.iters); err != nil {
		return fmt.Errorf("production run: %w", err)
	}
	metrics.RecordSamplerSteps(e.iters)
	metrics.UpdateAcceptanceFraction(sampler.AcceptanceFraction())

	e.flatChain = sampler.FlatChain()
	e.sampleTable = nil // invalidate the lazy table for the new run
	e.log.Info(ctx, "sampling finished",
		logger.String("run_id", runID),
		logger.Int("draws", len(e.flatChain)),
		logger.Float64("acceptance", sampler.AcceptanceFraction()),
	)
	return nil
}

// initWalkers perturbs p0 with small Gaussian noise per dimension and folds
// each coordinate back into its prior-valid range. Reflection replaces the
// historical absolute-value trick, which corrupted legitimately negative
// parameters such as the argument of periastron.
func (e *Engine) initWalkers(rng *rand.Rand, p0 []float64, walkers int) [][]float64 {
	bounds := e.paramBounds()
	start := make([][]float64, walkers)
	for w := 0; w < walkers; w++ {
		x := make([]float64, len(p0))
		for d := range p0 {
			x[d] = reflect(p0[d]+rng.NormFloat64()*defaultPerturbScale, bounds[d])
		}
		start[w] = x
	}
	return start
}

// bound is a per-parameter valid interval; NaN endpoints mean unbounded.
type bound struct {
	lo, hi float64
}

// paramBounds derives per-parameter intervals from the prior's support.
func (e *Engine) paramBounds() []bound {
	free := bound{lo: math.NaN(), hi: math.NaN()}
	nonNeg := bound{lo: 0, hi: math.NaN()}
	unit := bound{lo: 0, hi: 1}

	// flux_zp free; rho >= 0; q1,q2 in [0,1]; dilution in [0,1).
	bounds := []bound{free, nonNeg, unit, unit, unit}
	for i := 0; i < e.LightCurve().NPlanets(); i++ {
		bounds = append(bounds,
			nonNeg, // period
			free,   // epoch
			nonNeg, // b
			nonNeg, // rprs
			unit,   // ecc
			free,   // omega: a signed angle, must not be folded
		)
	}
	return bounds
}

// reflect folds x back into [lo, hi] by mirroring at the crossed endpoint.
func reflect(x float64, b bound) float64 {
	if !math.IsNaN(b.lo) && x < b.lo {
		x = 2*b.lo - x
	}
	if !math.IsNaN(b.hi) && x > b.hi {
		x = 2*b.hi - x
	}
	return x
}

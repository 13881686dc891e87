// Package ensemble implements affine-invariant ensemble sampling with the
// Goodman & Weare stretch move. Walkers are updated in two halves so that
// proposals within a half are independent and their log-probability
// evaluations can run in parallel.
package ensemble

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Default sampler configuration constants.
const (
	defaultStretch = 2.0
	minWalkers     = 4
)

// Sentinel kinds for sampler errors.
var (
	ErrBadEnsemble    = errors.New("invalid ensemble configuration")
	ErrNotInitialized = errors.New("ensemble not initialized")
)

// LogProbFunc evaluates the log-probability of one position. Implementations
// must be side-effect-free: evaluations for different walkers run
// concurrently.
type LogProbFunc func(x []float64) float64

// Option applies a configuration option to a Sampler.
type Option func(*Sampler)

// WithWorkers bounds the number of concurrent log-probability evaluations.
// Defaults to runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(s *Sampler) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithSeed seeds the sampler's random source for reproducible runs.
func WithSeed(seed int64) Option {
	return func(s *Sampler) {
		s.rng = rand.New(rand.NewSource(seed))
	}
}

// WithStretch sets the stretch-move scale parameter a.
func WithStretch(a float64) Option {
	return func(s *Sampler) {
		if a > 1 {
			s.stretch = a
		}
	}
}

// Sampler advances an ensemble of walkers through stretch moves and records
// the draw history.
type Sampler struct {
	nWalkers int
	dim      int
	logProb  LogProbFunc

	workers int
	stretch float64
	rng     *rand.Rand

	pos [][]float64 // current walker positions
	lnp []float64   // current walker log-probabilities

	chain    [][]float64 // flattened draw history
	accepted int
	proposed int
}

// New creates a Sampler. nWalkers must be even and at least max(4, 2*dim) so
// each half can propose against the other.
func New(nWalkers, dim int, logProb LogProbFunc, opts ...Option) (*Sampler, error) {
	if dim < 1 {
		return nil, fmt.Errorf("%w: dim=%d", ErrBadEnsemble, dim)
	}
	if nWalkers < minWalkers || nWalkers%2 != 0 || nWalkers < 2*dim {
		return nil, fmt.Errorf("%w: nwalkers=%d for dim=%d", ErrBadEnsemble, nWalkers, dim)
	}
	if logProb == nil {
		return nil, fmt.Errorf("%w: nil log-probability", ErrBadEnsemble)
	}
	s := &Sampler{
		nWalkers: nWalkers,
		dim:      dim,
		logProb:  logProb,
		workers:  runtime.NumCPU(),
		stretch:  defaultStretch,
		rng:      rand.New(rand.NewSource(rand.Int63())), //nolint:gosec // statistical sampling, not crypto
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Init sets the walker starting positions and evaluates their
// log-probabilities.
func (s *Sampler) Init(pos [][]float64) error {
	if len(pos) != s.nWalkers {
		return fmt.Errorf("%w: %d positions for %d walkers", ErrBadEnsemble, len(pos), s.nWalkers)
	}
	for i, p := range pos {
		if len(p) != s.dim {
			return fmt.Errorf("%w: position %d has dim %d, want %d", ErrBadEnsemble, i, len(p), s.dim)
		}
	}
	s.pos = make([][]float64, s.nWalkers)
	for i, p := range pos {
		s.pos[i] = append([]float64(nil), p...)
	}
	s.lnp = make([]float64, s.nWalkers)
	s.evalBatch(s.pos, s.lnp)
	return nil
}

// Run advances the ensemble by steps iterations, recording every walker
// position after each step.
func (s *Sampler) Run(ctx context.Context, steps int) error {
	if s.pos == nil {
		return ErrNotInitialized
	}
	for step := 0; step < steps; step++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.advanceHalf(0)
		s.advanceHalf(1)
		for _, p := range s.pos {
			s.chain = append(s.chain, append([]float64(nil), p...))
		}
	}
	return nil
}

// advanceHalf proposes stretch moves for one half of the ensemble against
// the other. Random draws happen serially; only the log-probability
// evaluations run in parallel.
func (s *Sampler) advanceHalf(half int) {
	n := s.nWalkers / 2
	base := half * n
	otherBase := (1 - half) * n

	proposals := make([][]float64, n)
	zs := make([]float64, n)
	accepts := make([]float64, n)
	for i := 0; i < n; i++ {
		k := base + i
		j := otherBase + s.rng.Intn(n)

		// z ~ g(z) with g(z) ∝ 1/sqrt(z) on [1/a, a].
		u := s.rng.Float64()
		z := (u*(s.stretch-1) + 1)
		z = z * z / s.stretch
		zs[i] = z

		y := make([]float64, s.dim)
		for d := 0; d < s.dim; d++ {
			y[d] = s.pos[j][d] + z*(s.pos[k][d]-s.pos[j][d])
		}
		proposals[i] = y
		accepts[i] = s.rng.Float64()
	}

	lnps := make([]float64, n)
	s.evalBatch(proposals, lnps)

	for i := 0; i < n; i++ {
		k := base + i
		s.proposed++
		lnq := float64(s.dim-1)*math.Log(zs[i]) + lnps[i] - s.lnp[k]
		if math.Log(accepts[i]) < lnq {
			s.pos[k] = proposals[i]
			s.lnp[k] = lnps[i]
			s.accepted++
		}
	}
}

// evalBatch evaluates log-probabilities for all positions with bounded
// parallelism.
func (s *Sampler) evalBatch(pos [][]float64, out []float64) {
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i := range pos {
		i := i
		g.Go(func() error {
			out[i] = s.logProb(pos[i])
			return nil
		})
	}
	_ = g.Wait() // evaluations never return errors
}

// Reset discards the draw history and acceptance counters while keeping the
// current walker state, as done between burn-in and production.
func (s *Sampler) Reset() {
	s.chain = nil
	s.accepted = 0
	s.proposed = 0
}

// FlatChain returns the flattened draw history: one row per walker per step.
func (s *Sampler) FlatChain() [][]float64 { return s.chain }

// AcceptanceFraction returns the fraction of proposals accepted since the
// last Reset.
func (s *Sampler) AcceptanceFraction() float64 {
	if s.proposed == 0 {
		return 0
	}
	return float64(s.accepted) / float64(s.proposed)
}

// Positions returns a copy of the current walker positions.
func (s *Sampler) Positions() [][]float64 {
	out := make([][]float64, len(s.pos))
	for i, p := range s.pos {
		out[i] = append([]float64(nil), p...)
	}
	return out
}

// Package lightcurve holds observed photometric time series and the transit
// candidates attached to them.
package lightcurve

import (
	"math"
	"sort"
)

// Default construction constants.
const (
	defaultFluxErr       = 1e-4
	defaultDetrendWindow = 75
)

// Option applies a configuration option to a LightCurve under construction.
type Option func(*LightCurve)

// WithMask sets the validity mask (true = excluded). Defaults to masking
// non-finite flux values.
func WithMask(mask []bool) Option {
	return func(lc *LightCurve) {
		lc.mask = append([]bool(nil), mask...)
	}
}

// WithTexp sets the exposure time. Defaults to the median time spacing.
func WithTexp(texp float64) Option {
	return func(lc *LightCurve) {
		if texp > 0 {
			lc.texp = texp
		}
	}
}

// WithPlanets attaches transit candidates.
func WithPlanets(planets ...Planet) Option {
	return func(lc *LightCurve) {
		lc.planets = append(lc.planets, planets...)
	}
}

// WithoutDetrend skips median detrending; detrended flux equals raw flux.
func WithoutDetrend() Option {
	return func(lc *LightCurve) {
		lc.detrend = false
	}
}

// WithDetrendWindow sets the rolling-median window used for detrending.
func WithDetrendWindow(n int) Option {
	return func(lc *LightCurve) {
		if n > 0 {
			lc.window = n
		}
	}
}

// LightCurve holds an observed time/flux/error series, a validity mask, an
// exposure time, and the transit candidates under consideration. The raw
// arrays and the mask are fixed at construction; public accessors return
// only the unmasked subset.
type LightCurve struct {
	time      []float64
	rawFlux   []float64
	fluxErr   []float64
	detrended []float64
	mask      []bool

	texp    float64
	planets []Planet

	detrend bool
	window  int
}

// New builds a LightCurve from equal-length series. fluxErr may be nil, in
// which case a uniform default uncertainty is assumed.
func New(time, flux, fluxErr []float64, opts ...Option) (*LightCurve, error) {
	if len(time) == 0 {
		return nil, ErrNoData
	}
	if len(flux) != len(time) {
		return nil, ErrLengthMismatch
	}
	if fluxErr == nil {
		fluxErr = make([]float64, len(time))
		for i := range fluxErr {
			fluxErr[i] = defaultFluxErr
		}
	}
	if len(fluxErr) != len(time) {
		return nil, ErrLengthMismatch
	}

	lc := &LightCurve{
		time:    append([]float64(nil), time...),
		rawFlux: append([]float64(nil), flux...),
		fluxErr: append([]float64(nil), fluxErr...),
		detrend: true,
		window:  defaultDetrendWindow,
	}
	for _, opt := range opts {
		opt(lc)
	}

	if lc.mask == nil {
		lc.mask = make([]bool, len(time))
		for i, f := range flux {
			lc.mask[i] = !isFinite(f)
		}
	}
	if len(lc.mask) != len(time) {
		return nil, ErrLengthMismatch
	}

	if lc.texp == 0 {
		lc.texp = medianSpacing(lc.time)
	}

	if lc.detrend {
		lc.detrended = lc.medianDetrend(lc.window)
	} else {
		lc.detrended = append([]float64(nil), lc.rawFlux...)
	}
	return lc, nil
}

// medianDetrend divides the raw flux by a centered rolling median computed
// with in-transit points excluded.
func (lc *LightCurve) medianDetrend(window int) []float64 {
	n := len(lc.rawFlux)
	work := make([]float64, n)
	copy(work, lc.rawFlux)

	inTransit := lc.anyInTransitFull()
	for i := range work {
		if inTransit[i] {
			work[i] = math.NaN()
		}
	}

	out := make([]float64, n)
	half := window / 2
	buf := make([]float64, 0, window)
	for i := 0; i < n; i++ {
		lo, hi := i-half, i+half
		if lo < 0 {
			lo = 0
		}
		if hi >= n {
			hi = n - 1
		}
		buf = buf[:0]
		for j := lo; j <= hi; j++ {
			if isFinite(work[j]) {
				buf = append(buf, work[j])
			}
		}
		med := median(buf)
		if med == 0 || !isFinite(med) {
			// No valid neighbors in the window; leave the point untrended.
			out[i] = lc.rawFlux[i]
			continue
		}
		out[i] = lc.rawFlux[i] / med
	}
	return out
}

// anyInTransitFull evaluates the in-transit union over the full, unmasked
// time array; detrending needs it before masking applies.
func (lc *LightCurve) anyInTransitFull() []bool {
	out := make([]bool, len(lc.time))
	for _, p := range lc.planets {
		for i, in := range p.InTransit(lc.time) {
			out[i] = out[i] || in
		}
	}
	return out
}

func (lc *LightCurve) masked(src []float64) []float64 {
	out := make([]float64, 0, len(src))
	for i, v := range src {
		if !lc.mask[i] {
			out = append(out, v)
		}
	}
	return out
}

// Time returns the unmasked observation times.
func (lc *LightCurve) Time() []float64 { return lc.masked(lc.time) }

// Flux returns the unmasked detrended flux.
func (lc *LightCurve) Flux() []float64 { return lc.masked(lc.detrended) }

// RawFlux returns the unmasked raw flux.
func (lc *LightCurve) RawFlux() []float64 { return lc.masked(lc.rawFlux) }

// FluxErr returns the unmasked flux uncertainties.
func (lc *LightCurve) FluxErr() []float64 { return lc.masked(lc.fluxErr) }

// Mask returns a copy of the validity mask over the full series.
func (lc *LightCurve) Mask() []bool { return append([]bool(nil), lc.mask...) }

// RawTime returns the full time array including masked points.
func (lc *LightCurve) RawTime() []float64 { return append([]float64(nil), lc.time...) }

// RawFluxFull returns the full raw flux array including masked points.
func (lc *LightCurve) RawFluxFull() []float64 { return append([]float64(nil), lc.rawFlux...) }

// DetrendedFull returns the full detrended flux array including masked points.
func (lc *LightCurve) DetrendedFull() []float64 { return append([]float64(nil), lc.detrended...) }

// FluxErrFull returns the full flux uncertainty array including masked points.
func (lc *LightCurve) FluxErrFull() []float64 { return append([]float64(nil), lc.fluxErr...) }

// Texp returns the exposure time.
func (lc *LightCurve) Texp() float64 { return lc.texp }

// Planets returns the attached transit candidates.
func (lc *LightCurve) Planets() []Planet { return append([]Planet(nil), lc.planets...) }

// NPlanets returns the number of transit candidates.
func (lc *LightCurve) NPlanets() int { return len(lc.planets) }

// AddPlanet attaches another transit candidate.
func (lc *LightCurve) AddPlanet(p Planet) { lc.planets = append(lc.planets, p) }

// FoldedTime returns unmasked times folded on candidate i.
func (lc *LightCurve) FoldedTime(i int) []float64 {
	return lc.planets[i].FoldedTime(lc.Time())
}

// Close returns, for the unmasked times, whether each point is within width
// durations of a transit of candidate i.
func (lc *LightCurve) Close(i int, width float64) []bool {
	return lc.planets[i].Close(lc.Time(), width)
}

// InTransit returns the in-transit predicate for candidate i over the
// unmasked times.
func (lc *LightCurve) InTransit(i int) []bool {
	return lc.planets[i].InTransit(lc.Time())
}

// AnyClose returns the union of near-transit windows across all candidates.
func (lc *LightCurve) AnyClose(width float64) []bool {
	t := lc.Time()
	out := make([]bool, len(t))
	for _, p := range lc.planets {
		for i, c := range p.Close(t, width) {
			out[i] = out[i] || c
		}
	}
	return out
}

// AnyInTransit returns the union of in-transit windows across all candidates.
func (lc *LightCurve) AnyInTransit() []bool {
	t := lc.Time()
	out := make([]bool, len(t))
	for _, p := range lc.planets {
		for i, in := range p.InTransit(t) {
			out[i] = out[i] || in
		}
	}
	return out
}

// NTransits returns, per candidate, how many transits the observed time span
// covers.
func (lc *LightCurve) NTransits() []int {
	t := lc.Time()
	if len(t) == 0 {
		return make([]int, len(lc.planets))
	}
	span := t[len(t)-1] - t[0]
	out := make([]int, len(lc.planets))
	for i, p := range lc.planets {
		out[i] = int(span/p.Period) + 1
	}
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

func medianSpacing(t []float64) float64 {
	if len(t) < 2 {
		return 0
	}
	d := make([]float64, len(t)-1)
	for i := 1; i < len(t); i++ {
		d[i-1] = t[i] - t[i-1]
	}
	return median(d)
}

package transit

import (
	"fmt"
	"math"
)

// Default evaluator configuration constants.
const (
	defaultSupersample = 7
	starDim            = 4
	planetDim          = 6
)

// Option applies a configuration option to QuadLimbDark.
type Option func(*QuadLimbDark)

// WithSupersample sets the number of sub-exposure samples averaged per
// cadence. Values below 1 disable supersampling.
func WithSupersample(n int) Option {
	return func(e *QuadLimbDark) {
		e.supersample = n
	}
}

// WithConstants overrides the physical constant set.
func WithConstants(c Constants) Option {
	return func(e *QuadLimbDark) {
		e.consts = c
	}
}

// QuadLimbDark implements Evaluator with a quadratic limb-darkened
// small-planet occultation model. Limb darkening is parameterized with the
// Kipping q1/q2 triangular sampling form; eccentric orbits scale the
// star-planet separation at transit by (1-e^2)/(1+e*sin(omega)).
type QuadLimbDark struct {
	supersample int
	consts      Constants
}

// NewQuadLimbDark creates the built-in transit evaluator.
func NewQuadLimbDark(opts ...Option) *QuadLimbDark {
	e := &QuadLimbDark{
		supersample: defaultSupersample,
		consts:      DefaultConstants(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// orbitParams is the decoded per-call parameter set.
type orbitParams struct {
	rho, u1, u2, dilution float64
	planets               []planetOrbit
}

type planetOrbit struct {
	period, epoch, b, rprs float64
	aR                     float64 // effective scaled semi-major axis at transit
}

// EvaluateTransit computes relative flux at the given times.
func (e *QuadLimbDark) EvaluateTransit(orbit []float64, times []float64, texp float64) ([]float64, error) {
	op, err := e.decode(orbit)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(times))
	n := e.supersample
	if n < 1 || texp <= 0 {
		n = 1
	}
	for i, t := range times {
		if n == 1 {
			out[i] = e.fluxAt(op, t)
			continue
		}
		sum := 0.0
		for j := 0; j < n; j++ {
			// Offsets span the exposure, centered on t.
			dt := texp * (float64(j)/float64(n-1) - 0.5)
			sum += e.fluxAt(op, t+dt)
		}
		out[i] = sum / float64(n)
	}
	return out, nil
}

func (e *QuadLimbDark) decode(orbit []float64) (orbitParams, error) {
	if len(orbit) < starDim || (len(orbit)-starDim)%planetDim != 0 {
		return orbitParams{}, fmt.Errorf("%w: orbit slice length %d", ErrInvalidParams, len(orbit))
	}
	rho, q1, q2, dilution := orbit[0], orbit[1], orbit[2], orbit[3]
	if rho <= 0 {
		return orbitParams{}, fmt.Errorf("%w: rho=%g", ErrInvalidParams, rho)
	}
	if q1 < 0 || q1 > 1 || q2 < 0 || q2 > 1 {
		return orbitParams{}, fmt.Errorf("%w: q1=%g q2=%g", ErrInvalidParams, q1, q2)
	}
	if dilution < 0 || dilution >= 1 {
		return orbitParams{}, fmt.Errorf("%w: dilution=%g", ErrInvalidParams, dilution)
	}

	sq1 := math.Sqrt(q1)
	op := orbitParams{
		rho:      rho,
		u1:       2 * sq1 * q2,
		u2:       sq1 * (1 - 2*q2),
		dilution: dilution,
	}
	nPlanets := (len(orbit) - starDim) / planetDim
	for i := 0; i < nPlanets; i++ {
		o := starDim + planetDim*i
		period, epoch, b, rprs, ecc, omega := orbit[o], orbit[o+1], orbit[o+2], orbit[o+3], orbit[o+4], orbit[o+5]
		if period <= 0 {
			return orbitParams{}, fmt.Errorf("%w: period=%g", ErrInvalidParams, period)
		}
		if ecc < 0 || ecc >= 1 {
			return orbitParams{}, fmt.Errorf("%w: ecc=%g", ErrInvalidParams, ecc)
		}
		if b < 0 {
			return orbitParams{}, fmt.Errorf("%w: b=%g", ErrInvalidParams, b)
		}
		if rprs <= 0 {
			return orbitParams{}, fmt.Errorf("%w: rprs=%g", ErrInvalidParams, rprs)
		}

		aR := ScaledSemiMajorAxis(rho, period, e.consts)
		if ecc > 0 {
			aR *= (1 - ecc*ecc) / (1 + ecc*math.Sin(omega))
		}
		if aR <= 1 {
			// Orbit inside the star.
			return orbitParams{}, fmt.Errorf("%w: a/R*=%g", ErrInvalidParams, aR)
		}
		if b >= aR {
			return orbitParams{}, fmt.Errorf("%w: b=%g exceeds a/R*=%g", ErrInvalidParams, b, aR)
		}
		op.planets = append(op.planets, planetOrbit{
			period: period, epoch: epoch, b: b, rprs: rprs, aR: aR,
		})
	}
	return op, nil
}

// fluxAt evaluates the combined relative flux of all candidates at one time.
func (e *QuadLimbDark) fluxAt(op orbitParams, t float64) float64 {
	drop := 0.0
	for _, pl := range op.planets {
		phase := math.Mod(t-pl.epoch+pl.period/2, pl.period)
		if phase < 0 {
			phase += pl.period
		}
		theta := 2 * math.Pi * (phase/pl.period - 0.5)
		if math.Cos(theta) < 0 {
			// Planet behind the star; no transit at this phase.
			continue
		}
		sin, cos := math.Sin(theta), math.Cos(theta)
		z := pl.aR * math.Sqrt(sin*sin+(pl.b/pl.aR)*(pl.b/pl.aR)*cos*cos)
		drop += e.occultDrop(op.u1, op.u2, pl.rprs, z)
	}
	f := 1 - drop
	if op.dilution > 0 {
		f = (1-op.dilution)*f + op.dilution
	}
	return f
}

// occultDrop returns the fractional flux lost to a planet of radius ratio k
// at projected separation z, using the small-planet approximation with the
// local limb-darkened intensity.
func (e *QuadLimbDark) occultDrop(u1, u2, k, z float64) float64 {
	if z >= 1+k {
		return 0
	}
	// Disk-averaged intensity normalization for quadratic limb darkening.
	norm := 1 - u1/3 - u2/6

	zc := math.Min(z, 1)
	mu := math.Sqrt(1 - zc*zc)
	intensity := 1 - u1*(1-mu) - u2*(1-mu)*(1-mu)

	var area float64
	switch {
	case z <= 1-k:
		area = k * k
	default:
		// Partial overlap: lens area of circles with radii 1 and k.
		kap1 := math.Acos(clamp((1-k*k+z*z)/(2*z), -1, 1))
		kap0 := math.Acos(clamp((k*k+z*z-1)/(2*k*z), -1, 1))
		under := 4*z*z - (1+z*z-k*k)*(1+z*z-k*k)
		if under < 0 {
			under = 0
		}
		area = (k*k*kap0 + kap1 - 0.5*math.Sqrt(under)) / math.Pi
	}
	return area * intensity / norm
}

// ScaledSemiMajorAxis derives a/R* from stellar density and period via
// Kepler's third law.
func ScaledSemiMajorAxis(rho, period float64, c Constants) float64 {
	ps := period * c.Day
	return math.Cbrt(rho * c.G * ps * ps / (3 * math.Pi))
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Package transit defines the transit-physics capability used by the flux
// model: a pure function from orbital parameters and times to relative flux.
//
// The flux model and the inference engine depend only on the Evaluator
// interface; QuadLimbDark is the built-in implementation and can be swapped
// for a higher-fidelity integrator.
package transit

import "errors"

// ErrInvalidParams marks unphysical geometry. Callers convert it into a
// zero-probability outcome; it must never escape the likelihood boundary.
var ErrInvalidParams = errors.New("invalid physical parameters")

// Evaluator computes relative flux at the given times for one orbital
// parameter slice. The slice layout matches the model parameter vector with
// the flux zero-point stripped:
//
//	orbit[0:4]          = [rho, q1, q2, dilution]
//	orbit[4+6i : 10+6i] = [period, epoch, b, rprs, ecc, omega]
//
// texp is the exposure time used for supersampling; zero disables it.
type Evaluator interface {
	EvaluateTransit(orbit []float64, times []float64, texp float64) ([]float64, error)
}

// Constants holds the physical constants the fitter depends on, in cgs
// units except Day. Injected rather than ambient so engines are testable
// with controlled values.
type Constants struct {
	G    float64 // gravitational constant, cm^3 g^-1 s^-2
	MSun float64 // solar mass, g
	RSun float64 // solar radius, cm
	Day  float64 // seconds per day
}

// DefaultConstants returns the standard constant set.
func DefaultConstants() Constants {
	return Constants{
		G:    6.67430e-8,
		MSun: 1.98892e33,
		RSun: 6.957e10,
		Day:  86400,
	}
}

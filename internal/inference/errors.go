package inference

import "errors"

// Sentinel kinds for inference errors.
var (
	// ErrNoSamples is returned when posterior samples are requested before
	// any sampling run or load has happened.
	ErrNoSamples = errors.New("no posterior samples: run Sample or load a saved fit first")

	// ErrNoFit is returned when the point estimate is requested before
	// FitLocal has run.
	ErrNoFit = errors.New("no point estimate: run FitLocal first")

	// ErrBadStart marks a starting vector with non-finite log-posterior.
	ErrBadStart = errors.New("starting vector has non-finite log-posterior")
)

package lightcurve

import "errors"

// Sentinel kinds for light-curve construction and ingestion errors.
var (
	ErrLengthMismatch = errors.New("time, flux and flux_err lengths differ")
	ErrNoData         = errors.New("light curve has no data points")
	ErrBadRecord      = errors.New("malformed light curve record")
)

package lightcurve

import "math"

// Default in-transit window width in units of transit duration.
const defaultInTransitWidth = 0.55

// Planet describes one transit candidate: an orbital period, a reference
// epoch, and a transit duration. Period and epoch carry the uncertainties of
// the discovery measurement, used as Gaussian priors during fitting.
type Planet struct {
	Name      string
	Period    float64 // days, > 0
	PeriodErr float64 // discovery-measurement uncertainty on Period
	Epoch     float64 // time of a reference transit center
	EpochErr  float64 // discovery-measurement uncertainty on Epoch
	Duration  float64 // transit duration in days, > 0
}

// FoldedTime maps absolute times to time-since-nearest-transit using the
// candidate's period and epoch. Results lie in [-P/2, P/2).
func (p Planet) FoldedTime(t []float64) []float64 {
	out := make([]float64, len(t))
	for i, ti := range t {
		out[i] = foldOne(ti, p.Period, p.Epoch)
	}
	return out
}

func foldOne(t, period, epoch float64) float64 {
	m := math.Mod(t-epoch+period/2, period)
	if m < 0 {
		m += period
	}
	return m - period/2
}

// Close reports, per time, whether it falls within width transit durations
// of a transit center.
func (p Planet) Close(t []float64, width float64) []bool {
	out := make([]bool, len(t))
	for i, ti := range t {
		out[i] = math.Abs(foldOne(ti, p.Period, p.Epoch)) < width*p.Duration
	}
	return out
}

// InTransit reports, per time, whether it falls inside the transit itself
// (within 0.55 durations of a transit center).
func (p Planet) InTransit(t []float64) []bool {
	return p.Close(t, defaultInTransitWidth)
}

// NthTransit reports, per time, whether it falls within width durations of
// the n-th transit counted from the epoch.
func (p Planet) NthTransit(t []float64, n int, width float64) []bool {
	center := p.Epoch + float64(n)*p.Period
	out := make([]bool, len(t))
	for i, ti := range t {
		out[i] = math.Abs(ti-center) < width*p.Duration
	}
	return out
}

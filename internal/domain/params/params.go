// Package params defines the fit parameter record and its flat-vector form.
//
// Optimizers and samplers see a flat ordered []float64; everything else works
// with named fields. The vector layout is fixed and positional:
//
//	v[0:5]         = [flux_zp, rho, q1, q2, dilution]
//	v[5+6i : 11+6i] = [period, epoch, b, rprs, ecc, omega] for candidate i
package params

import (
	"errors"
	"fmt"
)

// Vector layout constants.
const (
	StarDim   = 5
	PlanetDim = 6
)

// ErrDimension indicates a vector whose length does not match the expected
// candidate count.
var ErrDimension = errors.New("parameter vector dimension mismatch")

// Star holds the star-level parameter block.
type Star struct {
	FluxZeroPoint float64 // out-of-transit continuum level
	RhoStar       float64 // stellar bulk density, cgs
	Q1            float64 // limb-darkening coefficient, [0,1]
	Q2            float64 // limb-darkening coefficient, [0,1]
	Dilution      float64 // contaminating flux fraction, [0,1)
}

// PlanetParams holds one candidate's orbital parameter block.
type PlanetParams struct {
	Period float64 // orbital period, days
	Epoch  float64 // reference transit center
	B      float64 // impact parameter, stellar radii
	RpRs   float64 // planet/star radius ratio
	Ecc    float64 // eccentricity, [0,1)
	Omega  float64 // argument of periastron, radians
}

// Params is the full typed parameter record.
type Params struct {
	Star    Star
	Planets []PlanetParams
}

// Dim returns the flat vector length for n candidates.
func Dim(nPlanets int) int { return StarDim + PlanetDim*nPlanets }

// Dim returns the flat vector length of p.
func (p Params) Dim() int { return Dim(len(p.Planets)) }

// Vector serializes p to its flat positional form.
func (p Params) Vector() []float64 {
	v := make([]float64, 0, p.Dim())
	v = append(v, p.Star.FluxZeroPoint, p.Star.RhoStar, p.Star.Q1, p.Star.Q2, p.Star.Dilution)
	for _, pl := range p.Planets {
		v = append(v, pl.Period, pl.Epoch, pl.B, pl.RpRs, pl.Ecc, pl.Omega)
	}
	return v
}

// FromVector deserializes a flat vector for nPlanets candidates.
func FromVector(v []float64, nPlanets int) (Params, error) {
	if len(v) != Dim(nPlanets) {
		return Params{}, fmt.Errorf("%w: got %d, want %d", ErrDimension, len(v), Dim(nPlanets))
	}
	p := Params{
		Star: Star{
			FluxZeroPoint: v[0],
			RhoStar:       v[1],
			Q1:            v[2],
			Q2:            v[3],
			Dilution:      v[4],
		},
		Planets: make([]PlanetParams, nPlanets),
	}
	for i := 0; i < nPlanets; i++ {
		o := StarDim + PlanetDim*i
		p.Planets[i] = PlanetParams{
			Period: v[o],
			Epoch:  v[o+1],
			B:      v[o+2],
			RpRs:   v[o+3],
			Ecc:    v[o+4],
			Omega:  v[o+5],
		}
	}
	return p, nil
}

// Names returns the column names of the flat vector decomposition for
// nPlanets candidates. Per-candidate names are 1-indexed, e.g. period_1.
func Names(nPlanets int) []string {
	names := []string{"flux_zp", "rho", "q1", "q2", "dilution"}
	for i := 1; i <= nPlanets; i++ {
		for _, par := range []string{"period", "epoch", "b", "rprs", "ecc", "omega"} {
			names = append(names, fmt.Sprintf("%s_%d", par, i))
		}
	}
	return names
}

// NPlanetsFor returns the candidate count implied by a vector length, or an
// error if the length does not fit the layout.
func NPlanetsFor(dim int) (int, error) {
	if dim < StarDim || (dim-StarDim)%PlanetDim != 0 {
		return 0, fmt.Errorf("%w: length %d", ErrDimension, dim)
	}
	return (dim - StarDim) / PlanetDim, nil
}

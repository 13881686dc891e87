package transit_test

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/SaeedTaghavi/transit-fitting/internal/domain/transit"
)

// circular orbit: rho, q1, q2, dilution, then period, epoch, b, rprs, ecc, omega.
func testOrbit() []float64 {
	return []float64{1.41, 0.3, 0.4, 0, 3.0, 0.5, 0.2, 0.1, 0, 0}
}

func TestQuadLimbDark(t *testing.T) {
	Convey("Given the default evaluator", t, func() {
		eval := transit.NewQuadLimbDark(transit.WithSupersample(1))

		Convey("Flux is unity far from transit", func() {
			flux, err := eval.EvaluateTransit(testOrbit(), []float64{2.0}, 0)
			So(err, ShouldBeNil)
			So(flux[0], ShouldEqual, 1.0)
		})

		Convey("Flux dips near the transit depth at mid-transit", func() {
			flux, err := eval.EvaluateTransit(testOrbit(), []float64{0.5}, 0)
			So(err, ShouldBeNil)
			So(flux[0], ShouldBeLessThan, 1.0)
			// Roughly rprs^2, modulated by limb darkening.
			So(1-flux[0], ShouldBeBetween, 0.005, 0.02)
		})

		Convey("The dip repeats one period later", func() {
			flux, err := eval.EvaluateTransit(testOrbit(), []float64{0.5, 3.5}, 0)
			So(err, ShouldBeNil)
			So(flux[1], ShouldAlmostEqual, flux[0], 1e-9)
		})

		Convey("Mid-transit is the deepest point", func() {
			orbit := testOrbit()
			flux, err := eval.EvaluateTransit(orbit, []float64{0.5, 0.52, 0.55}, 0)
			So(err, ShouldBeNil)
			So(flux[0], ShouldBeLessThan, flux[1])
			So(flux[1], ShouldBeLessThan, flux[2])
		})

		Convey("Dilution shrinks the observed depth", func() {
			clean := testOrbit()
			diluted := testOrbit()
			diluted[3] = 0.5
			f0, err := eval.EvaluateTransit(clean, []float64{0.5}, 0)
			So(err, ShouldBeNil)
			f1, err := eval.EvaluateTransit(diluted, []float64{0.5}, 0)
			So(err, ShouldBeNil)
			So(1-f1[0], ShouldAlmostEqual, 0.5*(1-f0[0]), 1e-12)
		})

		Convey("Invalid parameters are rejected", func() {
			cases := map[string]func(v []float64){
				"rho":      func(v []float64) { v[0] = -1 },
				"q1":       func(v []float64) { v[1] = 1.5 },
				"dilution": func(v []float64) { v[3] = 1.0 },
				"period":   func(v []float64) { v[4] = 0 },
				"b":        func(v []float64) { v[6] = -0.1 },
				"rprs":     func(v []float64) { v[7] = 0 },
				"ecc":      func(v []float64) { v[8] = 1.0 },
			}
			for name, mutate := range cases {
				Convey("bad "+name, func() {
					orbit := testOrbit()
					mutate(orbit)
					_, err := eval.EvaluateTransit(orbit, []float64{0.5}, 0)
					So(err, ShouldWrap, transit.ErrInvalidParams)
				})
			}
		})

		Convey("Impact parameter outside the orbit is rejected", func() {
			orbit := testOrbit()
			orbit[6] = 100
			_, err := eval.EvaluateTransit(orbit, []float64{0.5}, 0)
			So(err, ShouldWrap, transit.ErrInvalidParams)
		})

		Convey("A malformed orbit slice is rejected", func() {
			_, err := eval.EvaluateTransit([]float64{1.41, 0.3}, []float64{0.5}, 0)
			So(err, ShouldWrap, transit.ErrInvalidParams)
		})
	})

	Convey("Supersampling smears a sharp transit", t, func() {
		sharp := transit.NewQuadLimbDark(transit.WithSupersample(1))
		smeared := transit.NewQuadLimbDark(transit.WithSupersample(15))

		// Exposure comparable to the transit duration smooths the ingress.
		f0, err := sharp.EvaluateTransit(testOrbit(), []float64{0.5}, 0.05)
		So(err, ShouldBeNil)
		f1, err := smeared.EvaluateTransit(testOrbit(), []float64{0.5}, 0.05)
		So(err, ShouldBeNil)
		So(f1[0], ShouldBeGreaterThan, f0[0])
		So(f1[0], ShouldBeLessThan, 1.0)
	})

	Convey("Eccentricity rescales the transit separation", t, func() {
		eval := transit.NewQuadLimbDark(transit.WithSupersample(1))
		circ := testOrbit()
		ecc := testOrbit()
		ecc[8] = 0.3
		ecc[9] = math.Pi / 2 // transit near periastron, closer and faster

		f0, err := eval.EvaluateTransit(circ, []float64{0.53}, 0)
		So(err, ShouldBeNil)
		f1, err := eval.EvaluateTransit(ecc, []float64{0.53}, 0)
		So(err, ShouldBeNil)
		So(f1[0], ShouldNotAlmostEqual, f0[0], 1e-12)
	})
}

func TestScaledSemiMajorAxis(t *testing.T) {
	Convey("a/R* follows Kepler's third law", t, func() {
		c := transit.DefaultConstants()
		aR := transit.ScaledSemiMajorAxis(1.41, 3.0, c)
		So(aR, ShouldBeBetween, 8, 10)

		Convey("Longer periods give wider orbits", func() {
			So(transit.ScaledSemiMajorAxis(1.41, 10.0, c), ShouldBeGreaterThan, aR)
		})
	})
}

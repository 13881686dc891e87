package model_test

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/SaeedTaghavi/transit-fitting/internal/domain/lightcurve"
	"github.com/SaeedTaghavi/transit-fitting/internal/domain/params"
	"github.com/SaeedTaghavi/transit-fitting/internal/model"
)

// stubEvaluator returns a fixed flux value for every requested time and
// records what it was asked to evaluate.
type stubEvaluator struct {
	value float64
	err   error

	gotOrbit []float64
	gotTimes []float64
	gotTexp  float64
}

func (s *stubEvaluator) EvaluateTransit(orbit, times []float64, texp float64) ([]float64, error) {
	s.gotOrbit = append([]float64(nil), orbit...)
	s.gotTimes = append([]float64(nil), times...)
	s.gotTexp = texp
	if s.err != nil {
		return nil, s.err
	}
	out := make([]float64, len(times))
	for i := range out {
		out[i] = s.value
	}
	return out, nil
}

func testCurve() *lightcurve.LightCurve {
	n := 101
	times := make([]float64, n)
	flux := make([]float64, n)
	for i := range times {
		times[i] = float64(i) * 0.02 // two days at a fixed cadence
		flux[i] = 1.0
	}
	planet := lightcurve.Planet{Name: "b", Period: 10, Epoch: 1.0, Duration: 0.1}
	lc, err := lightcurve.New(times, flux, nil,
		lightcurve.WithPlanets(planet),
		lightcurve.WithoutDetrend(),
	)
	So(err, ShouldBeNil)
	return lc
}

func TestFluxModel(t *testing.T) {
	Convey("Given a model with a stub transit evaluator", t, func() {
		stub := &stubEvaluator{value: 0.99}
		lc := testCurve()
		m, err := model.New(lc, model.WithEvaluator(stub), model.WithWidth(2))
		So(err, ShouldBeNil)

		Convey("Dim follows the candidate count", func() {
			So(m.Dim(), ShouldEqual, params.Dim(1))
		})

		Convey("Evaluate overwrites only the near-transit window", func() {
			v := make([]float64, m.Dim())
			v[0] = 1.5 // continuum level
			f, err := m.Evaluate(v)
			So(err, ShouldBeNil)
			So(len(f), ShouldEqual, len(lc.Time()))

			closeMask := lc.AnyClose(m.Width())
			nClose := 0
			for i, c := range closeMask {
				if c {
					nClose++
					So(f[i], ShouldEqual, 0.99)
				} else {
					So(f[i], ShouldEqual, 1.5)
				}
			}
			So(nClose, ShouldBeGreaterThan, 0)
			So(nClose, ShouldBeLessThan, len(f))

			Convey("The evaluator saw only those points, minus the baseline", func() {
				So(len(stub.gotTimes), ShouldEqual, nClose)
				So(stub.gotOrbit, ShouldResemble, v[1:])
				So(stub.gotTexp, ShouldEqual, lc.Texp())
			})
		})

		Convey("A wrong-size vector is rejected", func() {
			_, err := m.Evaluate([]float64{1})
			So(err, ShouldWrap, params.ErrDimension)
		})

		Convey("Evaluator errors propagate", func() {
			boom := errors.New("boom")
			stub.err = boom
			_, err := m.Evaluate(make([]float64, m.Dim()))
			So(errors.Is(err, boom), ShouldBeTrue)
		})
	})

	Convey("An unknown continuum method fails at construction", t, func() {
		_, err := model.New(testCurve(), model.WithContinuumMethod("spline"))
		So(err, ShouldWrap, model.ErrUnknownContinuum)
	})
}

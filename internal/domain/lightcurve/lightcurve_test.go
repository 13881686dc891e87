package lightcurve_test

import (
	"math"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/SaeedTaghavi/transit-fitting/internal/domain/lightcurve"
)

func evenTimes(n int, dt float64) []float64 {
	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i) * dt
	}
	return t
}

func ones(n int) []float64 {
	f := make([]float64, n)
	for i := range f {
		f[i] = 1
	}
	return f
}

func TestPlanetFolding(t *testing.T) {
	Convey("Given a candidate with period 3 and epoch 0.5", t, func() {
		p := lightcurve.Planet{Period: 3, Epoch: 0.5, Duration: 0.1}

		Convey("Times at transit centers fold to zero", func() {
			folded := p.FoldedTime([]float64{0.5, 3.5, 6.5})
			for _, f := range folded {
				So(f, ShouldAlmostEqual, 0, 1e-12)
			}
		})

		Convey("Folded times stay within half a period of zero", func() {
			folded := p.FoldedTime([]float64{0, 1, 2, 2.9, 4.1, 7.3})
			for _, f := range folded {
				So(f, ShouldBeGreaterThanOrEqualTo, -1.5)
				So(f, ShouldBeLessThan, 1.5)
			}
		})

		Convey("Close flags points within width durations of a center", func() {
			close := p.Close([]float64{0.5, 0.65, 0.75, 2.0}, 2)
			So(close[0], ShouldBeTrue)  // at center
			So(close[1], ShouldBeTrue)  // 1.5 durations out
			So(close[2], ShouldBeFalse) // 2.5 durations out
			So(close[3], ShouldBeFalse) // far from any transit
		})

		Convey("InTransit uses the narrow window", func() {
			in := p.InTransit([]float64{0.5, 0.54, 0.58})
			So(in[0], ShouldBeTrue)
			So(in[1], ShouldBeTrue)  // 0.4 durations out
			So(in[2], ShouldBeFalse) // 0.8 durations out
		})

		Convey("NthTransit isolates a single epoch", func() {
			times := []float64{0.5, 3.5, 6.5}
			first := p.NthTransit(times, 1, 2)
			So(first[0], ShouldBeFalse)
			So(first[1], ShouldBeTrue)
			So(first[2], ShouldBeFalse)
		})
	})
}

func TestLightCurve(t *testing.T) {
	Convey("Given a flat series with one candidate", t, func() {
		n := 301
		times := evenTimes(n, 0.01)
		flux := ones(n)
		p := lightcurve.Planet{Period: 1, Epoch: 0.5, Duration: 0.05}

		lc, err := lightcurve.New(times, flux, nil, lightcurve.WithPlanets(p))
		So(err, ShouldBeNil)

		Convey("Default exposure time is the median spacing", func() {
			So(lc.Texp(), ShouldAlmostEqual, 0.01, 1e-12)
		})

		Convey("Accessors return the full series when nothing is masked", func() {
			So(len(lc.Time()), ShouldEqual, n)
			So(len(lc.Flux()), ShouldEqual, n)
			So(len(lc.FluxErr()), ShouldEqual, n)
		})

		Convey("AnyClose covers every candidate's window", func() {
			close := lc.AnyClose(2)
			folded := lc.FoldedTime(0)
			for i, c := range close {
				So(c, ShouldEqual, math.Abs(folded[i]) < 2*p.Duration)
			}
		})

		Convey("NTransits counts covered epochs", func() {
			counts := lc.NTransits()
			So(len(counts), ShouldEqual, 1)
			So(counts[0], ShouldEqual, 4) // span 3 days, period 1
		})

		Convey("AddPlanet grows the candidate list", func() {
			lc.AddPlanet(lightcurve.Planet{Period: 2, Epoch: 0, Duration: 0.1})
			So(lc.NPlanets(), ShouldEqual, 2)
		})
	})

	Convey("Given a series with non-finite flux", t, func() {
		times := []float64{0, 1, 2, 3}
		flux := []float64{1, math.NaN(), 1, 1}

		lc, err := lightcurve.New(times, flux, nil, lightcurve.WithoutDetrend())
		So(err, ShouldBeNil)

		Convey("The default mask excludes the bad point", func() {
			So(len(lc.Time()), ShouldEqual, 3)
			So(lc.Time(), ShouldResemble, []float64{0, 2, 3})
		})

		Convey("The full arrays keep the masked point", func() {
			So(len(lc.RawTime()), ShouldEqual, 4)
			So(lc.Mask()[1], ShouldBeTrue)
		})
	})

	Convey("Given a series with a slow trend", t, func() {
		n := 200
		times := evenTimes(n, 0.01)
		flux := make([]float64, n)
		for i := range flux {
			flux[i] = 2 + 0.1*times[i] // linear drift, no transits
		}

		lc, err := lightcurve.New(times, flux, nil, lightcurve.WithDetrendWindow(21))
		So(err, ShouldBeNil)

		Convey("Detrended flux is near unity away from the edges", func() {
			f := lc.Flux()
			for i := 30; i < n-30; i++ {
				So(f[i], ShouldAlmostEqual, 1, 1e-3)
			}
		})
	})

	Convey("Construction rejects bad shapes", t, func() {
		_, err := lightcurve.New([]float64{1, 2}, []float64{1}, nil)
		So(err, ShouldEqual, lightcurve.ErrLengthMismatch)

		_, err = lightcurve.New(nil, nil, nil)
		So(err, ShouldEqual, lightcurve.ErrNoData)

		_, err = lightcurve.New([]float64{1, 2}, []float64{1, 1}, []float64{0.1})
		So(err, ShouldEqual, lightcurve.ErrLengthMismatch)
	})
}

func TestReadCSV(t *testing.T) {
	Convey("Given CSV input with a header", t, func() {
		in := "time,flux,flux_err\n0.0,1.0,0.001\n0.5,0.99,0.001\n1.0,1.01,0.001\n"

		Convey("ReadCSV parses all rows", func() {
			lc, err := lightcurve.ReadCSV(strings.NewReader(in), lightcurve.WithoutDetrend())
			So(err, ShouldBeNil)
			So(lc.Time(), ShouldResemble, []float64{0, 0.5, 1})
			So(lc.RawFlux(), ShouldResemble, []float64{1, 0.99, 1.01})
			So(lc.FluxErr(), ShouldResemble, []float64{0.001, 0.001, 0.001})
		})

		Convey("Missing columns are rejected", func() {
			_, err := lightcurve.ReadCSV(strings.NewReader("a,b\n1,2\n"))
			So(err, ShouldNotBeNil)
		})

		Convey("Malformed values are rejected with the line number", func() {
			_, err := lightcurve.ReadCSV(strings.NewReader("time,flux\n0.0,notaflux\n"))
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "line 2")
		})
	})
}

package simulate_test

import (
	"bytes"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/SaeedTaghavi/transit-fitting/internal/domain/lightcurve"
	"github.com/SaeedTaghavi/transit-fitting/internal/simulate"
)

func candidate() simulate.Planet {
	return simulate.Planet{
		Planet: lightcurve.Planet{
			Name:     "b",
			Period:   3.0,
			Epoch:    0.5,
			Duration: 0.1,
		},
		Depth: 0.01,
	}
}

func TestGenerator(t *testing.T) {
	Convey("Given a noiseless generator", t, func() {
		gen := simulate.New(
			simulate.WithSpan(6),
			simulate.WithCadence(0.01),
			simulate.WithNoise(0),
		)

		Convey("At least one candidate is required", func() {
			_, err := gen.LightCurve(nil)
			So(err, ShouldNotBeNil)
		})

		Convey("The injected dips sit at the ephemeris", func() {
			lc, err := gen.LightCurve([]simulate.Planet{candidate()})
			So(err, ShouldBeNil)
			So(lc.NPlanets(), ShouldEqual, 1)

			times := lc.Time()
			flux := lc.Flux()
			inTransit := lc.InTransit(0)
			dipped := 0
			for i := range times {
				if flux[i] < 1 {
					So(flux[i], ShouldAlmostEqual, 0.99, 1e-12)
					So(inTransit[i], ShouldBeTrue)
					dipped++
				} else {
					So(flux[i], ShouldEqual, 1.0)
				}
			}
			// Two transits of ten cadences each fit in the span.
			So(dipped, ShouldBeBetween, 10, 30)
		})
	})

	Convey("Seeded noise is reproducible", t, func() {
		build := func() []float64 {
			lc, err := simulate.New(simulate.WithSeed(5), simulate.WithSpan(2)).
				LightCurve([]simulate.Planet{candidate()})
			So(err, ShouldBeNil)
			return lc.Flux()
		}
		So(build(), ShouldResemble, build())
	})

	Convey("WriteCSV produces a file ReadCSV parses back", t, func() {
		gen := simulate.New(simulate.WithSeed(9), simulate.WithSpan(2))
		lc, err := gen.LightCurve([]simulate.Planet{candidate()})
		So(err, ShouldBeNil)

		var buf bytes.Buffer
		So(simulate.WriteCSV(&buf, lc), ShouldBeNil)

		head := strings.SplitN(buf.String(), "\n", 2)[0]
		So(head, ShouldEqual, "time,flux,flux_err")

		parsed, err := lightcurve.ReadCSV(&buf, lightcurve.WithoutDetrend())
		So(err, ShouldBeNil)
		So(parsed.RawTime(), ShouldResemble, lc.RawTime())
		So(parsed.RawFluxFull(), ShouldResemble, lc.RawFluxFull())
	})
}

package params_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/SaeedTaghavi/transit-fitting/internal/domain/params"
)

func TestVectorRoundTrip(t *testing.T) {
	Convey("Given a two-candidate parameter record", t, func() {
		p := params.Params{
			Star: params.Star{
				FluxZeroPoint: 1.0,
				RhoStar:       1.41,
				Q1:            0.3,
				Q2:            0.4,
				Dilution:      0.05,
			},
			Planets: []params.PlanetParams{
				{Period: 3, Epoch: 0.5, B: 0.2, RpRs: 0.01, Ecc: 0, Omega: 0},
				{Period: 7.1, Epoch: 1.2, B: 0.6, RpRs: 0.03, Ecc: 0.2, Omega: -1.1},
			},
		}

		Convey("Vector has the fixed positional layout", func() {
			v := p.Vector()
			So(len(v), ShouldEqual, 17)
			So(v[0], ShouldEqual, 1.0)
			So(v[4], ShouldEqual, 0.05)
			So(v[5], ShouldEqual, 3.0)   // first candidate period
			So(v[11], ShouldEqual, 7.1)  // second candidate period
			So(v[16], ShouldEqual, -1.1) // second candidate omega
		})

		Convey("FromVector reverses Vector", func() {
			got, err := params.FromVector(p.Vector(), 2)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, p)
		})

		Convey("FromVector rejects a wrong length", func() {
			_, err := params.FromVector(p.Vector()[:10], 2)
			So(err, ShouldWrap, params.ErrDimension)
		})
	})
}

func TestNames(t *testing.T) {
	Convey("Names decompose the vector positionally", t, func() {
		names := params.Names(2)
		So(len(names), ShouldEqual, params.Dim(2))
		So(names[0], ShouldEqual, "flux_zp")
		So(names[4], ShouldEqual, "dilution")
		So(names[5], ShouldEqual, "period_1")
		So(names[10], ShouldEqual, "omega_1")
		So(names[11], ShouldEqual, "period_2")
		So(names[16], ShouldEqual, "omega_2")
	})
}

func TestNPlanetsFor(t *testing.T) {
	Convey("NPlanetsFor inverts Dim", t, func() {
		for n := 0; n < 4; n++ {
			got, err := params.NPlanetsFor(params.Dim(n))
			So(err, ShouldBeNil)
			So(got, ShouldEqual, n)
		}

		Convey("and rejects lengths off the layout", func() {
			_, err := params.NPlanetsFor(7)
			So(err, ShouldWrap, params.ErrDimension)
			_, err = params.NPlanetsFor(3)
			So(err, ShouldWrap, params.ErrDimension)
		})
	})
}

package model_test

import (
	"testing"

	model "github.com/okian/podium/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var roster = []string{"VER", "HAM", "LEC", "NOR", "PIA"}

func TestValidatePrediction(t *testing.T) {
	Convey("Given the driver roster", t, func() {
		Convey("When the prediction is three distinct roster codes", func() {
			p := model.Prediction{First: "VER", Second: "HAM", Third: "LEC"}
			So(model.ValidatePrediction(p, roster), ShouldBeNil)
		})

		Convey("When a position is empty", func() {
			p := model.Prediction{First: "VER", Second: "", Third: "LEC"}
			So(model.ValidatePrediction(p, roster), ShouldEqual, model.ErrIncompletePrediction)
		})

		Convey("When a driver appears twice", func() {
			p := model.Prediction{First: "VER", Second: "VER", Third: "LEC"}
			So(model.ValidatePrediction(p, roster), ShouldEqual, model.ErrDuplicateDriver)
		})

		Convey("When a code is not on the roster", func() {
			p := model.Prediction{First: "VER", Second: "HAM", Third: "MSC"}
			So(model.ValidatePrediction(p, roster), ShouldEqual, model.ErrUnknownDriver)
		})
	})
}

func TestValidateResult(t *testing.T) {
	Convey("Given the driver roster", t, func() {
		Convey("When the result is three distinct roster codes", func() {
			res := model.RaceResult{First: "NOR", Second: "PIA", Third: "VER"}
			So(model.ValidateResult(res, roster), ShouldBeNil)
		})

		Convey("When the result repeats a driver", func() {
			res := model.RaceResult{First: "NOR", Second: "NOR", Third: "VER"}
			So(model.ValidateResult(res, roster), ShouldEqual, model.ErrDuplicateDriver)
		})

		Convey("When the result has an unknown code", func() {
			res := model.RaceResult{First: "NOR", Second: "PIA", Third: "XXX"}
			So(model.ValidateResult(res, roster), ShouldEqual, model.ErrUnknownDriver)
		})
	})
}

func TestNormalizeUsername(t *testing.T) {
	Convey("Given mixed-case usernames", t, func() {
		Convey("When normalizing", func() {
			So(model.NormalizeUsername("Lando"), ShouldEqual, "lando")
			So(model.NormalizeUsername("  LANDO  "), ShouldEqual, "lando")
			So(model.NormalizeUsername("lando"), ShouldEqual, "lando")
		})
	})
}

func TestUserPredictionKey(t *testing.T) {
	Convey("Given a user prediction", t, func() {
		up := model.UserPrediction{RaceID: "race-1", UserID: "u-1"}

		Convey("Then the mirror key is race-scoped", func() {
			So(up.Key(), ShouldEqual, "race-1/u-1")
		})
	})
}

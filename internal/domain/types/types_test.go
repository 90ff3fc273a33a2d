package types_test

import (
	"testing"

	types "github.com/okian/podium/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScoreRow(t *testing.T) {
	Convey("Given a ScoreRow struct", t, func() {
		Convey("When creating a new row", func() {
			row := types.ScoreRow{
				UserID: "user-123",
				Score:  35,
				Winner: true,
			}

			Convey("Then it should have the correct values", func() {
				So(row.UserID, ShouldEqual, "user-123")
				So(row.Score, ShouldEqual, 35)
				So(row.Winner, ShouldBeTrue)
			})
		})

		Convey("When creating a row with zero values", func() {
			row := types.ScoreRow{}

			Convey("Then it should have default values", func() {
				So(row.UserID, ShouldEqual, "")
				So(row.Score, ShouldEqual, 0)
				So(row.Winner, ShouldBeFalse)
			})
		})

		Convey("When building a scoreboard", func() {
			rows := []types.ScoreRow{
				{UserID: "user-1", Score: 60, Winner: true},
				{UserID: "user-2", Score: 35, Winner: false},
				{UserID: "user-3", Score: 0, Winner: false},
			}

			Convey("Then scores should be in descending order", func() {
				for i := 0; i < len(rows)-1; i++ {
					So(rows[i].Score, ShouldBeGreaterThanOrEqualTo, rows[i+1].Score)
				}
			})

			Convey("And only the top score should win", func() {
				So(rows[0].Winner, ShouldBeTrue)
				So(rows[1].Winner, ShouldBeFalse)
				So(rows[2].Winner, ShouldBeFalse)
			})
		})
	})
}

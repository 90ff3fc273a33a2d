package auth_test

import (
	"testing"
	"time"

	"github.com/okian/podium/internal/auth"
	"github.com/smartystreets/goconvey/convey"
)

func TestPasswordHashing(t *testing.T) {
	convey.Convey("Given a plaintext password", t, func() {
		password := "pit-stop-undercut"

		convey.Convey("When hashing it", func() {
			hash, err := auth.HashPassword(password)

			convey.Convey("Then the hash should verify the original password only", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(hash, convey.ShouldNotEqual, password)
				convey.So(auth.CheckPassword(password, hash), convey.ShouldBeTrue)
				convey.So(auth.CheckPassword("wrong", hash), convey.ShouldBeFalse)
			})
		})
	})
}

func TestTokens(t *testing.T) {
	convey.Convey("Given an auth service", t, func() {
		svc := auth.NewService("test-secret", time.Hour)

		convey.Convey("When generating and validating a token", func() {
			token, err := svc.GenerateToken("u-1", "lando", "Lando N", false)
			convey.So(err, convey.ShouldBeNil)
			convey.So(token, convey.ShouldNotBeEmpty)

			claims, err := svc.ValidateToken(token)

			convey.Convey("Then the claims should round-trip", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(claims.UserID, convey.ShouldEqual, "u-1")
				convey.So(claims.Username, convey.ShouldEqual, "lando")
				convey.So(claims.DisplayName, convey.ShouldEqual, "Lando N")
				convey.So(claims.IsAdmin, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When validating a token signed with another secret", func() {
			other := auth.NewService("other-secret", time.Hour)
			token, err := other.GenerateToken("u-1", "lando", "", false)
			convey.So(err, convey.ShouldBeNil)

			claims, err := svc.ValidateToken(token)

			convey.Convey("Then validation should fail", func() {
				convey.So(err, convey.ShouldEqual, auth.ErrInvalidToken)
				convey.So(claims, convey.ShouldBeNil)
			})
		})

		convey.Convey("When validating an expired token", func() {
			expired := auth.NewService("test-secret", -time.Minute)
			token, err := expired.GenerateToken("u-1", "lando", "", false)
			convey.So(err, convey.ShouldBeNil)

			claims, err := svc.ValidateToken(token)

			convey.Convey("Then validation should fail", func() {
				convey.So(err, convey.ShouldEqual, auth.ErrInvalidToken)
				convey.So(claims, convey.ShouldBeNil)
			})
		})

		convey.Convey("When validating a garbage token", func() {
			claims, err := svc.ValidateToken("not.a.token")

			convey.Convey("Then validation should fail", func() {
				convey.So(err, convey.ShouldEqual, auth.ErrInvalidToken)
				convey.So(claims, convey.ShouldBeNil)
			})
		})
	})
}

package remote

import (
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// fakePGError mimics pgdriver.Error for classification tests.
type fakePGError struct {
	code string
}

func (e *fakePGError) Error() string { return "pg error " + e.code }

func (e *fakePGError) Field(field byte) string {
	if field == 'C' {
		return e.code
	}
	return ""
}

func TestClassify(t *testing.T) {
	Convey("Given the error classifier", t, func() {
		Convey("When the error is nil", func() {
			So(classify("op", nil), ShouldBeNil)
		})

		Convey("When the error is already classified", func() {
			err := fmt.Errorf("wrapped: %w", ErrConflict)
			So(classify("op", err), ShouldEqual, err)
		})

		Convey("When the store reports a foreign key violation", func() {
			err := classify("op", &fakePGError{code: "23503"})

			Convey("Then it is a conflict, the referent is gone", func() {
				So(errors.Is(err, ErrConflict), ShouldBeTrue)
			})
		})

		Convey("When the store reports a constraint or data error", func() {
			So(errors.Is(classify("op", &fakePGError{code: "23505"}), ErrRejected), ShouldBeTrue)
			So(errors.Is(classify("op", &fakePGError{code: "22001"}), ErrRejected), ShouldBeTrue)
		})

		Convey("When the store reports a connection class error", func() {
			So(errors.Is(classify("op", &fakePGError{code: "08006"}), ErrUnavailable), ShouldBeTrue)
			So(errors.Is(classify("op", &fakePGError{code: "57P01"}), ErrUnavailable), ShouldBeTrue)
		})

		Convey("When the transport failed", func() {
			cases := []error{
				&net.OpError{Op: "dial", Err: errors.New("refused")},
				io.EOF,
				io.ErrUnexpectedEOF,
				syscall.ECONNREFUSED,
				syscall.ECONNRESET,
			}
			for _, c := range cases {
				So(errors.Is(classify("op", c), ErrUnavailable), ShouldBeTrue)
			}
		})

		Convey("When the error is something unrecognized", func() {
			err := classify("op", errors.New("weird"))

			Convey("Then it defaults to rejected, never queued", func() {
				So(errors.Is(err, ErrRejected), ShouldBeTrue)
				So(errors.Is(err, ErrUnavailable), ShouldBeFalse)
			})
		})
	})
}

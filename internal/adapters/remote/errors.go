package remote

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"
)

// Sentinel error kinds for this package. The sync coordinator
// dispatches on these: ErrUnavailable queues the mutation for replay,
// the other two never do.
var (
	// ErrUnavailable means the store could not be reached; the write may
	// succeed later and is safe to queue.
	ErrUnavailable = errors.New("remote store unavailable")
	// ErrRejected means the store refused the write (validation);
	// retrying it would fail identically.
	ErrRejected = errors.New("remote store rejected write")
	// ErrConflict means the write referenced state that no longer
	// exists, e.g. a prediction for a deleted race.
	ErrConflict = errors.New("remote store conflict")
)

// sqlstater matches pgdriver.Error without naming the concrete type,
// which keeps classification testable with fakes.
type sqlstater interface {
	Field(field byte) string
}

// classify folds a driver error into the package taxonomy. Unknown
// errors default to ErrRejected: blindly retrying a write the store
// refused once would refuse identically and loop forever.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrRejected) || errors.Is(err, ErrConflict) {
		return err
	}

	var pg sqlstater
	if errors.As(err, &pg) {
		code := pg.Field('C')
		switch {
		case code == "23503": // foreign key violation: the referent is gone
			return fmt.Errorf("%s: %w: %v", op, ErrConflict, err)
		case strings.HasPrefix(code, "23"), strings.HasPrefix(code, "22"):
			return fmt.Errorf("%s: %w: %v", op, ErrRejected, err)
		case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "57"):
			return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w: %v", op, ErrConflict, err)
	}

	var netErr net.Error
	switch {
	case errors.As(err, &netErr),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}

	return fmt.Errorf("%s: %w: %v", op, ErrRejected, err)
}

// mustAffect turns a zero-row update into ErrConflict: the addressed
// row vanished between queueing and replay.
func mustAffect(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w: no such row", op, ErrConflict)
	}
	return nil
}

// Package calcerr defines the error kinds shared by the exchanger calculation
// packages. Every stage either returns a usable number or one of these kinds;
// nothing is silently replaced by zero.
package calcerr

import (
	"errors"
	"fmt"
)

var (
	// ErrDomain marks numeric input outside the range a formula accepts:
	// non-positive flows, diameters or viscosities, Reynolds numbers below the
	// lowest correlation band, infeasible temperature programs.
	ErrDomain = errors.New("domain error")

	// ErrConfig marks an unrecognised exchanger kind, flow arrangement or
	// tube arrangement, and invalid process constants.
	ErrConfig = errors.New("config error")

	// ErrLookup marks a catalog or pitch-table miss.
	ErrLookup = errors.New("lookup error")
)

// Error carries the operation that failed together with its kind.
type Error struct {
	Kind error
	Op   string
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
}

// Unwrap returns the kind so callers can use errors.Is(err, ErrDomain).
func (e *Error) Unwrap() error {
	return e.Kind
}

func Domain(op, format string, args ...any) error {
	return &Error{Kind: ErrDomain, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Config(op, format string, args ...any) error {
	return &Error{Kind: ErrConfig, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func Lookup(op, format string, args ...any) error {
	return &Error{Kind: ErrLookup, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// IsCalculation reports whether err belongs to one of the calculation kinds.
func IsCalculation(err error) bool {
	return errors.Is(err, ErrDomain) || errors.Is(err, ErrConfig) || errors.Is(err, ErrLookup)
}

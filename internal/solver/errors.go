package solver

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrMalformedResponse = errors.New("malformed solver response")
	ErrEmptyResponse     = errors.New("empty solver response")
	ErrCircuitOpen       = errors.New("solver circuit open")
	ErrRateLimited       = errors.New("solver rate limited")
)

// Error is the single failure type surfaced by solver calls.
type Error struct {
	Op  string // "solve" or "explain"
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("solver %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns err as an *Error for op, leaving existing *Errors alone.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Err: err}
}

// ErrUnavailable is returned by Unavailable, the client used when no model
// credentials are configured.
var ErrUnavailable = errors.New("solver not configured")

// Unavailable is a Client whose every call fails with ErrUnavailable.
type Unavailable struct{}

var _ Client = Unavailable{}

func (Unavailable) SolveWordProblem(context.Context, string) (Solution, error) {
	return Solution{}, &Error{Op: "solve", Err: ErrUnavailable}
}

func (Unavailable) Explain(context.Context, string, string) (string, error) {
	return "", &Error{Op: "explain", Err: ErrUnavailable}
}

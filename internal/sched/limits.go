package sched

import (
	"context"
	"errors"
	"time"
)

// ErrTooLarge is returned when a document exceeds the hard size limit.
var ErrTooLarge = errors.New("sched: source exceeds size limit")

// ErrTimeout is returned when analysis does not finish within the
// configured deadline.
var ErrTimeout = errors.New("sched: analysis timed out")

// Limits gates documents by size and bounds how long a single
// analysis may run.
type Limits struct {
	// MaxSourceBytes is the hard ceiling; larger documents are
	// rejected outright. Zero means no limit.
	MaxSourceBytes int

	// LargeSourceBytes marks a document as large, which callers use
	// to defer work off the hot path. Zero means never.
	LargeSourceBytes int

	// Timeout bounds a single analysis run. Zero means no deadline.
	Timeout time.Duration
}

// ShouldProcess reports whether a document of n bytes is within the
// hard limit, returning ErrTooLarge when it is not.
func (l Limits) ShouldProcess(n int) error {
	if l.MaxSourceBytes > 0 && n > l.MaxSourceBytes {
		return ErrTooLarge
	}
	return nil
}

// IsLarge reports whether a document of n bytes crosses the large
// threshold.
func (l Limits) IsLarge(n int) bool {
	return l.LargeSourceBytes > 0 && n > l.LargeSourceBytes
}

// WithTimeout runs fn under the limit's deadline. The function
// receives a context cancelled at the deadline; if it does not return
// in time, WithTimeout gives up and returns ErrTimeout while the
// goroutine drains in the background.
func WithTimeout[T any](ctx context.Context, l Limits, fn func(ctx context.Context) (T, error)) (T, error) {
	if l.Timeout <= 0 {
		return fn(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, l.Timeout)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn(ctx)
		done <- outcome{v, err}
	}()

	select {
	case o := <-done:
		return o.value, o.err
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, ErrTimeout
		}
		return zero, ctx.Err()
	}
}

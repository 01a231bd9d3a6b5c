// Package batch drives a work queue through a per-item retry policy:
// transient failures are retried in place up to a fixed attempt cap,
// permanent failures are recorded immediately, and the queue keeps
// draining either way. One bad symbol never aborts the run.
package batch

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sahamkita/idxref/pkg/models"
)

// Failure reasons recorded in the failed-items report.
const (
	ReasonMaxAttempts = "Failed after maximum attempts"
	ReasonNoneValue   = "None value detected"
)

// Defaults for the retry policy.
const (
	DefaultMaxAttempts = 3
	DefaultItemDelay   = 1500 * time.Millisecond
)

// PermanentError marks a failure that retrying cannot fix, such as an
// upstream response with no usable payload. The item is recorded with the
// given reason and the queue moves on without burning further attempts.
type PermanentError struct {
	Reason string
}

func (e *PermanentError) Error() string { return e.Reason }

// Permanent wraps a reason string as a PermanentError.
func Permanent(reason string) error { return &PermanentError{Reason: reason} }

// Controller holds the retry policy for a queue drain.
type Controller struct {
	// MaxAttempts caps how many times one item is tried before it is
	// recorded as failed. Zero means DefaultMaxAttempts.
	MaxAttempts int
	// ItemDelay is the pause between queue iterations, successful or not.
	// Zero means DefaultItemDelay; negative disables the pause.
	ItemDelay time.Duration
}

// Drain processes items front to back. The head item is retried in place
// until it succeeds, exhausts MaxAttempts, or fails permanently; only then
// does the queue advance. Returns the items that ultimately failed, in
// queue order. Cancelling ctx stops the drain and returns ctx.Err with
// whatever failures accumulated so far.
func Drain[T any](ctx context.Context, c Controller, items []T, key func(T) string, process func(context.Context, T) error) ([]models.FailedItem, error) {
	maxAttempts := c.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	delay := c.ItemDelay
	if delay == 0 {
		delay = DefaultItemDelay
	}

	var failed []models.FailedItem
	for _, item := range items {
		id := key(item)
		for attempt := 1; ; attempt++ {
			if err := ctx.Err(); err != nil {
				return failed, err
			}

			err := process(ctx, item)
			if err == nil {
				break
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return failed, err
			}

			var perm *PermanentError
			if errors.As(err, &perm) {
				log.Warn().Str("item", id).Str("reason", perm.Reason).Msg("permanent failure")
				failed = append(failed, models.FailedItem{Ticker: id, Reason: perm.Reason})
				break
			}

			if attempt >= maxAttempts {
				log.Warn().Str("item", id).Int("attempts", attempt).Err(err).Msg("giving up")
				failed = append(failed, models.FailedItem{Ticker: id, Reason: ReasonMaxAttempts})
				break
			}
			log.Debug().Str("item", id).Int("attempt", attempt).Err(err).Msg("retrying")

			if err := pause(ctx, delay); err != nil {
				return failed, err
			}
		}

		if err := pause(ctx, delay); err != nil {
			return failed, err
		}
	}
	return failed, nil
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

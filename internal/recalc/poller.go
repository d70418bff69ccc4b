package recalc

import (
	"context"
	"time"

	recalcerrors "go-attend/internal/recalc/errors"
)

const (
	defaultPollInterval = time.Second
	defaultPollTimeout  = 2 * time.Minute
)

// PollOptions tunes PollUntilTerminal. Sleep is injectable so tests run
// without wall-clock waits.
type PollOptions struct {
	Interval time.Duration
	Timeout  time.Duration
	Sleep    func(ctx context.Context, d time.Duration) error
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// PollUntilTerminal fetches the batch until it reaches a terminal status.
// It returns ErrPollTimeout with the last seen state when the deadline
// passes first, so callers can distinguish "still running" from a fetch
// failure.
func PollUntilTerminal(
	ctx context.Context,
	fetch func(ctx context.Context) (BatchResponse, error),
	opts PollOptions,
) (BatchResponse, error) {
	if opts.Interval <= 0 {
		opts.Interval = defaultPollInterval
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultPollTimeout
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}

	deadline := time.Now().Add(opts.Timeout)
	var last BatchResponse

	for {
		resp, err := fetch(ctx)
		if err != nil {
			return last, err
		}
		last = resp
		if IsTerminal(resp.Status) {
			return resp, nil
		}

		if time.Now().After(deadline) {
			return last, recalcerrors.ErrPollTimeout
		}
		if err := opts.Sleep(ctx, opts.Interval); err != nil {
			return last, err
		}
	}
}

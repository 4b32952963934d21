package generation

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Sleeper waits for d or until ctx is done, returning ctx.Err() in the latter
// case. It is the only place the retry loop suspends, so tests can replace it.
type Sleeper func(ctx context.Context, d time.Duration) error

// TimerSleeper is the production Sleeper backed by a timer.
func TimerSleeper(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewLinearBackoff returns a schedule yielding base, 2*base, 3*base, ... and
// stopping after maxRetries delays.
func NewLinearBackoff(base time.Duration, maxRetries int) retry.Backoff {
	var n int64
	b := retry.BackoffFunc(func() (time.Duration, bool) {
		n++
		return time.Duration(n) * base, false
	})
	if maxRetries < 0 {
		maxRetries = 0
	}
	return retry.WithMaxRetries(uint64(maxRetries), b)
}

// retryState tracks one logical call. attempt never exceeds maxAttempts.
type retryState struct {
	attempt     int
	maxAttempts int
	lastErr     error
	backoff     retry.Backoff
}

func newRetryState(maxAttempts int, base time.Duration) *retryState {
	return &retryState{
		maxAttempts: maxAttempts,
		backoff:     NewLinearBackoff(base, maxAttempts-1),
	}
}

// begin advances to the next attempt; it reports false once the budget is spent.
func (s *retryState) begin() bool {
	if s.attempt >= s.maxAttempts {
		return false
	}
	s.attempt++
	return true
}

// fail records a retryable failure and returns the delay before the next
// attempt, or false when no attempt remains.
func (s *retryState) fail(err error) (time.Duration, bool) {
	s.lastErr = err
	if s.attempt >= s.maxAttempts {
		return 0, false
	}
	d, stop := s.backoff.Next()
	if stop {
		return 0, false
	}
	return d, true
}

// Package wait provides the polling combinator used by page objects to wait
// for DOM state. It replaces the implicit retry loops of browser-automation
// runners with an explicit, testable contract: evaluate, sleep, re-evaluate,
// give up at the deadline.
package wait

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrTimeout is returned when a condition does not hold before the deadline.
var ErrTimeout = errors.New("timed out waiting for condition")

// DefaultInterval is the poll interval used when none is given.
const DefaultInterval = 50 * time.Millisecond

// Condition reports whether the awaited state has been reached.
// Returning a non-nil error aborts the wait immediately with that error.
type Condition func(ctx context.Context) (bool, error)

// Poller evaluates conditions until they hold or the timeout elapses.
type Poller struct {
	Timeout  time.Duration // Upper bound for a single wait
	Interval time.Duration // Delay between evaluations (default: 50ms)
	Clock    Clock         // Time source (default: SystemClock)
}

// For polls cond with the system clock. See Poller.Wait.
func For(ctx context.Context, cond Condition, timeout, interval time.Duration) error {
	return Poller{Timeout: timeout, Interval: interval}.Wait(ctx, cond)
}

// Wait evaluates cond immediately and then once per interval until it
// reports true, returns an error, ctx is done, or the timeout elapses.
// A zero timeout evaluates cond exactly once.
func (p Poller) Wait(ctx context.Context, cond Condition) error {
	clock := p.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	deadline := clock.Now().Add(p.Timeout)
	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		attempts++
		done, err := cond(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		remaining := deadline.Sub(clock.Now())
		if remaining <= 0 {
			return errors.Wrapf(ErrTimeout, "after %s (%d attempts)", p.Timeout, attempts)
		}

		sleep := interval
		if remaining < sleep {
			sleep = remaining
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(sleep):
		}
	}
}

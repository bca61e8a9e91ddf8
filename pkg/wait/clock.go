package wait

import "time"

// Clock is the time source used by the poller.
// This abstraction allows for deterministic testing of polling code.
type Clock interface {
	// Now returns the current time. Implementations must return
	// monotonically increasing time values.
	Now() time.Time

	// After returns a channel that receives the time once d has elapsed.
	After(d time.Duration) <-chan time.Time
}

// SystemClock is a Clock implementation that uses the system's monotonic clock.
type SystemClock struct{}

// Now returns the current system time with monotonic clock reading.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// After delegates to time.After.
func (SystemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// MockClock is a Clock implementation for testing that allows manual control
// of time progression. After advances virtual time immediately and returns an
// already-fired channel, so a poll loop driven by MockClock never sleeps.
// It is not safe for concurrent use.
type MockClock struct {
	current time.Time
	sleeps  int
}

// NewMockClock creates a new MockClock initialized to the given time.
// If t is zero, it initializes to a reasonable default start time.
func NewMockClock(t time.Time) *MockClock {
	if t.IsZero() {
		t = time.Unix(1000000000, 0) // 2001-09-09
	}
	return &MockClock{current: t}
}

// Now returns the mock clock's current time.
func (m *MockClock) Now() time.Time {
	return m.current
}

// After advances the clock by d and returns a channel that is ready to read.
func (m *MockClock) After(d time.Duration) <-chan time.Time {
	m.Advance(d)
	m.sleeps++
	ch := make(chan time.Time, 1)
	ch <- m.current
	return ch
}

// Sleeps reports how many times After was called.
func (m *MockClock) Sleeps() int {
	return m.sleeps
}

// Advance moves the clock forward by the given duration.
// Panics if d is negative to maintain monotonicity.
func (m *MockClock) Advance(d time.Duration) {
	if d < 0 {
		panic("MockClock.Advance: duration must be non-negative")
	}
	m.current = m.current.Add(d)
}

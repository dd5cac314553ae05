package shared

import "time"

// Clock is an abstraction for wall-clock reads, allowing time budgets to be mocked in tests
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// RealClock implements Clock using the system monotonic clock
type RealClock struct{}

// Now returns the current system time; the monotonic reading is kept so
// elapsed-time measurements are immune to wall-clock adjustments
func (r *RealClock) Now() time.Time {
	return time.Now()
}

// Since returns the elapsed time from t
func (r *RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// MockClock implements Clock with a controllable time for testing.
// When Step is non-zero every Now call advances the clock by Step, which lets
// tests simulate work that consumes a fixed slice of a time budget.
type MockClock struct {
	CurrentTime time.Time
	Step        time.Duration
}

// Now returns the mock's current time, then advances it by Step
func (m *MockClock) Now() time.Time {
	t := m.CurrentTime
	m.CurrentTime = m.CurrentTime.Add(m.Step)
	return t
}

// Since returns the difference between the mock's current time and t
func (m *MockClock) Since(t time.Time) time.Duration {
	return m.Now().Sub(t)
}

// Advance moves the mock clock forward by the given duration
func (m *MockClock) Advance(d time.Duration) {
	m.CurrentTime = m.CurrentTime.Add(d)
}

// SetTime sets the mock clock to a specific time
func (m *MockClock) SetTime(t time.Time) {
	m.CurrentTime = t
}

// NewMockClock creates a MockClock starting at the given time
// If zero time is provided, starts at the Unix epoch
func NewMockClock(startTime time.Time) *MockClock {
	if startTime.IsZero() {
		startTime = time.Unix(0, 0)
	}
	return &MockClock{CurrentTime: startTime}
}

// NewSteppingMockClock creates a MockClock that advances by step on every read
func NewSteppingMockClock(step time.Duration) *MockClock {
	c := NewMockClock(time.Time{})
	c.Step = step
	return c
}

// NewRealClock creates a RealClock instance
func NewRealClock() Clock {
	return &RealClock{}
}

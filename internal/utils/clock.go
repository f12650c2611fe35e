package utils

import "time"

// Clock supplies the current time. Schedule reconciliation and settlement
// stamping go through it so tests can pin "today" to a fixed day.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// MockClock returns a fixed instant and lets tests advance it between
// reconciliation passes.
type MockClock struct {
	FixedNow time.Time
}

func (m *MockClock) Now() time.Time {
	return m.FixedNow
}

func (m *MockClock) SetNow(now time.Time) {
	m.FixedNow = now
}

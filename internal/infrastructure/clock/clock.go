// Package clock provides the monotonic nanosecond clock collaborator.
package clock

import (
	"sync/atomic"
	"time"

	"github.com/yourorg/adminstate/internal/domain"
)

// System reads the wall clock in nanoseconds since the Unix epoch.
type System struct{}

// NewSystem returns the process clock.
func NewSystem() System { return System{} }

// Now implements domain.Clock.
func (System) Now() domain.Timestamp {
	return domain.Timestamp(time.Now().UnixNano())
}

// Manual is a hand-advanced clock for tests. Safe for concurrent use.
type Manual struct {
	now atomic.Uint64
}

// NewManual returns a manual clock starting at start.
func NewManual(start domain.Timestamp) *Manual {
	m := &Manual{}
	m.now.Store(uint64(start))
	return m
}

// Now implements domain.Clock.
func (m *Manual) Now() domain.Timestamp {
	return domain.Timestamp(m.now.Load())
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.now.Add(uint64(d.Nanoseconds()))
}

// Set jumps the clock to t.
func (m *Manual) Set(t domain.Timestamp) {
	m.now.Store(uint64(t))
}

// Package testutil provides deterministic stand-ins for the wall clock and
// ID generation used across the test suites.
package testutil

import (
	"fmt"
	"sync"
	"time"
)

// FixedClock returns a clock function pinned to the given instant.
// Inject via store.WithClock so date defaults, receipt stamps and
// quarantine keys are stable across runs.
func FixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// SequentialIDs generates "<prefix>-1", "<prefix>-2", ... for stable
// fixtures. Thread-safe via internal mutex.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs creates a generator with the given prefix.
func NewSequentialIDs(prefix string) *SequentialIDs {
	return &SequentialIDs{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (s *SequentialIDs) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%d", s.prefix, s.n)
}

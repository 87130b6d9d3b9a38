package ids

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Generator produces action ids.
// Implemented by Sequence (default), UUIDv7 and Fixed (tests).
type Generator interface {
	Next() string
}

// Default is the process-wide sequence used when no generator is configured.
var Default Generator = NewSequence()

// Resolve returns id when it is non-empty, otherwise the next id from gen.
// A nil gen falls back to Default.
func Resolve(gen Generator, id string) string {
	if id != "" {
		return id
	}
	if gen == nil {
		gen = Default
	}
	return gen.Next()
}

// Sequence generates "#<seq>" ids from a logical clock.
//
// Thread-safety: Sequence is safe for concurrent use.
type Sequence struct {
	clock *Clock
}

// NewSequence creates a sequence whose first id is "#1".
func NewSequence() *Sequence {
	return &Sequence{clock: NewClock()}
}

// NewSequenceAt creates a sequence that resumes after start.
func NewSequenceAt(start int64) *Sequence {
	return &Sequence{clock: NewClockAt(start)}
}

// Next returns the next id.
func (s *Sequence) Next() string {
	return "#" + strconv.FormatInt(s.clock.Next(), 10)
}

// UUIDv7 generates time-sortable UUIDv7 action ids.
//
// Thread-safety: UUIDv7 is stateless and safe for concurrent use.
type UUIDv7 struct{}

// Next creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7) Next() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Fixed returns predetermined ids for testing.
//
// Thread-safety: Fixed is safe for concurrent use via internal mutex.
type Fixed struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixed creates a generator that returns ids in order.
//
// Example:
//
//	gen := NewFixed("edit-1", "edit-2")
//	gen.Next() // "edit-1"
//	gen.Next() // "edit-2"
//	gen.Next() // panic: all ids exhausted
func NewFixed(ids ...string) *Fixed {
	return &Fixed{ids: ids}
}

// Next returns the next predetermined id.
//
// Panics if all ids have been consumed, so a test that dispatches more
// actions than it planned for fails loudly.
func (g *Fixed) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("ids.Fixed: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// Package selector picks the next practice item.
package selector

import (
	"math/rand"
	"time"
)

// Focus names the pool a selection came from.
type Focus string

// Focus areas.
const (
	FocusProblem  Focus = "problem"
	FocusNew      Focus = "new"
	FocusMastered Focus = "mastered"
)

// Draw weights: problem below ProblemShare, new below NewShare, mastered otherwise.
const (
	ProblemShare = 0.7
	NewShare     = 0.9
)

// Selection is the chosen item and why.
type Selection[T any] struct {
	Item   T
	Focus  Focus
	Reason string
}

// Selector draws from an injected random source.
type Selector struct {
	rnd *rand.Rand
}

// New returns a Selector seeded with the current time.
func New() *Selector {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Selector.
func NewWithSeed(seed int64) *Selector {
	return &Selector{rnd: rand.New(rand.NewSource(seed))}
}

// Next picks from problem (worst first), fresh, or mastered items.
// A draw that lands on an empty pool falls through to the next non-empty one.
// ok is false only when every pool is empty. In particular, when only
// problem items exist and the draw lands elsewhere, the worst problem item
// is still returned instead of reporting nothing; this is a deliberate
// departure from the reference behaviour, which returns absent there.
func Next[T any](s *Selector, problem, mastered, fresh []T) (sel Selection[T], ok bool) {
	r := s.rnd.Float64()
	switch {
	case r < ProblemShare && len(problem) > 0:
		return Selection[T]{Item: problem[0], Focus: FocusProblem, Reason: "Focusing on challenging area"}, true
	case r < NewShare && len(fresh) > 0:
		return Selection[T]{Item: fresh[s.rnd.Intn(len(fresh))], Focus: FocusNew, Reason: "Trying something new"}, true
	case len(mastered) > 0:
		return Selection[T]{Item: mastered[s.rnd.Intn(len(mastered))], Focus: FocusMastered, Reason: "Quick review"}, true
	case len(fresh) > 0:
		return Selection[T]{Item: fresh[s.rnd.Intn(len(fresh))], Focus: FocusNew, Reason: "Starting fresh"}, true
	case len(problem) > 0:
		return Selection[T]{Item: problem[0], Focus: FocusProblem, Reason: "Focusing on challenging area"}, true
	}
	return sel, false
}

// Intn returns a uniform int in [0, n).
func (s *Selector) Intn(n int) int {
	return s.rnd.Intn(n)
}

// Shuffle permutes items in place.
func Shuffle[T any](s *Selector, items []T) {
	s.rnd.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

// Pick returns a uniformly random element. ok is false for an empty slice.
func Pick[T any](s *Selector, items []T) (item T, ok bool) {
	if len(items) == 0 {
		return item, false
	}
	return items[s.rnd.Intn(len(items))], true
}

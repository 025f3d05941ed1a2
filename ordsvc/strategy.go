package ordsvc

import (
	"sync"

	"github.com/gordian-engine/ordgate/round"
)

// CreationStrategy decides whether this node should actually build a
// proposal for a given round, or defer to the cached/empty result.
// Used so only a minority of peers per round do the work of
// assembling a proposal, reducing redundant work while preserving
// liveness (see Glossary: "Creation strategy").
type CreationStrategy interface {
	// ShouldCreate reports whether this node should build a proposal
	// for r, given it has not already cached one.
	ShouldCreate(r round.Round) bool

	// OnProposal marks r as served, so a later ShouldCreate(r) call
	// returns false.
	OnProposal(r round.Round)
}

// ringSize is arbitrary but must be more than 3, so that a handful of
// in-flight rounds (current, a couple of recent rejects, the next
// one being requested early) can all be remembered at once.
const ringSize = 5

// UniqueCreationStrategy creates a proposal for a round at most once.
// It remembers the last few rounds it has served in a small ring
// buffer rather than an ever-growing set, since only recent rounds
// are ever asked about again.
type UniqueCreationStrategy struct {
	mu   sync.Mutex
	ring [ringSize]round.Round
	next int
	full bool
}

// NewUniqueCreationStrategy returns a CreationStrategy that creates a
// proposal for any given round exactly once.
func NewUniqueCreationStrategy() *UniqueCreationStrategy {
	return &UniqueCreationStrategy{}
}

func (s *UniqueCreationStrategy) contains(r round.Round) bool {
	limit := s.next
	if s.full {
		limit = ringSize
	}
	for i := 0; i < limit; i++ {
		if s.ring[i] == r {
			return true
		}
	}
	return false
}

// ShouldCreate reports whether r has not yet been recorded via
// OnProposal.
func (s *UniqueCreationStrategy) ShouldCreate(r round.Round) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.contains(r)
}

// OnProposal records r as served.
func (s *UniqueCreationStrategy) OnProposal(r round.Round) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.contains(r) {
		return
	}
	s.ring[s.next] = r
	s.next++
	if s.next == ringSize {
		s.next = 0
		s.full = true
	}
}

// AlwaysCreateStrategy always permits creation. Useful for tests and
// for single-node deployments where proposal-storm reduction doesn't
// matter.
type AlwaysCreateStrategy struct{}

func (AlwaysCreateStrategy) ShouldCreate(round.Round) bool { return true }
func (AlwaysCreateStrategy) OnProposal(round.Round)        {}

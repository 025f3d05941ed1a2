package ordgate

import (
	"time"

	"github.com/gordian-engine/ordgate/ordtypes"
)

// rejectBackoff tracks the reject-delay policy: every two consecutive
// reject-or-nothing outcomes push the delay up by one increment, up
// to a configured ceiling. A single commit resets it to zero. Ported
// from irohad's ConsensusOutcomeDelay, which uses the same
// every-other-call counter rather than a per-call increment, so that
// the delay doesn't ramp up too aggressively on a single bad round.
type rejectBackoff struct {
	increment time.Duration
	max       time.Duration

	delay      time.Duration
	localCount int
}

func newRejectBackoff(increment, max time.Duration) rejectBackoff {
	return rejectBackoff{increment: increment, max: max}
}

// Observe folds in the outcome of the round just resolved and returns
// the delay to apply before the next proposal request.
func (b *rejectBackoff) Observe(outcome ordtypes.SyncOutcome) time.Duration {
	if outcome == ordtypes.SyncCommit {
		b.delay = 0
		b.localCount = 0
		return b.delay
	}

	b.localCount++
	if b.localCount == 2 {
		b.localCount = 0
		if b.delay < b.max {
			b.delay += b.increment
			if b.delay > b.max {
				b.delay = b.max
			}
		}
	}
	return b.delay
}

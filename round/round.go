// Package round defines the round-identifier algebra used throughout
// the on-demand ordering and YAC voting subsystems.
//
// A Round is a consensus-critical value: every honest peer must agree
// on its advancement rules bit-for-bit, so the functions in this
// package are pure and allocation-free.
package round

import "fmt"

// Round identifies a position in the consensus timeline.
//
// BlockRound advances when a block commits; RejectRound advances when
// consensus rejects, or produces nothing, for the current block round.
// The zero value is not a valid round on its own; callers should start
// from an explicit genesis round.
type Round struct {
	BlockRound  uint64
	RejectRound uint32
}

// The two directions a pending transaction can be pre-assembled for,
// relative to the round that will follow the current one.
const (
	NextCommitConsumer = 0
	NextRejectConsumer = 1
)

// Genesis returns the initial round for a chain starting at the given
// height.
func Genesis(genesisHeight uint64) Round {
	return Round{BlockRound: genesisHeight, RejectRound: 0}
}

// NextCommitRound returns the round that follows r when the current
// block round commits.
func NextCommitRound(r Round) Round {
	return Round{BlockRound: r.BlockRound + 1, RejectRound: 0}
}

// NextRejectRound returns the round that follows r when the current
// block round is rejected, or when consensus produces nothing.
func NextRejectRound(r Round) Round {
	return Round{BlockRound: r.BlockRound, RejectRound: r.RejectRound + 1}
}

// CurrentRejectConsumer returns the permutation index of the peer
// pre-seeded for the round that would follow a reject at rejectRound.
func CurrentRejectConsumer(rejectRound uint32) uint32 {
	return rejectRound + 1
}

// Compare returns -1, 0, or 1 as a is less than, equal to, or greater
// than b in the lexicographic order on (BlockRound, RejectRound).
func Compare(a, b Round) int {
	if a.BlockRound != b.BlockRound {
		if a.BlockRound < b.BlockRound {
			return -1
		}
		return 1
	}
	if a.RejectRound != b.RejectRound {
		if a.RejectRound < b.RejectRound {
			return -1
		}
		return 1
	}
	return 0
}

// Less reports whether a strictly precedes b.
func Less(a, b Round) bool {
	return Compare(a, b) < 0
}

// String implements fmt.Stringer for logging.
func (r Round) String() string {
	return fmt.Sprintf("(%d,%d)", r.BlockRound, r.RejectRound)
}

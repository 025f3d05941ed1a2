package connmgr

import "github.com/gordian-engine/ordgate/ordtypes"

// Role tags one of the five peers the connection manager binds on
// every synchronization event.
type Role uint8

const (
	// Issuer is the peer this node requests a proposal from for the
	// current round.
	Issuer Role = iota

	// RejectRejectConsumer is pre-seeded for the round reached if the
	// current round rejects and the one after it also rejects.
	RejectRejectConsumer

	// RejectCommitConsumer is pre-seeded for the round reached if the
	// current round rejects and the one after it commits.
	RejectCommitConsumer

	// CommitRejectConsumer is pre-seeded for the round reached if the
	// current round commits and the one after it rejects.
	CommitRejectConsumer

	// CommitCommitConsumer is pre-seeded for the round reached if the
	// current round commits and the one after it also commits.
	CommitCommitConsumer
)

// String implements fmt.Stringer for logging.
func (r Role) String() string {
	switch r {
	case Issuer:
		return "issuer"
	case RejectRejectConsumer:
		return "reject_reject_consumer"
	case RejectCommitConsumer:
		return "reject_commit_consumer"
	case CommitRejectConsumer:
		return "commit_reject_consumer"
	case CommitCommitConsumer:
		return "commit_commit_consumer"
	default:
		return "unknown_role"
	}
}

// CurrentPeers is the atomically-replaced role -> peer binding the
// connection manager computes on every synchronization event. The
// zero value has no valid bindings; use Manager.Current to obtain one.
type CurrentPeers struct {
	Issuer ordtypes.Peer

	RejectReject ordtypes.Peer
	CommitReject ordtypes.Peer
	RejectCommit ordtypes.Peer
	CommitCommit ordtypes.Peer
}

// Get returns the peer bound to role.
func (c CurrentPeers) Get(role Role) ordtypes.Peer {
	switch role {
	case Issuer:
		return c.Issuer
	case RejectRejectConsumer:
		return c.RejectReject
	case CommitRejectConsumer:
		return c.CommitReject
	case RejectCommitConsumer:
		return c.RejectCommit
	case CommitCommitConsumer:
		return c.CommitCommit
	default:
		return ordtypes.Peer{}
	}
}

// Consumers returns the four peers this node should forward pending
// batches to, so that whichever of the four possible next rounds
// materializes has a head start assembling its proposal.
func (c CurrentPeers) Consumers() []ordtypes.Peer {
	return []ordtypes.Peer{c.RejectReject, c.CommitReject, c.RejectCommit, c.CommitCommit}
}

// Package ordtypes holds the data types shared across the on-demand
// ordering and YAC voting packages: peers, ledger snapshots,
// synchronization events, proposals, and vote bundles.
//
// Keeping these in one leaf package (mirroring how tmconsensus anchors
// the rest of the engine) avoids import cycles between round, permute,
// connmgr, ordsvc, ordgate, and yac.
package ordtypes

import (
	"time"

	"github.com/gordian-engine/ordgate/gcrypto"
	"github.com/gordian-engine/ordgate/round"
)

// BlockHash is an opaque, fixed-width committed-block hash.
// Its only required property is uniform distribution, since it is
// consumed directly as PRNG seed material by the permutation oracle.
type BlockHash [32]byte

// Peer identifies a node this peer may request a proposal from,
// forward batches to, or exchange votes with. Peer identity is the
// public key; Address is transport-layer (host:port) information.
type Peer struct {
	Address        string
	PubKey         gcrypto.PubKey
	TLSCertificate []byte // optional; nil means the peer accepts plaintext/insecure transport
}

// LedgerState is an immutable snapshot produced by the synchronizer.
// It is referenced by round and shared by every consumer of that
// round; its lifetime is the longest-lived consumer.
type LedgerState struct {
	LedgerPeers []Peer
}

// SyncOutcome is the resolution of a round as determined by the
// synchronizer.
type SyncOutcome uint8

const (
	// SyncUnknown is the zero value and is never a valid outcome.
	SyncUnknown SyncOutcome = iota
	SyncCommit
	SyncReject
	SyncNothing
)

// String implements fmt.Stringer for logging.
func (o SyncOutcome) String() string {
	switch o {
	case SyncCommit:
		return "commit"
	case SyncReject:
		return "reject"
	case SyncNothing:
		return "nothing"
	default:
		return "unknown"
	}
}

// SynchronizationEvent is emitted by the synchronizer once it has
// resolved a round.
type SynchronizationEvent struct {
	Round       round.Round
	Outcome     SyncOutcome
	LedgerState LedgerState
}

// TxHash identifies a transaction for presence-cache lookups and
// FIFO tie-breaking.
type TxHash [32]byte

// Transaction is an opaque, already-admitted unit of work. The core
// never inspects transaction payloads; it orders and forwards them.
type Transaction struct {
	Hash      TxHash
	Payload   []byte
	AdmitTime time.Time
}

// Batch is a group of transactions admitted to the ordering service
// together, e.g. from a single client submission or a single peer's
// forwarded set.
type Batch struct {
	Transactions []Transaction
}

// Proposal is an ordered sequence of transactions assembled for a
// specific round.
type Proposal struct {
	Round        round.Round
	Transactions []Transaction
	CreatedAt    time.Time
}

// Empty reports whether the proposal carries no transactions. A gate
// or ordering service returns an Empty proposal rather than an error
// whenever a round cannot be served, so consensus always has
// something to vote on.
func (p Proposal) Empty() bool {
	return len(p.Transactions) == 0
}

// ProposalHash identifies a Proposal for voting purposes.
type ProposalHash [32]byte

// Signature is an opaque signature-with-key pair, as carried on the
// wire by a VoteMessage. Verification is delegated to gcrypto.PubKey;
// the core never inspects signature bytes itself.
type Signature struct {
	PubKey gcrypto.PubKey
	Sig    []byte
}

// VoteMessage is a single signed vote for a proposal hash at a round.
// A bundle of VoteMessages is only valid if every vote shares the
// same Round; see yac.ReceiveState.
type VoteMessage struct {
	Hash      ProposalHash
	Signature Signature
	Round     round.Round
}

// SameRound reports whether every vote in bundle shares one round,
// writing that round to *r when bundle is non-empty.
func SameRound(bundle []VoteMessage, r *round.Round) bool {
	if len(bundle) == 0 {
		return false
	}
	first := bundle[0].Round
	for _, v := range bundle[1:] {
		if v.Round != first {
			return false
		}
	}
	if r != nil {
		*r = first
	}
	return true
}

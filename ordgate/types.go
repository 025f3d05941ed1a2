// Package ordgate implements the round state machine that ties the
// connection manager, the local ordering service, and the remote
// proposal fetch together: the Ordering Gate.
//
// A Gate runs as a single actor goroutine. Every external event
// (a synchronization event, a committed block, an arrived proposal,
// a locally propagated batch) is delivered over a channel and handled
// one at a time, so the state transitions in the Design Notes hold
// without any additional locking.
package ordgate

import (
	"context"

	"github.com/gordian-engine/ordgate/connmgr"
	"github.com/gordian-engine/ordgate/ordsvc"
	"github.com/gordian-engine/ordgate/ordtypes"
	"github.com/gordian-engine/ordgate/round"
)

// CommittedBlock carries what the gate needs to know about a newly
// committed block: which transactions it finalized, and which ones it
// explicitly rejected. Both sets are evicted from the pending
// transaction pool together (see Glossary: "ordering gate cache").
type CommittedBlock struct {
	Hash                      ordtypes.BlockHash
	Transactions              []ordtypes.Transaction
	RejectedTransactionHashes []ordtypes.TxHash
}

// RoundedProposal pairs a Proposal with the round it was assembled
// for, since a Proposal can be Empty and still needs to be routed to
// the right round's voting.
type RoundedProposal struct {
	Round    round.Round
	Proposal ordtypes.Proposal
}

// ProposalRequester fetches a proposal from a remote peer for a given
// round. Implemented by the ordgrpc client.
type ProposalRequester interface {
	RequestProposal(ctx context.Context, peer ordtypes.Peer, r round.Round) (ordtypes.Proposal, error)
}

// ConnectionResolver binds round-relative roles to peers and slides
// the permutation-seed hash window. Implemented by *connmgr.Manager.
type ConnectionResolver interface {
	OnSyncEvent(e ordtypes.SynchronizationEvent) (connmgr.CurrentPeers, error)
	OnCommittedBlock(hash ordtypes.BlockHash)
}

// LocalOrderingService is the subset of *ordsvc.Service the gate
// drives directly: round-switch eviction of stale cached proposals,
// and finalized-hash eviction of the pending transaction pool.
type LocalOrderingService interface {
	OnRoundSwitch(r round.Round)
	EvictFinalized(hashes map[ordtypes.TxHash]struct{})
	OnBatches(batches []ordtypes.Batch)
}

// TxPresenceCache is the same external collaborator ordsvc uses to
// admit batches; the gate reuses it to filter a fetched proposal
// before handing it to voting (a proposal can arrive from a peer
// slower than the local eviction path).
type TxPresenceCache = ordsvc.TxPresenceCache

package connmgr

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gordian-engine/ordgate/ordtypes"
	"github.com/gordian-engine/ordgate/permute"
	"github.com/gordian-engine/ordgate/round"
)

// ErrNoPeers is returned when a synchronization event's LedgerState
// carries an empty peer list. The binding is left undefined and the
// previous CurrentPeers, if any, is left in place.
var ErrNoPeers = errors.New("connmgr: ledger state has no peers")

// Manager resolves, for each active round, the five role-tagged peers
// this node must talk to. It holds a single atomically-replaced
// CurrentPeers value: one writer (the synchronization-event consumer)
// and many readers (request dispatch), matching the "writer replaces
// whole, readers snapshot-and-go" rule: the value is small enough
// that copy-on-update is cheaper than locking a partial structure.
type Manager struct {
	log *slog.Logger

	// hashes[0] is the oldest of the three-hash window, hashes[2] the
	// most recently committed. Primed at construction with the two
	// configured initial hashes; hashes[2] starts as a copy of the
	// second one, so the window is full from construction, and each
	// commit slides it by one.
	hashes [3]ordtypes.BlockHash

	current atomic.Pointer[CurrentPeers]

	forwarder *Forwarder
}

// New creates a Manager primed with the two initial hashes supplied
// at node startup (genesis and pre-genesis primers). The third slot
// of the hash window starts as a copy of initialHashes[1]; the first
// call to OnCommittedBlock replaces it with the committed hash.
func New(log *slog.Logger, initialHashes [2]ordtypes.BlockHash, fwd *Forwarder) *Manager {
	if log == nil {
		log = slog.Default()
	}
	m := &Manager{
		log:       log,
		forwarder: fwd,
	}
	m.hashes[0] = initialHashes[0]
	m.hashes[1] = initialHashes[1]
	m.hashes[2] = initialHashes[1]
	return m
}

// OnCommittedBlock slides the three-hash window forward with the hash
// of a newly committed block.
func (m *Manager) OnCommittedBlock(hash ordtypes.BlockHash) {
	m.hashes[0], m.hashes[1], m.hashes[2] = m.hashes[1], m.hashes[2], hash
}

// OnSyncEvent computes the five role->peer bindings for e and
// publishes them as the new CurrentPeers. It returns ErrNoPeers,
// without modifying the published bindings, if e's ledger state
// carries no peers.
func (m *Manager) OnSyncEvent(e ordtypes.SynchronizationEvent) (CurrentPeers, error) {
	peers := e.LedgerState.LedgerPeers
	n := len(peers)
	if n == 0 {
		return CurrentPeers{}, ErrNoPeers
	}
	if n < 5 {
		m.log.Warn("connmgr: fewer than 5 ledger peers; role bindings will collapse onto the same peers",
			"peer_count", n)
	}

	window := permute.Window{m.hashes[0][:], m.hashes[1][:], m.hashes[2][:]}
	perms := window.Permutations(n)
	p0, p1, p2 := perms[0], perms[1], perms[2]

	var current round.Round
	switch e.Outcome {
	case ordtypes.SyncCommit:
		current = round.NextCommitRound(e.Round)
	case ordtypes.SyncReject, ordtypes.SyncNothing:
		current = round.NextRejectRound(e.Round)
	default:
		return CurrentPeers{}, fmt.Errorf("connmgr: unknown sync outcome %v", e.Outcome)
	}

	idx := func(perm []int, i uint32) ordtypes.Peer {
		return peers[perm[int(i)%n]]
	}

	cp := CurrentPeers{
		Issuer:       idx(p0, current.RejectRound),
		RejectReject: idx(p0, round.CurrentRejectConsumer(current.RejectRound)),
		RejectCommit: idx(p1, round.NextCommitConsumer),
		CommitReject: idx(p1, round.NextRejectConsumer),
		CommitCommit: idx(p2, round.NextCommitConsumer),
	}

	m.current.Store(&cp)

	if m.forwarder != nil {
		m.forwarder.OnCurrentPeersUpdated(cp)
	}

	return cp, nil
}

// Current returns the most recently published binding. It reports
// false if no synchronization event has been processed yet.
func (m *Manager) Current() (CurrentPeers, bool) {
	p := m.current.Load()
	if p == nil {
		return CurrentPeers{}, false
	}
	return *p, true
}

package connmgr_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gordian-engine/ordgate/connmgr"
	"github.com/gordian-engine/ordgate/gcrypto/gcryptotest"
	"github.com/gordian-engine/ordgate/gtest"
	"github.com/gordian-engine/ordgate/ordtypes"
	"github.com/gordian-engine/ordgate/permute"
	"github.com/gordian-engine/ordgate/round"
)

func fivePeers() []ordtypes.Peer {
	signers := gcryptotest.DeterministicEd25519Signers(5)
	peers := make([]ordtypes.Peer, 5)
	for i := range peers {
		peers[i] = ordtypes.Peer{
			Address: string(rune('A' + i)),
			PubKey:  signers[i].PubKey(),
		}
	}
	return peers
}

func hashOf(b byte) ordtypes.BlockHash {
	var h ordtypes.BlockHash
	h[0] = b
	return h
}

// TestScenarioACommitAdvancesBlockRound checks that after a commit
// outcome the issuer is taken from index 0 (the reject round of the
// new block round) of the permutation of the oldest window hash.
func TestScenarioACommitAdvancesBlockRound(t *testing.T) {
	peers := fivePeers()
	ha, hb := hashOf(0xAA), hashOf(0xBB)

	mgr := connmgr.New(gtest.NewLogger(t), [2]ordtypes.BlockHash{ha, hb}, nil)

	event := ordtypes.SynchronizationEvent{
		Round:       round.Round{BlockRound: 10, RejectRound: 0},
		Outcome:     ordtypes.SyncCommit,
		LedgerState: ordtypes.LedgerState{LedgerPeers: peers},
	}

	cp, err := mgr.OnSyncEvent(event)
	require.NoError(t, err)

	pa := permute.Permutation(ha[:], 5)
	wantIssuer := peers[pa[0%5]]
	require.Equal(t, wantIssuer, cp.Issuer)
}

// TestScenarioBRejectAdvancesRejectRound checks that a reject outcome
// advances the reject round while leaving the block round and the
// peer-binding hashes unchanged.
func TestScenarioBRejectAdvancesRejectRound(t *testing.T) {
	peers := fivePeers()
	ha, hb := hashOf(0xAA), hashOf(0xBB)

	mgr := connmgr.New(gtest.NewLogger(t), [2]ordtypes.BlockHash{ha, hb}, nil)

	event := ordtypes.SynchronizationEvent{
		Round:       round.Round{BlockRound: 10, RejectRound: 3},
		Outcome:     ordtypes.SyncReject,
		LedgerState: ordtypes.LedgerState{LedgerPeers: peers},
	}

	cp, err := mgr.OnSyncEvent(event)
	require.NoError(t, err)

	pa := permute.Permutation(ha[:], 5)
	wantIssuer := peers[pa[4%5]]
	require.Equal(t, wantIssuer, cp.Issuer)
}

// TestScenarioCNothingAdvancesRejectRound checks that a Nothing
// outcome behaves identically to a Reject outcome.
func TestScenarioCNothingAdvancesRejectRound(t *testing.T) {
	peers := fivePeers()
	ha, hb := hashOf(0xAA), hashOf(0xBB)

	mgrReject := connmgr.New(gtest.NewLogger(t), [2]ordtypes.BlockHash{ha, hb}, nil)
	mgrNothing := connmgr.New(gtest.NewLogger(t), [2]ordtypes.BlockHash{ha, hb}, nil)

	base := ordtypes.SynchronizationEvent{
		Round:       round.Round{BlockRound: 10, RejectRound: 3},
		LedgerState: ordtypes.LedgerState{LedgerPeers: peers},
	}

	rejectEvent := base
	rejectEvent.Outcome = ordtypes.SyncReject
	nothingEvent := base
	nothingEvent.Outcome = ordtypes.SyncNothing

	cpReject, err := mgrReject.OnSyncEvent(rejectEvent)
	require.NoError(t, err)
	cpNothing, err := mgrNothing.OnSyncEvent(nothingEvent)
	require.NoError(t, err)

	require.Equal(t, cpReject, cpNothing)
}

func TestEmptyPeersRefusesBinding(t *testing.T) {
	mgr := connmgr.New(gtest.NewLogger(t), [2]ordtypes.BlockHash{hashOf(1), hashOf(2)}, nil)

	event := ordtypes.SynchronizationEvent{
		Round:       round.Round{BlockRound: 1, RejectRound: 0},
		Outcome:     ordtypes.SyncCommit,
		LedgerState: ordtypes.LedgerState{LedgerPeers: nil},
	}

	_, err := mgr.OnSyncEvent(event)
	require.ErrorIs(t, err, connmgr.ErrNoPeers)

	_, ok := mgr.Current()
	require.False(t, ok)
}

func TestRoleDisjointnessWithFivePeers(t *testing.T) {
	peers := fivePeers()
	mgr := connmgr.New(gtest.NewLogger(t), [2]ordtypes.BlockHash{hashOf(1), hashOf(2)}, nil)

	event := ordtypes.SynchronizationEvent{
		Round:       round.Round{BlockRound: 1, RejectRound: 0},
		Outcome:     ordtypes.SyncCommit,
		LedgerState: ordtypes.LedgerState{LedgerPeers: peers},
	}

	cp, err := mgr.OnSyncEvent(event)
	require.NoError(t, err)

	all := []ordtypes.Peer{cp.Issuer, cp.RejectReject, cp.CommitReject, cp.RejectCommit, cp.CommitCommit}
	seen := make(map[string]bool, len(all))
	distinct := 0
	for _, p := range all {
		if !seen[p.Address] {
			seen[p.Address] = true
			distinct++
		}
	}
	// Not guaranteed distinct for every seed, but with 5 peers and
	// independent permutations collisions should be rare; this guards
	// against a gross implementation error collapsing everything onto
	// one peer.
	require.Greater(t, distinct, 1)
}

type stubSender struct {
	pushed []ordtypes.Peer
}

func (s *stubSender) PushBatch(_ context.Context, peer ordtypes.Peer, _ ordtypes.Batch) error {
	s.pushed = append(s.pushed, peer)
	return nil
}

type stubPending struct {
	txs []ordtypes.Transaction
}

func (s stubPending) Pending() []ordtypes.Transaction { return s.txs }

func TestForwarderBroadcastsToConsumersOnUpdate(t *testing.T) {
	peers := fivePeers()
	sender := &stubSender{}
	pending := stubPending{txs: []ordtypes.Transaction{{Hash: ordtypes.TxHash{1}}}}

	fwd := connmgr.NewForwarder(gtest.NewLogger(t), sender, pending)
	mgr := connmgr.New(gtest.NewLogger(t), [2]ordtypes.BlockHash{hashOf(1), hashOf(2)}, fwd)

	event := ordtypes.SynchronizationEvent{
		Round:       round.Round{BlockRound: 1, RejectRound: 0},
		Outcome:     ordtypes.SyncCommit,
		LedgerState: ordtypes.LedgerState{LedgerPeers: peers},
	}

	_, err := mgr.OnSyncEvent(event)
	require.NoError(t, err)
	require.Len(t, sender.pushed, 4)

	stats := fwd.GetStats()
	require.Equal(t, uint64(4), stats.TxForwarded)
}

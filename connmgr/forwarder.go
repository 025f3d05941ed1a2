package connmgr

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gordian-engine/ordgate/ordtypes"
)

// BatchSender pushes a batch of transactions to a peer's ordering
// service. It is satisfied by the gRPC ordering-service client; tests
// use an in-process stub.
type BatchSender interface {
	PushBatch(ctx context.Context, peer ordtypes.Peer, batch ordtypes.Batch) error
}

// PendingSource supplies the transactions currently awaiting
// inclusion, so the forwarder can re-broadcast them to the current
// consumer set whenever it changes. The ordering gate's cache
// satisfies this.
type PendingSource interface {
	Pending() []ordtypes.Transaction
}

// Forwarder keeps the four consumer peers warm with pending
// transactions, so that whichever of the four possible next rounds
// materializes has its proposal ready to assemble immediately.
//
// A small set of upcoming proposers is refreshed wholesale on every
// round update, and pending transactions are rebroadcast to the
// entire set, rather than tracking an arbitrarily large priority
// queue of proposers: the round algebra names exactly four consumer
// roles, so the set size is fixed.
type Forwarder struct {
	log     *slog.Logger
	sender  BatchSender
	pending PendingSource

	mu       sync.RWMutex
	current  []ordtypes.Peer
	haveSent bool

	txForwarded atomic.Uint64
	sendErrors  atomic.Uint64
}

// NewForwarder creates a Forwarder. pending may be nil during initial
// wiring and set later via SetPendingSource, since the ordering
// gate and the connection manager are often constructed together.
func NewForwarder(log *slog.Logger, sender BatchSender, pending PendingSource) *Forwarder {
	if log == nil {
		log = slog.Default()
	}
	return &Forwarder{
		log:     log,
		sender:  sender,
		pending: pending,
	}
}

// SetPendingSource wires the source of pending transactions after
// construction, breaking the forwarder/gate initialization cycle.
func (f *Forwarder) SetPendingSource(p PendingSource) {
	f.mu.Lock()
	f.pending = p
	f.mu.Unlock()
}

// OnCurrentPeersUpdated replaces the target consumer set and
// rebroadcasts pending transactions to it.
func (f *Forwarder) OnCurrentPeersUpdated(cp CurrentPeers) {
	f.mu.Lock()
	f.current = cp.Consumers()
	f.mu.Unlock()

	f.broadcastPending(context.Background())
}

// Stats reports forwarding counters for observability.
type Stats struct {
	TxForwarded uint64
	SendErrors  uint64
}

// GetStats returns current forwarding statistics.
func (f *Forwarder) GetStats() Stats {
	return Stats{
		TxForwarded: f.txForwarded.Load(),
		SendErrors:  f.sendErrors.Load(),
	}
}

func (f *Forwarder) broadcastPending(ctx context.Context) {
	f.mu.RLock()
	targets := f.current
	src := f.pending
	f.mu.RUnlock()

	if len(targets) == 0 || src == nil {
		return
	}

	txs := src.Pending()
	if len(txs) == 0 {
		return
	}
	batch := ordtypes.Batch{Transactions: txs}

	for _, peer := range targets {
		if err := f.sender.PushBatch(ctx, peer, batch); err != nil {
			f.sendErrors.Add(1)
			f.log.Warn("connmgr: forward batch failed",
				"peer", peer.Address, "error", err)
			continue
		}
		f.txForwarded.Add(uint64(len(txs)))
	}
}

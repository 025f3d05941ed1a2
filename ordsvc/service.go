// Package ordsvc implements the per-peer proposal assembler: the
// on-demand ordering service that answers proposal requests for
// requested rounds.
package ordsvc

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/gordian-engine/ordgate/ordtypes"
	"github.com/gordian-engine/ordgate/round"
)

// Config configures a Service.
type Config struct {
	// MaxNumberOfTransactions caps the size of any assembled
	// proposal.
	MaxNumberOfTransactions uint32

	Factory  ProposalFactory
	Presence TxPresenceCache
	Strategy CreationStrategy
	Log      *slog.Logger
}

// Service is the per-node proposal assembler. All mutation is
// serialized by a single mutex, since batch admission, proposal
// assembly, and eviction all touch the same pending set.
type Service struct {
	maxTx    uint32
	factory  ProposalFactory
	presence TxPresenceCache
	strategy CreationStrategy
	log      *slog.Logger

	mu      sync.Mutex
	current round.Round                       // last round passed to OnRoundSwitch
	pending []ordtypes.Transaction            // FIFO of admitted transactions, kept until EvictFinalized removes them
	served  map[round.Round]ordtypes.Proposal // cached proposals, evicted on round switch
}

// New creates a Service. If cfg.Factory, cfg.Strategy, or cfg.Log are
// nil, sensible defaults are used (UnsafeProposalFactory,
// UniqueCreationStrategy, slog.Default()).
func New(cfg Config) *Service {
	if cfg.Factory == nil {
		cfg.Factory = NewUnsafeProposalFactory()
	}
	if cfg.Strategy == nil {
		cfg.Strategy = NewUniqueCreationStrategy()
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	return &Service{
		maxTx:    cfg.MaxNumberOfTransactions,
		factory:  cfg.Factory,
		presence: cfg.Presence,
		strategy: cfg.Strategy,
		log:      cfg.Log,
		served:   make(map[round.Round]ordtypes.Proposal),
	}
}

// OnBatches admits transaction batches pushed by peers or the local
// client. Transactions whose hash is already committed or rejected
// are dropped.
func (s *Service) OnBatches(batches []ordtypes.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range batches {
		for _, tx := range b.Transactions {
			if s.presence != nil {
				p, err := s.presence.Check(tx.Hash)
				if err != nil {
					s.log.Error("ordsvc: presence check failed; admitting transaction anyway", "error", err)
				} else if p == Committed || p == Rejected {
					continue
				}
			}
			s.pending = append(s.pending, tx)
		}
	}
}

// OnRequestProposal answers a proposal request for r. If a proposal
// is already cached for r, it is returned unchanged. A request for a
// round older than the last OnRoundSwitch round is stale and gets no
// proposal. Otherwise, if the creation strategy permits it and pending
// transactions exist, up to MaxNumberOfTransactions are assembled,
// cached, and returned; assembling a proposal does not remove its
// transactions from the pending set.
// The second return value is false only when no proposal could be
// produced; callers should treat that as an empty proposal rather
// than an error.
func (s *Service) OnRequestProposal(r round.Round) (ordtypes.Proposal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if round.Less(r, s.current) {
		return ordtypes.Proposal{}, false
	}

	if p, ok := s.served[r]; ok {
		return p, true
	}

	if !s.strategy.ShouldCreate(r) {
		return ordtypes.Proposal{}, false
	}
	if len(s.pending) == 0 {
		return ordtypes.Proposal{}, false
	}

	n := int(s.maxTx)
	if n <= 0 || n > len(s.pending) {
		n = len(s.pending)
	}

	txs := make([]ordtypes.Transaction, n)
	copy(txs, s.pending[:n])

	// FIFO of admission time, ties broken by hash ascending. This
	// tie-break is consensus-critical: every honest peer building the
	// same proposal from the same pending set must agree on order.
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].AdmitTime.Equal(txs[j].AdmitTime) {
			return txs[i].AdmitTime.Before(txs[j].AdmitTime)
		}
		return lessHash(txs[i].Hash, txs[j].Hash)
	})

	proposal := s.factory.Create(r, txs, time.Now())
	s.served[r] = proposal
	s.strategy.OnProposal(r)

	return proposal, true
}

// OnRoundSwitch evicts cached proposals strictly older than r (see
// Glossary: "stale round"), and makes later requests for such rounds
// return no proposal. It does not touch the pending
// transaction set; that is governed by committed/rejected hash
// eviction, see EvictFinalized.
func (s *Service) OnRoundSwitch(r round.Round) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = r
	for cached := range s.served {
		if round.Less(cached, r) {
			delete(s.served, cached)
		}
	}
}

// EvictFinalized removes every pending transaction whose hash is in
// hashes. Called once a block commits, with the union of its
// committed and rejected transaction hashes, so that what is now
// final is no longer proposed again.
func (s *Service) EvictFinalized(hashes map[ordtypes.TxHash]struct{}) {
	if len(hashes) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.pending[:0]
	for _, tx := range s.pending {
		if _, finalized := hashes[tx.Hash]; finalized {
			continue
		}
		kept = append(kept, tx)
	}
	s.pending = kept
}

// Pending returns a snapshot of the currently admitted transactions
// not yet removed by EvictFinalized, in FIFO order. It implements connmgr.PendingSource so
// the connection manager's forwarder can keep consumer peers warm.
func (s *Service) Pending() []ordtypes.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ordtypes.Transaction, len(s.pending))
	copy(out, s.pending)
	return out
}

func lessHash(a, b ordtypes.TxHash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

package ordgate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gordian-engine/ordgate/ordsvc"
	"github.com/gordian-engine/ordgate/ordtypes"
	"github.com/gordian-engine/ordgate/round"
)

// state is the gate's own bookkeeping for the round it is currently
// waiting on. It is only ever touched from the run loop goroutine.
type state uint8

const (
	stateIdle state = iota
	stateAwaitingProposal
	stateProposalReady
)

// Config configures a Gate.
type Config struct {
	// Delay bounds how long a single proposal request may take before
	// the gate gives up and emits an Empty proposal for the round.
	Delay time.Duration

	// RejectDelayIncrement and MaxRejectDelay parameterize the
	// reject-outcome backoff; see rejectBackoff.
	RejectDelayIncrement time.Duration
	MaxRejectDelay       time.Duration

	Log *slog.Logger
}

// Gate is the on-demand ordering gate: the round state machine that
// turns synchronization events into outbound proposal requests, and
// arrived proposals (filtered against on-chain presence) into a
// downstream stream consumed by voting.
//
// A Gate owns exactly one background goroutine. All of its exported
// methods are channel sends (or channel reads) and are safe to call
// from any number of goroutines; the state transitions themselves are
// single-threaded by construction.
type Gate struct {
	log *slog.Logger

	conn      ConnectionResolver
	local     LocalOrderingService
	requester ProposalRequester
	presence  TxPresenceCache

	backoff rejectBackoff
	delay   time.Duration

	syncEvents      chan ordtypes.SynchronizationEvent
	committedBlocks chan CommittedBlock
	batchIngress    chan ordtypes.Batch
	proposalResults chan proposalResult
	out             chan RoundedProposal

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// proposalResult is the internal message a dispatched proposal fetch
// reports back to the run loop with, tagged with the generation it
// was issued under so a superseded request can be discarded silently.
type proposalResult struct {
	generation uint64
	round      round.Round
	proposal   ordtypes.Proposal
}

// New creates and starts a Gate. The returned Gate must be closed with
// Close once no longer needed.
func New(cfg Config, conn ConnectionResolver, local LocalOrderingService, requester ProposalRequester, presence TxPresenceCache) *Gate {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	g := &Gate{
		log:       cfg.Log,
		conn:      conn,
		local:     local,
		requester: requester,
		presence:  presence,
		backoff:   newRejectBackoff(cfg.RejectDelayIncrement, cfg.MaxRejectDelay),
		delay:     cfg.Delay,

		syncEvents:      make(chan ordtypes.SynchronizationEvent),
		committedBlocks: make(chan CommittedBlock),
		batchIngress:    make(chan ordtypes.Batch),
		proposalResults: make(chan proposalResult),
		out:             make(chan RoundedProposal, 8),

		ctx:    ctx,
		cancel: cancel,
	}

	g.wg.Add(1)
	go g.run()

	return g
}

func (g *Gate) run() {
	defer g.wg.Done()

	var st state
	var generation uint64
	var lastEmitted round.Round
	haveEmitted := false

	for {
		select {
		case <-g.ctx.Done():
			return

		case e := <-g.syncEvents:
			cp, err := g.conn.OnSyncEvent(e)
			if err != nil {
				g.log.Error("ordgate: connection resolution failed; stalling on this round", "error", err)
				continue
			}

			var next round.Round
			if e.Outcome == ordtypes.SyncCommit {
				next = round.NextCommitRound(e.Round)
			} else {
				next = round.NextRejectRound(e.Round)
			}

			if haveEmitted && !round.Less(lastEmitted, next) {
				g.log.Error("ordgate: non-monotonic round switch observed; stalling",
					"last_emitted", lastEmitted, "next", next)
				continue
			}

			delay := g.backoff.Observe(e.Outcome)

			generation++
			st = stateAwaitingProposal
			lastEmitted = next
			haveEmitted = true

			g.local.OnRoundSwitch(next)

			g.wg.Add(1)
			go g.dispatchProposalRequest(next, cp.Issuer, generation, delay)

		case b := <-g.committedBlocks:
			finalized := make(map[ordtypes.TxHash]struct{}, len(b.Transactions)+len(b.RejectedTransactionHashes))
			for _, tx := range b.Transactions {
				finalized[tx.Hash] = struct{}{}
			}
			for _, h := range b.RejectedTransactionHashes {
				finalized[h] = struct{}{}
			}
			g.local.EvictFinalized(finalized)
			g.conn.OnCommittedBlock(b.Hash)

		case batch := <-g.batchIngress:
			g.local.OnBatches([]ordtypes.Batch{batch})

		case res := <-g.proposalResults:
			if res.generation != generation || st != stateAwaitingProposal {
				// Superseded by a later SynchronizationEvent; discard.
				continue
			}

			proposal := g.filterPresent(res.proposal)
			st = stateProposalReady

			select {
			case g.out <- RoundedProposal{Round: res.round, Proposal: proposal}:
			case <-g.ctx.Done():
				return
			}

			st = stateIdle
		}
	}
}

// filterPresent drops transactions already finalized on-chain from a
// fetched proposal. A proposal fetched from a peer running slightly
// behind can carry transactions this node's own view already knows
// are committed or rejected; both are final, matching the set
// EvictFinalized clears from the local pending set.
func (g *Gate) filterPresent(p ordtypes.Proposal) ordtypes.Proposal {
	if g.presence == nil || len(p.Transactions) == 0 {
		return p
	}
	kept := make([]ordtypes.Transaction, 0, len(p.Transactions))
	for _, tx := range p.Transactions {
		if pr, err := g.presence.Check(tx.Hash); err == nil && (pr == ordsvc.Committed || pr == ordsvc.Rejected) {
			continue
		}
		kept = append(kept, tx)
	}
	p.Transactions = kept
	return p
}

func (g *Gate) dispatchProposalRequest(next round.Round, issuer ordtypes.Peer, generation uint64, delay time.Duration) {
	defer g.wg.Done()

	if delay > 0 {
		t := time.NewTimer(delay)
		select {
		case <-t.C:
		case <-g.ctx.Done():
			t.Stop()
			return
		}
	}

	ctx := g.ctx
	if g.delay > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(g.ctx, g.delay)
		defer cancel()
	}

	proposal, err := g.requester.RequestProposal(ctx, issuer, next)
	if err != nil {
		g.log.Warn("ordgate: proposal request failed; treating as empty",
			"round", next, "issuer", issuer.Address, "error", err)
		proposal = ordtypes.Proposal{Round: next}
	}

	select {
	case g.proposalResults <- proposalResult{generation: generation, round: next, proposal: proposal}:
	case <-g.ctx.Done():
	}
}

// SyncEvents returns the channel on which synchronization events are
// fed to the gate.
func (g *Gate) SyncEvents() chan<- ordtypes.SynchronizationEvent { return g.syncEvents }

// CommittedBlocks returns the channel on which newly committed blocks
// are fed to the gate.
func (g *Gate) CommittedBlocks() chan<- CommittedBlock { return g.committedBlocks }

// PropagateBatch forwards a batch of transactions into the local
// ordering service, the gate's ingress entry point for client
// submissions and peer-forwarded batches alike.
func (g *Gate) PropagateBatch(ctx context.Context, batch ordtypes.Batch) error {
	select {
	case g.batchIngress <- batch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-g.ctx.Done():
		return g.ctx.Err()
	}
}

// Proposals returns the gate's output stream: one RoundedProposal per
// round that successfully reached ProposalReady.
func (g *Gate) Proposals() <-chan RoundedProposal { return g.out }

// Close stops the gate's run loop and waits for any in-flight
// dispatch goroutines to return.
func (g *Gate) Close() error {
	g.cancel()
	g.wg.Wait()
	return nil
}

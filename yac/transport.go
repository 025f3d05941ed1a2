// Package yac implements the voting transport for the round-based
// agreement mechanism that decides whether a round commits, rejects,
// or resolves to nothing: sending and receiving signed vote bundles
// between peers.
//
// The transport itself carries no voting logic; it only validates
// that an incoming bundle is well-formed (non-empty, single round)
// before handing it to a subscriber. This mirrors irohad's
// NetworkImpl, which is a thin grpc::Service wrapper around the same
// two checks.
package yac

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"weak"

	"github.com/gordian-engine/ordgate/ordtypes"
)

// Handler receives validated vote bundles arriving from peers.
type Handler interface {
	OnState(state []ordtypes.VoteMessage)
}

// ErrEmptyState is returned by ReceiveState when the incoming bundle
// carries no votes.
var ErrEmptyState = errors.New("yac: received an empty votes collection")

// ErrMixedRounds is returned by ReceiveState when the incoming bundle
// mixes votes for more than one round; a bundle is only ever valid
// for a single round.
var ErrMixedRounds = errors.New("yac: votes in bundle are for different rounds")

// StateSender performs the outbound half of the transport: pushing a
// vote bundle to a single peer. Implemented by the ordgrpc client.
type StateSender interface {
	SendState(ctx context.Context, to ordtypes.Peer, state []ordtypes.VoteMessage) error
}

// Transport is the per-node voting transport. SendState is a
// best-effort fire-and-forget push; ReceiveState is the inbound path
// invoked by the gRPC server binding.
//
// The subscribed Handler is held by a weak reference: the transport
// must never be the reason a handler (typically a consensus round
// actor) is kept alive past its own lifetime. Subscribe again after
// constructing a replacement handler; there is no way to "renew" a
// collected one.
type Transport struct {
	log    *slog.Logger
	sender StateSender

	mu      sync.Mutex
	lookup  func() Handler
	stopped bool
}

// New creates a Transport that sends outbound state through sender.
func New(log *slog.Logger, sender StateSender) *Transport {
	if log == nil {
		log = slog.Default()
	}
	return &Transport{log: log, sender: sender}
}

// Subscribe registers h as the transport's vote-bundle handler,
// holding only a weak reference to it. H is the concrete handler
// type and PH its pointer type, which is what must actually satisfy
// Handler: handlers are subscribed by pointer, typically with OnState
// defined on *H, and weak.Pointer's type parameter has to name that
// concrete pointer type rather than the Handler interface it
// implements.
//
// A generic function is used in place of a method here for the same
// reason: methods cannot introduce their own type parameters.
func Subscribe[H any, PH interface {
	*H
	Handler
}](t *Transport, h PH) {
	wp := weak.Make((*H)(h))
	t.mu.Lock()
	t.lookup = func() Handler {
		hp := wp.Value()
		if hp == nil {
			return nil
		}
		return PH(hp)
	}
	t.mu.Unlock()
}

// Stop marks the transport as stopped. Once stopped, SendState is a
// no-op; ReceiveState still validates and dispatches incoming state,
// since a peer refusing to hear us out is no reason to refuse to
// listen.
func (t *Transport) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

// SendState pushes state to peer to. If Stop has already been called,
// SendState logs and returns without sending.
func (t *Transport) SendState(ctx context.Context, to ordtypes.Peer, state []ordtypes.VoteMessage) {
	t.mu.Lock()
	stopped := t.stopped
	t.mu.Unlock()

	if stopped {
		t.log.Warn("yac: not sending state; stop was requested", "peer", to.Address)
		return
	}

	if err := t.sender.SendState(ctx, to, state); err != nil {
		t.log.Error("yac: could not send state", "peer", to.Address, "error", err)
	}
}

// ReceiveState validates an incoming vote bundle and, if valid, hands
// it to the subscribed handler. It returns ErrEmptyState or
// ErrMixedRounds for a malformed bundle; the gRPC server binding maps
// these to a Canceled status, matching NetworkImpl's
// behavior of rejecting the call outright rather than delivering a
// partial bundle.
func (t *Transport) ReceiveState(from string, state []ordtypes.VoteMessage) error {
	if len(state) == 0 {
		t.log.Info("yac: received an empty votes collection")
		return ErrEmptyState
	}
	if !ordtypes.SameRound(state, nil) {
		t.log.Info("yac: votes are statelessly invalid: proposal rounds are different")
		return ErrMixedRounds
	}

	t.log.Info("yac: received votes", "size", len(state), "from", from)

	t.mu.Lock()
	lookup := t.lookup
	t.mu.Unlock()

	if lookup == nil {
		t.log.Error("yac: no subscriber registered")
		return nil
	}
	h := lookup()
	if h == nil {
		t.log.Error("yac: unable to lock the subscriber")
		return nil
	}
	h.OnState(state)
	return nil
}

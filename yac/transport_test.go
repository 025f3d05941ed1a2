package yac_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gordian-engine/ordgate/gtest"
	"github.com/gordian-engine/ordgate/ordtypes"
	"github.com/gordian-engine/ordgate/round"
	"github.com/gordian-engine/ordgate/yac"
)

type stubSender struct {
	sent []ordtypes.Peer
	err  error
}

func (s *stubSender) SendState(_ context.Context, to ordtypes.Peer, _ []ordtypes.VoteMessage) error {
	s.sent = append(s.sent, to)
	return s.err
}

type recordingHandler struct {
	received [][]ordtypes.VoteMessage
}

func (h *recordingHandler) OnState(state []ordtypes.VoteMessage) {
	h.received = append(h.received, state)
}

func vote(round round.Round) ordtypes.VoteMessage {
	return ordtypes.VoteMessage{Round: round}
}

func TestReceiveStateDispatchesToSubscriber(t *testing.T) {
	tr := yac.New(gtest.NewLogger(t), &stubSender{})
	h := &recordingHandler{}
	yac.Subscribe(tr, h)

	r := round.Round{BlockRound: 1, RejectRound: 0}
	err := tr.ReceiveState("peerA", []ordtypes.VoteMessage{vote(r), vote(r)})
	require.NoError(t, err)
	require.Len(t, h.received, 1)
	require.Len(t, h.received[0], 2)
}

func TestReceiveStateRejectsEmptyBundle(t *testing.T) {
	tr := yac.New(gtest.NewLogger(t), &stubSender{})
	h := &recordingHandler{}
	yac.Subscribe(tr, h)

	err := tr.ReceiveState("peerA", nil)
	require.ErrorIs(t, err, yac.ErrEmptyState)
	require.Empty(t, h.received)
}

func TestReceiveStateRejectsMixedRounds(t *testing.T) {
	tr := yac.New(gtest.NewLogger(t), &stubSender{})
	h := &recordingHandler{}
	yac.Subscribe(tr, h)

	err := tr.ReceiveState("peerA", []ordtypes.VoteMessage{
		vote(round.Round{BlockRound: 1, RejectRound: 0}),
		vote(round.Round{BlockRound: 1, RejectRound: 1}),
	})
	require.ErrorIs(t, err, yac.ErrMixedRounds)
	require.Empty(t, h.received)
}

func TestSendStateNoopAfterStop(t *testing.T) {
	sender := &stubSender{}
	tr := yac.New(gtest.NewLogger(t), sender)
	tr.Stop()

	tr.SendState(context.Background(), ordtypes.Peer{Address: "p"}, []ordtypes.VoteMessage{
		vote(round.Round{BlockRound: 1}),
	})
	require.Empty(t, sender.sent)
}

func TestSendStateForwardsToSender(t *testing.T) {
	sender := &stubSender{}
	tr := yac.New(gtest.NewLogger(t), sender)

	peer := ordtypes.Peer{Address: "p"}
	tr.SendState(context.Background(), peer, []ordtypes.VoteMessage{vote(round.Round{BlockRound: 1})})
	require.Equal(t, []ordtypes.Peer{peer}, sender.sent)
}

// TestWeakHandlerCollectedAfterGoesOutOfScope exercises the weak
// reference contract: once the concrete handler is no longer
// reachable from anywhere but the transport, ReceiveState must not
// deliver to it (and must not panic).
func TestWeakHandlerCollectedAfterGoesOutOfScope(t *testing.T) {
	tr := yac.New(gtest.NewLogger(t), &stubSender{})

	func() {
		h := &recordingHandler{}
		yac.Subscribe(tr, h)
	}()

	// Force a collection cycle; the handler above has no other
	// reachable reference at this point.
	runtime.GC()
	runtime.GC()

	r := round.Round{BlockRound: 1}
	err := tr.ReceiveState("peerA", []ordtypes.VoteMessage{vote(r)})
	require.NoError(t, err)
}

package ordgrpc

import (
	"context"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/gordian-engine/ordgate/ordtypes"
	"github.com/gordian-engine/ordgate/round"
)

// ProposalAnswerer answers a local proposal request for a round,
// without regard to where the request came from. Implemented by
// *ordsvc.Service.
type ProposalAnswerer interface {
	OnRequestProposal(r round.Round) (ordtypes.Proposal, bool)
}

// BatchReceiver admits a batch pushed by a remote peer. Implemented by
// *ordgate.Gate (PropagateBatch).
type BatchReceiver interface {
	PropagateBatch(ctx context.Context, batch ordtypes.Batch) error
}

// StateReceiver validates and dispatches an inbound vote bundle.
// Implemented by *yac.Transport.
type StateReceiver interface {
	ReceiveState(from string, state []ordtypes.VoteMessage) error
}

// GRPCServer wires the three local collaborators behind the
// Server interface this package's service descriptor expects.
type GRPCServer struct {
	log      *slog.Logger
	proposal ProposalAnswerer
	batches  BatchReceiver
	state    StateReceiver
}

// NewGRPCServer creates a GRPCServer.
func NewGRPCServer(log *slog.Logger, proposal ProposalAnswerer, batches BatchReceiver, state StateReceiver) *GRPCServer {
	if log == nil {
		log = slog.Default()
	}
	return &GRPCServer{log: log, proposal: proposal, batches: batches, state: state}
}

// Register adds the ordering/voting service to gs.
func (s *GRPCServer) Register(gs *grpc.Server) {
	RegisterServer(gs, s)
}

// Serve starts a gRPC server on lis, blocking until it stops.
func (s *GRPCServer) Serve(lis net.Listener, opts ...grpc.ServerOption) error {
	gs := grpc.NewServer(opts...)
	s.Register(gs)
	return gs.Serve(lis)
}

func (s *GRPCServer) RequestProposal(_ context.Context, req *proposalRequestMessage) (*proposalResponseMessage, error) {
	r := fromWireRound(req.Round)
	p, ok := s.proposal.OnRequestProposal(r)
	if !ok {
		// No proposal could be assembled for r; respond with an Empty
		// proposal rather than an error, so the asking peer's gate
		// always has something to route.
		p = ordtypes.Proposal{Round: r}
	}
	return &proposalResponseMessage{Proposal: toWireProposal(p)}, nil
}

func (s *GRPCServer) PushBatch(ctx context.Context, req *batchPushMessage) (*ackMessage, error) {
	batch := fromWireBatch(req.Batch)
	if err := s.batches.PropagateBatch(ctx, batch); err != nil {
		return nil, err
	}
	return &ackMessage{}, nil
}

func (s *GRPCServer) SendState(ctx context.Context, req *stateMessage) (*ackMessage, error) {
	votes, err := fromWireVotes(req.Votes)
	if err != nil {
		return nil, err
	}

	peerAddr := ""
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		peerAddr = p.Addr.String()
	}

	if err := s.state.ReceiveState(peerAddr, votes); err != nil {
		// A rejected bundle is answered with Canceled: the sender must
		// not retry the same payload.
		return nil, status.Error(codes.Canceled, err.Error())
	}
	return &ackMessage{}, nil
}

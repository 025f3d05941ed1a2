package ordgrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
)

const serviceName = "github.com/gordian-engine/ordgate.v1.OrderingService"

// Server is the server-side interface for the ordering/voting gRPC
// service: one RPC per ingress path the gate and the voting transport
// expose to peers.
type Server interface {
	// RequestProposal answers a remote peer's request for the proposal
	// assembled for the given round.
	RequestProposal(context.Context, *proposalRequestMessage) (*proposalResponseMessage, error)

	// PushBatch admits a forwarded transaction batch into the local
	// ordering service.
	PushBatch(context.Context, *batchPushMessage) (*ackMessage, error)

	// SendState delivers a signed vote bundle to the voting transport.
	SendState(context.Context, *stateMessage) (*ackMessage, error)
}

// RegisterServer registers srv as the ordering/voting service on gs.
func RegisterServer(gs *grpc.Server, srv Server) {
	gs.RegisterService(&serviceDesc, srv)
}

func handleRequestProposal(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(proposalRequestMessage)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(Server).RequestProposal(ctx, req)
}

func handlePushBatch(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(batchPushMessage)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(Server).PushBatch(ctx, req)
}

func handleSendState(srv any, ctx context.Context, dec func(any) error, _ grpc.UnaryServerInterceptor) (any, error) {
	req := new(stateMessage)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(Server).SendState(ctx, req)
}

func fullMethod(method string) string {
	return fmt.Sprintf("/%s/%s", serviceName, method)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RequestProposal", Handler: handleRequestProposal},
		{MethodName: "PushBatch", Handler: handlePushBatch},
		{MethodName: "SendState", Handler: handleSendState},
	},
	Metadata: "github.com/gordian-engine/ordgate/v1/service.cram",
}

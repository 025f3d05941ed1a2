package ordgrpc

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/gordian-engine/ordgate/ordtypes"
	"github.com/gordian-engine/ordgate/round"
)

// Client dials and caches one grpc.ClientConn per peer address,
// serving as the concrete implementation of connmgr.BatchSender,
// ordgate.ProposalRequester, and yac.StateSender all at once: every
// outbound path this module has is a single small RPC on the same
// connection.
type Client struct {
	dialOpts []grpc.DialOption

	mu    sync.Mutex
	conns map[string]*grpc.ClientConn
}

// NewClient creates a Client. extraOpts are appended after the
// codec-forcing default dial option, so callers can add transport
// credentials, keepalive parameters, and so on.
func NewClient(extraOpts ...grpc.DialOption) *Client {
	opts := []grpc.DialOption{
		grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec{})),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	opts = append(opts, extraOpts...)
	return &Client{
		dialOpts: opts,
		conns:    make(map[string]*grpc.ClientConn),
	}
}

func (c *Client) connFor(addr string) (*grpc.ClientConn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cc, ok := c.conns[addr]; ok {
		return cc, nil
	}
	cc, err := grpc.NewClient(addr, c.dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("ordgrpc: dial %s: %w", addr, err)
	}
	c.conns[addr] = cc
	return cc, nil
}

// RequestProposal implements ordgate.ProposalRequester.
func (c *Client) RequestProposal(ctx context.Context, peer ordtypes.Peer, r round.Round) (ordtypes.Proposal, error) {
	cc, err := c.connFor(peer.Address)
	if err != nil {
		return ordtypes.Proposal{}, err
	}

	req := &proposalRequestMessage{Round: toWireRound(r)}
	resp := new(proposalResponseMessage)
	if err := cc.Invoke(ctx, fullMethod("RequestProposal"), req, resp); err != nil {
		return ordtypes.Proposal{}, fmt.Errorf("ordgrpc: RequestProposal to %s: %w", peer.Address, err)
	}
	return fromWireProposal(resp.Proposal), nil
}

// PushBatch implements connmgr.BatchSender.
func (c *Client) PushBatch(ctx context.Context, peer ordtypes.Peer, batch ordtypes.Batch) error {
	cc, err := c.connFor(peer.Address)
	if err != nil {
		return err
	}

	req := &batchPushMessage{Batch: toWireBatch(batch)}
	resp := new(ackMessage)
	if err := cc.Invoke(ctx, fullMethod("PushBatch"), req, resp); err != nil {
		return fmt.Errorf("ordgrpc: PushBatch to %s: %w", peer.Address, err)
	}
	return nil
}

// SendState implements yac.StateSender.
func (c *Client) SendState(ctx context.Context, to ordtypes.Peer, state []ordtypes.VoteMessage) error {
	cc, err := c.connFor(to.Address)
	if err != nil {
		return err
	}

	req := &stateMessage{Votes: toWireVotes(state)}
	resp := new(ackMessage)
	if err := cc.Invoke(ctx, fullMethod("SendState"), req, resp); err != nil {
		return fmt.Errorf("ordgrpc: SendState to %s: %w", to.Address, err)
	}
	return nil
}

// Close closes every cached connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for addr, cc := range c.conns {
		if err := cc.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("ordgrpc: closing connection to %s: %w", addr, err)
		}
	}
	c.conns = make(map[string]*grpc.ClientConn)
	return firstErr
}

package ordgrpc

import (
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gordian-engine/ordgate/gcrypto"
	"github.com/gordian-engine/ordgate/ordtypes"
	"github.com/gordian-engine/ordgate/round"
)

func TestRoundRoundTrip(t *testing.T) {
	r := round.Round{BlockRound: 42, RejectRound: 7}
	require.Equal(t, r, fromWireRound(toWireRound(r)))
}

func TestProposalRoundTrip(t *testing.T) {
	now := time.Unix(1700000000, 123456000).UTC()
	p := ordtypes.Proposal{
		Round: round.Round{BlockRound: 1, RejectRound: 0},
		Transactions: []ordtypes.Transaction{
			{Hash: ordtypes.TxHash{1, 2, 3}, Payload: []byte("hello"), AdmitTime: now},
		},
		CreatedAt: now,
	}

	got := fromWireProposal(toWireProposal(p))
	require.Equal(t, p.Round, got.Round)
	require.Len(t, got.Transactions, 1)
	require.Equal(t, p.Transactions[0].Hash, got.Transactions[0].Hash)
	require.Equal(t, p.Transactions[0].Payload, got.Transactions[0].Payload)
	require.True(t, p.Transactions[0].AdmitTime.Equal(got.Transactions[0].AdmitTime))
	require.True(t, p.CreatedAt.Equal(got.CreatedAt))
}

func TestVoteRoundTripPreservesPubKey(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	signer := gcrypto.NewEd25519Signer(priv)

	v := ordtypes.VoteMessage{
		Hash:  ordtypes.ProposalHash{9, 9},
		Round: round.Round{BlockRound: 3, RejectRound: 1},
		Signature: ordtypes.Signature{
			PubKey: signer.PubKey(),
			Sig:    signer.Sign([]byte("vote payload")),
		},
	}

	got, err := fromWireVote(toWireVote(v))
	require.NoError(t, err)
	require.Equal(t, v.Hash, got.Hash)
	require.Equal(t, v.Round, got.Round)
	require.Equal(t, v.Signature.Sig, got.Signature.Sig)
	require.True(t, v.Signature.PubKey.Equal(got.Signature.PubKey))
}

func TestToPubKeyRejectsUnknownAlgo(t *testing.T) {
	_, err := toPubKey("rot13", []byte("whatever"))
	require.Error(t, err)
}

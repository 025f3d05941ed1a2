package ordgrpc

import (
	"fmt"
	"time"

	"github.com/gordian-engine/ordgate/gcrypto"
	"github.com/gordian-engine/ordgate/ordtypes"
	"github.com/gordian-engine/ordgate/round"
)

func toWireRound(r round.Round) wireRound {
	return wireRound{BlockRound: r.BlockRound, RejectRound: r.RejectRound}
}

func fromWireRound(w wireRound) round.Round {
	return round.Round{BlockRound: w.BlockRound, RejectRound: w.RejectRound}
}

func toWireTransaction(tx ordtypes.Transaction) wireTransaction {
	return wireTransaction{
		Hash:          tx.Hash[:],
		Payload:       tx.Payload,
		AdmitUnixNano: tx.AdmitTime.UnixNano(),
	}
}

func fromWireTransaction(w wireTransaction) ordtypes.Transaction {
	var tx ordtypes.Transaction
	copy(tx.Hash[:], w.Hash)
	tx.Payload = w.Payload
	tx.AdmitTime = time.Unix(0, w.AdmitUnixNano).UTC()
	return tx
}

func toWireTransactions(txs []ordtypes.Transaction) []wireTransaction {
	out := make([]wireTransaction, len(txs))
	for i, tx := range txs {
		out[i] = toWireTransaction(tx)
	}
	return out
}

func fromWireTransactions(ws []wireTransaction) []ordtypes.Transaction {
	out := make([]ordtypes.Transaction, len(ws))
	for i, w := range ws {
		out[i] = fromWireTransaction(w)
	}
	return out
}

func toWireProposal(p ordtypes.Proposal) wireProposal {
	return wireProposal{
		Round:             toWireRound(p.Round),
		Transactions:      toWireTransactions(p.Transactions),
		CreatedAtUnixNano: p.CreatedAt.UnixNano(),
	}
}

func fromWireProposal(w wireProposal) ordtypes.Proposal {
	return ordtypes.Proposal{
		Round:        fromWireRound(w.Round),
		Transactions: fromWireTransactions(w.Transactions),
		CreatedAt:    time.Unix(0, w.CreatedAtUnixNano).UTC(),
	}
}

func toWireBatch(b ordtypes.Batch) wireBatch {
	return wireBatch{Transactions: toWireTransactions(b.Transactions)}
}

func fromWireBatch(w wireBatch) ordtypes.Batch {
	return ordtypes.Batch{Transactions: fromWireTransactions(w.Transactions)}
}

// toPubKey reconstructs a gcrypto.PubKey from wire bytes. Only
// ed25519 is supported; any other algorithm tag is a hard error
// rather than a silently-unverifiable signature.
func toPubKey(algo string, keyBytes []byte) (gcrypto.PubKey, error) {
	switch algo {
	case pubKeyAlgoEd25519:
		return gcrypto.NewEd25519PubKey(keyBytes)
	default:
		return nil, fmt.Errorf("ordgrpc: unsupported public key algorithm %q", algo)
	}
}

func fromPubKey(pk gcrypto.PubKey) wireSignature {
	if pk == nil {
		return wireSignature{}
	}
	return wireSignature{Algo: pubKeyAlgoEd25519, PubKeyBytes: pk.PubKeyBytes()}
}

func toWireVote(v ordtypes.VoteMessage) wireVote {
	sig := fromPubKey(v.Signature.PubKey)
	sig.Sig = v.Signature.Sig
	return wireVote{
		Hash:      v.Hash[:],
		Signature: sig,
		Round:     toWireRound(v.Round),
	}
}

func fromWireVote(w wireVote) (ordtypes.VoteMessage, error) {
	var v ordtypes.VoteMessage
	copy(v.Hash[:], w.Hash)
	v.Round = fromWireRound(w.Round)
	v.Signature.Sig = w.Signature.Sig

	if len(w.Signature.PubKeyBytes) > 0 {
		pk, err := toPubKey(w.Signature.Algo, w.Signature.PubKeyBytes)
		if err != nil {
			return ordtypes.VoteMessage{}, err
		}
		v.Signature.PubKey = pk
	}
	return v, nil
}

func toWireVotes(votes []ordtypes.VoteMessage) []wireVote {
	out := make([]wireVote, len(votes))
	for i, v := range votes {
		out[i] = toWireVote(v)
	}
	return out
}

func fromWireVotes(ws []wireVote) ([]ordtypes.VoteMessage, error) {
	out := make([]ordtypes.VoteMessage, len(ws))
	for i, w := range ws {
		v, err := fromWireVote(w)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

package ordsvc

import (
	"time"

	"github.com/gordian-engine/ordgate/ordtypes"
	"github.com/gordian-engine/ordgate/round"
)

// Presence is the on-chain status of a transaction hash, as reported
// by the TxPresenceCache external collaborator (persistent storage is
// explicitly out of this module's scope; only this interface is
// named).
type Presence uint8

const (
	Unknown Presence = iota
	Committed
	Rejected
)

// TxPresenceCache answers whether a transaction hash has already been
// finalized on-chain, either by commit or by rejection.
type TxPresenceCache interface {
	Check(hash ordtypes.TxHash) (Presence, error)
}

// ProposalFactory assembles a Proposal from an ordered transaction
// list. It performs no stateful validation; that happens downstream.
type ProposalFactory interface {
	Create(r round.Round, txs []ordtypes.Transaction, createdAt time.Time) ordtypes.Proposal
}

// unsafeProposalFactory is the default ProposalFactory: it trusts its
// caller completely and performs no extra validation of its own.
type unsafeProposalFactory struct{}

// NewUnsafeProposalFactory returns the default, trust-the-caller
// ProposalFactory.
func NewUnsafeProposalFactory() ProposalFactory {
	return unsafeProposalFactory{}
}

func (unsafeProposalFactory) Create(r round.Round, txs []ordtypes.Transaction, createdAt time.Time) ordtypes.Proposal {
	return ordtypes.Proposal{
		Round:        r,
		Transactions: txs,
		CreatedAt:    createdAt,
	}
}

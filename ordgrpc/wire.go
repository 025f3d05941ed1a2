package ordgrpc

// Wire types carry only primitive and slice fields, so cramberry can
// serialize them without reflecting through interfaces: gcrypto.PubKey
// is reduced to an algorithm tag plus raw key bytes, and round.Round
// is flattened to its two integer fields.

type wireRound struct {
	BlockRound  uint64 `cramberry:"1"`
	RejectRound uint32 `cramberry:"2"`
}

type wireTransaction struct {
	Hash          []byte `cramberry:"1"`
	Payload       []byte `cramberry:"2"`
	AdmitUnixNano int64  `cramberry:"3"`
}

type wireProposal struct {
	Round             wireRound         `cramberry:"1"`
	Transactions      []wireTransaction `cramberry:"2"`
	CreatedAtUnixNano int64             `cramberry:"3"`
}

type wireBatch struct {
	Transactions []wireTransaction `cramberry:"1"`
}

// pubKeyAlgoEd25519 is the only signature algorithm this wire format
// currently round-trips; see convert.go's toPubKey.
const pubKeyAlgoEd25519 = "ed25519"

type wireSignature struct {
	Algo        string `cramberry:"1"`
	PubKeyBytes []byte `cramberry:"2"`
	Sig         []byte `cramberry:"3"`
}

type wireVote struct {
	Hash      []byte        `cramberry:"1"`
	Signature wireSignature `cramberry:"2"`
	Round     wireRound     `cramberry:"3"`
}

// --- RPC request/response envelopes ---

type proposalRequestMessage struct {
	Round wireRound `cramberry:"1"`
}

type proposalResponseMessage struct {
	Proposal wireProposal `cramberry:"1"`
}

type batchPushMessage struct {
	Batch wireBatch `cramberry:"1"`
}

type stateMessage struct {
	Votes []wireVote `cramberry:"1"`
}

// ackMessage is the empty acknowledgement returned by PushBatch and
// SendState; both are fire-and-forget from the caller's perspective.
type ackMessage struct{}

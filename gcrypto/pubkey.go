// Package gcrypto defines the identity and signature-verification
// boundary the ordering and voting packages depend on, without
// committing to any one signature scheme.
//
// The core never signs or hashes anything itself; those are treated
// as external collaborators (see the top-level PURPOSE & SCOPE notes).
// This package exists only so Peer identity and VoteMessage.Signature
// have a concrete, swappable type to reference.
package gcrypto

// PubKey identifies a peer and verifies messages signed by it.
// Implementations are expected to be comparable by value or to
// implement Equal explicitly; see Ed25519PubKey for the reference
// implementation used by tests and small deployments.
type PubKey interface {
	Address() []byte

	PubKeyBytes() []byte

	Equal(other PubKey) bool

	Verify(msg, sig []byte) bool
}

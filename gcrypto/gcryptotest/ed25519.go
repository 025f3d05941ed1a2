// Package gcryptotest provides deterministic key fixtures for tests.
package gcryptotest

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"

	"github.com/gordian-engine/ordgate/gcrypto"
)

// DeterministicEd25519Signers returns n signers derived from a fixed
// seed sequence.
//
// Using deterministic keys means repeated test runs produce identical
// logs and peer addresses, which makes failures easier to compare
// across runs.
func DeterministicEd25519Signers(n int) []gcrypto.Ed25519Signer {
	out := make([]gcrypto.Ed25519Signer, n)
	for i := range out {
		var counter [8]byte
		binary.BigEndian.PutUint64(counter[:], uint64(i))
		seed := sha256.Sum256(counter[:])

		priv := ed25519.NewKeyFromSeed(seed[:])
		out[i] = gcrypto.NewEd25519Signer(priv)
	}
	return out
}

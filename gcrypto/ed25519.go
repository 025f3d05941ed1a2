package gcrypto

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"
)

// Ed25519PubKey is a PubKey backed by the standard library's ed25519
// implementation. It is the reference PubKey used by this module's
// fixtures and by small, non-production deployments that don't need
// a pluggable signature scheme.
type Ed25519PubKey struct {
	key ed25519.PublicKey
}

// NewEd25519PubKey parses a raw ed25519 public key.
func NewEd25519PubKey(b []byte) (PubKey, error) {
	if len(b) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("gcrypto: invalid ed25519 public key length %d", len(b))
	}
	key := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(key, b)
	return Ed25519PubKey{key: key}, nil
}

// Address returns a short, deterministic identifier for the key,
// suitable for logging and for indexing peers in maps.
func (k Ed25519PubKey) Address() []byte {
	sum := sha256.Sum256(k.key)
	return sum[:20]
}

// PubKeyBytes returns the raw ed25519 public key.
func (k Ed25519PubKey) PubKeyBytes() []byte {
	return k.key
}

// Equal reports whether other is the same ed25519 key.
func (k Ed25519PubKey) Equal(other PubKey) bool {
	o, ok := other.(Ed25519PubKey)
	if !ok {
		return false
	}
	return bytes.Equal(k.key, o.key)
}

// Verify reports whether sig is a valid ed25519 signature of msg
// under this key.
func (k Ed25519PubKey) Verify(msg, sig []byte) bool {
	return ed25519.Verify(k.key, msg, sig)
}

// Ed25519Signer produces signatures for the local node's key.
type Ed25519Signer struct {
	priv ed25519.PrivateKey
	pub  Ed25519PubKey
}

// NewEd25519Signer wraps a standard library ed25519 private key.
func NewEd25519Signer(priv ed25519.PrivateKey) Ed25519Signer {
	pub := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(pub, priv.Public().(ed25519.PublicKey))
	return Ed25519Signer{priv: priv, pub: Ed25519PubKey{key: pub}}
}

// PubKey returns the signer's public key.
func (s Ed25519Signer) PubKey() PubKey {
	return s.pub
}

// Sign signs msg with the signer's private key.
func (s Ed25519Signer) Sign(msg []byte) []byte {
	return ed25519.Sign(s.priv, msg)
}

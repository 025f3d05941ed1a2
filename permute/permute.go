// Package permute derives deterministic peer permutations from
// committed-block hashes.
//
// This is consensus-critical: every honest peer must derive the
// exact same permutation for the same (hash, n) pair, byte for byte.
// The PRNG is therefore pinned to math/rand/v2's ChaCha8 source,
// seeded directly with the block hash, the same way
// tm/tmintegration seeds per-node deterministic RNGs from a fixed
// counter. Never swap this for a non-deterministic or
// implementation-defined PRNG.
package permute

import "math/rand/v2"

// Permutation derives the permutation of [0, n) seeded by hash.
//
// For n <= 1 the only permutation is the identity, returned without
// touching the PRNG. hash is consumed as 32 bytes of seed material;
// shorter hashes are zero-padded, longer ones truncated, so any fixed
// hash width works.
func Permutation(hash []byte, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	if n <= 1 {
		return out
	}

	src := rand.NewChaCha8(seed(hash))
	rng := rand.New(src)
	rng.Shuffle(n, func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// seed expands or truncates hash into the 32-byte seed ChaCha8 requires.
func seed(hash []byte) [32]byte {
	var s [32]byte
	copy(s[:], hash)
	return s
}

// Window is the three-most-recent-block-hash primer the connection
// manager consults on every synchronization event: the current
// round's hash, the next round's, and the one after that.
type Window [3][]byte

// Permutations derives the three permutations of [0, n) for the
// current round, the next round, and the round after next, from the
// hashes in w, in that order.
func (w Window) Permutations(n int) [3][]int {
	var out [3][]int
	for i, h := range w {
		out[i] = Permutation(h, n)
	}
	return out
}

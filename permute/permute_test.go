package permute_test

import (
	"slices"
	"testing"

	"github.com/gordian-engine/ordgate/permute"
)

func hashOf(b byte) []byte {
	h := make([]byte, 32)
	h[0] = b
	return h
}

func TestPermutationDeterministic(t *testing.T) {
	h := hashOf(1)
	a := permute.Permutation(h, 10)
	b := permute.Permutation(h, 10)
	if !slices.Equal(a, b) {
		t.Fatalf("permutation not deterministic: %v vs %v", a, b)
	}
}

func TestPermutationIsPermutation(t *testing.T) {
	h := hashOf(7)
	p := permute.Permutation(h, 20)
	seen := make(map[int]bool, 20)
	for _, v := range p {
		if v < 0 || v >= 20 || seen[v] {
			t.Fatalf("not a valid permutation of [0,20): %v", p)
		}
		seen[v] = true
	}
}

func TestPermutationDiffersAcrossHashes(t *testing.T) {
	a := permute.Permutation(hashOf(1), 16)
	b := permute.Permutation(hashOf(2), 16)
	if slices.Equal(a, b) {
		t.Fatalf("distinct hashes produced identical permutations; this should essentially never happen")
	}
}

func TestPermutationSmallN(t *testing.T) {
	if got := permute.Permutation(hashOf(1), 0); len(got) != 0 {
		t.Fatalf("n=0: got %v, want empty", got)
	}
	if got := permute.Permutation(hashOf(1), 1); !slices.Equal(got, []int{0}) {
		t.Fatalf("n=1: got %v, want [0]", got)
	}
}

func TestWindowPermutations(t *testing.T) {
	w := permute.Window{hashOf(1), hashOf(2), hashOf(2)}
	perms := w.Permutations(5)
	if !slices.Equal(perms[1], perms[2]) {
		t.Fatalf("identical hashes at indices 1 and 2 should yield identical permutations")
	}
	if slices.Equal(perms[0], perms[1]) {
		t.Fatalf("distinct hashes at indices 0 and 1 should (almost certainly) differ")
	}
}

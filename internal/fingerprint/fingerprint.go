// Package fingerprint computes a deterministic, network-free structural
// vector from chunk text for the optional vector-accelerated example
// retrieval pre-filter (SPEC §3.2). It is a feature-hashing ("hashing
// trick") vectorizer over character k-shingles: every shingle hashes to
// one dimension and a sign bit, the same technique Vowpal
// Wabbit-style hashing vectorizers use to avoid holding an explicit
// vocabulary. Two texts that share many shingles land close together
// under cosine distance; it is a cheap stand-in for a semantic
// embedding, good enough to narrow candidates before the exact LCS
// ratio decides the winner.
package fingerprint

import (
	"hash/fnv"
	"math"
)

// Dim is the fixed output dimension, small enough for a cheap ivfflat
// index, large enough that unrelated chunks rarely collide head-on.
const Dim = 64

// shingleSize is the character k-gram length shingles are drawn at.
const shingleSize = 5

// Vector computes text's feature-hashed fingerprint.
func Vector(text string) []float32 {
	out := make([]float32, Dim)
	runes := []rune(text)
	if len(runes) < shingleSize {
		hashInto(out, string(runes))
		return normalize(out)
	}
	for i := 0; i+shingleSize <= len(runes); i++ {
		hashInto(out, string(runes[i:i+shingleSize]))
	}
	return normalize(out)
}

func hashInto(out []float32, shingle string) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(shingle))
	sum := h.Sum64()

	idx := int(sum % uint64(len(out)))
	// A second, independent-enough bit of the same digest picks the sign,
	// the usual hashing-vectorizer trick to keep collisions from only
	// ever adding constructively.
	if sum&(1<<33) != 0 {
		out[idx]++
	} else {
		out[idx]--
	}
}

func normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return v
	}
	norm := float32(1.0 / math.Sqrt(sumSq))
	for i := range v {
		v[i] *= norm
	}
	return v
}

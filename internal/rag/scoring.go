package rag

import (
	"crypto/sha256"
	"strings"
)

// jaccard scores word overlap between two texts: the size of the
// intersection of their lower-cased whitespace-tokenized word sets over
// the size of the union. It is a coarse lexical heuristic, not semantic
// similarity.
func jaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for word := range setA {
		if _, ok := setB[word]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(text)) {
		set[word] = struct{}{}
	}
	return set
}

// digestEmbedding derives a deterministic 32-dimension vector from the
// content digest. It stands in when the embedding API is unavailable so
// documents can still be stored with a non-null embedding.
func digestEmbedding(content string) []float32 {
	sum := sha256.Sum256([]byte(content))
	vec := make([]float32, len(sum))
	for i, b := range sum {
		vec[i] = float32(b) / 255.0
	}
	return vec
}

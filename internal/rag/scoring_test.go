package rag

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestJaccard(t *testing.T) {
	require.Equal(t, 1.0, jaccard("hello world", "world hello"))
	require.Equal(t, 0.0, jaccard("alpha beta", "gamma delta"))
	require.Equal(t, 0.0, jaccard("", "anything"))

	// {a,b} vs {b,c}: intersection 1, union 3.
	require.InDelta(t, 1.0/3.0, jaccard("a b", "b c"), 1e-9)

	// Case-insensitive, duplicate words collapse.
	require.Equal(t, 1.0, jaccard("Tax TAX tax", "tax"))
}

func TestTruncateRunesKeepsValidUTF8(t *testing.T) {
	require.Equal(t, "short", truncateRunes("short", 100))
	require.Equal(t, "abcde", truncateRunes("abcdefgh", 5))

	// A byte cut at the limit would land inside a two-byte Arabic rune.
	mixed := "a" + strings.Repeat("س", 60)
	cut := truncateRunes(mixed, 50)
	require.True(t, utf8.ValidString(cut))
	require.Equal(t, 50, utf8.RuneCountInString(cut))

	arabic := strings.Repeat("س", 150)
	cut = truncateRunes(arabic, 100)
	require.True(t, utf8.ValidString(cut))
	require.Equal(t, 100, utf8.RuneCountInString(cut))
	require.Equal(t, 200, len(cut))
}

func TestDigestEmbeddingDeterministic(t *testing.T) {
	a := digestEmbedding("document body")
	b := digestEmbedding("document body")
	c := digestEmbedding("different body")

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Len(t, a, 32)
	for _, v := range a {
		require.GreaterOrEqual(t, v, float32(0))
		require.LessOrEqual(t, v, float32(1))
	}
}

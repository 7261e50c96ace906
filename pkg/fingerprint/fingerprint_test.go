package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBytesIsDeterministic(t *testing.T) {
	a := Bytes([]byte("hello"))
	b := Bytes([]byte("hello"))
	require.Equal(t, a, b)
	require.Len(t, a, 64) // hex sha-256

	c := Bytes([]byte("hello!"))
	require.NotEqual(t, a, c)
}

func TestKnownDigest(t *testing.T) {
	// sha256("abc")
	require.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		Bytes([]byte("abc")))
}

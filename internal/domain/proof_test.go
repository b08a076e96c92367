package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestProofPaths_RoundTrip(t *testing.T) {
	t.Run("empty list clears the field", func(t *testing.T) {
		encoded := EncodeProofPaths(nil)
		assert.Nil(t, encoded)
		assert.Empty(t, DecodeProofPaths(encoded))
	})

	t.Run("single reference", func(t *testing.T) {
		paths := []string{"abc/1700000000000-42.png"}
		encoded := EncodeProofPaths(paths)
		require.NotNil(t, encoded)
		assert.Equal(t, paths, DecodeProofPaths(encoded))

		// legacy rows stored a bare path
		assert.Equal(t, paths, DecodeProofPaths(strPtr("abc/1700000000000-42.png")))
	})

	t.Run("three references keep order", func(t *testing.T) {
		paths := []string{"t/1-1.png", "t/2-2.jpg", "t/3-3.pdf"}
		encoded := EncodeProofPaths(paths)
		require.NotNil(t, encoded)
		assert.Equal(t, `["t/1-1.png","t/2-2.jpg","t/3-3.pdf"]`, *encoded)
		assert.Equal(t, paths, DecodeProofPaths(encoded))
	})
}

func TestDecodeProofPaths_Malformed(t *testing.T) {
	for _, raw := range []string{"[", `["a",`, `[1,2]`, `[{"p":"x"}]`, "   "} {
		assert.NotPanics(t, func() {
			assert.Empty(t, DecodeProofPaths(strPtr(raw)), raw)
		})
	}
	assert.Empty(t, DecodeProofPaths(nil))
}

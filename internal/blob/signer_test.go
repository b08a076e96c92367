package blob

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "proof-signing-key-0123456789-abcdef"

func TestSigner_RoundTrip(t *testing.T) {
	signer, err := NewSigner(testKey)
	require.NoError(t, err)

	token, err := signer.Sign("0f8e/1700000000000-42.png", time.Hour)
	require.NoError(t, err)

	path, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "0f8e/1700000000000-42.png", path)
}

func TestSigner_Expired(t *testing.T) {
	signer, err := NewSigner(testKey)
	require.NoError(t, err)

	issued := time.Date(2026, 1, 9, 10, 0, 0, 0, time.UTC)
	signer.now = func() time.Time { return issued }
	token, err := signer.Sign("a/1-1.png", time.Minute)
	require.NoError(t, err)

	signer.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = signer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSigner_RejectsForeignKeyAndBadPaths(t *testing.T) {
	signer, err := NewSigner(testKey)
	require.NoError(t, err)
	other, err := NewSigner("another-signing-key-0123456789-xyz")
	require.NoError(t, err)

	token, err := other.Sign("a/1-1.png", time.Hour)
	require.NoError(t, err)
	_, err = signer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = signer.Sign("../etc/passwd", time.Hour)
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = NewSigner("short")
	assert.Error(t, err)
}

func TestSignedContentURL(t *testing.T) {
	signer, err := NewSigner(testKey)
	require.NoError(t, err)

	link, err := SignedContentURL(signer, "https://console.example.com/", "a/1-1.png", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, link, "https://console.example.com/v1/proofs/content?token=")
}

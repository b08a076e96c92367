package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/nileops/remit-console/internal/testutil/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ReserveFinalizeLookup(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil, memstore.NewIdempotencyKeys(), time.Hour)

	_, err := s.Lookup(ctx, "k1", "h1")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := s.Reserve(ctx, "k1", "h1", "POST", "/v1/transfers")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Reserve(ctx, "k1", "h1", "POST", "/v1/transfers")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Lookup(ctx, "k1", "h1")
	assert.ErrorIs(t, err, ErrInProgress)

	_, err = s.Finalize(ctx, "k1", "h1", 201, []byte(`{"order_ref":"NTO-000123"}`), "application/json")
	require.NoError(t, err)

	rec, err := s.Lookup(ctx, "k1", "h1")
	require.NoError(t, err)
	assert.Equal(t, 201, rec.Status)
	assert.Equal(t, "postgres", rec.ServedBy)
	assert.JSONEq(t, `{"order_ref":"NTO-000123"}`, string(rec.Body))

	_, err = s.Lookup(ctx, "k1", "other")
	assert.ErrorIs(t, err, ErrHashMismatch)
}

func TestStore_Release(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil, memstore.NewIdempotencyKeys(), time.Hour)

	ok, err := s.Reserve(ctx, "k2", "h2", "POST", "/v1/transfers")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, s.Release(ctx, "k2", "h2"))

	ok, err = s.Reserve(ctx, "k2", "h2", "POST", "/v1/transfers")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_WaitForCompletion(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil, memstore.NewIdempotencyKeys(), time.Hour)
	s.poll = 5 * time.Millisecond

	_, err := s.Reserve(ctx, "k3", "h3", "POST", "/v1/transfers")
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		_, _ = s.Finalize(context.Background(), "k3", "h3", 201, []byte("{}"), "application/json")
	}()

	rec, err := s.WaitForCompletion(ctx, "k3", "h3")
	require.NoError(t, err)
	assert.Equal(t, 201, rec.Status)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = s.Reserve(ctx, "k4", "h4", "POST", "/v1/transfers")
	require.NoError(t, err)
	_, err = s.WaitForCompletion(waitCtx, "k4", "h4")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

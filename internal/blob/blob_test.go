package blob

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/nileops/remit-console/internal/db"
	"github.com/nileops/remit-console/internal/repository"
	"github.com/nileops/remit-console/internal/testutil/dblock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	for _, p := range []string{"", "/abs/1.png", "owner/../x.png", `owner\1.png`} {
		assert.ErrorIs(t, ValidatePath(p), ErrInvalidPath, p)
	}
	assert.NoError(t, ValidatePath("0b8e7f3a-2c1d-4f6e-9a8b-7c6d5e4f3a2b/1760000000000-42.png"))
}

func TestPostgresStore(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}
	release := dblock.Acquire()
	t.Cleanup(release)

	ctx := context.Background()
	pool, err := db.Connect(ctx, os.Getenv("DATABASE_URL"))
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, repository.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, "TRUNCATE TABLE proof_objects")
	require.NoError(t, err)

	signer, err := NewSigner(testKey)
	require.NoError(t, err)
	store := NewPostgresStore(pool, signer, "https://console.example.com/")

	path := "owner/1760000000000-1.png"
	require.NoError(t, store.Upload(ctx, path, "image/png", []byte("first")))
	assert.ErrorIs(t, store.Upload(ctx, path, "image/png", []byte("second")), ErrObjectExists)

	obj, err := store.Get(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(obj.Data))
	assert.Equal(t, "image/png", obj.ContentType)

	_, err = store.Get(ctx, "owner/missing.png")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	link, err := store.SignedURL(ctx, path, time.Hour)
	require.NoError(t, err)
	assert.Contains(t, link, "https://console.example.com"+ContentRoute+"?token=")
}

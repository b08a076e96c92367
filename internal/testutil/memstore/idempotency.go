package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/nileops/remit-console/internal/repository"
)

// IdempotencyKeys is an in-memory idempotency key table.
type IdempotencyKeys struct {
	mu      sync.Mutex
	rows    map[string]repository.IdempotencyKey
	created map[string]time.Time

	// Now stamps reservations.
	Now func() time.Time
}

func NewIdempotencyKeys() *IdempotencyKeys {
	return &IdempotencyKeys{
		rows:    make(map[string]repository.IdempotencyKey),
		created: make(map[string]time.Time),
		Now:     time.Now,
	}
}

func (k *IdempotencyKeys) GetIdempotencyKey(_ context.Context, key string) (repository.IdempotencyKey, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	row, ok := k.rows[key]
	if !ok {
		return repository.IdempotencyKey{}, pgx.ErrNoRows
	}
	return row, nil
}

func (k *IdempotencyKeys) ReserveIdempotencyKey(_ context.Context, arg repository.ReserveIdempotencyKeyParams) (repository.IdempotencyKey, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if _, ok := k.rows[arg.IdempotencyKey]; ok {
		return repository.IdempotencyKey{}, pgx.ErrNoRows
	}
	row := repository.IdempotencyKey{
		IdempotencyKey: arg.IdempotencyKey,
		RequestHash:    arg.RequestHash,
		InProgress:     true,
	}
	k.rows[arg.IdempotencyKey] = row
	k.created[arg.IdempotencyKey] = k.Now()
	return row, nil
}

func (k *IdempotencyKeys) FinalizeIdempotencyKey(_ context.Context, arg repository.FinalizeIdempotencyKeyParams) (repository.IdempotencyKey, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	row, ok := k.rows[arg.IdempotencyKey]
	if !ok || row.RequestHash != arg.RequestHash {
		return repository.IdempotencyKey{}, pgx.ErrNoRows
	}
	row.ResponseStatus = arg.ResponseStatus
	row.ResponseBody = append([]byte(nil), arg.ResponseBody...)
	row.ContentType = arg.ContentType
	row.InProgress = false
	k.rows[arg.IdempotencyKey] = row
	return row, nil
}

func (k *IdempotencyKeys) ReleaseIdempotencyKey(_ context.Context, key, requestHash string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if row, ok := k.rows[key]; ok && row.RequestHash == requestHash && row.InProgress {
		delete(k.rows, key)
		delete(k.created, key)
	}
	return nil
}

func (k *IdempotencyKeys) DeleteExpiredIdempotencyKeys(_ context.Context, cutoff time.Time) (int64, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	var n int64
	for key, row := range k.rows {
		if !row.InProgress && k.created[key].Before(cutoff) {
			delete(k.rows, key)
			delete(k.created, key)
			n++
		}
	}
	return n, nil
}

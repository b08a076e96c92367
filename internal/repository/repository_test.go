package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nileops/remit-console/internal/db"
	"github.com/nileops/remit-console/internal/domain"
	"github.com/nileops/remit-console/internal/models"
	"github.com/nileops/remit-console/internal/testutil/dblock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	_ = godotenv.Load("../../.env") // Load from root
}

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("Skipping integration test: DATABASE_URL not set")
	}
	release := dblock.Acquire()
	t.Cleanup(release)

	pool, err := db.Connect(context.Background(), os.Getenv("DATABASE_URL"))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, pool))
	_, err = pool.Exec(ctx, "TRUNCATE TABLE audit_log, proof_objects, transfers, exchange_rates, clients, idempotency_keys CASCADE")
	require.NoError(t, err)
	return pool
}

func TestUpsertRate_KeepsOneActiveRatePerKey(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewRepository(pool)
	ctx := context.Background()

	key := models.RateKey{FromCountry: "Egypt", ToCountry: "America", FromCurrency: "EGP", ToCurrency: "USD"}

	require.NoError(t, repo.UpsertRate(ctx, &models.ExchangeRate{RateKey: key, Rate: decimal.RequireFromString("0.031"), Active: true}))
	require.NoError(t, repo.UpsertRate(ctx, &models.ExchangeRate{RateKey: key, Rate: decimal.RequireFromString("0.032"), Active: true}))

	rates, err := repo.ListActiveRates(ctx)
	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.Equal(t, "USA", rates[0].ToCountry)
	assert.True(t, rates[0].Rate.Equal(decimal.RequireFromString("0.032")))

	got, err := repo.GetActiveRate(ctx, models.RateKey{FromCountry: "Egypt", ToCountry: "USA", FromCurrency: "EGP", ToCurrency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, "0.032", got.String())

	_, err = repo.GetActiveRate(ctx, models.RateKey{FromCountry: "Sudan", ToCountry: "Gulf", FromCurrency: "SDG", ToCurrency: "AED"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransferLifecycle(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewRepository(pool)
	ctx := context.Background()

	client := &models.Client{ID: uuid.New(), ClientCode: "CL-0001", FullName: "Amna Hassan"}
	require.NoError(t, repo.CreateClient(ctx, client))
	assert.False(t, client.CreatedAt.IsZero())

	phone := "+20100000000"
	transfer := &models.Transfer{
		ID:                  uuid.New(),
		OrderRef:            "NTO-000123",
		ClientID:            client.ID,
		SendCountry:         "Egypt",
		ReceiveCountry:      "USA",
		SendAmount:          decimal.RequireFromString("1000"),
		SendCurrency:        "EGP",
		ReceiveAmount:       decimal.RequireFromString("32.000"),
		ReceiveCurrency:     "USD",
		Rate:                decimal.RequireFromString("0.032"),
		PaymentMethod:       "cash",
		ReceiverName:        "Omar",
		ReceiverContactType: domain.ContactTypePhone,
		ReceiverPhone:       &phone,
		Status:              domain.TransferStatusPending,
	}
	require.NoError(t, repo.CreateTransfer(ctx, transfer))

	encoded := domain.EncodeProofPaths([]string{transfer.ID.String() + "/1-1.png", transfer.ID.String() + "/2-2.jpg"})
	require.NoError(t, repo.PatchTransfer(ctx, transfer.ID, models.TransferPatch{ProofPath: encoded}))

	stored, err := repo.GetTransfer(ctx, transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransferStatusPending, stored.Status)
	assert.True(t, stored.ReceiveAmount.Equal(decimal.NewFromInt(32)))
	assert.Len(t, domain.DecodeProofPaths(stored.ProofPath), 2)

	refs, err := repo.ListOrderRefs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"NTO-000123"}, refs)

	listed, err := repo.ListTransfers(ctx, models.TransferFilter{Status: domain.TransferStatusPending, ClientID: &client.ID, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	cancelled := domain.TransferStatusCancelled
	err = repo.PatchTransfer(ctx, uuid.New(), models.TransferPatch{Status: &cancelled})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWithTx_RollbackDiscardsWrites(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	client := &models.Client{ID: uuid.New(), ClientCode: "CL-0042", FullName: "Rolled Back"}
	require.NoError(t, NewRepository(pool).WithTx(tx).CreateClient(ctx, client))
	require.NoError(t, tx.Rollback(ctx))

	_, err = NewRepository(pool).GetClient(ctx, client.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIdempotencyKeys(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewRepository(pool)
	ctx := context.Background()

	params := ReserveIdempotencyKeyParams{IdempotencyKey: "key-1", RequestHash: "hash", Method: "POST", Path: "/v1/transfers"}
	row, err := repo.ReserveIdempotencyKey(ctx, params)
	require.NoError(t, err)
	assert.True(t, row.InProgress)

	_, err = repo.ReserveIdempotencyKey(ctx, params)
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	row, err = repo.FinalizeIdempotencyKey(ctx, FinalizeIdempotencyKeyParams{
		ResponseStatus: 201,
		ResponseBody:   []byte(`{"order_ref":"NTO-000001"}`),
		ContentType:    "application/json",
		IdempotencyKey: "key-1",
		RequestHash:    "hash",
	})
	require.NoError(t, err)
	assert.False(t, row.InProgress)
	assert.Equal(t, int32(201), row.ResponseStatus)

	n, err := repo.DeleteExpiredIdempotencyKeys(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.DeleteExpiredIdempotencyKeys(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.GetIdempotencyKey(ctx, "key-1")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestAuditLog(t *testing.T) {
	pool := setupTestDB(t)
	repo := NewRepository(pool)
	ctx := context.Background()

	actor := uuid.New()
	entity := uuid.New()
	require.NoError(t, repo.InsertAuditLog(ctx, models.AuditEntry{
		EntityType: domain.AuditEntityTransfer,
		EntityID:   entity,
		ActorID:    &actor,
		Action:     "transfer.status_changed",
		PrevState:  domain.TransferStatusPending,
		NextState:  domain.TransferStatusCompleted,
		Metadata:   []byte(`{"order_ref":"NTO-000001"}`),
	}))

	var action string
	require.NoError(t, pool.QueryRow(ctx, `SELECT action FROM audit_log WHERE entity_id = $1`, entity).Scan(&action))
	assert.Equal(t, "transfer.status_changed", action)
}

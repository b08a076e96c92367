package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nileops/remit-console/internal/models"
	"github.com/shopspring/decimal"
)

// ClientStore is the client half of the record store.
type ClientStore interface {
	CreateClient(ctx context.Context, client *models.Client) error
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	ListClients(ctx context.Context, limit, offset int) ([]models.Client, error)
	ListClientCodes(ctx context.Context) ([]string, error)
}

// RateStore holds active exchange rates. GetActiveRate returns
// domain.ErrNotFound when no active rate exists for key.
type RateStore interface {
	GetActiveRate(ctx context.Context, key models.RateKey) (decimal.Decimal, error)
	UpsertRate(ctx context.Context, rate *models.ExchangeRate) error
	ListActiveRates(ctx context.Context) ([]models.ExchangeRate, error)
}

// TransferStore persists transfers. CreateTransfer assigns created_at.
type TransferStore interface {
	CreateTransfer(ctx context.Context, transfer *models.Transfer) error
	PatchTransfer(ctx context.Context, id uuid.UUID, patch models.TransferPatch) error
	GetTransfer(ctx context.Context, id uuid.UUID) (*models.Transfer, error)
	ListTransfers(ctx context.Context, filter models.TransferFilter) ([]models.Transfer, error)
	ListOrderRefs(ctx context.Context) ([]string, error)
}

// AuditStore receives immutable audit entries.
type AuditStore interface {
	InsertAuditLog(ctx context.Context, entry models.AuditEntry) error
}

// BlobStore holds proof objects. Upload must fail instead of overwriting an
// existing path.
type BlobStore interface {
	Upload(ctx context.Context, path, contentType string, data []byte) error
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

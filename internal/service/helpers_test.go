package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/nileops/remit-console/internal/models"
	"github.com/nileops/remit-console/internal/reference"
	"github.com/nileops/remit-console/internal/testutil/memstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store     *memstore.Store
	blobs     *memstore.Blobs
	audit     *AuditService
	resolver  *RateResolver
	pricing   *PricingEngine
	proofs    *ProofPipeline
	transfers *TransferService
	clients   *ClientService
	rates     *ExchangeRateService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memstore.New(), blobs: memstore.NewBlobs()}
	f.audit = NewAuditService(f.store, nil)
	f.resolver = NewRateResolver(f.store)
	f.pricing = NewPricingEngine(f.store, f.resolver)
	f.proofs = NewProofPipeline(f.blobs, nil)
	f.transfers = NewTransferService(f.store, f.pricing, f.proofs, f.blobs, reference.NewRandom(6), f.audit, nil)
	f.clients = NewClientService(f.store, f.audit)
	f.rates = NewExchangeRateService(f.store, f.audit)
	return f
}

func (f *fixture) client(t *testing.T) *models.Client {
	t.Helper()
	c, err := f.clients.Create(context.Background(), ClientInput{FullName: "Amal Hassan", Phone: "+20 100 000 0000"})
	require.NoError(t, err)
	return c
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func egyptToUSA(clientID uuid.UUID) TransferInput {
	return TransferInput{
		ClientID:            clientID,
		SendCountry:         "Egypt",
		ReceiveCountry:      "USA",
		SendAmount:          dec("1000"),
		PaymentMethod:       "Cash",
		ReceiverName:        "Omar Ali",
		ReceiverContactType: "phone",
		ReceiverPhone:       "+1 555 0100",
	}
}

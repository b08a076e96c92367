package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nileops/remit-console/internal/domain"
	"github.com/nileops/remit-console/internal/models"
	"github.com/nileops/remit-console/internal/observability"
	"github.com/nileops/remit-console/internal/reference"
	"go.uber.org/zap"
)

const defaultProofURLTTL = time.Hour

// TransferService creates transfers and attaches their payment proofs.
type TransferService struct {
	transfers TransferStore
	pricing   *PricingEngine
	proofs    *ProofPipeline
	blobs     BlobStore
	refs      reference.Generator
	audit     *AuditService
	logger    *zap.Logger
	proofTTL  time.Duration
	newID     func() uuid.UUID
}

func NewTransferService(transfers TransferStore, pricing *PricingEngine, proofs *ProofPipeline, blobs BlobStore, refs reference.Generator, audit *AuditService, logger *zap.Logger) *TransferService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferService{
		transfers: transfers,
		pricing:   pricing,
		proofs:    proofs,
		blobs:     blobs,
		refs:      refs,
		audit:     audit,
		logger:    logger,
		proofTTL:  defaultProofURLTTL,
		newID:     uuid.New,
	}
}

// WithProofURLTTL sets the lifetime of signed proof links.
func (s *TransferService) WithProofURLTTL(ttl time.Duration) *TransferService {
	if ttl > 0 {
		s.proofTTL = ttl
	}
	return s
}

// Quote prices in without writing anything.
func (s *TransferService) Quote(ctx context.Context, in TransferInput) (*Quote, error) {
	return s.pricing.Price(ctx, in)
}

// Create prices in, persists the transfer as Pending and then uploads and
// attaches files. Once the record is written it is never rolled back: when
// the proof step fails the created transfer is returned along with the error
// and its proof field stays empty.
func (s *TransferService) Create(ctx context.Context, in TransferInput, files []ProofFile) (*models.Transfer, error) {
	quote, err := s.pricing.Price(ctx, in)
	if err != nil {
		observability.IncrementTransferOutcome("rejected")
		return nil, err
	}

	orderRef, err := s.nextOrderRef(ctx)
	if err != nil {
		return nil, err
	}

	transfer := &models.Transfer{
		ID:                  s.newID(),
		OrderRef:            orderRef,
		ClientID:            in.ClientID,
		SendCountry:         quote.SendCountry,
		ReceiveCountry:      quote.ReceiveCountry,
		SendAmount:          quote.SendAmount,
		SendCurrency:        quote.SendCurrency,
		ReceiveAmount:       quote.ReceiveAmount,
		ReceiveCurrency:     quote.ReceiveCurrency,
		Rate:                quote.Rate,
		PaymentMethod:       strings.TrimSpace(in.PaymentMethod),
		ReceiverName:        strings.TrimSpace(in.ReceiverName),
		ReceiverContactType: quote.ContactType,
		InternalNote:        optionalString(in.InternalNote),
		Status:              domain.TransferStatusPending,
	}
	if quote.ContactType == domain.ContactTypeBank {
		transfer.ReceiverBankAccount = optionalString(in.ReceiverBankAccount)
	} else {
		transfer.ReceiverPhone = optionalString(in.ReceiverPhone)
	}

	if err := s.transfers.CreateTransfer(ctx, transfer); err != nil {
		observability.IncrementTransferOutcome("store_failed")
		return nil, domain.WrapStore("create transfer", err)
	}
	observability.IncrementTransferCreated(transfer.SendCurrency, transfer.ReceiveCurrency)
	s.logger.Info("transfer created",
		zap.String("order_ref", transfer.OrderRef),
		zap.String("transfer_id", transfer.ID.String()),
		zap.String("send", domain.NewMoney(transfer.SendAmount, transfer.SendCurrency).String()),
		zap.String("receive", domain.NewMoney(transfer.ReceiveAmount, transfer.ReceiveCurrency).String()),
		zap.String("rate_source", string(quote.RateSource)),
	)
	s.audit.Record(ctx, domain.AuditEntityTransfer, transfer.ID, "transfer.created", "", transfer.Status,
		map[string]any{"order_ref": transfer.OrderRef, "rate": transfer.Rate.String(), "rate_source": quote.RateSource})

	if len(files) == 0 {
		observability.IncrementTransferOutcome("ready")
		return transfer, nil
	}

	paths, err := s.proofs.Attach(ctx, transfer.ID, files)
	if err != nil {
		observability.IncrementTransferOutcome("proofs_failed")
		return transfer, err
	}

	encoded := domain.EncodeProofPaths(paths)
	if err := s.transfers.PatchTransfer(ctx, transfer.ID, models.TransferPatch{ProofPath: encoded}); err != nil {
		observability.IncrementTransferOutcome("proofs_failed")
		return transfer, domain.WrapStore("attach proofs", err)
	}
	transfer.ProofPath = encoded

	observability.IncrementTransferOutcome("ready")
	return transfer, nil
}

func (s *TransferService) nextOrderRef(ctx context.Context) (string, error) {
	var existing []string
	if s.refs.NeedsHistory() {
		refs, err := s.transfers.ListOrderRefs(ctx)
		if err != nil {
			return "", domain.WrapStore("list order refs", err)
		}
		existing = refs
	}
	return s.refs.Next(domain.OrderRefPrefix, existing), nil
}

// Get returns one transfer.
func (s *TransferService) Get(ctx context.Context, id uuid.UUID) (*models.Transfer, error) {
	t, err := s.transfers.GetTransfer(ctx, id)
	if err != nil {
		return nil, domain.WrapStore("get transfer", err)
	}
	return t, nil
}

// List returns transfers newest first.
func (s *TransferService) List(ctx context.Context, filter models.TransferFilter) ([]models.Transfer, error) {
	if filter.Status != "" {
		status, ok := normalizeStatus(filter.Status)
		if !ok {
			return nil, domain.NewValidationError("status", "unknown status")
		}
		filter.Status = status
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	rows, err := s.transfers.ListTransfers(ctx, filter)
	if err != nil {
		return nil, domain.WrapStore("list transfers", err)
	}
	return rows, nil
}

// ProofLink is a numbered, time-limited link to one proof object.
type ProofLink struct {
	Number int    `json:"number"`
	Path   string `json:"path"`
	URL    string `json:"url"`
}

// ProofLinks signs a URL for every proof attached to the transfer, in
// upload order.
func (s *TransferService) ProofLinks(ctx context.Context, id uuid.UUID) ([]ProofLink, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	paths := domain.DecodeProofPaths(t.ProofPath)
	links := make([]ProofLink, 0, len(paths))
	for i, p := range paths {
		url, err := s.blobs.SignedURL(ctx, p, s.proofTTL)
		if err != nil {
			return nil, domain.WrapStore("sign proof url", err)
		}
		links = append(links, ProofLink{Number: i + 1, Path: p, URL: url})
	}
	return links, nil
}

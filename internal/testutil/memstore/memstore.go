// Package memstore provides in-memory record and blob stores for tests.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nileops/remit-console/internal/blob"
	"github.com/nileops/remit-console/internal/domain"
	"github.com/nileops/remit-console/internal/models"
	"github.com/shopspring/decimal"
)

// Store implements the client, rate, transfer and audit stores.
type Store struct {
	mu        sync.Mutex
	now       func() time.Time
	clients   map[uuid.UUID]models.Client
	rates     map[models.RateKey]models.ExchangeRate
	transfers map[uuid.UUID]models.Transfer
	audit     []models.AuditEntry

	// RateReads counts GetActiveRate calls.
	RateReads int
	// FailCreateTransfer makes CreateTransfer return this error.
	FailCreateTransfer error
	// FailPatchTransfer makes PatchTransfer return this error.
	FailPatchTransfer error
}

func New() *Store {
	return &Store{
		now:       time.Now,
		clients:   make(map[uuid.UUID]models.Client),
		rates:     make(map[models.RateKey]models.ExchangeRate),
		transfers: make(map[uuid.UUID]models.Transfer),
	}
}

func (s *Store) CreateClient(_ context.Context, c *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.clients {
		if existing.ClientCode == c.ClientCode {
			return fmt.Errorf("duplicate client_code %s", c.ClientCode)
		}
	}
	c.CreatedAt = s.now()
	s.clients[c.ID] = *c
	return nil
}

func (s *Store) GetClient(_ context.Context, id uuid.UUID) (*models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (s *Store) ListClients(_ context.Context, limit, offset int) ([]models.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClientCode > out[j].ClientCode })
	return page(out, limit, offset), nil
}

func (s *Store) ListClientCodes(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	codes := make([]string, 0, len(s.clients))
	for _, c := range s.clients {
		codes = append(codes, c.ClientCode)
	}
	return codes, nil
}

func (s *Store) GetActiveRate(_ context.Context, key models.RateKey) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RateReads++
	r, ok := s.rates[normalizeKey(key)]
	if !ok || !r.Active {
		return decimal.Zero, domain.ErrNotFound
	}
	return r.Rate, nil
}

func (s *Store) UpsertRate(_ context.Context, rate *models.ExchangeRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := normalizeKey(rate.RateKey)
	now := s.now()
	if existing, ok := s.rates[key]; ok {
		rate.ID = existing.ID
		rate.CreatedAt = existing.CreatedAt
	} else {
		if rate.ID == uuid.Nil {
			rate.ID = uuid.New()
		}
		rate.CreatedAt = now
	}
	rate.RateKey = key
	rate.UpdatedAt = now
	s.rates[key] = *rate
	return nil
}

// PutRate stores a rate row as-is, including non-positive values.
func (s *Store) PutRate(from, to string, rate decimal.Decimal) {
	fc, _ := domain.LookupCountry(from)
	tc, _ := domain.LookupCountry(to)
	key := models.RateKey{FromCountry: fc.Value, ToCountry: tc.Value, FromCurrency: fc.Currency, ToCurrency: tc.Currency}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[key] = models.ExchangeRate{RateKey: key, ID: uuid.New(), Rate: rate, Active: true}
}

func (s *Store) ListActiveRates(context.Context) ([]models.ExchangeRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ExchangeRate, 0, len(s.rates))
	for _, r := range s.rates {
		if r.Active {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FromCountry+out[i].ToCountry < out[j].FromCountry+out[j].ToCountry })
	return out, nil
}

func (s *Store) CreateTransfer(_ context.Context, t *models.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCreateTransfer != nil {
		return s.FailCreateTransfer
	}
	for _, existing := range s.transfers {
		if existing.OrderRef == t.OrderRef {
			return fmt.Errorf("duplicate order_ref %s", t.OrderRef)
		}
	}
	t.CreatedAt = s.now()
	s.transfers[t.ID] = *t
	return nil
}

func (s *Store) PatchTransfer(_ context.Context, id uuid.UUID, patch models.TransferPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailPatchTransfer != nil {
		return s.FailPatchTransfer
	}
	t, ok := s.transfers[id]
	if !ok {
		return domain.ErrNotFound
	}
	if patch.ProofPath != nil {
		t.ProofPath = patch.ProofPath
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	s.transfers[id] = t
	return nil
}

func (s *Store) GetTransfer(_ context.Context, id uuid.UUID) (*models.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transfers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (s *Store) ListTransfers(_ context.Context, filter models.TransferFilter) ([]models.Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Transfer
	for _, t := range s.transfers {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.ClientID != nil && t.ClientID != *filter.ClientID {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderRef > out[j].OrderRef })
	return page(out, filter.Limit, filter.Offset), nil
}

func (s *Store) ListOrderRefs(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	refs := make([]string, 0, len(s.transfers))
	for _, t := range s.transfers {
		refs = append(refs, t.OrderRef)
	}
	return refs, nil
}

// TransferCount returns the number of stored transfers.
func (s *Store) TransferCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transfers)
}

func (s *Store) InsertAuditLog(_ context.Context, e models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, e)
	return nil
}

// AuditActions returns the recorded audit actions in order.
func (s *Store) AuditActions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.audit))
	for i, e := range s.audit {
		out[i] = e.Action
	}
	return out
}

func normalizeKey(k models.RateKey) models.RateKey {
	k.FromCountry = domain.NormalizeCountry(k.FromCountry)
	k.ToCountry = domain.NormalizeCountry(k.ToCountry)
	return k
}

func page[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

// Blobs is an in-memory blob store. FailAt makes the upload with that
// zero-based call index fail.
type Blobs struct {
	mu      sync.Mutex
	objects map[string]blob.Object
	order   []string
	calls   int

	FailAt  int
	FailErr error
}

func NewBlobs() *Blobs {
	return &Blobs{objects: make(map[string]blob.Object), FailAt: -1}
}

func (b *Blobs) Upload(_ context.Context, path, contentType string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	call := b.calls
	b.calls++
	if call == b.FailAt {
		if b.FailErr != nil {
			return b.FailErr
		}
		return errors.New("storage unavailable")
	}
	if err := blob.ValidatePath(path); err != nil {
		return err
	}
	if _, ok := b.objects[path]; ok {
		return fmt.Errorf("%w: %s", blob.ErrObjectExists, path)
	}
	b.objects[path] = blob.Object{Path: path, ContentType: contentType, Data: append([]byte(nil), data...)}
	b.order = append(b.order, path)
	return nil
}

func (b *Blobs) Get(_ context.Context, path string) (*blob.Object, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	obj, ok := b.objects[path]
	if !ok {
		return nil, blob.ErrObjectNotFound
	}
	return &obj, nil
}

func (b *Blobs) SignedURL(_ context.Context, path string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("mem://%s?ttl=%d", path, int(ttl.Seconds())), nil
}

// Paths returns stored object paths in upload order.
func (b *Blobs) Paths() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.order...)
}

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nileops/remit-console/internal/domain"
	"github.com/nileops/remit-console/internal/models"
	"github.com/nileops/remit-console/internal/observability"
	"github.com/shopspring/decimal"
)

// RateSource says where a resolved rate came from.
type RateSource string

const (
	RateSourceManual RateSource = "manual"
	RateSourceStored RateSource = "stored"
)

// RateResolution is the outcome of ResolveRate.
type RateResolution struct {
	Rate   decimal.Decimal
	Source RateSource
	Key    models.RateKey
}

// RateResolver picks the rate applied to a transfer: a positive manual rate
// always wins, otherwise the active stored rate for the currency pair.
type RateResolver struct {
	rates RateStore
}

func NewRateResolver(rates RateStore) *RateResolver {
	return &RateResolver{rates: rates}
}

// ResolveRate returns domain.ErrNoRateAvailable when neither a usable manual
// rate nor a positive stored rate exists.
func (r *RateResolver) ResolveRate(ctx context.Context, sendCountry, receiveCountry string, manual *decimal.Decimal) (*RateResolution, error) {
	from, err := resolveCountry("send_country", sendCountry)
	if err != nil {
		return nil, err
	}
	to, err := resolveCountry("receive_country", receiveCountry)
	if err != nil {
		return nil, err
	}
	key := rateKey(from, to)

	if manual != nil && manual.IsPositive() {
		observability.IncrementRateResolution(string(RateSourceManual))
		return &RateResolution{Rate: *manual, Source: RateSourceManual, Key: key}, nil
	}

	rate, err := r.rates.GetActiveRate(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			observability.IncrementRateResolution("missing")
			return nil, domain.ErrNoRateAvailable
		}
		return nil, domain.WrapStore("get exchange rate", err)
	}
	if !rate.IsPositive() {
		observability.IncrementRateResolution("missing")
		return nil, domain.ErrNoRateAvailable
	}

	observability.IncrementRateResolution(string(RateSourceStored))
	return &RateResolution{Rate: rate, Source: RateSourceStored, Key: key}, nil
}

func rateKey(from, to domain.Country) models.RateKey {
	return models.RateKey{
		FromCountry:  from.Value,
		ToCountry:    to.Value,
		FromCurrency: from.Currency,
		ToCurrency:   to.Currency,
	}
}

// ExchangeRateService maintains the stored rate table.
type ExchangeRateService struct {
	rates RateStore
	audit *AuditService
}

func NewExchangeRateService(rates RateStore, audit *AuditService) *ExchangeRateService {
	return &ExchangeRateService{rates: rates, audit: audit}
}

// Upsert stores rate as the single active rate for the country pair.
func (s *ExchangeRateService) Upsert(ctx context.Context, fromCountry, toCountry string, rate decimal.Decimal) (*models.ExchangeRate, error) {
	from, err := resolveCountry("from_country", fromCountry)
	if err != nil {
		return nil, err
	}
	to, err := resolveCountry("to_country", toCountry)
	if err != nil {
		return nil, err
	}
	if !rate.IsPositive() {
		return nil, domain.NewValidationError("rate", "must be greater than zero")
	}

	row := &models.ExchangeRate{
		RateKey: rateKey(from, to),
		Rate:    rate,
		Active:  true,
	}
	if err := s.rates.UpsertRate(ctx, row); err != nil {
		return nil, domain.WrapStore("upsert exchange rate", err)
	}

	s.audit.Record(ctx, domain.AuditEntityRate, row.ID, "rate.upserted", "", row.Rate.String(),
		map[string]any{"from_currency": row.FromCurrency, "to_currency": row.ToCurrency})
	return row, nil
}

// List returns active rates with normalized countries.
func (s *ExchangeRateService) List(ctx context.Context) ([]models.ExchangeRate, error) {
	rows, err := s.rates.ListActiveRates(ctx)
	if err != nil {
		return nil, domain.WrapStore("list exchange rates", err)
	}
	for i := range rows {
		rows[i].FromCountry = domain.NormalizeCountry(rows[i].FromCountry)
		rows[i].ToCountry = domain.NormalizeCountry(rows[i].ToCountry)
	}
	return rows, nil
}

func (r RateResolution) String() string {
	return fmt.Sprintf("%s %s->%s (%s)", domain.FormatRate(r.Rate), r.Key.FromCurrency, r.Key.ToCurrency, r.Source)
}

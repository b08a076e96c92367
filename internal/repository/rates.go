package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nileops/remit-console/internal/domain"
	"github.com/nileops/remit-console/internal/models"
	"github.com/shopspring/decimal"
)

// GetActiveRate returns domain.ErrNotFound when the key has no active rate.
func (r *Repository) GetActiveRate(ctx context.Context, key models.RateKey) (decimal.Decimal, error) {
	query := `SELECT rate FROM exchange_rates
		WHERE from_country = $1 AND to_country = $2 AND from_currency = $3 AND to_currency = $4 AND active`
	var rate decimal.Decimal
	err := r.db.QueryRow(ctx, query,
		domain.NormalizeCountry(key.FromCountry), domain.NormalizeCountry(key.ToCountry),
		key.FromCurrency, key.ToCurrency,
	).Scan(&rate)
	if err != nil {
		return decimal.Zero, notFound(err)
	}
	return rate, nil
}

// UpsertRate replaces the rate stored for the key tuple, or inserts it.
func (r *Repository) UpsertRate(ctx context.Context, rate *models.ExchangeRate) error {
	if rate.ID == uuid.Nil {
		rate.ID = uuid.New()
	}
	query := `INSERT INTO exchange_rates (id, from_country, to_country, from_currency, to_currency, rate, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (from_country, to_country, from_currency, to_currency)
		DO UPDATE SET rate = EXCLUDED.rate, active = EXCLUDED.active, updated_at = NOW()
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		rate.ID,
		domain.NormalizeCountry(rate.FromCountry), domain.NormalizeCountry(rate.ToCountry),
		rate.FromCurrency, rate.ToCurrency, rate.Rate, rate.Active,
	).Scan(&rate.ID, &rate.CreatedAt, &rate.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert exchange rate: %w", err)
	}
	return nil
}

func (r *Repository) ListActiveRates(ctx context.Context) ([]models.ExchangeRate, error) {
	query := `SELECT id, from_country, to_country, from_currency, to_currency, rate, active, created_at, updated_at
		FROM exchange_rates WHERE active ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	defer rows.Close()

	var rates []models.ExchangeRate
	for rows.Next() {
		var e models.ExchangeRate
		if err := rows.Scan(&e.ID, &e.FromCountry, &e.ToCountry, &e.FromCurrency, &e.ToCurrency,
			&e.Rate, &e.Active, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exchange rate: %w", err)
		}
		rates = append(rates, e)
	}
	return rates, rows.Err()
}

package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nileops/remit-console/internal/models"
)

const clientColumns = `id, client_code, full_name, phone, email,
	address_country, address_city, address_street, address_postal_code, created_at`

func (r *Repository) CreateClient(ctx context.Context, client *models.Client) error {
	query := `INSERT INTO clients (id, client_code, full_name, phone, email,
		address_country, address_city, address_street, address_postal_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW()) RETURNING created_at`
	err := r.db.QueryRow(ctx, query,
		client.ID, client.ClientCode, client.FullName, client.Phone, client.Email,
		client.Address.Country, client.Address.City, client.Address.Street, client.Address.PostalCode,
	).Scan(&client.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (r *Repository) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	client, err := scanClient(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return client, nil
}

func (r *Repository) ListClients(ctx context.Context, limit, offset int) ([]models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

func (r *Repository) ListClientCodes(ctx context.Context) ([]string, error) {
	return r.listStrings(ctx, `SELECT client_code FROM clients`)
}

func (r *Repository) listStrings(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func scanClient(row pgx.Row) (*models.Client, error) {
	var c models.Client
	err := row.Scan(&c.ID, &c.ClientCode, &c.FullName, &c.Phone, &c.Email,
		&c.Address.Country, &c.Address.City, &c.Address.Street, &c.Address.PostalCode, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nileops/remit-console/internal/domain"
	"github.com/nileops/remit-console/internal/models"
)

const transferColumns = `id, order_ref, client_id, send_country, receive_country,
	send_amount, send_currency, receive_amount, receive_currency, rate, payment_method,
	receiver_name, receiver_contact_type, receiver_phone, receiver_bank_account,
	internal_note, proof_path, status, created_at`

func (r *Repository) CreateTransfer(ctx context.Context, t *models.Transfer) error {
	query := `INSERT INTO transfers (id, order_ref, client_id, send_country, receive_country,
		send_amount, send_currency, receive_amount, receive_currency, rate, payment_method,
		receiver_name, receiver_contact_type, receiver_phone, receiver_bank_account,
		internal_note, proof_path, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW())
		RETURNING created_at`
	err := r.db.QueryRow(ctx, query,
		t.ID, t.OrderRef, t.ClientID,
		domain.NormalizeCountry(t.SendCountry), domain.NormalizeCountry(t.ReceiveCountry),
		t.SendAmount, t.SendCurrency, t.ReceiveAmount, t.ReceiveCurrency, t.Rate, t.PaymentMethod,
		t.ReceiverName, t.ReceiverContactType, t.ReceiverPhone, t.ReceiverBankAccount,
		t.InternalNote, t.ProofPath, t.Status,
	).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	return nil
}

// PatchTransfer updates only the fields set in patch.
func (r *Repository) PatchTransfer(ctx context.Context, id uuid.UUID, patch models.TransferPatch) error {
	var sets []string
	args := []any{id}
	if patch.ProofPath != nil {
		args = append(args, *patch.ProofPath)
		sets = append(sets, fmt.Sprintf("proof_path = $%d", len(args)))
	}
	if patch.Status != nil {
		args = append(args, *patch.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	query := `UPDATE transfers SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to patch transfer: %w", err)
	}
	return requireExactlyOne(tag, "patch transfer")
}

func (r *Repository) GetTransfer(ctx context.Context, id uuid.UUID) (*models.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`
	t, err := scanTransfer(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (r *Repository) ListTransfers(ctx context.Context, filter models.TransferFilter) ([]models.Transfer, error) {
	var where []string
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		where = append(where, fmt.Sprintf("client_id = $%d", len(args)))
	}

	query := `SELECT ` + transferColumns + ` FROM transfers`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []models.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, *t)
	}
	return transfers, rows.Err()
}

func (r *Repository) ListOrderRefs(ctx context.Context) ([]string, error) {
	return r.listStrings(ctx, `SELECT order_ref FROM transfers`)
}

func scanTransfer(row pgx.Row) (*models.Transfer, error) {
	var t models.Transfer
	err := row.Scan(&t.ID, &t.OrderRef, &t.ClientID, &t.SendCountry, &t.ReceiveCountry,
		&t.SendAmount, &t.SendCurrency, &t.ReceiveAmount, &t.ReceiveCurrency, &t.Rate, &t.PaymentMethod,
		&t.ReceiverName, &t.ReceiverContactType, &t.ReceiverPhone, &t.ReceiverBankAccount,
		&t.InternalNote, &t.ProofPath, &t.Status, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.SendCountry = domain.NormalizeCountry(t.SendCountry)
	t.ReceiveCountry = domain.NormalizeCountry(t.ReceiveCountry)
	return &t, nil
}

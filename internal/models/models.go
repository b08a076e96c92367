package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Address struct {
	Country    string `json:"country,omitempty"`
	City       string `json:"city,omitempty"`
	Street     string `json:"street,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

type Client struct {
	ID         uuid.UUID `json:"id"`
	ClientCode string    `json:"client_code"`
	FullName   string    `json:"full_name"`
	Phone      *string   `json:"phone,omitempty"`
	Email      *string   `json:"email,omitempty"`
	Address    Address   `json:"address"`
	CreatedAt  time.Time `json:"created_at"`
}

// RateKey identifies one active exchange rate.
type RateKey struct {
	FromCountry  string `json:"from_country"`
	ToCountry    string `json:"to_country"`
	FromCurrency string `json:"from_currency"`
	ToCurrency   string `json:"to_currency"`
}

type ExchangeRate struct {
	RateKey
	ID        uuid.UUID       `json:"id"`
	Rate      decimal.Decimal `json:"rate"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Transfer struct {
	ID                  uuid.UUID       `json:"id"`
	OrderRef            string          `json:"order_ref"`
	ClientID            uuid.UUID       `json:"client_id"`
	SendCountry         string          `json:"send_country"`
	ReceiveCountry      string          `json:"receive_country"`
	SendAmount          decimal.Decimal `json:"send_amount"`
	SendCurrency        string          `json:"send_currency"`
	ReceiveAmount       decimal.Decimal `json:"receive_amount"`
	ReceiveCurrency     string          `json:"receive_currency"`
	Rate                decimal.Decimal `json:"rate"`
	PaymentMethod       string          `json:"payment_method"`
	ReceiverName        string          `json:"receiver_name"`
	ReceiverContactType string          `json:"receiver_contact_type"` // "phone" or "bank"
	ReceiverPhone       *string         `json:"receiver_phone,omitempty"`
	ReceiverBankAccount *string         `json:"receiver_bank_account,omitempty"`
	InternalNote        *string         `json:"internal_note,omitempty"`
	ProofPath           *string         `json:"proof_path,omitempty"`
	Status              string          `json:"status"` // Pending, Processing, Completed, Cancelled
	CreatedAt           time.Time       `json:"created_at"`
}

// TransferPatch carries the fields of a partial transfer update. Nil fields
// are left untouched.
type TransferPatch struct {
	ProofPath *string
	Status    *string
}

// TransferFilter narrows transfer listings.
type TransferFilter struct {
	Status   string
	ClientID *uuid.UUID
	Limit    int
	Offset   int
}

type AuditEntry struct {
	EntityType string
	EntityID   uuid.UUID
	ActorID    *uuid.UUID
	Action     string
	PrevState  string
	NextState  string
	Metadata   []byte
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/nileops/remit-console/internal/domain"
	"github.com/shopspring/decimal"
)

// TransferInput is the typed form the console submits for a new transfer.
type TransferInput struct {
	ClientID            uuid.UUID
	SendCountry         string
	ReceiveCountry      string
	SendAmount          decimal.Decimal
	ManualRate          *decimal.Decimal
	PaymentMethod       string
	ReceiverName        string
	ReceiverContactType string
	ReceiverPhone       string
	ReceiverBankAccount string
	InternalNote        string
}

// Quote is the priced, validated form of a TransferInput.
type Quote struct {
	SendCountry     string
	ReceiveCountry  string
	SendAmount      decimal.Decimal
	SendCurrency    string
	ReceiveAmount   decimal.Decimal
	ReceiveCurrency string
	Rate            decimal.Decimal
	RateSource      RateSource
	ContactType     string
}

// PricingEngine validates transfer input and computes the receive amount.
type PricingEngine struct {
	clients                  ClientStore
	resolver                 *RateResolver
	requireDistinctCountries bool
}

func NewPricingEngine(clients ClientStore, resolver *RateResolver) *PricingEngine {
	return &PricingEngine{clients: clients, resolver: resolver}
}

// WithDistinctCountries toggles the send != receive country rule.
func (e *PricingEngine) WithDistinctCountries(required bool) *PricingEngine {
	e.requireDistinctCountries = required
	return e
}

// Price checks the input in a fixed order and returns the first violated rule.
// It writes nothing.
func (e *PricingEngine) Price(ctx context.Context, in TransferInput) (*Quote, error) {
	if in.ClientID == uuid.Nil {
		return nil, domain.NewValidationError("client_id", "select a client from the suggestions")
	}
	if _, err := e.clients.GetClient(ctx, in.ClientID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidationError("client_id", "client does not exist")
		}
		return nil, domain.WrapStore("get client", err)
	}

	from, err := resolveCountry("send_country", in.SendCountry)
	if err != nil {
		return nil, err
	}
	to, err := resolveCountry("receive_country", in.ReceiveCountry)
	if err != nil {
		return nil, err
	}
	if e.requireDistinctCountries && from.Value == to.Value {
		return nil, domain.NewValidationError("receive_country", "must differ from send_country")
	}

	if !in.SendAmount.IsPositive() {
		return nil, domain.NewValidationError("send_amount", "must be greater than zero")
	}
	if strings.TrimSpace(in.ReceiverName) == "" {
		return nil, domain.NewValidationError("receiver_name", "is required")
	}

	contactType, err := checkContact(in)
	if err != nil {
		return nil, err
	}

	res, err := e.resolver.ResolveRate(ctx, from.Value, to.Value, in.ManualRate)
	if err != nil {
		return nil, err
	}

	send := domain.NewMoney(in.SendAmount, from.Currency)
	receive := send.Convert(to.Currency, res.Rate)

	return &Quote{
		SendCountry:     from.Value,
		ReceiveCountry:  to.Value,
		SendAmount:      send.Amount,
		SendCurrency:    send.Currency,
		ReceiveAmount:   receive.Amount,
		ReceiveCurrency: receive.Currency,
		Rate:            res.Rate,
		RateSource:      res.Source,
		ContactType:     contactType,
	}, nil
}

func checkContact(in TransferInput) (string, error) {
	contactType := strings.ToLower(strings.TrimSpace(in.ReceiverContactType))
	if contactType == "" {
		contactType = domain.ContactTypePhone
	}
	switch contactType {
	case domain.ContactTypePhone:
		if strings.TrimSpace(in.ReceiverPhone) == "" {
			return "", domain.NewValidationError("receiver_phone", "is required for phone contact")
		}
	case domain.ContactTypeBank:
		if strings.TrimSpace(in.ReceiverBankAccount) == "" {
			return "", domain.NewValidationError("receiver_bank_account", "is required for bank contact")
		}
	default:
		return "", domain.NewValidationError("receiver_contact_type", "must be phone or bank")
	}
	return contactType, nil
}

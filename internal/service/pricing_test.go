package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/nileops/remit-console/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice_ExactProduct(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)

	in := egyptToUSA(c.ID)
	in.SendAmount = dec("2500.75")
	in.ManualRate = decPtr("0.0321")

	q, err := f.pricing.Price(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "80.274075", q.ReceiveAmount.String())
	assert.Equal(t, "EGP", q.SendCurrency)
	assert.Equal(t, "USD", q.ReceiveCurrency)
	assert.Equal(t, RateSourceManual, q.RateSource)
	assert.Equal(t, domain.ContactTypePhone, q.ContactType)
}

func TestPrice_ValidationOrder(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)

	tests := []struct {
		name   string
		mutate func(in *TransferInput)
		field  string
	}{
		{name: "missing client beats everything", mutate: func(in *TransferInput) {
			in.ClientID = uuid.Nil
			in.SendCountry = "Atlantis"
			in.SendAmount = dec("0")
		}, field: "client_id"},
		{name: "unknown client", mutate: func(in *TransferInput) { in.ClientID = uuid.New() }, field: "client_id"},
		{name: "unknown send country beats amount", mutate: func(in *TransferInput) {
			in.SendCountry = "Atlantis"
			in.SendAmount = dec("-5")
		}, field: "send_country"},
		{name: "unknown receive country", mutate: func(in *TransferInput) { in.ReceiveCountry = "" }, field: "receive_country"},
		{name: "zero amount", mutate: func(in *TransferInput) { in.SendAmount = dec("0") }, field: "send_amount"},
		{name: "blank receiver", mutate: func(in *TransferInput) { in.ReceiverName = "  " }, field: "receiver_name"},
		{name: "phone contact without phone", mutate: func(in *TransferInput) { in.ReceiverPhone = "" }, field: "receiver_phone"},
		{name: "bank contact without account", mutate: func(in *TransferInput) {
			in.ReceiverContactType = "bank"
		}, field: "receiver_bank_account"},
		{name: "unknown contact type", mutate: func(in *TransferInput) { in.ReceiverContactType = "pigeon" }, field: "receiver_contact_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := egyptToUSA(c.ID)
			in.ManualRate = decPtr("0.032")
			tt.mutate(&in)

			_, err := f.pricing.Price(context.Background(), in)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestPrice_ValidationBeforeRateLookup(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)

	in := egyptToUSA(c.ID)
	in.ReceiverName = ""
	_, err := f.pricing.Price(context.Background(), in)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, f.store.RateReads)
}

func TestPrice_DistinctCountries(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)

	in := egyptToUSA(c.ID)
	in.ReceiveCountry = "Egypt"
	in.ManualRate = decPtr("1")

	q, err := f.pricing.Price(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "1000", q.ReceiveAmount.String())

	f.pricing.WithDistinctCountries(true)
	_, err = f.pricing.Price(context.Background(), in)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "receive_country", verr.Field)
}

func TestPrice_BankContact(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)

	in := egyptToUSA(c.ID)
	in.ReceiverContactType = "Bank"
	in.ReceiverPhone = ""
	in.ReceiverBankAccount = "EG38 0019 0005"
	in.ManualRate = decPtr("0.032")

	q, err := f.pricing.Price(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, domain.ContactTypeBank, q.ContactType)
}

package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/nileops/remit-console/internal/domain"
	"github.com/nileops/remit-console/internal/models"
	"github.com/nileops/remit-console/internal/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderRefPattern = regexp.MustCompile(`^NTO-\d{6}$`)

func TestCreateTransfer_ManualRate(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)

	in := egyptToUSA(c.ID)
	in.ManualRate = decPtr("0.032")

	tr, err := f.transfers.Create(context.Background(), in, nil)
	require.NoError(t, err)
	assert.Equal(t, "32", tr.ReceiveAmount.String())
	assert.Equal(t, domain.TransferStatusPending, tr.Status)
	assert.Equal(t, "EGP", tr.SendCurrency)
	assert.Equal(t, "USD", tr.ReceiveCurrency)
	assert.Regexp(t, orderRefPattern, tr.OrderRef)
	assert.Nil(t, tr.ProofPath)
	assert.Nil(t, tr.ReceiverBankAccount)

	stored, err := f.transfers.Get(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tr.OrderRef, stored.OrderRef)
	assert.Contains(t, f.store.AuditActions(), "transfer.created")
}

func TestCreateTransfer_NoRateWritesNothing(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)

	tr, err := f.transfers.Create(context.Background(), egyptToUSA(c.ID), []ProofFile{{Filename: "a.png"}})
	assert.ErrorIs(t, err, domain.ErrNoRateAvailable)
	assert.Nil(t, tr)
	assert.Equal(t, 0, f.store.TransferCount())
	assert.Empty(t, f.blobs.Paths())
}

func TestCreateTransfer_ProofsInOrder(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	f.store.PutRate("Egypt", "USA", dec("0.0205"))

	files := []ProofFile{
		{Filename: "a.png", ContentType: "image/png", Data: []byte("a")},
		{Filename: "b.jpg", ContentType: "image/jpeg", Data: []byte("b")},
	}
	tr, err := f.transfers.Create(context.Background(), egyptToUSA(c.ID), files)
	require.NoError(t, err)

	stored, err := f.transfers.Get(context.Background(), tr.ID)
	require.NoError(t, err)
	paths := domain.DecodeProofPaths(stored.ProofPath)
	require.Len(t, paths, 2)
	assert.Equal(t, f.blobs.Paths(), paths)
	for _, p := range paths {
		assert.Equal(t, tr.ID.String(), strings.Split(p, "/")[0])
	}
	assert.True(t, strings.HasSuffix(paths[0], ".png"))
	assert.True(t, strings.HasSuffix(paths[1], ".jpg"))
	assert.True(t, strings.HasPrefix(*stored.ProofPath, "["))

	links, err := f.transfers.ProofLinks(context.Background(), tr.ID)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, 1, links[0].Number)
	assert.Equal(t, paths[1], links[1].Path)
	assert.Equal(t, "mem://"+paths[0]+"?ttl=3600", links[0].URL)
}

func TestCreateTransfer_UploadFailureKeepsRecord(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	f.blobs.FailAt = 1

	in := egyptToUSA(c.ID)
	in.ManualRate = decPtr("0.032")
	files := []ProofFile{{Filename: "a.png"}, {Filename: "b.png"}}

	tr, err := f.transfers.Create(context.Background(), in, files)
	var uerr *domain.UploadError
	require.ErrorAs(t, err, &uerr)
	require.NotNil(t, tr)

	stored, err := f.transfers.Get(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransferStatusPending, stored.Status)
	assert.LessOrEqual(t, len(domain.DecodeProofPaths(stored.ProofPath)), 1)
	assert.Equal(t, 1, f.store.TransferCount())
}

func TestCreateTransfer_PatchFailure(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	f.store.FailPatchTransfer = errors.New("connection reset")

	in := egyptToUSA(c.ID)
	in.ManualRate = decPtr("0.032")

	tr, err := f.transfers.Create(context.Background(), in, []ProofFile{{Filename: "a.png"}})
	var serr *domain.StoreError
	require.ErrorAs(t, err, &serr)
	require.NotNil(t, tr)
	assert.Nil(t, tr.ProofPath)
	assert.Len(t, f.blobs.Paths(), 1)
}

func TestCreateTransfer_StoreFailure(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	f.store.FailCreateTransfer = errors.New("disk full")

	in := egyptToUSA(c.ID)
	in.ManualRate = decPtr("0.032")

	tr, err := f.transfers.Create(context.Background(), in, []ProofFile{{Filename: "a.png"}})
	var serr *domain.StoreError
	require.ErrorAs(t, err, &serr)
	assert.Nil(t, tr)
	assert.Empty(t, f.blobs.Paths())
}

func TestCreateTransfer_SequentialRefs(t *testing.T) {
	f := newFixture(t)
	f.transfers.refs = reference.NewSequential(domain.OrderRefSequenceWidth)
	c := f.client(t)

	in := egyptToUSA(c.ID)
	in.ManualRate = decPtr("0.032")

	var refs []string
	for i := 0; i < 3; i++ {
		tr, err := f.transfers.Create(context.Background(), in, nil)
		require.NoError(t, err)
		refs = append(refs, tr.OrderRef)
	}
	assert.Equal(t, []string{"NTO-00001", "NTO-00002", "NTO-00003"}, refs)
}

func TestQuote_WritesNothing(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)

	in := egyptToUSA(c.ID)
	in.ManualRate = decPtr("0.032")
	q, err := f.transfers.Quote(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "32", q.ReceiveAmount.String())
	assert.Equal(t, 0, f.store.TransferCount())
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	in := egyptToUSA(c.ID)
	in.ManualRate = decPtr("0.032")
	tr, err := f.transfers.Create(context.Background(), in, nil)
	require.NoError(t, err)

	ctx := WithActor(context.Background(), uuid.New())

	updated, err := f.transfers.UpdateStatus(ctx, tr.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, domain.TransferStatusCompleted, updated.Status)

	back, err := f.transfers.UpdateStatus(ctx, tr.ID, "Pending")
	require.NoError(t, err)
	assert.Equal(t, domain.TransferStatusPending, back.Status)

	_, err = f.transfers.UpdateStatus(ctx, tr.ID, "Pending")
	require.NoError(t, err)

	_, err = f.transfers.UpdateStatus(ctx, tr.ID, "Lost")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = f.transfers.UpdateStatus(ctx, uuid.New(), "Completed")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	changes := 0
	for _, a := range f.store.AuditActions() {
		if a == "transfer.status_changed" {
			changes++
		}
	}
	assert.Equal(t, 2, changes)
}

func TestListTransfers(t *testing.T) {
	f := newFixture(t)
	first := f.client(t)
	second, err := f.clients.Create(context.Background(), ClientInput{FullName: "Hiba Osman"})
	require.NoError(t, err)

	for _, id := range []uuid.UUID{first.ID, first.ID, second.ID} {
		in := egyptToUSA(id)
		in.ManualRate = decPtr("0.032")
		_, err := f.transfers.Create(context.Background(), in, nil)
		require.NoError(t, err)
	}

	all, err := f.transfers.List(context.Background(), models.TransferFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := f.transfers.List(context.Background(), models.TransferFilter{ClientID: &second.ID, Status: "pending"})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = f.transfers.List(context.Background(), models.TransferFilter{Status: "Lost"})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

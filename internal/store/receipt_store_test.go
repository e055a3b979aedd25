package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestory/nestory/internal/domain"
)

func TestReceiptStoreCreateAndGet(t *testing.T) {
	d := openTestDB(t)
	receipts := NewReceiptStore(d)
	ctx := context.Background()

	date := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	r := &domain.Receipt{
		Vendor:       ptr("Best Buy"),
		Total:        decimal.NewNullDecimal(decimal.RequireFromString("107.99")),
		TaxAmount:    decimal.NewNullDecimal(decimal.RequireFromString("8.00")),
		PurchaseDate: &date,
		RawText:      "BEST BUY\nTOTAL 107.99",
		Confidence:   0.75,
	}
	require.NoError(t, receipts.Create(ctx, r))

	got, err := receipts.GetByID(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Vendor)
	assert.Equal(t, "Best Buy", *got.Vendor)
	assert.True(t, got.Total.Decimal.Equal(decimal.RequireFromString("107.99")))
	assert.True(t, got.TaxAmount.Valid)
	assert.InDelta(t, 0.75, got.Confidence, 1e-9)
	assert.Nil(t, got.ItemID)
	assert.Nil(t, got.ImageKey)
}

func TestReceiptStoreNullFields(t *testing.T) {
	d := openTestDB(t)
	receipts := NewReceiptStore(d)
	ctx := context.Background()

	r := &domain.Receipt{}
	require.NoError(t, receipts.Create(ctx, r))

	got, err := receipts.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Vendor)
	assert.False(t, got.Total.Valid)
	assert.Nil(t, got.PurchaseDate)
}

func TestReceiptStoreLinkItem(t *testing.T) {
	d := openTestDB(t)
	receipts := NewReceiptStore(d)
	ctx := context.Background()

	item := createItem(t, d, "Blender")
	r := &domain.Receipt{}
	require.NoError(t, receipts.Create(ctx, r))

	require.NoError(t, receipts.LinkItem(ctx, r.ID, &item.ID))
	linked, err := receipts.ListByItemID(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, r.ID, linked[0].ID)

	require.NoError(t, receipts.LinkItem(ctx, r.ID, nil))
	linked, err = receipts.ListByItemID(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, linked)

	assert.ErrorIs(t, receipts.LinkItem(ctx, "missing", nil), ErrNotFound)
}

func TestReceiptStoreDeleteAll(t *testing.T) {
	d := openTestDB(t)
	receipts := NewReceiptStore(d)
	ctx := context.Background()

	require.NoError(t, receipts.Create(ctx, &domain.Receipt{}))
	require.NoError(t, receipts.Create(ctx, &domain.Receipt{}))

	n, err := receipts.DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	list, err := receipts.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

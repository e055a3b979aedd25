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

func TestItemStoreCreate(t *testing.T) {
	d := openTestDB(t)
	items := NewItemStore(d)
	ctx := context.Background()

	bought := time.Date(2023, 11, 24, 0, 0, 0, 0, time.UTC)
	item := &domain.Item{
		Name:          "OLED TV",
		Brand:         "LG",
		SerialNumber:  "SN-123",
		PurchasePrice: decimal.NewNullDecimal(decimal.RequireFromString("1299.99")),
		PurchaseDate:  &bought,
	}
	require.NoError(t, items.Create(ctx, item))
	assert.NotEmpty(t, item.ID)

	got, err := items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "OLED TV", got.Name)
	assert.Equal(t, "LG", got.Brand)
	assert.Equal(t, "USD", got.CurrencyCode)
	assert.True(t, got.PurchasePrice.Valid)
	assert.Equal(t, "1299.99", got.PurchasePrice.Decimal.String())
	require.NotNil(t, got.PurchaseDate)
	assert.True(t, bought.Equal(*got.PurchaseDate))
	assert.Nil(t, got.CategoryID)
	assert.Nil(t, got.RoomID)
	assert.Empty(t, got.PhotoKeys)
}

func TestItemStoreGetByID_Missing(t *testing.T) {
	d := openTestDB(t)
	got, err := NewItemStore(d).GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestItemStoreList_AttachesPhotosAndReceipts(t *testing.T) {
	d := openTestDB(t)
	items := NewItemStore(d)
	photos := NewPhotoStore(d)
	receipts := NewReceiptStore(d)
	ctx := context.Background()

	tv := createItem(t, d, "TV")
	sofa := createItem(t, d, "Sofa")

	_, err := photos.Create(ctx, tv.ID, "tv_1.jpg", "image/jpeg")
	require.NoError(t, err)
	_, err = photos.Create(ctx, tv.ID, "tv_2.jpg", "image/jpeg")
	require.NoError(t, err)
	require.NoError(t, receipts.Create(ctx, &domain.Receipt{ID: "r1", ItemID: &sofa.ID}))
	require.NoError(t, receipts.Create(ctx, &domain.Receipt{ID: "r2"}))

	list, err := items.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Alphabetical
	assert.Equal(t, "Sofa", list[0].Name)
	assert.Equal(t, []string{"r1"}, list[0].ReceiptIDs)
	assert.Empty(t, list[0].PhotoKeys)
	assert.Equal(t, "TV", list[1].Name)
	assert.Equal(t, []string{"tv_1.jpg", "tv_2.jpg"}, list[1].PhotoKeys)
}

func TestItemStoreSearch_CaseInsensitive(t *testing.T) {
	d := openTestDB(t)
	items := NewItemStore(d)
	createItem(t, d, "Road Bike")
	createItem(t, d, "Bike Helmet")
	createItem(t, d, "Kayak")

	results, err := items.Search(context.Background(), "BIKE")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestItemStoreUpdate(t *testing.T) {
	d := openTestDB(t)
	items := NewItemStore(d)
	rooms := NewRoomStore(d)
	ctx := context.Background()

	garage, err := rooms.GetByName(ctx, "Garage")
	require.NoError(t, err)

	item := createItem(t, d, "Drill")
	item.SerialNumber = "DW-99"
	item.RoomID = &garage.ID
	require.NoError(t, items.Update(ctx, item))

	got, err := items.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "DW-99", got.SerialNumber)
	require.NotNil(t, got.RoomID)
	assert.Equal(t, garage.ID, *got.RoomID)
}

func TestItemStoreUpdate_NotFound(t *testing.T) {
	d := openTestDB(t)
	err := NewItemStore(d).Update(context.Background(), &domain.Item{ID: "missing", Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestItemStoreDelete_CascadesPhotosAndUnlinksReceipts(t *testing.T) {
	d := openTestDB(t)
	items := NewItemStore(d)
	photos := NewPhotoStore(d)
	receipts := NewReceiptStore(d)
	ctx := context.Background()

	item := createItem(t, d, "Guitar")
	photo, err := photos.Create(ctx, item.ID, "guitar.jpg", "image/jpeg")
	require.NoError(t, err)
	require.NoError(t, receipts.Create(ctx, &domain.Receipt{ID: "r1", ItemID: &item.ID}))

	require.NoError(t, items.Delete(ctx, item.ID))

	gone, err := photos.GetByID(ctx, photo.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	r, err := receipts.GetByID(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, r, "receipts are not owned by items")
	assert.Nil(t, r.ItemID)
}

func TestItemStoreDelete_NotFound(t *testing.T) {
	d := openTestDB(t)
	err := NewItemStore(d).Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestItemStoreExistsAndDeleteAll(t *testing.T) {
	d := openTestDB(t)
	items := NewItemStore(d)
	ctx := context.Background()

	item := createItem(t, d, "Lamp")
	ok, err := items.Exists(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	n, err := items.DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	ok, err = items.Exists(ctx, item.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nestory/nestory/internal/backup"
	"github.com/nestory/nestory/internal/domain"
)

// seedInventory creates two items, one fully documented, and a receipt.
func seedInventory(t *testing.T, svc *InventoryService) *domain.Item {
	t.Helper()
	ctx := context.Background()

	categories, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	rooms, err := svc.ListRooms(ctx)
	require.NoError(t, err)

	custom := &domain.Category{Name: "Instruments", IconName: "guitars", ColorHex: "#AA0000"}
	require.NoError(t, svc.CreateCategory(ctx, custom))

	laptop := &domain.Item{
		Name:          "Laptop",
		CategoryID:    &categories[0].ID,
		RoomID:        &rooms[0].ID,
		SerialNumber:  "C02XYZ",
		PurchasePrice: decimal.NewNullDecimal(decimal.RequireFromString("1999.99")),
	}
	require.NoError(t, svc.CreateItem(ctx, laptop))
	_, err = svc.AddPhoto(ctx, laptop.ID, []byte{0xFF, 0xD8}, "image/jpeg")
	require.NoError(t, err)
	require.NoError(t, svc.CreateReceipt(ctx, &domain.Receipt{
		Vendor: ptr("Apple"), Total: laptop.PurchasePrice, Confidence: 1, ItemID: &laptop.ID,
	}))

	require.NoError(t, svc.CreateItem(ctx, &domain.Item{Name: "Guitar", CategoryID: &custom.ID}))
	return laptop
}

func TestBackupServiceExport(t *testing.T) {
	d := openTestDB(t)
	photos := newStubPhotoStore()
	seedInventory(t, newInventoryService(d, nil, photos))

	svc := NewBackupService(d, photos, "2.1.0", slog.Default())
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), &buf))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, "2.1.0", raw["appVersion"])
	assert.Equal(t, "2024-06-01T09:00:00Z", raw["exportDate"])
	assert.Len(t, raw["items"], 2)
	assert.Len(t, raw["categories"], 11)
	assert.Len(t, raw["rooms"], 8)
	assert.Len(t, raw["receipts"], 1)

	snap, err := backup.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	guitar := snap.Items[0]
	require.Equal(t, "Guitar", guitar.Name)
	require.NotNil(t, guitar.CategoryName)
	assert.Equal(t, "Instruments", *guitar.CategoryName)
}

func TestBackupServiceRoundTrip(t *testing.T) {
	photos := newStubPhotoStore()
	src := openTestDB(t)
	laptop := seedInventory(t, newInventoryService(src, nil, photos))

	var buf bytes.Buffer
	require.NoError(t, NewBackupService(src, photos, "2.1.0", slog.Default()).Export(context.Background(), &buf))

	dst := openTestDB(t)
	res, err := NewBackupService(dst, photos, "2.1.0", slog.Default()).Import(context.Background(), &buf, backup.ModeMerge)
	require.NoError(t, err)

	assert.Equal(t, "Imported 2 items, 0 warnings", res.Summary())
	assert.Equal(t, 1, res.Categories.Created)
	assert.Equal(t, 10, res.Categories.Updated)
	assert.Equal(t, 8, res.Rooms.Updated)
	assert.Equal(t, 1, res.Receipts.Created)

	inv := newInventoryService(dst, nil, photos)
	got, err := inv.GetItem(context.Background(), laptop.ID)
	require.NoError(t, err)
	assert.Len(t, got.PhotoKeys, 1)
	assert.Len(t, got.ReceiptIDs, 1)

	sc, err := inv.ItemScore(context.Background(), laptop.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, sc.Score)
}

func TestBackupServiceImportInvalidLeavesStoreUntouched(t *testing.T) {
	d := openTestDB(t)
	photos := newStubPhotoStore()
	inv := newInventoryService(d, nil, photos)
	seedInventory(t, inv)
	svc := NewBackupService(d, photos, "2.1.0", slog.Default())

	for name, body := range map[string]string{
		"malformed":      `{"exportDate":`,
		"missing date":   `{"items":[],"categories":[],"rooms":[],"receipts":[]}`,
		"missing name":   `{"exportDate":"2024-01-01T00:00:00Z","items":[{"id":"a","name":""}],"categories":[],"rooms":[],"receipts":[]}`,
		"duplicate item": `{"exportDate":"2024-01-01T00:00:00Z","items":[{"id":"a","name":"x"},{"id":"a","name":"y"}],"categories":[],"rooms":[],"receipts":[]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Import(context.Background(), strings.NewReader(body), backup.ModeReplace)
			assert.ErrorIs(t, err, backup.ErrInvalidSnapshot)

			items, err := inv.ListItems(context.Background(), "")
			require.NoError(t, err)
			assert.Len(t, items, 2)
		})
	}
}

func TestBackupServiceImportReplace(t *testing.T) {
	photos := newStubPhotoStore()
	src := openTestDB(t)
	seedInventory(t, newInventoryService(src, nil, photos))
	var buf bytes.Buffer
	require.NoError(t, NewBackupService(src, photos, "2.1.0", slog.Default()).Export(context.Background(), &buf))

	dst := openTestDB(t)
	inv := newInventoryService(dst, nil, photos)
	require.NoError(t, inv.CreateItem(context.Background(), &domain.Item{Name: "Stale"}))
	require.NoError(t, inv.CreateRoom(context.Background(), &domain.Room{Name: "Shed"}))

	res, err := NewBackupService(dst, photos, "2.1.0", slog.Default()).Import(context.Background(), &buf, backup.ModeReplace)
	require.NoError(t, err)
	assert.Equal(t, backup.ModeReplace, res.Mode)
	assert.Equal(t, 1, res.Items.Deleted)
	assert.Equal(t, 1, res.Rooms.Deleted)
	assert.Equal(t, 2, res.Items.Created)

	items, err := inv.ListItems(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Guitar", items[0].Name)
	assert.Equal(t, "Laptop", items[1].Name)

	rooms, err := inv.ListRooms(context.Background())
	require.NoError(t, err)
	assert.Len(t, rooms, 8)
}

func TestBackupServiceImportMissingPhotoWarns(t *testing.T) {
	photos := newStubPhotoStore()
	src := openTestDB(t)
	laptop := seedInventory(t, newInventoryService(src, nil, photos))
	var buf bytes.Buffer
	require.NoError(t, NewBackupService(src, photos, "2.1.0", slog.Default()).Export(context.Background(), &buf))

	dst := openTestDB(t)
	res, err := NewBackupService(dst, newStubPhotoStore(), "2.1.0", slog.Default()).Import(context.Background(), &buf, backup.ModeMerge)
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], laptop.Name)

	got, err := newInventoryService(dst, nil, photos).GetItem(context.Background(), laptop.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PhotoKeys)
}

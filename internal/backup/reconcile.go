package backup

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/nestory/nestory/internal/domain"
)

type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	Update(ctx context.Context, c *domain.Category) error
	DeleteUserCreated(ctx context.Context) (int64, error)
}

type RoomRepository interface {
	Create(ctx context.Context, r *domain.Room) error
	GetByID(ctx context.Context, id string) (*domain.Room, error)
	GetByName(ctx context.Context, name string) (*domain.Room, error)
	Update(ctx context.Context, r *domain.Room) error
	DeleteUserCreated(ctx context.Context) (int64, error)
}

type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	Exists(ctx context.Context, id string) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type PhotoRepository interface {
	Create(ctx context.Context, itemID, storageKey, mimeType string) (*domain.Photo, error)
}

type ReceiptRepository interface {
	Create(ctx context.Context, r *domain.Receipt) error
	GetByID(ctx context.Context, id string) (*domain.Receipt, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// FileChecker reports whether a referenced photo file is present.
type FileChecker interface {
	Exists(ctx context.Context, storageKey string) (bool, error)
}

// Repositories is the destination store. All of them should share one
// transaction so a failed import leaves nothing behind.
type Repositories struct {
	Categories CategoryRepository
	Rooms      RoomRepository
	Items      ItemRepository
	Photos     PhotoRepository
	Receipts   ReceiptRepository
}

type Reconciler struct {
	repos  Repositories
	files  FileChecker
	logger *slog.Logger
}

// NewReconciler returns a reconciler writing to repos. files may be nil, in
// which case photo references are imported without checking.
func NewReconciler(repos Repositories, files FileChecker, logger *slog.Logger) *Reconciler {
	return &Reconciler{repos: repos, files: files, logger: logger}
}

// pass holds the state of one Apply call.
type pass struct {
	*Reconciler
	res         *Result
	categoryIDs map[string]string // name -> destination id
	roomIDs     map[string]string
}

// Apply writes snap into the store. Categories and rooms are upserted by
// name; items and receipts are inserted unless their id already exists.
// Repository errors abort the import; unresolved references become warnings.
func (r *Reconciler) Apply(ctx context.Context, snap *Snapshot, mode Mode) (*Result, error) {
	p := &pass{
		Reconciler:  r,
		res:         &Result{Mode: mode, Warnings: []string{}},
		categoryIDs: make(map[string]string, len(snap.Categories)),
		roomIDs:     make(map[string]string, len(snap.Rooms)),
	}

	if mode == ModeReplace {
		if err := p.clear(ctx); err != nil {
			return nil, err
		}
	}

	for i := range snap.Categories {
		if err := p.upsertCategory(ctx, &snap.Categories[i]); err != nil {
			return nil, err
		}
	}
	for i := range snap.Rooms {
		if err := p.upsertRoom(ctx, &snap.Rooms[i]); err != nil {
			return nil, err
		}
	}
	for i := range snap.Items {
		if err := p.insertItem(ctx, &snap.Items[i]); err != nil {
			return nil, err
		}
	}
	for i := range snap.Receipts {
		if err := p.insertReceipt(ctx, &snap.Receipts[i]); err != nil {
			return nil, err
		}
	}

	for _, w := range p.res.Warnings {
		r.logger.Warn("import warning", "warning", w)
	}
	return p.res, nil
}

func (p *pass) clear(ctx context.Context) error {
	n, err := p.repos.Receipts.DeleteAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear receipts: %w", err)
	}
	p.res.Receipts.Deleted = int(n)

	if n, err = p.repos.Items.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear items: %w", err)
	}
	p.res.Items.Deleted = int(n)

	if n, err = p.repos.Categories.DeleteUserCreated(ctx); err != nil {
		return fmt.Errorf("failed to clear categories: %w", err)
	}
	p.res.Categories.Deleted = int(n)

	if n, err = p.repos.Rooms.DeleteUserCreated(ctx); err != nil {
		return fmt.Errorf("failed to clear rooms: %w", err)
	}
	p.res.Rooms.Deleted = int(n)

	p.logger.Info("cleared store for replace import",
		"receipts", p.res.Receipts.Deleted, "items", p.res.Items.Deleted,
		"categories", p.res.Categories.Deleted, "rooms", p.res.Rooms.Deleted)
	return nil
}

func (p *pass) upsertCategory(ctx context.Context, rec *CategoryRecord) error {
	existing, err := p.repos.Categories.GetByName(ctx, rec.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		existing.IconName = rec.IconName
		existing.ColorHex = rec.ColorHex
		existing.SortOrder = rec.SortOrder
		if err := p.repos.Categories.Update(ctx, existing); err != nil {
			return err
		}
		p.categoryIDs[rec.Name] = existing.ID
		p.res.Categories.Updated++
		return nil
	}

	id := rec.ID
	taken, err := p.repos.Categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if taken != nil {
		id = uuid.NewString()
		p.res.warn("category %q: id %s already used by %q, assigned a new id", rec.Name, rec.ID, taken.Name)
	}

	c := &domain.Category{
		ID:        id,
		Name:      rec.Name,
		IconName:  rec.IconName,
		ColorHex:  rec.ColorHex,
		SortOrder: rec.SortOrder,
		CreatedAt: rec.CreatedAt,
	}
	if err := p.repos.Categories.Create(ctx, c); err != nil {
		return err
	}
	p.categoryIDs[rec.Name] = c.ID
	p.res.Categories.Created++
	return nil
}

func (p *pass) upsertRoom(ctx context.Context, rec *RoomRecord) error {
	existing, err := p.repos.Rooms.GetByName(ctx, rec.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		existing.IconName = rec.IconName
		existing.SortOrder = rec.SortOrder
		if err := p.repos.Rooms.Update(ctx, existing); err != nil {
			return err
		}
		p.roomIDs[rec.Name] = existing.ID
		p.res.Rooms.Updated++
		return nil
	}

	id := rec.ID
	taken, err := p.repos.Rooms.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if taken != nil {
		id = uuid.NewString()
		p.res.warn("room %q: id %s already used by %q, assigned a new id", rec.Name, rec.ID, taken.Name)
	}

	room := &domain.Room{
		ID:        id,
		Name:      rec.Name,
		IconName:  rec.IconName,
		SortOrder: rec.SortOrder,
		CreatedAt: rec.CreatedAt,
	}
	if err := p.repos.Rooms.Create(ctx, room); err != nil {
		return err
	}
	p.roomIDs[rec.Name] = room.ID
	p.res.Rooms.Created++
	return nil
}

// resolveCategory finds a category id by name, first among the snapshot's
// categories and then in the destination store.
func (p *pass) resolveCategory(ctx context.Context, name string) (string, bool, error) {
	if id, ok := p.categoryIDs[name]; ok {
		return id, true, nil
	}
	c, err := p.repos.Categories.GetByName(ctx, name)
	if err != nil || c == nil {
		return "", false, err
	}
	p.categoryIDs[name] = c.ID
	return c.ID, true, nil
}

func (p *pass) resolveRoom(ctx context.Context, name string) (string, bool, error) {
	if id, ok := p.roomIDs[name]; ok {
		return id, true, nil
	}
	r, err := p.repos.Rooms.GetByName(ctx, name)
	if err != nil || r == nil {
		return "", false, err
	}
	p.roomIDs[name] = r.ID
	return r.ID, true, nil
}

func (p *pass) insertItem(ctx context.Context, rec *ItemRecord) error {
	exists, err := p.repos.Items.Exists(ctx, rec.ID)
	if err != nil {
		return err
	}
	if exists {
		p.res.Items.Skipped++
		return nil
	}

	item := &domain.Item{
		ID:            rec.ID,
		Name:          rec.Name,
		Description:   rec.Description,
		Brand:         rec.Brand,
		ModelNumber:   rec.ModelNumber,
		SerialNumber:  rec.SerialNumber,
		PurchasePrice: rec.PurchasePrice,
		PurchaseDate:  rec.PurchaseDate,
		CurrencyCode:  rec.CurrencyCode,
		Condition:     rec.Condition,
		Notes:         rec.Notes,
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}

	if name := deref(rec.CategoryName); name != "" {
		id, ok, err := p.resolveCategory(ctx, name)
		if err != nil {
			return err
		}
		if ok {
			item.CategoryID = &id
		} else {
			p.res.warn("item %q: category %q not found, imported without category", rec.Name, name)
		}
	}
	if name := deref(rec.RoomName); name != "" {
		id, ok, err := p.resolveRoom(ctx, name)
		if err != nil {
			return err
		}
		if ok {
			item.RoomID = &id
		} else {
			p.res.warn("item %q: room %q not found, imported without room", rec.Name, name)
		}
	}

	keys := make([]string, 0, len(rec.PhotoIdentifiers))
	for _, key := range rec.PhotoIdentifiers {
		if !p.fileExists(ctx, key) {
			p.res.warn("item %q: photo file %s missing, item created without that photo reference", rec.Name, key)
			continue
		}
		keys = append(keys, key)
	}

	if err := p.repos.Items.Create(ctx, item); err != nil {
		return err
	}
	for _, key := range keys {
		if _, err := p.repos.Photos.Create(ctx, item.ID, key, mimeTypeOf(key)); err != nil {
			return err
		}
	}
	p.res.Items.Created++
	return nil
}

func (p *pass) insertReceipt(ctx context.Context, rec *ReceiptRecord) error {
	existing, err := p.repos.Receipts.GetByID(ctx, rec.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		p.res.Receipts.Skipped++
		return nil
	}

	receipt := &domain.Receipt{
		ID:           rec.ID,
		Vendor:       rec.Vendor,
		Total:        rec.Total,
		TaxAmount:    rec.TaxAmount,
		PurchaseDate: rec.PurchaseDate,
		RawText:      rec.RawText,
		Confidence:   rec.Confidence,
		CreatedAt:    rec.CreatedAt,
	}

	if itemID := deref(rec.LinkedItemID); itemID != "" {
		ok, err := p.repos.Items.Exists(ctx, itemID)
		if err != nil {
			return err
		}
		if ok {
			receipt.ItemID = &itemID
		} else {
			p.res.warn("receipt %s: linked item %s not found, imported unlinked", rec.ID, itemID)
		}
	}
	if key := deref(rec.ImageIdentifier); key != "" {
		if p.fileExists(ctx, key) {
			receipt.ImageKey = &key
		} else {
			p.res.warn("receipt %s: image file %s missing, imported without image", rec.ID, key)
		}
	}

	if err := p.repos.Receipts.Create(ctx, receipt); err != nil {
		return err
	}
	p.res.Receipts.Created++
	return nil
}

// fileExists treats lookup failures, such as keys that escape the photo
// directory, as missing files.
func (p *pass) fileExists(ctx context.Context, key string) bool {
	if p.files == nil {
		return true
	}
	ok, err := p.files.Exists(ctx, key)
	if err != nil {
		p.logger.Debug("photo lookup failed", "storage_key", key, "error", err)
		return false
	}
	return ok
}

func mimeTypeOf(key string) string {
	if t := mime.TypeByExtension(filepath.Ext(key)); t != "" {
		return t
	}
	return "image/jpeg"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nestory/nestory/internal/backup"
	"github.com/nestory/nestory/internal/db"
	"github.com/nestory/nestory/internal/metrics"
	"github.com/nestory/nestory/internal/store"
)

// BackupService exports the inventory as a JSON snapshot and imports
// snapshots back. It works on the database handle directly so an import can
// run every store inside one transaction.
type BackupService struct {
	db         *sql.DB
	files      backup.FileChecker
	appVersion string
	logger     *slog.Logger
	now        func() time.Time
}

func NewBackupService(database *sql.DB, files backup.FileChecker, appVersion string, logger *slog.Logger) *BackupService {
	return &BackupService{
		db:         database,
		files:      files,
		appVersion: appVersion,
		logger:     logger,
		now:        time.Now,
	}
}

// Snapshot reads the whole inventory.
func (s *BackupService) Snapshot(ctx context.Context) (*backup.Snapshot, error) {
	categories, err := store.NewCategoryStore(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	rooms, err := store.NewRoomStore(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	items, err := store.NewItemStore(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	receipts, err := store.NewReceiptStore(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	return backup.NewSnapshot(s.appVersion, s.now(), categories, rooms, items, receipts), nil
}

func (s *BackupService) Export(ctx context.Context, w io.Writer) error {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to build snapshot: %w", err)
	}
	if err := snap.Encode(w); err != nil {
		return err
	}
	metrics.ExportsTotal.Inc()
	s.logger.Info("backup exported", "items", len(snap.Items), "receipts", len(snap.Receipts))
	return nil
}

// Import decodes and validates the snapshot before touching the store, then
// applies it in one transaction. Any repository error rolls back the whole
// import; per-record problems come back as warnings on the result.
func (s *BackupService) Import(ctx context.Context, r io.Reader, mode backup.Mode) (*backup.Result, error) {
	snap, err := backup.Decode(r)
	if err != nil {
		metrics.ImportsTotal.WithLabelValues(string(mode), "invalid").Inc()
		return nil, err
	}
	s.logger.Info("import started", "mode", mode, "app_version", snap.AppVersion,
		"items", len(snap.Items), "categories", len(snap.Categories),
		"rooms", len(snap.Rooms), "receipts", len(snap.Receipts))

	var res *backup.Result
	err = db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		repos := backup.Repositories{
			Categories: store.NewCategoryStore(tx),
			Rooms:      store.NewRoomStore(tx),
			Items:      store.NewItemStore(tx),
			Photos:     store.NewPhotoStore(tx),
			Receipts:   store.NewReceiptStore(tx),
		}
		var applyErr error
		res, applyErr = backup.NewReconciler(repos, s.files, s.logger).Apply(ctx, snap, mode)
		return applyErr
	})
	if err != nil {
		metrics.ImportsTotal.WithLabelValues(string(mode), "failed").Inc()
		s.logger.Error("import failed", "mode", mode, "error", err)
		return nil, fmt.Errorf("import failed: %w", err)
	}

	recordImport(res)
	s.logger.Info("import complete", "mode", mode, "summary", res.Summary(),
		"items_created", res.Items.Created, "items_skipped", res.Items.Skipped,
		"receipts_created", res.Receipts.Created, "warnings", len(res.Warnings))
	return res, nil
}

func recordImport(res *backup.Result) {
	metrics.ImportsTotal.WithLabelValues(string(res.Mode), "ok").Inc()
	metrics.ImportWarningsTotal.Add(float64(len(res.Warnings)))
	for entity, c := range map[string]backup.Counts{
		"category": res.Categories,
		"room":     res.Rooms,
		"item":     res.Items,
		"receipt":  res.Receipts,
	} {
		metrics.ImportRecordsTotal.WithLabelValues(entity, "deleted").Add(float64(c.Deleted))
		metrics.ImportRecordsTotal.WithLabelValues(entity, "created").Add(float64(c.Created))
		metrics.ImportRecordsTotal.WithLabelValues(entity, "updated").Add(float64(c.Updated))
		metrics.ImportRecordsTotal.WithLabelValues(entity, "skipped").Add(float64(c.Skipped))
	}
}

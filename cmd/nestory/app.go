package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/nestory/nestory/internal/config"
	"github.com/nestory/nestory/internal/db"
	"github.com/nestory/nestory/internal/logging"
	"github.com/nestory/nestory/internal/ocr"
	claudeocr "github.com/nestory/nestory/internal/ocr/claude"
	ollamaocr "github.com/nestory/nestory/internal/ocr/ollama"
	"github.com/nestory/nestory/internal/photostore/local"
	"github.com/nestory/nestory/internal/service"
	"github.com/nestory/nestory/internal/store"
)

// app holds everything a subcommand needs, wired from configuration.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	database  *sql.DB
	inventory *service.InventoryService
	backups   *service.BackupService
	cleanup   func()
}

func newApp(cfg *config.Config) (*app, error) {
	logger, logCleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logCleanup()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	photoStg, err := local.NewLocalPhotoStore(cfg.PhotoPath)
	if err != nil {
		_ = database.Close()
		logCleanup()
		return nil, fmt.Errorf("failed to initialize photo store: %w", err)
	}

	inventory := service.NewInventoryService(
		store.NewCategoryStore(database),
		store.NewRoomStore(database),
		store.NewItemStore(database),
		store.NewPhotoStore(database),
		store.NewReceiptStore(database),
		newReceiptAnalyzer(cfg, logger),
		photoStg,
		logger,
	)
	backups := service.NewBackupService(database, photoStg, cfg.AppVersion, logger)

	return &app{
		cfg:       cfg,
		logger:    logger,
		database:  database,
		inventory: inventory,
		backups:   backups,
		cleanup: func() {
			if err := database.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
			logCleanup()
		},
	}, nil
}

func newReceiptAnalyzer(cfg *config.Config, logger *slog.Logger) ocr.ReceiptAnalyzer {
	switch cfg.OCRBackend {
	case "claude":
		if cfg.ClaudeAPIKey == "" {
			logger.Error("CLAUDE_API_KEY is required when OCR_BACKEND=claude")
			return nil
		}
		logger.Info("using Claude receipt OCR backend", "model", cfg.ClaudeModel)
		return claudeocr.NewClaudeAnalyzer(cfg.ClaudeAPIKey, cfg.ClaudeModel)
	case "none":
		logger.Info("receipt OCR disabled")
		return nil
	default:
		logger.Info("using Ollama receipt OCR backend", "model", cfg.OllamaModel)
		return ollamaocr.NewOllamaAnalyzer(cfg.OllamaHost, cfg.OllamaModel)
	}
}

package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nestory/nestory/internal/metrics"
	"github.com/nestory/nestory/internal/service"
)

type Server struct {
	inventory *service.InventoryService
	backups   *service.BackupService
	router    chi.Router
	logger    *slog.Logger
}

func NewServer(inventory *service.InventoryService, backups *service.BackupService, logger *slog.Logger) *Server {
	s := &Server{
		inventory: inventory,
		backups:   backups,
		router:    chi.NewRouter(),
		logger:    logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(func(next http.Handler) http.Handler { return requestLogger(s.logger, next) })
	r.Use(securityHeaders)
	r.Use(metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", s.handleListCategories)
		r.Post("/categories", s.handleCreateCategory)
		r.Get("/rooms", s.handleListRooms)
		r.Post("/rooms", s.handleCreateRoom)

		r.Route("/items", func(r chi.Router) {
			r.Get("/", s.handleListItems)
			r.Post("/", s.handleCreateItem)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetItem)
				r.Put("/", s.handleUpdateItem)
				r.Delete("/", s.handleDeleteItem)
				r.Get("/score", s.handleItemScore)
				r.Post("/photos", s.handleUploadPhoto)
			})
		})
		r.Get("/photos/{key}", s.handleGetPhoto)
		r.Get("/scores", s.handleScoreSummary)

		r.Get("/receipts", s.handleListReceipts)
		r.Post("/receipts", s.handleCreateReceipt)
		r.Post("/receipts/scan", s.handleScanReceipt)
		r.Put("/receipts/{id}/item", s.handleLinkReceipt)

		r.Get("/backup", s.handleExport)
		r.Post("/backup", s.handleImport)

		r.Get("/reports/{format}", s.handleReport)
	})
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer returns an http.Server for addr with the timeouts the API
// needs; large backup imports and OCR calls get a generous write timeout.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	return s.HTTPServer(addr).ListenAndServe()
}

package web

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nestory/nestory/internal/backup"
	"github.com/nestory/nestory/internal/report"
)

const maxBackupSize = 100 * 1024 * 1024 // 100 MB

type importResponse struct {
	*backup.Result
	Summary string `json:"summary"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	filename := fmt.Sprintf("nestory-backup-%s.json", time.Now().UTC().Format("2006-01-02"))
	s.writeBuffered(w, r, "export backup", "application/json", filename, func(out io.Writer) error {
		return s.backups.Export(r.Context(), out)
	})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	mode, err := backup.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.backups.Import(r.Context(), http.MaxBytesReader(w, r.Body, maxBackupSize), mode)
	if err != nil {
		s.respondServiceError(w, r, "import backup", err)
		return
	}
	respondJSON(w, http.StatusOK, importResponse{Result: res, Summary: res.Summary()})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	filename := fmt.Sprintf("nestory-report-%s.%s", time.Now().UTC().Format("2006-01-02"), format)
	s.writeBuffered(w, r, "render report", format.ContentType(), filename, func(out io.Writer) error {
		return s.inventory.WriteReport(r.Context(), out, format)
	})
}

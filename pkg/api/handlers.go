package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ssargent/sagadb/pkg/codec"
)

// Server holds the API server state
type Server struct {
	registry *Registry
	config   ServerConfig
	metrics  *Metrics
	logger   *slog.Logger
}

// NewServer creates a new API server
func NewServer(registry *Registry, config ServerConfig, metrics *Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		registry: registry,
		config:   config,
		metrics:  metrics,
		logger:   logger,
	}
}

// handleHealth reports server health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleListTables lists all registered tables with their record counts.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	infos := s.registry.List()
	for _, info := range infos {
		s.metrics.UpdateTableRecords(info.Name, info.Records)
	}
	sendSuccess(w, map[string]interface{}{"tables": infos})
}

// handleExportTable streams a table as tab-separated text.
func (s *Server) handleExportTable(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")

	var buf bytes.Buffer
	err := s.registry.With(name, func(t Table) error {
		return t.Save(&buf)
	})
	if err != nil {
		s.metrics.RecordTableOperation("export", name, false)
		if errors.Is(err, ErrTableNotFound) {
			sendError(w, fmt.Sprintf("Table %q not found", name), http.StatusNotFound)
			return
		}
		s.logger.Error("export failed", "table", name, "error", err)
		sendError(w, fmt.Sprintf("Failed to export table: %v", err), http.StatusInternalServerError)
		return
	}

	s.metrics.RecordTableOperation("export", name, true)
	s.logger.Info("table exported", "table", name, "bytes", buf.Len(), "duration", time.Since(start))
	w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Error("export write failed", "table", name, "error", err)
	}
}

// handleImportTable loads tab-separated text into a table. With
// ?replace=true the table is cleared first; otherwise records merge
// into the existing contents, identifier collisions overwriting.
func (s *Server) handleImportTable(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")
	replace := r.URL.Query().Get("replace") == "true"

	var loaded int
	err := s.registry.With(name, func(t Table) error {
		if replace {
			t.Clear()
		}
		before := t.Len()
		if err := t.Load(r.Body); err != nil {
			return err
		}
		loaded = t.Len() - before
		return nil
	})
	if err != nil {
		s.metrics.RecordTableOperation("import", name, false)
		switch {
		case errors.Is(err, ErrTableNotFound):
			sendError(w, fmt.Sprintf("Table %q not found", name), http.StatusNotFound)
		case isParseError(err):
			sendError(w, fmt.Sprintf("Invalid input: %v", err), http.StatusBadRequest)
		default:
			s.logger.Error("import failed", "table", name, "error", err)
			sendError(w, fmt.Sprintf("Failed to import table: %v", err), http.StatusInternalServerError)
		}
		return
	}

	s.metrics.RecordTableOperation("import", name, true)
	s.logger.Info("table imported", "table", name, "records", loaded, "replace", replace, "duration", time.Since(start))
	sendSuccess(w, map[string]interface{}{
		"message": "Table imported successfully",
		"records": loaded,
	})
}

// handleClearTable removes every record from a table.
func (s *Server) handleClearTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var removed int
	err := s.registry.With(name, func(t Table) error {
		removed = t.Len()
		t.Clear()
		return nil
	})
	if err != nil {
		s.metrics.RecordTableOperation("clear", name, false)
		if errors.Is(err, ErrTableNotFound) {
			sendError(w, fmt.Sprintf("Table %q not found", name), http.StatusNotFound)
			return
		}
		sendError(w, fmt.Sprintf("Failed to clear table: %v", err), http.StatusInternalServerError)
		return
	}

	s.metrics.RecordTableOperation("clear", name, true)
	s.metrics.UpdateTableRecords(name, 0)
	s.logger.Info("table cleared", "table", name, "records", removed)
	sendSuccess(w, map[string]interface{}{
		"message": "Table cleared successfully",
		"records": removed,
	})
}

// handleStats reports aggregate statistics across all tables.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	infos := s.registry.List()
	total := 0
	for _, info := range infos {
		total += info.Records
		s.metrics.UpdateTableRecords(info.Name, info.Records)
	}
	sendSuccess(w, map[string]interface{}{
		"tables":  len(infos),
		"records": total,
	})
}

// sendSuccess writes the payload in the JSON response envelope.
func sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(APIResponse{Success: true, Data: data})
}

// sendError writes a failure envelope with the given status.
func sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIResponse{Success: false, Error: message})
}

// isParseError reports whether err stems from malformed client input
// rather than a server fault.
func isParseError(err error) bool {
	return errors.Is(err, codec.ErrInvalidID) ||
		errors.Is(err, codec.ErrMissingField) ||
		errors.Is(err, codec.ErrTooManyFields) ||
		errors.Is(err, codec.ErrWrongType) ||
		errors.Is(err, codec.ErrEnumNotFound) ||
		errors.Is(err, codec.ErrLineTooLong)
}

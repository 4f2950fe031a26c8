package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghosh9691/mmelParser/internal/export"
	"github.com/ghosh9691/mmelParser/internal/store"
)

// handleListDocuments lists stored documents, optionally for one family.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.ListDocuments(r.Context(), r.URL.Query().Get("family"))
	if err != nil {
		s.log.Error("list documents failed", "error", err)
		jsonError(w, "failed to list documents", http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []store.Document{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.GetDocument(r.Context(), chi.URLParam(r, "docID"))
	if err != nil {
		s.storeError(w, "get document", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleListEntries streams a document's entries as JSON, CSV or XLSX.
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	docID := chi.URLParam(r, "docID")
	entries, err := s.store.ListEntries(r.Context(), docID)
	if err != nil {
		s.storeError(w, "list entries", err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	if format != export.FormatJSON {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, sanitizeFilename(docID), format))
	}
	if err := export.Write(w, format, entries); err != nil {
		s.log.Error("export failed", "doc_id", docID, "format", format, "error", err)
	}
}

// handleDeleteDocument deletes a document and all its entries.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if err := s.store.DeleteDocument(r.Context(), docID); err != nil {
		s.storeError(w, "delete document", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": docID})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.store.Summary(r.Context(), chi.URLParam(r, "family"))
	if err != nil {
		s.storeError(w, "summary", err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) storeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	s.log.Error(op+" failed", "error", err)
	jsonError(w, op+" failed", http.StatusInternalServerError)
}

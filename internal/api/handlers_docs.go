package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"

	"github.com/dgallion1/pdfassembly/internal/outline"
)

// handleOutline returns the page count and bookmark tree of one document.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	path, err := resolvePath(s.cfg.DocumentRoot, r.URL.Query().Get("path"))
	if err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}

	doc, err := s.docs.Open(r.Context(), path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			jsonError(w, "document not found", http.StatusNotFound)
			return
		}
		s.log.Error("open document", "path", path, "error", err)
		jsonError(w, "failed to open document", http.StatusInternalServerError)
		return
	}
	defer doc.Close()

	forest, err := doc.Outline()
	if err != nil {
		s.log.Error("read outline", "path", path, "error", err)
		jsonError(w, "failed to read outline", http.StatusInternalServerError)
		return
	}
	if forest == nil {
		forest = outline.Forest{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"path":      r.URL.Query().Get("path"),
		"pages":     doc.PageCount(),
		"bookmarks": forest.Count(),
		"outline":   forest,
	})
}

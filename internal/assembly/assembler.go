// Package assembly builds report documents out of page ranges and whole
// source documents.
//
// An Assembler runs one request at a time on the calling goroutine and keeps
// no state between requests, so a single Assembler may serve many
// goroutines. All page numbers are 1-based.
package assembly

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
)

// Assembler runs extraction and merge requests against a Backend.
type Assembler struct {
	backend Backend
	log     *slog.Logger

	// TempDir holds staged copies for in-place requests. Empty means
	// os.TempDir().
	TempDir string
}

// New creates an Assembler. A nil logger discards output.
func New(backend Backend, log *slog.Logger) *Assembler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Assembler{backend: backend, log: log}
}

func (a *Assembler) open(ctx context.Context, path string) (Document, error) {
	doc, err := a.backend.Open(ctx, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, ErrInputNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, ioErr("open", path, err)
	}
	return doc, nil
}

// documentTitle is the bookmark title synthesized for a merged document.
func documentTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

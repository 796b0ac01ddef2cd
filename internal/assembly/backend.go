package assembly

import (
	"context"

	"github.com/dgallion1/pdfassembly/internal/outline"
)

// Document is an opened, read-only source document.
type Document interface {
	Path() string
	PageCount() int
	// PageText returns the extracted text of a 1-based page.
	PageText(page int) (string, error)
	// Outline returns the document's bookmark forest with document-local
	// target pages. A document without an outline returns nil, nil.
	Outline() (outline.Forest, error)
	Close() error
}

// Output accumulates pages for one output artifact. Nothing is visible at
// the output path until Finalize succeeds.
type Output interface {
	// CopyPages appends pages from..to (1-based, inclusive) of doc.
	CopyPages(doc Document, from, to int) error
	SetOutline(forest outline.Forest) error
	Finalize(ctx context.Context) error
	// Discard drops everything accumulated so far. It is safe to call after
	// Finalize.
	Discard() error
}

// Backend opens documents and creates outputs.
type Backend interface {
	Open(ctx context.Context, path string) (Document, error)
	Create(path string) (Output, error)
}

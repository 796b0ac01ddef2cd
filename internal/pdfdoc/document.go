// Package pdfdoc is the PDF backend of the assembly engine. Page text comes
// from ledongthuc/pdf with an optional pdftotext fallback; outlines and page
// writing go through pdfcpu.
package pdfdoc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/dgallion1/pdfassembly/internal/assembly"
	"github.com/dgallion1/pdfassembly/internal/outline"
	pdflib "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Backend implements assembly.Backend for PDF files.
type Backend struct {
	FallbackPdftotext bool
	RelaxedValidation bool

	Log *slog.Logger
}

func (b *Backend) conf() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	if b.RelaxedValidation {
		conf.ValidationMode = model.ValidationRelaxed
	} else {
		conf.ValidationMode = model.ValidationStrict
	}
	conf.CreateBookmarks = false
	return conf
}

func (b *Backend) log() *slog.Logger {
	if b.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Log
}

// Open reads the page count of path. Page text is extracted lazily.
func (b *Backend) Open(ctx context.Context, path string) (assembly.Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := &Document{path: path, backend: b}
	f, reader, err := pdflib.Open(path)
	if err == nil {
		d.file = f
		d.reader = reader
		d.pages = reader.NumPage()
	} else {
		if !b.FallbackPdftotext {
			return nil, fmt.Errorf("open pdf: %w", err)
		}
		b.log().Warn("pdf reader failed, using pdftotext", "path", path, "error", err)
		n, cerr := api.PageCountFile(path)
		if cerr != nil {
			return nil, fmt.Errorf("open pdf: %w", errors.Join(err, cerr))
		}
		d.pages = n
	}
	d.text = make([]*string, d.pages)
	return d, nil
}

// Create starts a new output at path.
func (b *Backend) Create(path string) (assembly.Output, error) {
	dir, err := os.MkdirTemp("", "pdfassembly-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	return &Output{backend: b, path: path, workDir: dir}, nil
}

// Document is an opened PDF. It is not safe for concurrent use.
type Document struct {
	backend *Backend
	path    string
	file    *os.File
	reader  *pdflib.Reader
	pages   int
	text    []*string
}

func (d *Document) Path() string   { return d.path }
func (d *Document) PageCount() int { return d.pages }

func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	d.reader = nil
	return err
}

// PageText returns the plain text of page. Pages that yield no text return
// an empty string rather than an error.
func (d *Document) PageText(page int) (string, error) {
	if page < 1 || page > d.pages {
		return "", fmt.Errorf("page %d out of range 1..%d", page, d.pages)
	}
	if cached := d.text[page-1]; cached != nil {
		return *cached, nil
	}

	text, err := d.readerText(page)
	if (err != nil || d.reader == nil) && d.backend.FallbackPdftotext {
		text, err = pdftotextPage(d.path, page)
	}
	if err != nil {
		return "", fmt.Errorf("extract text of page %d: %w", page, err)
	}
	d.text[page-1] = &text
	return text, nil
}

func (d *Document) readerText(page int) (string, error) {
	if d.reader == nil {
		return "", errors.New("pdf reader unavailable")
	}
	p := d.reader.Page(page)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

// Outline returns the document's bookmarks.
func (d *Document) Outline() (outline.Forest, error) {
	f, err := os.Open(d.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bms, err := api.Bookmarks(f, d.backend.conf())
	if err != nil {
		if errors.Is(err, pdfcpu.ErrNoOutlines) {
			return nil, nil
		}
		return nil, fmt.Errorf("read outline: %w", err)
	}
	return fromBookmarks(bms, d.pages), nil
}

func fromBookmarks(bms []pdfcpu.Bookmark, pages int) outline.Forest {
	if len(bms) == 0 {
		return nil
	}
	forest := make(outline.Forest, 0, len(bms))
	for _, bm := range bms {
		page := bm.PageFrom
		if page < 1 {
			page = 1
		}
		if pages > 0 && page > pages {
			page = pages
		}
		forest = append(forest, outline.Node{
			Title:    bm.Title,
			Page:     page,
			Children: fromBookmarks(bm.Kids, pages),
		})
	}
	return forest
}

func pdftotextPage(path string, page int) (string, error) {
	p := strconv.Itoa(page)
	cmd := exec.Command("pdftotext", "-f", p, "-l", p, "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return strings.TrimRight(string(out), "\f"), nil
}

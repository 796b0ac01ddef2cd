package assembly

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/pdfassembly/internal/outline"
)

// fakeFile is the on-disk format of a test document: page texts plus an
// optional outline, stored as JSON.
type fakeFile struct {
	Pages   []string       `json:"pages"`
	Outline outline.Forest `json:"outline,omitempty"`
}

type fakeDoc struct {
	path string
	file fakeFile
}

func (d *fakeDoc) Path() string   { return d.path }
func (d *fakeDoc) PageCount() int { return len(d.file.Pages) }
func (d *fakeDoc) Close() error   { return nil }

func (d *fakeDoc) PageText(page int) (string, error) {
	if page < 1 || page > len(d.file.Pages) {
		return "", fmt.Errorf("page %d out of range", page)
	}
	return d.file.Pages[page-1], nil
}

func (d *fakeDoc) Outline() (outline.Forest, error) {
	return d.file.Outline, nil
}

type fakeBackend struct {
	failCopy string // base name whose pages cannot be copied
	created  int
}

func (b *fakeBackend) Open(_ context.Context, path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fakeFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &fakeDoc{path: path, file: f}, nil
}

func (b *fakeBackend) Create(path string) (Output, error) {
	b.created++
	return &fakeOutput{backend: b, path: path}, nil
}

type fakeOutput struct {
	backend *fakeBackend
	path    string
	file    fakeFile
}

func (o *fakeOutput) CopyPages(doc Document, from, to int) error {
	if o.backend.failCopy != "" && filepath.Base(doc.Path()) == o.backend.failCopy {
		return errors.New("disk on fire")
	}
	for p := from; p <= to; p++ {
		text, err := doc.PageText(p)
		if err != nil {
			return err
		}
		o.file.Pages = append(o.file.Pages, text)
	}
	return nil
}

func (o *fakeOutput) SetOutline(forest outline.Forest) error {
	o.file.Outline = forest
	return nil
}

func (o *fakeOutput) Finalize(context.Context) error {
	data, err := json.Marshal(o.file)
	if err != nil {
		return err
	}
	tmp := o.path + ".part"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, o.path)
}

func (o *fakeOutput) Discard() error { return nil }

func writeDoc(t *testing.T, dir, name string, pages []string, forest outline.Forest) string {
	t.Helper()
	data, err := json.Marshal(fakeFile{Pages: pages, Outline: forest})
	if err != nil {
		t.Fatalf("marshal %s: %v", name, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func readDoc(t *testing.T, path string) fakeFile {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var f fakeFile
	if err := json.Unmarshal(data, &f); err != nil {
		t.Fatalf("unmarshal %s: %v", path, err)
	}
	return f
}

func numberedPages(prefix string, n int) []string {
	pages := make([]string, n)
	for i := range pages {
		pages[i] = fmt.Sprintf("%s page %d", prefix, i+1)
	}
	return pages
}

func newTestAssembler(t *testing.T) (*Assembler, *fakeBackend) {
	t.Helper()
	b := &fakeBackend{}
	a := New(b, nil)
	a.TempDir = t.TempDir()
	return a, b
}

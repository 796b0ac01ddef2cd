package pdfdoc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dgallion1/pdfassembly/internal/assembly"
	"github.com/dgallion1/pdfassembly/internal/outline"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

type span struct {
	path     string
	from, to int
}

// Output collects page spans and writes them in one pass on Finalize. Each
// span is trimmed out of its source into a work directory and the parts are
// merged. The merged file's outline is then replaced by the one set with
// SetOutline, or removed when none was set, and the result is moved into
// place with a rename from the output's own directory.
type Output struct {
	backend *Backend
	path    string
	workDir string
	spans   []span
	outline outline.Forest
	tmp     string
}

func (o *Output) CopyPages(doc assembly.Document, from, to int) error {
	if from < 1 || to > doc.PageCount() || from > to {
		return fmt.Errorf("pages %d-%d out of range 1..%d", from, to, doc.PageCount())
	}
	o.spans = append(o.spans, span{path: doc.Path(), from: from, to: to})
	return nil
}

func (o *Output) SetOutline(forest outline.Forest) error {
	o.outline = forest.Shift(0)
	return nil
}

func (o *Output) Finalize(ctx context.Context) error {
	if len(o.spans) == 0 {
		return errors.New("no pages to write")
	}
	conf := o.backend.conf()

	parts := make([]string, 0, len(o.spans))
	for i, s := range o.spans {
		if err := ctx.Err(); err != nil {
			return err
		}
		part := filepath.Join(o.workDir, fmt.Sprintf("part-%04d.pdf", i))
		sel := []string{fmt.Sprintf("%d-%d", s.from, s.to)}
		if err := api.TrimFile(s.path, part, sel, conf); err != nil {
			return fmt.Errorf("trim %s pages %d-%d: %w", s.path, s.from, s.to, err)
		}
		parts = append(parts, part)
	}

	merged := parts[0]
	if len(parts) > 1 {
		merged = filepath.Join(o.workDir, "merged.pdf")
		if err := api.MergeCreateFile(parts, merged, false, conf); err != nil {
			return fmt.Errorf("merge parts: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	final := filepath.Join(o.workDir, "final.pdf")
	if err := writeOutline(merged, final, o.outline, conf); err != nil {
		return fmt.Errorf("write outline: %w", err)
	}
	return o.commit(final)
}

// commit copies src next to the output path and renames it into place.
func (o *Output) commit(src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(o.path), ".assembly-*.pdf")
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}
	o.tmp = tmp.Name()
	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return fmt.Errorf("write staging file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync staging file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close staging file: %w", err)
	}
	if err := os.Rename(o.tmp, o.path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	o.tmp = ""
	return nil
}

func (o *Output) Discard() error {
	var errs []error
	if o.tmp != "" {
		if err := os.Remove(o.tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
		o.tmp = ""
	}
	if o.workDir != "" {
		if err := os.RemoveAll(o.workDir); err != nil {
			errs = append(errs, err)
		}
		o.workDir = ""
	}
	o.spans = nil
	return errors.Join(errs...)
}

package assembly

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
)

type source struct {
	doc  Document
	name string // path as given in the request
}

// Merge concatenates req.Main and req.Additional into req.Output.
//
// Excluded documents are dropped before any page accounting, so they move
// neither pages nor bookmark offsets. Required sections are validated before
// the output is created; a failed validation leaves nothing at req.Output.
func (a *Assembler) Merge(ctx context.Context, req MergeRequest) (*MergeResult, error) {
	if req.Main == "" || req.Output == "" {
		return nil, fmt.Errorf("%w: main document and output are required", ErrInvalidSelection)
	}
	opts := req.Options
	switch opts.MissingDocuments {
	case "", MissingStrict, MissingLenient:
	default:
		return nil, fmt.Errorf("%w: missing document policy %q", ErrInvalidSelection, opts.MissingDocuments)
	}

	ReportPhase(ctx, PhaseResolving)
	kept, excluded, err := FilterExcluded(req.Additional, opts.ExcludePatterns)
	if err != nil {
		return nil, err
	}
	inputs := append([]string{req.Main}, kept...)

	staged, cleanup, err := a.stageInPlace(req.Output, inputs)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	result := &MergeResult{Output: req.Output, Excluded: excluded}

	var sources []source
	defer func() {
		for _, s := range sources {
			s.doc.Close()
		}
	}()
	for i, path := range staged {
		doc, err := a.open(ctx, path)
		if err != nil {
			if i > 0 && opts.MissingDocuments == MissingLenient && errors.Is(err, ErrInputNotFound) {
				a.log.Warn("skipping missing document", "path", inputs[i])
				result.Skipped = append(result.Skipped, inputs[i])
				continue
			}
			return nil, err
		}
		sources = append(sources, source{doc: doc, name: inputs[i]})
	}

	if len(opts.RequiredSections) > 0 {
		ReportPhase(ctx, PhaseValidating)
		docs := make([]Document, len(sources))
		for i, s := range sources {
			docs[i] = s.doc
		}
		missing, err := MissingSections(docs, opts.RequiredSections)
		if err != nil {
			return nil, err
		}
		if len(missing) > 0 {
			return nil, &MissingSectionsError{Names: missing}
		}
	}

	ReportPhase(ctx, PhaseAssembling)
	out, err := a.backend.Create(req.Output)
	if err != nil {
		return nil, ioErr("create output", req.Output, err)
	}
	defer out.Discard()

	var index BookmarkIndex
	offset := 0
	for i, s := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages := s.doc.PageCount()
		result.Documents = append(result.Documents, s.name)
		if pages == 0 {
			a.log.Debug("document has no pages", "path", s.name)
			continue
		}

		if i > 0 && opts.BookmarkPerAdditionalDocument {
			index.AddDocument(documentTitle(s.name), offset+1)
		}
		if err := out.CopyPages(s.doc, 1, pages); err != nil {
			return nil, ioErr("copy pages", s.name, err)
		}
		if opts.PreserveBookmarks {
			forest, err := s.doc.Outline()
			if err != nil {
				return nil, ioErr("read outline", s.name, err)
			}
			index.Add(forest, offset)
		}
		a.log.Debug("merged document", "path", s.name, "pages", pages, "offset", offset)
		offset += pages
	}

	if index.Len() > 0 {
		forest := index.Forest()
		if err := out.SetOutline(forest); err != nil {
			return nil, ioErr("write outline", req.Output, err)
		}
		result.Bookmarks = forest.Count()
	}
	if err := out.Finalize(ctx); err != nil {
		return nil, ioErr("write output", req.Output, err)
	}

	result.PageCount = offset
	return result, nil
}

// FilterExcluded splits paths into those kept and those whose base filename
// matches any of the shell-style patterns, ignoring case. paths is not
// modified.
func FilterExcluded(paths, patterns []string) (kept, excluded []string, err error) {
	folded := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p == "" {
			continue
		}
		fp := fold(p)
		if _, err := filepath.Match(fp, ""); err != nil {
			return nil, nil, fmt.Errorf("%w: exclude pattern %q: %v", ErrInvalidSelection, p, err)
		}
		folded = append(folded, fp)
	}

	for _, path := range paths {
		if matchesAny(fold(filepath.Base(path)), folded) {
			excluded = append(excluded, path)
			continue
		}
		kept = append(kept, path)
	}
	return kept, excluded, nil
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

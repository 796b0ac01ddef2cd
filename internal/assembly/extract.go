package assembly

import (
	"context"
	"fmt"
)

// Extract copies the page range described by req out of req.Source into a
// new document at req.Output. Every selection error is reported before the
// output is created.
func (a *Assembler) Extract(ctx context.Context, req ExtractionRequest) (*ExtractResult, error) {
	if req.Source == "" || req.Output == "" {
		return nil, fmt.Errorf("%w: source and output are required", ErrInvalidSelection)
	}

	ReportPhase(ctx, PhaseResolving)
	inputs, cleanup, err := a.stageInPlace(req.Output, []string{req.Source})
	if err != nil {
		return nil, err
	}
	defer cleanup()

	doc, err := a.open(ctx, inputs[0])
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	from, to, err := ResolveRange(doc, req.Start, req.End, req.ThrowIfKeywordNotFound)
	if err != nil {
		return nil, err
	}
	a.log.Debug("resolved range", "source", req.Source, "start", from, "end", to)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ReportPhase(ctx, PhaseAssembling)
	if err := a.writeRange(ctx, doc, req.Output, from, to); err != nil {
		return nil, err
	}

	return &ExtractResult{
		Output:    req.Output,
		Start:     from,
		End:       to,
		PageCount: to - from + 1,
	}, nil
}

// writeRange writes pages from..to of doc to path. Both bounds are clamped
// into the document so a caller that skipped ResolveRange still gets a
// well-formed output.
func (a *Assembler) writeRange(ctx context.Context, doc Document, path string, from, to int) error {
	total := doc.PageCount()
	from = max(1, min(from, total))
	to = max(from, min(to, total))

	out, err := a.backend.Create(path)
	if err != nil {
		return ioErr("create output", path, err)
	}
	defer out.Discard()

	if err := out.CopyPages(doc, from, to); err != nil {
		return ioErr("copy pages", doc.Path(), err)
	}
	if err := out.Finalize(ctx); err != nil {
		return ioErr("write output", path, err)
	}
	return nil
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/pdfassembly/internal/assembly"
)

// Assembler runs extraction and merge requests. *assembly.Assembler
// satisfies it.
type Assembler interface {
	Extract(ctx context.Context, req assembly.ExtractionRequest) (*assembly.ExtractResult, error)
	Merge(ctx context.Context, req assembly.MergeRequest) (*assembly.MergeResult, error)
}

// Worker processes a single assembly job.
type Worker struct {
	asm     Assembler
	log     *slog.Logger
	backoff func(attempt int) time.Duration
}

func NewWorker(asm Assembler, log *slog.Logger) *Worker {
	return &Worker{
		asm:     asm,
		log:     log,
		backoff: Backoff,
	}
}

// Process runs a job to completion, retrying I/O failures with backoff.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "kind", job.Kind)
	ctx = assembly.WithPhaseFunc(ctx, func(p assembly.Phase) {
		job.SetStatus(statusFor(p), string(p))
	})

	start := time.Now()
	var (
		res *Result
		err error
	)
retry:
	for attempt := range MaxRetries {
		job.incrAttempts()
		res, err = w.run(ctx, job)
		if err == nil || !IsRetryable(err) || attempt == MaxRetries-1 {
			break
		}
		log.Warn("retryable assembly error", "attempt", attempt, "error", err)
		job.AddError(fmt.Sprintf("attempt %d: %s", attempt+1, err))
		select {
		case <-time.After(w.backoff(attempt)):
		case <-ctx.Done():
			err = ctx.Err()
			break retry
		}
	}

	if err != nil {
		log.Error("job failed", "error", err, "category", categoryName(err))
		job.Fail(err)
		return
	}

	output := res.output()
	if sum, herr := FileHashHex(output); herr == nil {
		res.OutputSHA256 = sum
	} else {
		log.Warn("hash output failed", "path", output, "error", herr)
	}
	job.Complete(res)
	log.Info("job completed", "output", output, "duration", time.Since(start))
}

func (w *Worker) run(ctx context.Context, job *Job) (*Result, error) {
	switch job.Kind {
	case KindExtract:
		r, err := w.asm.Extract(ctx, *job.extract)
		if err != nil {
			return nil, err
		}
		return &Result{Extract: r}, nil
	case KindMerge:
		r, err := w.asm.Merge(ctx, *job.merge)
		if err != nil {
			return nil, err
		}
		return &Result{Merge: r}, nil
	}
	return nil, fmt.Errorf("unknown job kind %q", job.Kind)
}

func (r *Result) output() string {
	switch {
	case r.Extract != nil:
		return r.Extract.Output
	case r.Merge != nil:
		return r.Merge.Output
	}
	return ""
}

func statusFor(p assembly.Phase) JobStatus {
	switch p {
	case assembly.PhaseValidating:
		return StatusValidating
	case assembly.PhaseAssembling:
		return StatusAssembling
	}
	return StatusResolving
}

func categoryName(err error) string {
	if cat := assembly.Category(err); cat != nil {
		return cat.Error()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "cancelled"
	}
	return "unknown"
}

package assembly

import "context"

// Phase names a stage of a request.
type Phase string

const (
	// PhaseResolving covers opening inputs, exclusion filtering and page
	// range resolution.
	PhaseResolving Phase = "resolving"
	// PhaseValidating covers the required section check.
	PhaseValidating Phase = "validating"
	// PhaseAssembling covers writing the output.
	PhaseAssembling Phase = "assembling"
)

type phaseKey struct{}

// WithPhaseFunc returns a context that reports every phase a request enters
// to fn. fn runs on the request's goroutine.
func WithPhaseFunc(ctx context.Context, fn func(Phase)) context.Context {
	return context.WithValue(ctx, phaseKey{}, fn)
}

// ReportPhase tells the function installed with WithPhaseFunc, if any, that
// the request running under ctx entered p.
func ReportPhase(ctx context.Context, p Phase) {
	if fn, ok := ctx.Value(phaseKey{}).(func(Phase)); ok && fn != nil {
		fn(p)
	}
}

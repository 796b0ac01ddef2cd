package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/dgallion1/pdfassembly/internal/assembly"
	"github.com/dgallion1/pdfassembly/internal/manifest"
	"github.com/dgallion1/pdfassembly/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// extractBody accepts either explicit boundaries or the flat options form.
type extractBody struct {
	assembly.ExtractionRequest
	Options *assembly.ExtractionOptions `json:"options,omitempty"`
}

type batchBody struct {
	Merges []assembly.MergeRequest `json:"merges"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req assembly.ExtractionRequest
	if isMarkdown(r) {
		plan, err := s.readPlan(r)
		if err != nil {
			jsonError(w, err.Error(), statusFor(err))
			return
		}
		if plan.Kind != manifest.KindExtract {
			jsonError(w, "manifest describes a merge; post it to /api/merge", http.StatusBadRequest)
			return
		}
		req = *plan.Extract
	} else {
		var body extractBody
		if err := decodeJSON(r, &body); err != nil {
			jsonError(w, err.Error(), statusFor(err))
			return
		}
		req = body.ExtractionRequest
		if body.Options != nil {
			var err error
			req, err = body.Options.Request(body.Source, body.Output)
			if err != nil {
				jsonError(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		if req.Start.Selection == "" || req.End.Selection == "" {
			jsonError(w, "start and end boundaries are required", http.StatusBadRequest)
			return
		}
	}

	if err := s.resolveExtract(&req); err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	s.submit(w, pipeline.NewExtractJob(req))
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	var req assembly.MergeRequest
	if isMarkdown(r) {
		plan, err := s.readPlan(r)
		if err != nil {
			jsonError(w, err.Error(), statusFor(err))
			return
		}
		if plan.Kind != manifest.KindMerge {
			jsonError(w, "manifest describes an extraction; post it to /api/extract", http.StatusBadRequest)
			return
		}
		req = *plan.Merge
	} else if err := decodeJSON(r, &req); err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}

	if err := s.checkMerge(&req); err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	s.submit(w, pipeline.NewMergeJob(req))
}

func (s *Server) handleBatchMerge(w http.ResponseWriter, r *http.Request) {
	var body batchBody
	if err := decodeJSON(r, &body); err != nil {
		jsonError(w, err.Error(), statusFor(err))
		return
	}
	if len(body.Merges) == 0 {
		jsonError(w, "at least one merge is required", http.StatusBadRequest)
		return
	}

	var results []map[string]any
	for i, req := range body.Merges {
		output := req.Output
		if err := s.checkMerge(&req); err != nil {
			results = append(results, map[string]any{
				"index":  i,
				"output": output,
				"error":  err.Error(),
			})
			continue
		}

		job := pipeline.NewMergeJob(req)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"index":  i,
				"output": output,
				"error":  err.Error(),
			})
			continue
		}

		results = append(results, map[string]any{
			"index":    i,
			"output":   output,
			"job_id":   job.ID,
			"status":   pipeline.StatusQueued,
			"poll_url": pollURL(job.ID),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"jobs": results})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

// checkMerge rejects requests that cannot succeed before they are queued.
func (s *Server) checkMerge(req *assembly.MergeRequest) error {
	if req.Main == "" || req.Output == "" {
		return fmt.Errorf("%w: main and output are required", assembly.ErrInvalidSelection)
	}
	if _, _, err := assembly.FilterExcluded(nil, req.Options.ExcludePatterns); err != nil {
		return err
	}
	return s.resolveMerge(req)
}

func (s *Server) submit(w http.ResponseWriter, job *pipeline.Job) {
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"kind":     job.Kind,
		"status":   pipeline.StatusQueued,
		"poll_url": pollURL(job.ID),
	})
}

func (s *Server) readPlan(r *http.Request) (*manifest.Plan, error) {
	src, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	plan, err := manifest.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", assembly.ErrInvalidSelection, err)
	}
	return plan, nil
}

func pollURL(jobID string) string {
	return fmt.Sprintf("/api/jobs/%s", jobID)
}

func isMarkdown(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && (mt == "text/markdown" || mt == "text/x-markdown")
}

var errBadRequest = errors.New("bad request")

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return fmt.Errorf("%w: invalid json: %v", errBadRequest, err)
	}
	return nil
}

// statusFor maps an error onto an HTTP status code.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, errOutsideRoot):
		return http.StatusForbidden
	case errors.Is(err, assembly.ErrInputNotFound):
		return http.StatusNotFound
	case errors.Is(err, assembly.ErrMissingRequiredSection):
		return http.StatusUnprocessableEntity
	case errors.Is(err, assembly.ErrIOFailure):
		return http.StatusInternalServerError
	case assembly.Category(err) != nil:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

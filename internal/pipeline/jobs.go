package pipeline

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dgallion1/pdfassembly/internal/assembly"
)

// JobStatus represents the state of an assembly job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusResolving  JobStatus = "resolving"
	StatusValidating JobStatus = "validating"
	StatusAssembling JobStatus = "assembling"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Kind is the operation a job runs.
type Kind string

const (
	KindExtract Kind = "extract"
	KindMerge   Kind = "merge"
)

// Job tracks the state of a single extraction or merge.
type Job struct {
	mu sync.Mutex

	ID   string `json:"job_id"`
	Kind Kind   `json:"kind"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	extract  *assembly.ExtractionRequest
	merge    *assembly.MergeRequest
	result   *Result
	attempts int
	errors   []string
	category string
}

// Result is the outcome of a completed job.
type Result struct {
	Extract      *assembly.ExtractResult `json:"extract,omitempty"`
	Merge        *assembly.MergeResult   `json:"merge,omitempty"`
	OutputSHA256 string                  `json:"output_sha256,omitempty"`
}

// NewExtractJob creates a queued extraction job.
func NewExtractJob(req assembly.ExtractionRequest) *Job {
	now := time.Now()
	return &Job{
		ID:        newJobID(),
		Kind:      KindExtract,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		extract:   &req,
	}
}

// NewMergeJob creates a queued merge job.
func NewMergeJob(req assembly.MergeRequest) *Job {
	now := time.Now()
	return &Job{
		ID:        newJobID(),
		Kind:      KindMerge,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		merge:     &req,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes finished jobs that have not changed within the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.terminal() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// Fail records err with its category and marks the job failed. Phase keeps
// the stage the job failed in.
func (j *Job) Fail(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err.Error())
	if cat := assembly.Category(err); cat != nil {
		j.category = cat.Error()
	}
	j.Status = StatusFailed
	j.UpdatedAt = time.Now()
}

// Complete stores the result and marks the job completed.
func (j *Job) Complete(res *Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = res
	j.Status = StatusCompleted
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

func (j *Job) incrAttempts() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.attempts++
	return j.attempts
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID            string    `json:"job_id"`
	Kind          Kind      `json:"kind"`
	Status        JobStatus `json:"status"`
	Phase         string    `json:"phase"`
	Attempts      int       `json:"attempts"`
	Result        *Result   `json:"result,omitempty"`
	ErrorCategory string    `json:"error_category,omitempty"`
	Errors        []string  `json:"errors"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.errors))
	copy(errs, j.errors)
	return JobSnapshot{
		ID:            j.ID,
		Kind:          j.Kind,
		Status:        j.Status,
		Phase:         j.Phase,
		Attempts:      j.attempts,
		Result:        j.result,
		ErrorCategory: j.category,
		Errors:        errs,
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     j.UpdatedAt,
	}
}

// FileHashHex computes the SHA-256 of the file at path and returns it as a
// hex string.
func FileHashHex(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

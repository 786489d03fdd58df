package models

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Job represents an async operation (scan, migration run).
type Job struct {
	ID         string
	Type       string // "migration-scan", "migration-run"
	ProjectID  string
	Status     string // "running", "completed", "failed", "stopped"
	StartedAt  time.Time
	FinishedAt *time.Time
	Error      string
	Output     []string

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// jobView is the wire form of a Job.
type jobView struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	ProjectID  string     `json:"project_id"`
	Status     string     `json:"status"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
	Output     []string   `json:"output"`
}

// MarshalJSON serializes a consistent snapshot under the job's lock. The
// owning goroutine keeps appending output and may finish the job while the
// API serves it.
func (j *Job) MarshalJSON() ([]byte, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	output := make([]string, len(j.Output))
	copy(output, j.Output)
	return json.Marshal(jobView{
		ID:         j.ID,
		Type:       j.Type,
		ProjectID:  j.ProjectID,
		Status:     j.Status,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
		Error:      j.Error,
		Output:     output,
	})
}

// Context returns the job's cancellation context. Long-running work observes
// it between items so a cancel takes effect at the next loop iteration.
func (j *Job) Context() context.Context {
	return j.ctx
}

// AppendLog adds a log line to the job output.
func (j *Job) AppendLog(line string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Output = append(j.Output, line)
}

// LogsSince returns log lines starting from the given index.
func (j *Job) LogsSince(offset int) []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	if offset >= len(j.Output) {
		return nil
	}
	lines := make([]string, len(j.Output)-offset)
	copy(lines, j.Output[offset:])
	return lines
}

// Complete marks the job as completed.
func (j *Job) Complete() {
	j.finish("completed", "")
}

// Fail marks the job as failed with an error message.
func (j *Job) Fail(err string) {
	j.finish("failed", err)
}

// Stop marks the job as stopped by the user.
func (j *Job) Stop() {
	j.finish("stopped", "")
}

// Cancel requests cooperative cancellation of the job's work.
func (j *Job) Cancel() {
	j.cancel()
}

// CurrentStatus returns the job status under lock.
func (j *Job) CurrentStatus() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.Status
}

func (j *Job) finish(status, errMsg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status != "running" {
		return
	}
	j.Status = status
	j.Error = errMsg
	now := time.Now()
	j.FinishedAt = &now
}

// JobStore is an in-memory thread-safe store for jobs.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewJobStore creates an empty job store.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*Job)}
}

// Create adds a new job, assigning it a UUID and a cancellable context.
func (s *JobStore) Create(jobType, projectID string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := context.WithCancel(context.Background())
	j := &Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		ProjectID: projectID,
		Status:    "running",
		StartedAt: time.Now(),
		Output:    []string{},
		ctx:       ctx,
		cancel:    cancel,
	}
	s.jobs[j.ID] = j
	return j
}

// Get returns a job by ID.
func (s *JobStore) Get(id string) *Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jobs[id]
}

// List returns all jobs, most recent first.
func (s *JobStore) List() []*Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		result = append(result, j)
	}
	// Sort by started_at descending
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].StartedAt.After(result[i].StartedAt) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	return result
}

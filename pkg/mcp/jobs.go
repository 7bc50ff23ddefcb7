package mcp

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current state of a reload job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// ScopeAll is the job scope that reloads every category.
const ScopeAll = "all"

// Job is a background reload of built-in documents
type Job struct {
	ID              string    `json:"id"`
	Scope           string    `json:"scope"` // Category id or ScopeAll
	Status          JobStatus `json:"status"`
	StartedAt       time.Time `json:"started_at"`
	CompletedAt     time.Time `json:"completed_at,omitempty"`
	DocumentsLoaded int       `json:"documents_loaded"`
	DocumentsFailed int       `json:"documents_failed"`
	ErrorMessage    string    `json:"error_message,omitempty"`

	ctx    context.Context
	cancel context.CancelFunc
}

func (j *Job) active() bool {
	return j.Status == JobStatusPending || j.Status == JobStatusRunning
}

// JobManager tracks reload jobs; at most one job runs per scope
type JobManager struct {
	jobs    map[string]*Job
	mu      sync.RWMutex
	byScope map[string]string // scope -> id of its active job
}

// NewJobManager creates a new job manager
func NewJobManager() *JobManager {
	return &JobManager{
		jobs:    make(map[string]*Job),
		byScope: make(map[string]string),
	}
}

// CreateJob registers a job for scope. If one is already active for the
// scope it is returned instead, with created=false. The returned job is a
// snapshot; later status changes are read through GetJob.
func (m *JobManager) CreateJob(scope string) (job *Job, created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.byScope[scope]; ok {
		if existing := m.jobs[id]; existing != nil && existing.active() {
			snapshot := *existing
			return &snapshot, false
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	job = &Job{
		ID:        uuid.NewString(),
		Scope:     scope,
		Status:    JobStatusPending,
		StartedAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}
	m.jobs[job.ID] = job
	m.byScope[scope] = job.ID
	snapshot := *job
	return &snapshot, true
}

// GetJob returns a snapshot of a job, or nil
func (m *JobManager) GetJob(jobID string) *Job {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil
	}
	snapshot := *job
	return &snapshot
}

// IsRunning reports whether a job is active for scope
func (m *JobManager) IsRunning(scope string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.byScope[scope]; ok {
		job := m.jobs[id]
		return job != nil && job.active()
	}
	return false
}

// UpdateStatus moves a job to status. Terminal statuses free the scope.
func (m *JobManager) UpdateStatus(jobID string, status JobStatus, errorMsg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return
	}
	// A cancelled job stays cancelled even if its worker finishes afterwards.
	if job.Status == JobStatusCancelled {
		return
	}
	job.Status = status
	if !job.active() {
		job.CompletedAt = time.Now()
		delete(m.byScope, job.Scope)
		job.cancel()
	}
	if errorMsg != "" {
		job.ErrorMessage = errorMsg
	}
}

// UpdateProgress records the outcome counters of a job
func (m *JobManager) UpdateProgress(jobID string, loaded, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[jobID]; ok {
		job.DocumentsLoaded = loaded
		job.DocumentsFailed = failed
	}
}

// CancelJob cancels an active job
func (m *JobManager) CancelJob(jobID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok || !job.active() {
		return false
	}
	job.cancel()
	job.Status = JobStatusCancelled
	job.CompletedAt = time.Now()
	delete(m.byScope, job.Scope)
	return true
}

// CancelAll cancels every active job
func (m *JobManager) CancelAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, job := range m.jobs {
		if job.active() {
			job.cancel()
			job.Status = JobStatusCancelled
			job.CompletedAt = time.Now()
		}
	}
	m.byScope = make(map[string]string)
}

// ListJobs returns snapshots of all jobs
func (m *JobManager) ListJobs() []Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := make([]Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, *job)
	}
	return jobs
}

// Context returns the cancellation context of a job
func (m *JobManager) Context(jobID string) context.Context {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if job, ok := m.jobs[jobID]; ok {
		return job.ctx
	}
	return context.Background()
}

// Package jobs stores per-session job records and the event stream
// that reports their progress.
package jobs

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"transcriber-service/internal/domain"
)

// ErrJobNotFound is returned when a job ID is absent from a session.
var ErrJobNotFound = errors.New("job not found")

// session holds one caller's jobs and finished transcriptions.
type session struct {
	jobs      map[string]domain.Job
	completed []domain.Job
}

// Registry is a concurrent, session-scoped job store. Every read hands
// out copies; all mutation goes through Update so status transitions
// stay validated in one place.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*session)}
}

// Create registers a new job under its session, creating the session
// on first use.
func (r *Registry) Create(job domain.Job) error {
	if job.ID == "" || job.SessionID == "" {
		return fmt.Errorf("job ID and session ID are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.session(job.SessionID)
	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already exists in session %s", job.ID, job.SessionID)
	}
	if job.Status == "" {
		job.Status = domain.JobStatusQueued
	}
	s.jobs[job.ID] = job
	return nil
}

// Get returns a copy of one job.
func (r *Registry) Get(sessionID, jobID string) (domain.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return domain.Job{}, ErrJobNotFound
	}
	job, ok := s.jobs[jobID]
	if !ok {
		return domain.Job{}, ErrJobNotFound
	}
	return job, nil
}

// Update applies fn to a copy of the job under the registry lock and
// stores the result. Status changes are validated against the job
// state machine; an invalid transition rejects the whole update.
func (r *Registry) Update(sessionID, jobID string, fn func(job *domain.Job)) (domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return domain.Job{}, ErrJobNotFound
	}
	job, ok := s.jobs[jobID]
	if !ok {
		return domain.Job{}, ErrJobNotFound
	}

	updated := job
	fn(&updated)
	updated.ID = job.ID
	updated.SessionID = job.SessionID

	if updated.Status != job.Status && !isValidTransition(job.Status, updated.Status) {
		return domain.Job{}, fmt.Errorf("invalid transition: %s -> %s", job.Status, updated.Status)
	}

	s.jobs[jobID] = updated
	if updated.Status == domain.JobStatusCompleted && job.Status != domain.JobStatusCompleted {
		s.completed = append(s.completed, updated)
	}
	return updated, nil
}

// ListJobs returns copies of every job in a session, newest first.
func (r *Registry) ListJobs(sessionID string) []domain.Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil
	}

	out := make([]domain.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ListCompleted returns the session's finished transcriptions in
// completion order.
func (r *Registry) ListCompleted(sessionID string) []domain.Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil
	}
	return append([]domain.Job(nil), s.completed...)
}

// Reset atomically discards all state for one session and returns the
// jobs that were dropped so callers can release their artifacts.
func (r *Registry) Reset(sessionID string) []domain.Job {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil
	}
	delete(r.sessions, sessionID)

	out := make([]domain.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, job)
	}
	return out
}

// ActiveCount reports how many jobs in the session are not terminal.
func (r *Registry) ActiveCount(sessionID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return 0
	}
	count := 0
	for _, job := range s.jobs {
		if !job.Status.Terminal() {
			count++
		}
	}
	return count
}

// session returns the session record, creating it lazily. Caller must
// hold the write lock.
func (r *Registry) session(sessionID string) *session {
	s, ok := r.sessions[sessionID]
	if !ok {
		s = &session{jobs: make(map[string]domain.Job)}
		r.sessions[sessionID] = s
	}
	return s
}

// isValidTransition enforces the allowed job state machine edges.
// File jobs run queued -> processing -> completed|failed; only URL jobs
// pass through downloading and transcribing.
func isValidTransition(from, to domain.JobStatus) bool {
	switch from {
	case domain.JobStatusQueued:
		return to == domain.JobStatusProcessing || to == domain.JobStatusDownloading || to == domain.JobStatusFailed
	case domain.JobStatusProcessing:
		return to == domain.JobStatusCompleted || to == domain.JobStatusFailed
	case domain.JobStatusDownloading:
		return to == domain.JobStatusTranscribing || to == domain.JobStatusFailed
	case domain.JobStatusTranscribing:
		return to == domain.JobStatusCompleted || to == domain.JobStatusFailed
	default:
		return false
	}
}

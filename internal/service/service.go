// Package service is the session-facing facade: it accepts job
// submissions, runs each job on its own background worker, and exposes
// job state, transcripts, and progress events.
package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"transcriber-service/internal/config"
	"transcriber-service/internal/domain"
	"transcriber-service/internal/download"
	"transcriber-service/internal/jobs"
	"transcriber-service/internal/media"
	"transcriber-service/internal/metrics"
	"transcriber-service/internal/retry"
	"transcriber-service/internal/transcribe"
	"transcriber-service/internal/transcription"
)

// pipeline runs one local artifact through transcription.
type pipeline interface {
	Transcribe(ctx context.Context, req transcribe.Request) (transcribe.Outcome, error)
}

// resolver fetches a URL-sourced artifact to a local path.
type resolver interface {
	Download(ctx context.Context, rawURL string) (string, download.Kind, error)
}

// infoProber attaches best-effort media metadata at submission time and
// reports whether the probing toolchain is present.
type infoProber interface {
	Info(ctx context.Context, path string) (domain.MediaInfo, error)
	Available(ctx context.Context) bool
}

// SessionStatus summarizes one session's jobs.
type SessionStatus struct {
	TotalJobs       int  `json:"totalJobs"`
	ActiveJobs      int  `json:"activeJobs"`
	CompletedJobs   int  `json:"completedJobs"`
	FailedJobs      int  `json:"failedJobs"`
	FFmpegAvailable bool `json:"ffmpegAvailable"`
}

// Service coordinates submissions, workers, and session state. All job
// mutation flows through the registry; the service itself only tracks
// worker cancel handles.
type Service struct {
	cfg      config.Config
	log      zerolog.Logger
	registry *jobs.Registry
	events   *jobs.EventBus
	pipeline pipeline
	resolver resolver
	prober   infoProber
	cleaner  *media.Cleaner
	metrics  *metrics.Metrics

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup

	// ffprobe availability is checked once; the binary does not come
	// and go while the service runs.
	availOnce sync.Once
	available bool
}

// New wires the full production service from configuration.
func New(cfg config.Config, m *metrics.Metrics, log zerolog.Logger) *Service {
	client := transcription.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.HTTPTimeout)
	coordinator := transcribe.NewCoordinator(transcribe.Config{
		Model:               cfg.Model,
		SplitThresholdBytes: cfg.SplitThresholdBytes,
		ChunkTargetBytes:    cfg.ChunkTargetBytes,
		Retry:               retry.Policy{MaxAttempts: cfg.RetryMaxAttempts, Delay: cfg.RetryDelay},
		TranscriptsDir:      cfg.TranscriptsDir,
	}, client, m, log.With().Str("component", "transcribe").Logger())

	dl := download.NewResolver(
		download.NewDriveDownloader(cfg.HTTPTimeout),
		download.NewCommandDownloader("mp4/best[ext=mp4]"),
		download.NewCommandDownloader("bestaudio/best[ext=mp4]"),
		download.NewHTTPDownloader(cfg.HTTPTimeout),
	)

	return &Service{
		cfg:      cfg,
		log:      log,
		registry: jobs.NewRegistry(),
		events:   jobs.NewEventBus(0),
		pipeline: coordinator,
		resolver: dl,
		prober:   media.NewProber(),
		cleaner:  media.NewCleaner(log),
		metrics:  m,
		cancels:  make(map[string]context.CancelFunc),
	}
}

// NewForTests wires a service around injected collaborators.
func NewForTests(cfg config.Config, p pipeline, r resolver, ip infoProber, log zerolog.Logger) *Service {
	return &Service{
		cfg:      cfg,
		log:      log,
		registry: jobs.NewRegistry(),
		events:   jobs.NewEventBus(0),
		pipeline: p,
		resolver: r,
		prober:   ip,
		cleaner:  media.NewCleaner(log),
		cancels:  make(map[string]context.CancelFunc),
	}
}

// SubmitFileJob queues a transcription job for a local media file and
// starts its worker. The returned job reflects submission-time state.
func (s *Service) SubmitFileJob(ctx context.Context, sessionID, path, displayName string) (domain.Job, error) {
	if strings.TrimSpace(sessionID) == "" {
		return domain.Job{}, fmt.Errorf("session ID is required")
	}
	if strings.TrimSpace(path) == "" {
		return domain.Job{}, fmt.Errorf("media file path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return domain.Job{}, fmt.Errorf("media file not accessible: %w", err)
	}

	job := domain.Job{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		Source:      domain.SourceFile,
		DisplayName: displayName,
		Status:      domain.JobStatusQueued,
		CreatedAt:   time.Now().UTC(),
		InputPath:   path,
	}

	// Metadata probing is best effort; a failed probe never blocks
	// submission.
	if info, err := s.prober.Info(ctx, path); err == nil {
		job.Media = &info
	}

	return s.enqueue(job)
}

// SubmitURLJob queues a transcription job for a remote media URL.
// Unrecognized URLs are rejected at submission time.
func (s *Service) SubmitURLJob(ctx context.Context, sessionID, rawURL, displayName string) (domain.Job, error) {
	if strings.TrimSpace(sessionID) == "" {
		return domain.Job{}, fmt.Errorf("session ID is required")
	}
	if strings.TrimSpace(rawURL) == "" {
		return domain.Job{}, fmt.Errorf("media URL is required")
	}

	kind := download.Classify(rawURL)
	if kind == download.KindUnknown {
		return domain.Job{}, fmt.Errorf("%w: %s", download.ErrUnsupportedURL, rawURL)
	}

	job := domain.Job{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		Source:      domain.SourceURL,
		DisplayName: displayName,
		Status:      domain.JobStatusQueued,
		CreatedAt:   time.Now().UTC(),
		URL:         rawURL,
		URLKind:     string(kind),
	}
	return s.enqueue(job)
}

// enqueue registers the job, publishes its queued event, and starts
// its worker goroutine.
func (s *Service) enqueue(job domain.Job) (domain.Job, error) {
	if err := s.registry.Create(job); err != nil {
		return domain.Job{}, err
	}
	if s.metrics != nil {
		s.metrics.JobsSubmitted.Inc()
	}
	s.publishStatus(job, "job queued")

	ctx, cancel := context.WithCancel(context.Background())
	key := job.SessionID + "/" + job.ID
	s.mu.Lock()
	s.cancels[key] = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.cancels, key)
			s.mu.Unlock()
			cancel()
		}()
		s.runJob(ctx, job)
	}()

	return job, nil
}

// runJob executes one job end to end on its worker goroutine.
func (s *Service) runJob(ctx context.Context, job domain.Job) {
	log := s.log.With().Str("sessionId", job.SessionID).Str("jobId", job.ID).Logger()

	inputPath := job.InputPath
	if job.Source == domain.SourceURL {
		updated, err := s.transition(job, domain.JobStatusDownloading, "downloading media")
		if err != nil {
			return
		}
		job = updated

		path, kind, err := s.download(ctx, job.URL)
		if err != nil {
			log.Error().Err(err).Str("url", job.URL).Msg("download failed")
			s.fail(job, fmt.Errorf("download failed: %w", err))
			return
		}
		if s.metrics != nil {
			s.metrics.Downloads.WithLabelValues(string(kind)).Inc()
		}
		inputPath = path
		// Downloaded artifacts are transient regardless of outcome.
		defer s.cleaner.Cleanup(path)

		job, err = s.registry.Update(job.SessionID, job.ID, func(j *domain.Job) {
			j.InputPath = path
		})
		if err != nil {
			return
		}

		job, err = s.transition(job, domain.JobStatusTranscribing, "transcribing media")
		if err != nil {
			return
		}
	} else {
		updated, err := s.transition(job, domain.JobStatusProcessing, "processing media")
		if err != nil {
			return
		}
		job = updated
	}

	outcome, err := s.pipeline.Transcribe(ctx, transcribe.Request{
		InputPath: inputPath,
		JobID:     job.ID,
		OnStage: func(stage string) {
			s.publishStage(job, stage)
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("transcription pipeline failed")
		s.fail(job, err)
		return
	}

	now := time.Now().UTC()
	finished, err := s.registry.Update(job.SessionID, job.ID, func(j *domain.Job) {
		j.Status = domain.JobStatusCompleted
		j.Transcript = outcome.Transcript
		j.TranscriptPath = outcome.TextPath
		j.FinishedAt = &now
	})
	if err != nil {
		log.Error().Err(err).Msg("cannot record job completion")
		return
	}

	if s.metrics != nil {
		s.metrics.JobsCompleted.Inc()
		s.metrics.JobDuration.Observe(time.Since(finished.CreatedAt).Seconds())
	}
	s.events.Publish(jobs.Event{
		SessionID: finished.SessionID,
		JobID:     finished.ID,
		Type:      jobs.EventTypeResult,
		Status:    finished.Status,
		Message:   "transcription completed",
		TextPath:  finished.TranscriptPath,
	})
	log.Info().Str("textPath", finished.TranscriptPath).Msg("job completed")
}

// downloaded pairs a fetched artifact with its URL kind for retry.Do.
type downloaded struct {
	path string
	kind download.Kind
}

// download fetches the URL under the configured retry policy.
// Unsupported URLs never reach here; submission already rejected them.
func (s *Service) download(ctx context.Context, rawURL string) (string, download.Kind, error) {
	policy := retry.Policy{
		MaxAttempts: s.cfg.RetryMaxAttempts,
		Delay:       s.cfg.RetryDelay,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			s.log.Warn().Err(err).Int("attempt", attempt).Str("url", rawURL).
				Msg("download attempt failed")
		},
	}
	result, err := retry.Do(ctx, policy, func(ctx context.Context) (downloaded, error) {
		path, kind, err := s.resolver.Download(ctx, rawURL)
		return downloaded{path: path, kind: kind}, err
	})
	return result.path, result.kind, err
}

// publishStage reports pipeline progress. Stages never change job
// status; file jobs stay at processing for their whole pipeline run and
// URL jobs were moved to transcribing when their download finished.
func (s *Service) publishStage(job domain.Job, stage string) {
	s.events.Publish(jobs.Event{
		SessionID: job.SessionID,
		JobID:     job.ID,
		Type:      jobs.EventTypeLog,
		Stage:     stage,
		Message:   "stage: " + stage,
	})
}

// transition applies a status change and publishes it.
func (s *Service) transition(job domain.Job, status domain.JobStatus, message string) (domain.Job, error) {
	updated, err := s.registry.Update(job.SessionID, job.ID, func(j *domain.Job) {
		j.Status = status
	})
	if err != nil {
		// The session was reset under the worker's feet.
		s.log.Debug().Err(err).Str("jobId", job.ID).Msg("job transition skipped")
		return domain.Job{}, err
	}
	s.publishStatus(updated, message)
	return updated, nil
}

// fail marks a job failed and publishes the error event.
func (s *Service) fail(job domain.Job, cause error) {
	now := time.Now().UTC()
	failed, err := s.registry.Update(job.SessionID, job.ID, func(j *domain.Job) {
		j.Status = domain.JobStatusFailed
		j.Error = cause.Error()
		j.FinishedAt = &now
	})
	if err != nil {
		return
	}
	if s.metrics != nil {
		s.metrics.JobsFailed.Inc()
	}
	s.events.Publish(jobs.Event{
		SessionID: failed.SessionID,
		JobID:     failed.ID,
		Type:      jobs.EventTypeError,
		Status:    failed.Status,
		Message:   failed.Error,
	})
}

// publishStatus emits one status event for the job's current state.
func (s *Service) publishStatus(job domain.Job, message string) {
	s.events.Publish(jobs.Event{
		SessionID: job.SessionID,
		JobID:     job.ID,
		Type:      jobs.EventTypeStatus,
		Status:    job.Status,
		Message:   message,
	})
}

// JobStatus returns the current state of one job.
func (s *Service) JobStatus(sessionID, jobID string) (domain.Job, error) {
	return s.registry.Get(sessionID, jobID)
}

// ListJobs returns all jobs in a session, newest first.
func (s *Service) ListJobs(sessionID string) []domain.Job {
	return s.registry.ListJobs(sessionID)
}

// ListTranscriptions returns the session's completed jobs in
// completion order.
func (s *Service) ListTranscriptions(sessionID string) []domain.Job {
	return s.registry.ListCompleted(sessionID)
}

// Status summarizes the session's job counts and tool availability.
func (s *Service) Status(sessionID string) SessionStatus {
	s.availOnce.Do(func() {
		s.available = s.prober.Available(context.Background())
	})
	status := SessionStatus{FFmpegAvailable: s.available}
	for _, job := range s.registry.ListJobs(sessionID) {
		status.TotalJobs++
		switch job.Status {
		case domain.JobStatusCompleted:
			status.CompletedJobs++
		case domain.JobStatusFailed:
			status.FailedJobs++
		default:
			status.ActiveJobs++
		}
	}
	return status
}

// Events returns session events with sequence greater than since.
func (s *Service) Events(sessionID string, since int64) []jobs.Event {
	all := s.events.Since(since)
	out := make([]jobs.Event, 0, len(all))
	for _, event := range all {
		if event.SessionID == sessionID {
			out = append(out, event)
		}
	}
	return out
}

// Reset cancels the session's active workers, drops all its jobs, and
// removes their exported transcripts and transient artifacts.
func (s *Service) Reset(sessionID string) int {
	s.mu.Lock()
	prefix := sessionID + "/"
	for key, cancel := range s.cancels {
		if strings.HasPrefix(key, prefix) {
			cancel()
		}
	}
	s.mu.Unlock()

	dropped := s.registry.Reset(sessionID)
	for _, job := range dropped {
		s.cleaner.Cleanup(job.TranscriptPath)
		if job.Source == domain.SourceURL {
			s.cleaner.Cleanup(job.InputPath)
		}
	}

	s.log.Info().Str("sessionId", sessionID).Int("jobs", len(dropped)).Msg("session reset")
	return len(dropped)
}

// Close cancels all workers and waits for them to finish.
func (s *Service) Close() {
	s.mu.Lock()
	for _, cancel := range s.cancels {
		cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Package transcribe drives a media artifact through probing, optional
// chunking, retried remote transcription, and transcript export.
package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"transcriber-service/internal/media"
	"transcriber-service/internal/metrics"
	"transcriber-service/internal/retry"
	"transcriber-service/internal/transcription"
)

// Pipeline stages, reported through Request.OnStage.
const (
	StageProbing      = "probing"
	StageSplitting    = "splitting"
	StageTranscribing = "transcribing"
	StageExporting    = "exporting"
)

// Config holds the coordinator's split and retry parameters.
type Config struct {
	// Model is the remote speech-to-text model identifier.
	Model string
	// SplitThresholdBytes is the size above which the artifact is chunked.
	SplitThresholdBytes int64
	// ChunkTargetBytes is the nominal byte size of each chunk.
	ChunkTargetBytes int64
	// Retry bounds every remote transcription call.
	Retry retry.Policy
	// TranscriptsDir receives exported transcript files.
	TranscriptsDir string
}

// Request identifies one transcription run.
type Request struct {
	InputPath string
	JobID     string
	// OnStage, when set, observes stage changes for job status updates.
	OnStage func(stage string)
}

// Outcome is a successful run's transcript and its exported location.
type Outcome struct {
	Transcript string
	TextPath   string
}

// PipelineError is a stage-aware error carried onto the job record.
type PipelineError struct {
	Stage   string
	Message string
	Err     error
}

// Error formats pipeline failures for logs and job records.
func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// prober is the subset of the media prober the coordinator needs.
type prober interface {
	Duration(ctx context.Context, path string) (float64, error)
	Available(ctx context.Context) bool
}

// extractor materializes chunk plans into files.
type extractor interface {
	Extract(ctx context.Context, path string, plan media.ChunkPlan) ([]media.ChunkFile, error)
}

// Coordinator decides whether splitting is needed, transcribes chunks
// strictly in index order, and reassembles the transcript.
type Coordinator struct {
	cfg      Config
	prober   prober
	splitter extractor
	cleaner  *media.Cleaner
	client   transcription.Client
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

// NewCoordinator constructs the production coordinator.
func NewCoordinator(cfg Config, client transcription.Client, m *metrics.Metrics, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		cfg:      cfg,
		prober:   media.NewProber(),
		splitter: media.NewSplitter(),
		cleaner:  media.NewCleaner(log),
		client:   client,
		metrics:  m,
		log:      log,
	}
}

// NewCoordinatorForTests constructs a coordinator with injected media deps.
func NewCoordinatorForTests(cfg Config, p prober, s extractor, client transcription.Client, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		cfg:      cfg,
		prober:   p,
		splitter: s,
		cleaner:  media.NewCleaner(log),
		client:   client,
		log:      log,
	}
}

// Transcribe runs the whole pipeline for one local artifact. Any
// unrecovered failure fails the run; transcripts of chunks that had
// already succeeded are discarded rather than salvaged.
func (c *Coordinator) Transcribe(ctx context.Context, req Request) (Outcome, error) {
	if strings.TrimSpace(req.InputPath) == "" {
		return Outcome{}, &PipelineError{Stage: StageProbing, Message: "input media path is required"}
	}

	emitStage(req.OnStage, StageProbing)
	split, err := media.NeedsSplitting(req.InputPath, c.cfg.SplitThresholdBytes)
	if err != nil {
		return Outcome{}, &PipelineError{
			Stage:   StageProbing,
			Message: fmt.Sprintf("cannot access input media: %s", req.InputPath),
			Err:     err,
		}
	}

	var transcript string
	if split {
		transcript, err = c.transcribeChunked(ctx, req)
	} else {
		transcript, err = c.transcribeWhole(ctx, req)
	}
	if err != nil {
		return Outcome{}, err
	}

	emitStage(req.OnStage, StageExporting)
	textPath, err := c.exportTranscript(req.JobID, transcript)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{Transcript: transcript, TextPath: textPath}, nil
}

// transcribeWhole sends the artifact in a single remote call.
func (c *Coordinator) transcribeWhole(ctx context.Context, req Request) (string, error) {
	emitStage(req.OnStage, StageTranscribing)

	text, err := c.transcribeOne(ctx, req.InputPath)
	if err != nil {
		return "", &PipelineError{Stage: StageTranscribing, Message: "transcription failed", Err: err}
	}
	return strings.TrimSpace(text), nil
}

// transcribeChunked splits the artifact and transcribes each chunk
// sequentially, joining results in chunk index order.
func (c *Coordinator) transcribeChunked(ctx context.Context, req Request) (string, error) {
	if !c.prober.Available(ctx) {
		return "", &PipelineError{
			Stage:   StageSplitting,
			Message: "ffmpeg is required for splitting large files but is not available",
		}
	}

	duration, err := c.prober.Duration(ctx, req.InputPath)
	if err != nil {
		return "", &PipelineError{Stage: StageProbing, Message: "could not determine media duration", Err: err}
	}

	info, err := os.Stat(req.InputPath)
	if err != nil {
		return "", &PipelineError{Stage: StageProbing, Message: "cannot stat input media", Err: err}
	}

	c.log.Info().
		Str("path", req.InputPath).
		Float64("sizeMB", media.FileSizeMB(info.Size())).
		Str("duration", media.FormatDuration(duration)).
		Msg("splitting large artifact for transcription")

	plan, err := media.Plan(duration, info.Size(), c.cfg.ChunkTargetBytes)
	if err != nil {
		return "", &PipelineError{Stage: StageSplitting, Message: "could not compute chunk plan", Err: err}
	}
	if c.metrics != nil {
		c.metrics.ChunkPlanSize.Observe(float64(len(plan)))
	}

	emitStage(req.OnStage, StageSplitting)
	chunks, extractErr := c.splitter.Extract(ctx, req.InputPath, plan)
	// Chunk removal is unconditional: success, partial failure, and
	// total failure all pass through here exactly once.
	defer c.cleaner.CleanupChunks(chunks)

	if extractErr != nil {
		return "", &PipelineError{Stage: StageSplitting, Message: "chunk extraction failed", Err: extractErr}
	}
	if c.metrics != nil {
		c.metrics.ChunksCreated.Add(float64(len(chunks)))
	}

	emitStage(req.OnStage, StageTranscribing)
	texts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		c.log.Debug().Int("chunk", chunk.Index).Int("total", len(chunks)).Msg("transcribing chunk")

		text, err := c.transcribeOne(ctx, chunk.Path)
		if err != nil {
			return "", &PipelineError{
				Stage:   StageTranscribing,
				Message: fmt.Sprintf("chunk %d/%d transcription failed", chunk.Index+1, len(chunks)),
				Err:     err,
			}
		}
		texts = append(texts, strings.TrimSpace(text))
	}

	return strings.Join(texts, " "), nil
}

// transcribeOne performs a single remote call under the retry policy.
func (c *Coordinator) transcribeOne(ctx context.Context, path string) (string, error) {
	policy := c.cfg.Retry
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		c.log.Warn().Err(err).Int("attempt", attempt).Dur("retryIn", delay).
			Str("path", path).Msg("transcription attempt failed")
		if c.metrics != nil {
			c.metrics.TranscriptionRetries.Inc()
		}
	}

	text, err := retry.Do(ctx, policy, func(ctx context.Context) (string, error) {
		if c.metrics != nil {
			c.metrics.TranscriptionRequests.Inc()
		}
		return c.client.Transcribe(ctx, path, c.cfg.Model)
	})
	if err != nil && c.metrics != nil {
		c.metrics.TranscriptionFailures.Inc()
	}
	return text, err
}

// exportTranscript persists the transcript under the job's ID.
func (c *Coordinator) exportTranscript(jobID, transcript string) (string, error) {
	if err := os.MkdirAll(c.cfg.TranscriptsDir, 0o755); err != nil {
		return "", &PipelineError{
			Stage:   StageExporting,
			Message: fmt.Sprintf("cannot create transcripts directory: %s", c.cfg.TranscriptsDir),
			Err:     err,
		}
	}

	textPath := filepath.Join(c.cfg.TranscriptsDir, jobID+".txt")
	if err := os.WriteFile(textPath, []byte(transcript), 0o644); err != nil {
		return "", &PipelineError{
			Stage:   StageExporting,
			Message: fmt.Sprintf("cannot write transcript file: %s", textPath),
			Err:     err,
		}
	}
	return textPath, nil
}

// emitStage forwards stage updates when a callback is configured.
func emitStage(cb func(stage string), stage string) {
	if cb != nil {
		cb(stage)
	}
}

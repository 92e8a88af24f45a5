package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the transcription service.
type Metrics struct {
	// Job lifecycle metrics
	JobsSubmitted prometheus.Counter
	JobsCompleted prometheus.Counter
	JobsFailed    prometheus.Counter
	JobDuration   prometheus.Histogram

	// Chunking metrics
	ChunksCreated prometheus.Counter
	ChunkPlanSize prometheus.Histogram

	// Remote call metrics
	TranscriptionRequests prometheus.Counter
	TranscriptionRetries  prometheus.Counter
	TranscriptionFailures prometheus.Counter
	Downloads             *prometheus.CounterVec
}

// New creates and registers all service metrics with the given registerer.
// Passing nil registers with the default Prometheus registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		JobsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "transcriber_jobs_submitted_total",
			Help: "Total number of transcription jobs submitted",
		}),
		JobsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "transcriber_jobs_completed_total",
			Help: "Total number of transcription jobs completed successfully",
		}),
		JobsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "transcriber_jobs_failed_total",
			Help: "Total number of transcription jobs that failed",
		}),
		JobDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "transcriber_job_duration_seconds",
			Help:    "Wall-clock duration of finished jobs",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		ChunksCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "transcriber_chunks_created_total",
			Help: "Total number of media chunks extracted for transcription",
		}),
		ChunkPlanSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "transcriber_chunk_plan_windows",
			Help:    "Number of windows in each computed chunk plan",
			Buckets: prometheus.LinearBuckets(1, 1, 16),
		}),
		TranscriptionRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "transcriber_transcription_requests_total",
			Help: "Total number of remote transcription calls attempted",
		}),
		TranscriptionRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "transcriber_transcription_retries_total",
			Help: "Total number of retried remote transcription calls",
		}),
		TranscriptionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "transcriber_transcription_failures_total",
			Help: "Total number of remote transcription calls that exhausted retries",
		}),
		Downloads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "transcriber_downloads_total",
			Help: "Total number of remote media downloads by URL kind",
		}, []string{"kind"}),
	}
}

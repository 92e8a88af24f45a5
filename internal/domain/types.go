package domain

import "time"

// JobStatus tracks the lifecycle of a transcription job.
type JobStatus string

const (
	JobStatusQueued       JobStatus = "queued"
	JobStatusProcessing   JobStatus = "processing"
	JobStatusDownloading  JobStatus = "downloading"
	JobStatusTranscribing JobStatus = "transcribing"
	JobStatusCompleted    JobStatus = "completed"
	JobStatusFailed       JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// SourceKind identifies how a job's media artifact was supplied.
type SourceKind string

const (
	SourceFile SourceKind = "file"
	SourceURL  SourceKind = "url"
)

// MediaInfo summarizes a probed media artifact.
type MediaInfo struct {
	Duration   float64 `json:"duration"`
	Size       int64   `json:"size"`
	FormatName string  `json:"formatName"`
	BitRate    int64   `json:"bitRate"`
	HasAudio   bool    `json:"hasAudio"`
	HasVideo   bool    `json:"hasVideo"`
	AudioCodec string  `json:"audioCodec,omitempty"`
	VideoCodec string  `json:"videoCodec,omitempty"`
	SampleRate int     `json:"sampleRate,omitempty"`
	Channels   int     `json:"channels,omitempty"`
}

// Job is one unit of work turning a media source into a transcript.
// A job is mutated only by the background worker that owns it; once it
// reaches a terminal status it is read-only shared data.
type Job struct {
	ID          string     `json:"jobId"`
	SessionID   string     `json:"sessionId"`
	Source      SourceKind `json:"source"`
	DisplayName string     `json:"displayName"`
	Status      JobStatus  `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`

	// URL and URLKind are set for url-sourced jobs.
	URL     string `json:"url,omitempty"`
	URLKind string `json:"urlKind,omitempty"`

	// InputPath is the local artifact the pipeline consumes.
	InputPath string `json:"inputPath,omitempty"`

	// Media is attached when submission-time probing succeeded.
	Media *MediaInfo `json:"media,omitempty"`

	// Transcript and TranscriptPath are set only on completion.
	Transcript     string `json:"transcript,omitempty"`
	TranscriptPath string `json:"transcriptPath,omitempty"`

	// Error is set only on failure.
	Error string `json:"error,omitempty"`
	// FinishedAt is set once the job reaches a terminal status; it is
	// nil, and absent from JSON, while the job is still active.
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

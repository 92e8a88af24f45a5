package media

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"transcriber-service/internal/domain"
)

// ProbeError reports a failed artifact inspection. Probe failures are not
// retryable; the caller decides whether they are fatal for the job.
type ProbeError struct {
	Path    string
	Message string
	Err     error
}

// Error formats the probe failure for logs and job records.
func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *ProbeError) Unwrap() error {
	return e.Err
}

// Prober inspects media artifacts with ffprobe.
type Prober struct {
	ffprobePath string
	runner      Runner
}

// NewProber constructs a prober using ffprobe from PATH.
func NewProber() *Prober {
	return &Prober{
		ffprobePath: "ffprobe",
		runner:      &ExecRunner{},
	}
}

// NewProberForTests constructs a prober with an injected runner.
func NewProberForTests(ffprobePath string, runner Runner) *Prober {
	return &Prober{ffprobePath: ffprobePath, runner: runner}
}

// Duration returns the artifact duration in seconds.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	result, err := p.runner.Run(ctx, p.ffprobePath,
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, &ProbeError{Path: path, Message: "ffprobe duration query failed", Err: err}
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(result.Stdout), 64)
	if err != nil {
		return 0, &ProbeError{Path: path, Message: "ffprobe returned no parseable duration", Err: err}
	}
	return duration, nil
}

// Info returns the full probed description of the artifact.
func (p *Prober) Info(ctx context.Context, path string) (domain.MediaInfo, error) {
	result, err := p.runner.Run(ctx, p.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	if err != nil {
		return domain.MediaInfo{}, &ProbeError{Path: path, Message: "ffprobe inspection failed", Err: err}
	}

	var raw ffprobeOutput
	if err := json.Unmarshal([]byte(result.Stdout), &raw); err != nil {
		return domain.MediaInfo{}, &ProbeError{Path: path, Message: "ffprobe output is not valid JSON", Err: err}
	}

	info := domain.MediaInfo{
		Duration:   parseFloat(raw.Format.Duration),
		Size:       parseInt(raw.Format.Size),
		FormatName: raw.Format.FormatName,
		BitRate:    parseInt(raw.Format.BitRate),
	}

	for _, stream := range raw.Streams {
		switch stream.CodecType {
		case "audio":
			if !info.HasAudio {
				info.AudioCodec = stream.CodecName
				info.SampleRate = int(parseInt(stream.SampleRate))
				info.Channels = stream.Channels
			}
			info.HasAudio = true
		case "video":
			if !info.HasVideo {
				info.VideoCodec = stream.CodecName
			}
			info.HasVideo = true
		}
	}

	return info, nil
}

// Available reports whether ffprobe can be invoked at all.
func (p *Prober) Available(ctx context.Context) bool {
	_, err := p.runner.Run(ctx, p.ffprobePath, "-version")
	return err == nil
}

// ffprobeOutput mirrors the subset of ffprobe JSON the service consumes.
// ffprobe encodes numeric format fields as strings.
type ffprobeOutput struct {
	Format struct {
		Duration   string `json:"duration"`
		Size       string `json:"size"`
		FormatName string `json:"format_name"`
		BitRate    string `json:"bit_rate"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
	} `json:"streams"`
}

// parseFloat converts ffprobe string numerics, defaulting to zero.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// parseInt converts ffprobe string numerics, defaulting to zero.
func parseInt(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

package media

import (
	"fmt"
	"math"
)

// ChunkWindow is one time-bounded slice of a media artifact.
type ChunkWindow struct {
	Index    int
	Start    float64
	Duration float64
}

// ChunkPlan is an ordered, contiguous sequence of windows covering an
// artifact. Windows are indexed from zero in strictly increasing order.
type ChunkPlan []ChunkWindow

// Plan computes the windows needed to keep each chunk near
// targetChunkBytes. The chunk duration assumes a constant byte rate
// across the artifact, which is approximate for variable-bitrate media;
// the final window may nominally extend past the artifact's end and is
// clamped by ffmpeg during extraction.
func Plan(totalDuration float64, totalBytes, targetChunkBytes int64) (ChunkPlan, error) {
	if totalDuration <= 0 {
		return nil, fmt.Errorf("plan: total duration must be positive, got %v", totalDuration)
	}
	if totalBytes <= 0 {
		return nil, fmt.Errorf("plan: total size must be positive, got %d", totalBytes)
	}
	if targetChunkBytes <= 0 {
		return nil, fmt.Errorf("plan: target chunk size must be positive, got %d", targetChunkBytes)
	}

	chunkDuration := totalDuration * float64(targetChunkBytes) / float64(totalBytes)
	count := int(math.Ceil(totalDuration / chunkDuration))

	plan := make(ChunkPlan, 0, count)
	for i := 0; i < count; i++ {
		plan = append(plan, ChunkWindow{
			Index:    i,
			Start:    float64(i) * chunkDuration,
			Duration: chunkDuration,
		})
	}
	return plan, nil
}

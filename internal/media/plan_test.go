package media

import (
	"math"
	"testing"
)

// TestPlanScenario30MB checks the canonical two-window case: 30 MB over
// 300 seconds with a 20 MB target yields two 200-second windows whose
// nominal total overruns the artifact by less than one chunk duration.
func TestPlanScenario30MB(t *testing.T) {
	plan, err := Plan(300, 30*1024*1024, 20*1024*1024)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	if len(plan) != 2 {
		t.Fatalf("windows = %d, want 2", len(plan))
	}
	if plan[0].Start != 0 || plan[1].Start != 200 {
		t.Fatalf("starts = %v/%v, want 0/200", plan[0].Start, plan[1].Start)
	}
	if plan[0].Duration != 200 || plan[1].Duration != 200 {
		t.Fatalf("durations = %v/%v, want 200", plan[0].Duration, plan[1].Duration)
	}
}

// TestPlanPropertiesAcrossInputs checks contiguity, index ordering, and
// coverage within one chunk duration for a spread of shapes. Boundaries
// are approximate because the math assumes uniform bitrate.
func TestPlanPropertiesAcrossInputs(t *testing.T) {
	cases := []struct {
		name        string
		duration    float64
		size        int64
		target      int64
		wantWindows int
	}{
		{"single window when target exceeds size", 120, 10 << 20, 20 << 20, 1},
		{"exact split", 300, 40 << 20, 20 << 20, 2},
		{"uneven split rounds up", 100, 50 << 20, 15 << 20, 4},
		{"tiny target", 9.5, 9 << 20, 1 << 20, 9},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan, err := Plan(tc.duration, tc.size, tc.target)
			if err != nil {
				t.Fatalf("Plan() error = %v", err)
			}
			if len(plan) != tc.wantWindows {
				t.Fatalf("windows = %d, want %d", len(plan), tc.wantWindows)
			}

			chunkDuration := tc.duration * float64(tc.target) / float64(tc.size)
			var total float64
			for i, window := range plan {
				if window.Index != i {
					t.Fatalf("window %d has index %d", i, window.Index)
				}
				if math.Abs(window.Start-float64(i)*chunkDuration) > 1e-9 {
					t.Fatalf("window %d start = %v, want %v", i, window.Start, float64(i)*chunkDuration)
				}
				total += window.Duration
			}

			if total < tc.duration {
				t.Fatalf("nominal coverage %v < duration %v", total, tc.duration)
			}
			if total-tc.duration >= chunkDuration {
				t.Fatalf("overrun %v exceeds one chunk duration %v", total-tc.duration, chunkDuration)
			}
		})
	}
}

// TestPlanRejectsInvalidInputs checks precondition enforcement.
func TestPlanRejectsInvalidInputs(t *testing.T) {
	cases := []struct {
		name     string
		duration float64
		size     int64
		target   int64
	}{
		{"zero duration", 0, 100, 10},
		{"negative duration", -1, 100, 10},
		{"zero size", 100, 0, 10},
		{"zero target", 100, 100, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Plan(tc.duration, tc.size, tc.target); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

package media

import "fmt"

// FormatDuration renders seconds as a human-readable duration label.
func FormatDuration(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.1f seconds", seconds)
	}
	if seconds < 3600 {
		minutes := int(seconds) / 60
		remaining := int(seconds) % 60
		return fmt.Sprintf("%d:%02d", minutes, remaining)
	}
	hours := int(seconds) / 3600
	minutes := (int(seconds) % 3600) / 60
	remaining := int(seconds) % 60
	return fmt.Sprintf("%d:%02d:%02d", hours, minutes, remaining)
}

// FileSizeMB converts a byte count to megabytes for display.
func FileSizeMB(bytes int64) float64 {
	return float64(bytes) / (1024 * 1024)
}

package platform

import "fmt"

// Byte units
const (
	unitKB = 1024
	unitMB = unitKB * 1024
	unitGB = unitMB * 1024
)

// FormatBytes renders a byte count in a human-readable unit
func FormatBytes(count int64) string {
	switch {
	case count >= unitGB:
		return fmt.Sprintf("%.1f GB", float64(count)/unitGB)
	case count >= unitMB:
		return fmt.Sprintf("%.1f MB", float64(count)/unitMB)
	case count >= unitKB:
		return fmt.Sprintf("%.1f KB", float64(count)/unitKB)
	default:
		return fmt.Sprintf("%d B", count)
	}
}

// FormatDuration renders seconds as mm:ss or hh:mm:ss
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

package model

import (
	"fmt"
	"strings"
)

// Progress is a point-in-time snapshot reported by a running job.
type Progress struct {
	Percentage float64 // 0 to 100
	Rate       float64 // bytes per second, 0 if unknown
	ETASeconds int     // estimated seconds remaining, -1 if unknown
	Status     string  // free-form phase, e.g. "downloading", "converting"
	Label      string  // optional display name, e.g. a video title
}

// ProgressSink receives progress snapshots from a running job. Sinks are
// expected to return quickly and must never block the job for long.
type ProgressSink func(Progress)

// GetETAString returns the ETA formatted as hh:mm:ss, or "—" if unknown
func (p Progress) GetETAString() string {
	if p.ETASeconds <= 0 {
		return "—"
	}

	hours := p.ETASeconds / 3600
	minutes := (p.ETASeconds % 3600) / 60
	seconds := p.ETASeconds % 60

	var b strings.Builder
	if hours > 0 {
		b.WriteString(fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("%02d:%02d", minutes, seconds))
	return b.String()
}

// GetRateString returns the transfer rate in MB/s, or "" if unknown
func (p Progress) GetRateString() string {
	if p.Rate <= 0 {
		return ""
	}
	return fmt.Sprintf("%.1fMB/s", p.Rate/1024/1024)
}

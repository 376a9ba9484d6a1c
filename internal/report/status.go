package report

import "strings"

// Status is the coarse outcome derived from a backup log.
type Status int

const (
	StatusSuccess Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusSkipped:
		return "SKIPPED"
	default:
		return "FAILED"
	}
}

// Marker substrings emitted by the backup tool. These are a frozen contract:
// matching is a plain case-sensitive substring search and the success marker
// is always checked first, so a log containing both markers is SUCCESS.
const (
	markerSuccess = "Backup Completed Successfully"
	markerSkipped = "No changes detected"
)

// Classify inspects raw log text and assigns an outcome. Anything that is
// neither a completed backup nor an explicit no-op counts as a failure.
func Classify(logText string) Status {
	switch {
	case strings.Contains(logText, markerSuccess):
		return StatusSuccess
	case strings.Contains(logText, markerSkipped):
		return StatusSkipped
	default:
		return StatusFailed
	}
}

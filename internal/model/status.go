package model

import "strings"

// Status is the outcome of a step, scenario, suite or run.
type Status string

const (
	StatusPassed    Status = "passed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusUndefined Status = "undefined"
	StatusErrored   Status = "errored"
)

// Statuses lists every known status in display order.
var Statuses = []Status{StatusPassed, StatusFailed, StatusSkipped, StatusUndefined, StatusErrored}

// ParseStatus maps a raw status string onto the closed set. The second return
// value is false when the input is not a known status; callers decide what to
// substitute.
func ParseStatus(raw string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusPassed:
		return StatusPassed, true
	case StatusFailed:
		return StatusFailed, true
	case StatusSkipped:
		return StatusSkipped, true
	case StatusUndefined:
		return StatusUndefined, true
	case StatusErrored:
		return StatusErrored, true
	default:
		return StatusUndefined, false
	}
}

func (s Status) String() string { return string(s) }

// Failed reports whether s is the failed status.
func (s Status) Failed() bool { return s == StatusFailed }

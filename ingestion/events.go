package ingestion

import "github.com/poiesic/kbsync/core"

// EventKind distinguishes the events a Pipeline reports.
type EventKind int

const (
	// EventScanned is reported once after enumeration; only Total is set.
	EventScanned EventKind = iota
	// EventState is reported on every per-file state transition.
	EventState
	// EventAttemptFailed is reported after each failed upload attempt.
	EventAttemptFailed
)

// Event describes pipeline progress. Index is 0-based within the run.
type Event struct {
	Kind        EventKind
	Index       int
	Total       int
	File        core.FileRecord
	State       core.FileState
	Attempt     int
	MaxAttempts int
	Err         error
}

// Percent returns the progress through the file list after this file,
// as (Index+1)/Total*100.
func (e Event) Percent() float64 {
	if e.Total <= 0 {
		return 0
	}
	return float64(e.Index+1) / float64(e.Total) * 100
}

// Observer receives pipeline events synchronously on the Run goroutine.
type Observer func(Event)

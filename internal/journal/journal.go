// Package journal provides an optional audit trail of tool invocations.
// It records which tool ran with which remindctl arguments and how it
// ended; reminder payloads are never stored.
package journal

import (
	"time"
)

// Entry is one recorded tool call.
type Entry struct {
	ID        string
	SessionID string
	Tool      string
	Argv      []string
	Status    string
	Error     string
	Duration  time.Duration
	CreatedAt time.Time
}

// Journal defines the interface for recording tool calls.
type Journal interface {
	// Initialize opens the journal at the given path.
	Initialize(dbPath string) error

	// Close closes the journal and releases any resources.
	Close() error

	// Record stores one entry. An empty ID is filled in.
	Record(entry Entry) error

	// Recent returns up to limit entries, newest first.
	Recent(limit int) ([]Entry, error)
}

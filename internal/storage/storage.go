package storage

import "time"

// Event is one answered question, persisted as a JSON line.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
	Question  string    `json:"question"`
	Response  string    `json:"response"`
}

// Recorder persists transcript events. LoadInteractions returns them in
// the order they were appended. Implementations must be safe for
// concurrent use.
type Recorder interface {
	AppendInteraction(event Event) error
	LoadInteractions() ([]Event, error)
}

package watcher

import "time"

// EventType represents the kind of change observed on the dataset file.
type EventType int

const (
	// EventModified is emitted once the file has been written and has settled.
	EventModified EventType = iota
	// EventRemoved is emitted when the file is deleted or renamed away.
	EventRemoved
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventModified:
		return "modified"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event describes a settled change to the watched file.
type Event struct {
	Type    EventType
	Path    string
	Size    int64
	ModTime time.Time
}

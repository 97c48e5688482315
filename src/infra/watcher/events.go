package watcher

import (
	"time"
)

// FileEventType represents the type of file system event
type FileEventType string

const (
	FileCreated FileEventType = "created"
)

// FileEvent is emitted once per debounce window and carries the playlist
// files that appeared in the drop directory during it.
type FileEvent struct {
	Paths     []string
	EventType FileEventType
	Timestamp time.Time
}

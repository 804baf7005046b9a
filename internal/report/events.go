package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType is the kind of change recorded
type EventType string

const (
	EventCreate EventType = "create"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
	EventSelect EventType = "select"
	EventToggle EventType = "toggle"
	EventCopy   EventType = "copy"
	EventImport EventType = "import"
	EventExport EventType = "export"
	EventError  EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// ParseLevel maps a level name to an EventLevel, defaulting to info
func ParseLevel(s string) EventLevel {
	if _, ok := levelPriority[EventLevel(s)]; ok {
		return EventLevel(s)
	}
	return LevelInfo
}

// Event is one line of the audit trail
type Event struct {
	Timestamp time.Time         `json:"ts"`
	Level     EventLevel        `json:"level"`
	Event     EventType         `json:"event"`
	Entity    string            `json:"entity,omitempty"` // project, song, version, take, release, builder
	ID        string            `json:"id,omitempty"`
	Name      string            `json:"name,omitempty"`
	Field     string            `json:"field,omitempty"`
	Path      string            `json:"path,omitempty"` // file involved in import/export
	Count     int               `json:"count,omitempty"`
	Error     string            `json:"error,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file. A nil logger discards events.
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	minLevel EventLevel
}

// NewEventLogger creates events-<timestamp>.jsonl in outputDir. Events below
// minLevel are dropped.
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := fmt.Sprintf("events-%s.jsonl", time.Now().Format("20060102-150405"))
	path := filepath.Join(outputDir, filename)

	// Append: two invocations within the same second share a file
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil
	}
	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	return nil
}

// LogMutation records a create, update, delete, select or toggle
func (l *EventLogger) LogMutation(event EventType, entity, id, name string) error {
	level := LevelInfo
	if event == EventSelect {
		level = LevelDebug
	}
	return l.Log(&Event{
		Level:  level,
		Event:  event,
		Entity: entity,
		ID:     id,
		Name:   name,
	})
}

// LogToggle records a flipped flag (QA item or keeper) and its new value
func (l *EventLogger) LogToggle(entity, id, field string, value bool) error {
	return l.Log(&Event{
		Level:  LevelInfo,
		Event:  EventToggle,
		Entity: entity,
		ID:     id,
		Field:  field,
		Extra:  map[string]string{"value": fmt.Sprintf("%t", value)},
	})
}

// LogCopy records a clipboard copy and whether it reached the clipboard
func (l *EventLogger) LogCopy(what string, ok bool) error {
	level := LevelInfo
	if !ok {
		level = LevelWarning
	}
	return l.Log(&Event{
		Level: level,
		Event: EventCopy,
		Field: what,
		Extra: map[string]string{"copied": fmt.Sprintf("%t", ok)},
	})
}

// LogTransfer records an import or export of count projects
func (l *EventLogger) LogTransfer(event EventType, path string, count int, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}
	return l.Log(&Event{
		Level: level,
		Event: event,
		Path:  path,
		Count: count,
		Error: errMsg,
	})
}

// LogError records a failed operation
func (l *EventLogger) LogError(event EventType, entity string, err error) error {
	return l.Log(&Event{
		Level:  LevelError,
		Event:  event,
		Entity: entity,
		Error:  err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}

package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestLogger(t *testing.T, minLevel EventLevel) *EventLogger {
	t.Helper()
	logger, err := NewEventLogger(t.TempDir(), minLevel)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	t.Cleanup(func() { logger.Close() })
	return logger
}

// readEvents closes the logger and decodes every line of its file
func readEvents(t *testing.T, logger *EventLogger) []Event {
	t.Helper()
	logger.Close()

	file, err := os.Open(logger.Path())
	if err != nil {
		t.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var decoded Event
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("Line %d is not valid JSON: %v", len(events)+1, err)
		}
		events = append(events, decoded)
	}
	return events
}

func TestNewEventLogger(t *testing.T) {
	logger := newTestLogger(t, LevelDebug)

	if _, err := os.Stat(logger.Path()); os.IsNotExist(err) {
		t.Errorf("Event log file was not created at %s", logger.Path())
	}

	filename := filepath.Base(logger.Path())
	if len(filename) < len("events-20060102-150405.jsonl") {
		t.Errorf("Event log filename format incorrect: %s", filename)
	}
}

func TestEventLogger_LogMutation(t *testing.T) {
	logger := newTestLogger(t, LevelDebug)

	if err := logger.LogMutation(EventCreate, "song", "s1", "Song X"); err != nil {
		t.Fatalf("LogMutation failed: %v", err)
	}
	if err := logger.LogMutation(EventSelect, "song", "s1", ""); err != nil {
		t.Fatalf("LogMutation failed: %v", err)
	}

	events := readEvents(t, logger)
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Event != EventCreate || events[0].Entity != "song" || events[0].Name != "Song X" {
		t.Errorf("Unexpected create event: %+v", events[0])
	}
	if events[1].Level != LevelDebug {
		t.Errorf("Expected select to log at debug, got %s", events[1].Level)
	}
	for i, e := range events {
		if e.Timestamp.IsZero() {
			t.Errorf("Line %d: timestamp not set", i+1)
		}
	}
}

func TestEventLogger_LogToggle(t *testing.T) {
	logger := newTestLogger(t, LevelDebug)
	logger.LogToggle("version", "v1", "true-peak", true)

	events := readEvents(t, logger)
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].Field != "true-peak" || events[0].Extra["value"] != "true" {
		t.Errorf("Unexpected toggle event: %+v", events[0])
	}
}

func TestEventLogger_LogTransferError(t *testing.T) {
	logger := newTestLogger(t, LevelDebug)
	logger.LogTransfer(EventImport, "/tmp/backup.yaml", 0, errors.New("bad yaml"))
	logger.LogTransfer(EventExport, "/tmp/backup.json", 3, nil)

	events := readEvents(t, logger)
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Level != LevelError || events[0].Error != "bad yaml" {
		t.Errorf("Expected error-level import event, got %+v", events[0])
	}
	if events[1].Count != 3 || events[1].Path != "/tmp/backup.json" {
		t.Errorf("Unexpected export event: %+v", events[1])
	}
}

func TestEventLogger_LogCopyFailureIsWarning(t *testing.T) {
	logger := newTestLogger(t, LevelDebug)
	logger.LogCopy("prompt", false)

	events := readEvents(t, logger)
	if len(events) != 1 || events[0].Level != LevelWarning {
		t.Fatalf("Expected one warning event, got %+v", events)
	}
	if events[0].Extra["copied"] != "false" {
		t.Errorf("Expected copied=false, got %q", events[0].Extra["copied"])
	}
}

func TestEventLogger_ConcurrentWrites(t *testing.T) {
	logger := newTestLogger(t, LevelDebug)

	const numGoroutines = 10
	const eventsPerGoroutine = 20

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < eventsPerGoroutine; j++ {
				if err := logger.LogMutation(EventUpdate, "take", "t1", "take"); err != nil {
					t.Errorf("Concurrent log failed: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	events := readEvents(t, logger)
	expected := numGoroutines * eventsPerGoroutine
	if len(events) != expected {
		t.Errorf("Expected %d events, got %d", expected, len(events))
	}
}

func TestEventLogger_NullLogger(t *testing.T) {
	logger := NullLogger()

	if err := logger.Log(&Event{Level: LevelInfo, Event: EventCreate}); err != nil {
		t.Errorf("NullLogger.Log should not return error, got: %v", err)
	}
	if err := logger.LogMutation(EventDelete, "project", "p1", "A"); err != nil {
		t.Errorf("NullLogger.LogMutation should not return error, got: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("NullLogger.Close should not return error, got: %v", err)
	}
	if path := logger.Path(); path != "" {
		t.Errorf("NullLogger.Path should return empty string, got: %s", path)
	}
}

func TestEventLogger_AutoTimestamp(t *testing.T) {
	logger := newTestLogger(t, LevelDebug)
	logger.Log(&Event{Level: LevelInfo, Event: EventExport})

	events := readEvents(t, logger)
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if time.Since(events[0].Timestamp) > 5*time.Second {
		t.Errorf("Timestamp is too old or unset: %v", events[0].Timestamp)
	}
}

func TestEventLogger_LogLevelFiltering(t *testing.T) {
	all := []Event{
		{Level: LevelDebug, Event: EventSelect},
		{Level: LevelInfo, Event: EventCreate},
		{Level: LevelWarning, Event: EventCopy},
		{Level: LevelError, Event: EventError},
	}
	testCases := []struct {
		minLevel      EventLevel
		expectedCount int
	}{
		{LevelDebug, 4},
		{LevelInfo, 3},
		{LevelWarning, 2},
		{LevelError, 1},
	}

	for _, tc := range testCases {
		t.Run(string(tc.minLevel), func(t *testing.T) {
			logger := newTestLogger(t, tc.minLevel)
			for _, e := range all {
				if err := logger.Log(&e); err != nil {
					t.Fatalf("Log failed: %v", err)
				}
			}
			if got := len(readEvents(t, logger)); got != tc.expectedCount {
				t.Errorf("Expected %d events logged, got %d", tc.expectedCount, got)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("warning") != LevelWarning {
		t.Error("expected warning")
	}
	if ParseLevel("loud") != LevelInfo {
		t.Error("unknown levels should default to info")
	}
}

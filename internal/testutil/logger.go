package testutil

import (
	"fmt"
	"strings"
	"sync"
)

// Entry is one captured log line.
type Entry struct {
	Level   string
	Message string
}

// RecordingLogger captures formatted log lines so tests can assert on the
// diagnostics a component emitted. It implements logging.Logger.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecordingLogger returns an empty recorder.
func NewRecordingLogger() *RecordingLogger { return &RecordingLogger{} }

func (l *RecordingLogger) record(level, msg string, args []any) {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Message: msg})
}

// Debug records a debug line.
func (l *RecordingLogger) Debug(msg string, args ...any) { l.record("DEBUG", msg, args) }

// Info records an info line.
func (l *RecordingLogger) Info(msg string, args ...any) { l.record("INFO", msg, args) }

// Warn records a warning line.
func (l *RecordingLogger) Warn(msg string, args ...any) { l.record("WARN", msg, args) }

// Error records an error line.
func (l *RecordingLogger) Error(msg string, args ...any) { l.record("ERROR", msg, args) }

// Entries returns a copy of everything recorded so far.
func (l *RecordingLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Count returns the number of entries at level.
func (l *RecordingLogger) Count(level string) int {
	n := 0
	for _, e := range l.Entries() {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Contains reports whether any entry at level contains substr.
func (l *RecordingLogger) Contains(level, substr string) bool {
	for _, e := range l.Entries() {
		if e.Level == level && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

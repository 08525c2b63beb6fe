package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// TestLogBuffer is a thread-safe buffer for capturing log output in tests.
type TestLogBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

// Write implements io.Writer for TestLogBuffer.
func (b *TestLogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns the buffer contents as a string.
func (b *TestLogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Reset clears the buffer contents.
func (b *TestLogBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// GetLogEntries parses the buffer contents as JSON log entries, one per line.
func (b *TestLogBuffer) GetLogEntries() ([]map[string]any, error) {
	lines := strings.Split(b.String(), "\n")
	entries := make([]map[string]any, 0, len(lines))

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// EntriesWithMessage returns the parsed entries whose msg equals message.
func (b *TestLogBuffer) EntriesWithMessage(message string) []map[string]any {
	entries, err := b.GetLogEntries()
	if err != nil {
		return nil
	}
	var matched []map[string]any
	for _, entry := range entries {
		if entry["msg"] == message {
			matched = append(matched, entry)
		}
	}
	return matched
}

// NewTestLogger returns a debug-level JSON logger writing into a fresh buffer.
// It does not touch the slog default, so parallel tests can each own one.
func NewTestLogger(t *testing.T) (*TestLogBuffer, *slog.Logger) {
	t.Helper()
	logBuf := &TestLogBuffer{}
	handler := slog.NewJSONHandler(logBuf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return logBuf, slog.New(handler)
}

// AssertLogContains fails the test if the buffer does not contain content.
func AssertLogContains(t *testing.T, logBuf *TestLogBuffer, content string) {
	t.Helper()

	logs := logBuf.String()
	if !strings.Contains(logs, content) {
		t.Errorf("Expected log to contain %q, but it doesn't.\nLogs:\n%s", content, logs)
	}
}

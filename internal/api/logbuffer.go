package api

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// LogEntry is one captured log line.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Raw       string    `json:"raw"`
}

// LogBuffer is a thread-safe ring buffer of recent log lines, wired into the
// zerolog multi-writer so the status API can serve them.
type LogBuffer struct {
	mu      sync.RWMutex
	entries []LogEntry
	size    int
	head    int
	count   int
}

// NewLogBuffer creates a buffer holding the last size entries.
func NewLogBuffer(size int) *LogBuffer {
	return &LogBuffer{
		entries: make([]LogEntry, size),
		size:    size,
	}
}

// Write implements io.Writer for capturing zerolog output.
func (lb *LogBuffer) Write(p []byte) (n int, err error) {
	raw := strings.TrimRight(string(p), "\n")
	entry := LogEntry{Timestamp: time.Now(), Raw: raw, Level: "info"}

	// zerolog emits one JSON object per line.
	var fields struct {
		Level   string `json:"level"`
		Message string `json:"message"`
	}
	if json.Unmarshal([]byte(raw), &fields) == nil {
		if fields.Level != "" {
			entry.Level = fields.Level
		}
		entry.Message = fields.Message
	}

	lb.mu.Lock()
	lb.entries[lb.head] = entry
	lb.head = (lb.head + 1) % lb.size
	if lb.count < lb.size {
		lb.count++
	}
	lb.mu.Unlock()

	return len(p), nil
}

// Entries returns the buffered entries in chronological order.
func (lb *LogBuffer) Entries() []LogEntry {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	out := make([]LogEntry, 0, lb.count)
	start := 0
	if lb.count == lb.size {
		start = lb.head
	}
	for i := 0; i < lb.count; i++ {
		out = append(out, lb.entries[(start+i)%lb.size])
	}
	return out
}

// Recent returns at most n of the newest entries.
func (lb *LogBuffer) Recent(n int) []LogEntry {
	entries := lb.Entries()
	if len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}

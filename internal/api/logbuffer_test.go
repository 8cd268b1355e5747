package api

import (
	"fmt"
	"testing"
)

func TestLogBuffer_ParsesZerologLines(t *testing.T) {
	t.Parallel()

	lb := NewLogBuffer(4)
	lb.Write([]byte(`{"level":"warn","component":"poller","message":"fetch failed"}` + "\n"))

	entries := lb.Entries()
	if len(entries) != 1 {
		t.Fatalf("len = %d, want 1", len(entries))
	}
	if entries[0].Level != "warn" {
		t.Errorf("level = %q, want warn", entries[0].Level)
	}
	if entries[0].Message != "fetch failed" {
		t.Errorf("message = %q, want fetch failed", entries[0].Message)
	}
}

func TestLogBuffer_NonJSONLine(t *testing.T) {
	t.Parallel()

	lb := NewLogBuffer(4)
	lb.Write([]byte("plain text line\n"))

	entries := lb.Entries()
	if len(entries) != 1 {
		t.Fatalf("len = %d, want 1", len(entries))
	}
	if entries[0].Level != "info" {
		t.Errorf("level = %q, want info fallback", entries[0].Level)
	}
	if entries[0].Raw != "plain text line" {
		t.Errorf("raw = %q, want trimmed line", entries[0].Raw)
	}
}

func TestLogBuffer_Wraparound(t *testing.T) {
	t.Parallel()

	lb := NewLogBuffer(3)
	for i := 0; i < 5; i++ {
		lb.Write([]byte(fmt.Sprintf(`{"level":"info","message":"m%d"}`, i)))
	}

	entries := lb.Entries()
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	for i, want := range []string{"m2", "m3", "m4"} {
		if entries[i].Message != want {
			t.Errorf("entries[%d].Message = %q, want %q", i, entries[i].Message, want)
		}
	}
}

func TestLogBuffer_Recent(t *testing.T) {
	t.Parallel()

	lb := NewLogBuffer(10)
	for i := 0; i < 4; i++ {
		lb.Write([]byte(fmt.Sprintf(`{"level":"info","message":"m%d"}`, i)))
	}

	got := lb.Recent(2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Message != "m2" || got[1].Message != "m3" {
		t.Errorf("Recent(2) = %q, %q, want m2, m3", got[0].Message, got[1].Message)
	}

	if got := lb.Recent(100); len(got) != 4 {
		t.Errorf("Recent(100) len = %d, want all 4", len(got))
	}
}

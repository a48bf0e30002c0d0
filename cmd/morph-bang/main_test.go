package main

import (
	"strings"
	"testing"
	"time"

	"morph-bang/internal/morph"
)

func TestFit(t *testing.T) {
	tests := []struct {
		line  string
		width int
		want  string
	}{
		{"short", 0, "short"},
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a much longer line", 10, "a much ..."},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		if got := fit(tt.line, tt.width); got != tt.want {
			t.Errorf("fit(%q, %d) = %q, want %q", tt.line, tt.width, got, tt.want)
		}
	}
}

func TestFormatRecord(t *testing.T) {
	start := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	rec := morph.EventRecord{
		Path:        "/home/a/notes.md!!pdf",
		TargetExt:   "pdf",
		Destructive: true,
		Action:      morph.ActionFailed,
		Error:       "pandoc failed",
		StartedAt:   start,
		FinishedAt:  start.Add(1500 * time.Millisecond),
	}

	got := formatRecord(rec)
	for _, want := range []string{"failed", "1.5s", "/home/a/notes.md!!pdf", "!!pdf", "error: pandoc failed"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatRecord() = %q, missing %q", got, want)
		}
	}
}

// ABOUTME: Tests for shared utility functions used by CLI commands
// ABOUTME: Verifies truncate, formatTime, validation, and file reading helpers

package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{
			name:   "short string unchanged",
			input:  "hello",
			maxLen: 10,
			want:   "hello",
		},
		{
			name:   "exact length unchanged",
			input:  "hello",
			maxLen: 5,
			want:   "hello",
		},
		{
			name:   "long string truncated",
			input:  "hello world",
			maxLen: 8,
			want:   "hello...",
		},
		{
			name:   "very short maxLen",
			input:  "hello",
			maxLen: 2,
			want:   "he",
		},
		{
			name:   "empty string",
			input:  "",
			maxLen: 10,
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestFormatTime(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{
			name: "just now",
			t:    now.Add(-30 * time.Second),
			want: "just now",
		},
		{
			name: "minutes ago",
			t:    now.Add(-5 * time.Minute),
			want: "5m ago",
		},
		{
			name: "hours ago",
			t:    now.Add(-3 * time.Hour),
			want: "3h ago",
		},
		{
			name: "days ago",
			t:    now.Add(-2 * 24 * time.Hour),
			want: "2d ago",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatTime(tt.t)
			if got != tt.want {
				t.Errorf("formatTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatTime_OldDateUsesAbsoluteFormat(t *testing.T) {
	old := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	got := formatTime(old)
	if got != "2024-03-15" {
		t.Errorf("formatTime() = %q, want %q", got, "2024-03-15")
	}
}

func TestValidatePositiveInt(t *testing.T) {
	if err := validatePositiveInt(5, "limit"); err != nil {
		t.Errorf("validatePositiveInt(5) error = %v, want nil", err)
	}
	if err := validatePositiveInt(0, "limit"); err == nil {
		t.Error("validatePositiveInt(0) should return error")
	}
	if err := validatePositiveInt(-3, "limit"); err == nil {
		t.Error("validatePositiveInt(-3) should return error")
	}
}

func TestReadTranscript_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visit.txt")
	if err := os.WriteFile(path, []byte("Patient discussed refills."), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := readTranscript(path)
	if err != nil {
		t.Fatalf("readTranscript() error = %v", err)
	}
	if got != "Patient discussed refills." {
		t.Errorf("readTranscript() = %q", got)
	}
}

func TestReadTranscript_MissingFile(t *testing.T) {
	_, err := readTranscript(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Error("Expected error for missing transcript file")
	}
}

func TestReadExtractionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extraction.json")
	doc := `{
		"follow_up_tasks": [{"description": "Schedule recheck in 2 weeks", "priority": "high"}],
		"medication_instructions": []
	}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	extraction, err := readExtractionFile(path)
	if err != nil {
		t.Fatalf("readExtractionFile() error = %v", err)
	}
	if len(extraction.FollowUpTasks) != 1 {
		t.Fatalf("FollowUpTasks = %d, want 1", len(extraction.FollowUpTasks))
	}
	if extraction.FollowUpTasks[0].Description != "Schedule recheck in 2 weeks" {
		t.Errorf("Description = %q", extraction.FollowUpTasks[0].Description)
	}
}

func TestReadExtractionFile_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := readExtractionFile(path)
	if err == nil {
		t.Error("Expected error for invalid JSON")
	}
	if err != nil && !strings.Contains(err.Error(), "parsing extraction file") {
		t.Errorf("error = %v, want parse error", err)
	}
}

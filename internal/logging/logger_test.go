package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func readEntries(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var entries []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]any
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("parse log line %q: %v", sc.Text(), err)
		}
		entries = append(entries, m)
	}
	return entries
}

func TestNewLogger_WritesJSONToFile(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLogger(dir, LevelInfo)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	l.Info("stage completed", "stage", "voting", "items", 5)
	l.Debug("suppressed at info level")
	if err := l.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	entries := readEntries(t, filepath.Join(dir, "specsmith.log"))
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1 (debug suppressed)", len(entries))
	}
	if entries[0]["msg"] != "stage completed" || entries[0]["stage"] != "voting" {
		t.Errorf("entry = %v", entries[0])
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLogger(dir, LevelError)
	if err != nil {
		t.Fatal(err)
	}
	l.Debug("no")
	l.Info("no")
	l.Warn("no")
	l.Error("yes")
	l.Close()

	entries := readEntries(t, filepath.Join(dir, "specsmith.log"))
	if len(entries) != 1 || entries[0]["msg"] != "yes" {
		t.Errorf("entries = %v, want only the error", entries)
	}
}

func TestLogger_ChildAttributes(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLogger(dir, LevelDebug)
	if err != nil {
		t.Fatal(err)
	}

	child := l.WithSession("abc-123").WithStage("research").WithRound(2)
	child.Info("fan-out complete")
	l.Info("no inherited attrs")
	l.Close()

	entries := readEntries(t, filepath.Join(dir, "specsmith.log"))
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	first := entries[0]
	if first["session_id"] != "abc-123" || first["stage"] != "research" || first["round"] != float64(2) {
		t.Errorf("child entry = %v", first)
	}
	if _, ok := entries[1]["session_id"]; ok {
		t.Error("parent logger must not inherit the child's attributes")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"Warn", LevelWarn},
		{"ERROR", LevelError},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNopLogger(t *testing.T) {
	l := NopLogger()
	l.Info("goes nowhere")
	if err := l.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRotatingLoggerCreatesWeeklyFile(t *testing.T) {
	dir := t.TempDir()

	rl, err := NewRotatingLogger(dir, 1, 0)
	if err != nil {
		t.Fatalf("Failed to create rotating logger: %v", err)
	}
	defer rl.Close()

	expected := filepath.Join(dir, "interactions-"+weekKey(time.Now())+".log")
	if _, err := os.Stat(expected); err != nil {
		t.Fatalf("Expected log file %s: %v", expected, err)
	}

	if _, err := rl.Write([]byte("hello\n")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	content, _ := os.ReadFile(expected)
	if !strings.Contains(string(content), "hello") {
		t.Errorf("Expected content to be written, got %q", content)
	}
}

func TestRotatingLoggerSizeRotation(t *testing.T) {
	dir := t.TempDir()

	rl, err := NewRotatingLogger(dir, 1, 64)
	if err != nil {
		t.Fatalf("Failed to create rotating logger: %v", err)
	}
	defer rl.Close()

	line := []byte(strings.Repeat("x", 40) + "\n")
	for i := 0; i < 5; i++ {
		if _, err := rl.Write(line); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}

	week := weekKey(time.Now())
	numbered, _ := filepath.Glob(filepath.Join(dir, "interactions-"+week+"_??.log"))
	if len(numbered) < 2 {
		t.Errorf("Expected at least 2 overflow files, got %v", numbered)
	}

	for _, file := range append(numbered, filepath.Join(dir, "interactions-"+week+".log")) {
		info, err := os.Stat(file)
		if err != nil {
			t.Fatalf("Stat %s: %v", file, err)
		}
		if info.Size() > 64 {
			t.Errorf("File %s exceeds size limit: %d", file, info.Size())
		}
	}
}

func TestRotatingLoggerRemoveExpired(t *testing.T) {
	dir := t.TempDir()

	rl, err := NewRotatingLogger(dir, 1, 0)
	if err != nil {
		t.Fatalf("Failed to create rotating logger: %v", err)
	}
	defer rl.Close()

	old := filepath.Join(dir, "interactions-2020-W01.log")
	unrelated := filepath.Join(dir, "notes.txt")
	for _, path := range []string{old, unrelated} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		past := time.Now().Add(-30 * 24 * time.Hour)
		if err := os.Chtimes(path, past, past); err != nil {
			t.Fatalf("Chtimes: %v", err)
		}
	}

	removed, err := rl.removeExpired(time.Now())
	if err != nil {
		t.Fatalf("removeExpired failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 removed file, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("Expected old log file to be removed")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Error("Expected unrelated file to be kept")
	}
}

func TestRotatingLoggerWriteAfterClose(t *testing.T) {
	rl, err := NewRotatingLogger(t.TempDir(), 1, 0)
	if err != nil {
		t.Fatalf("Failed to create rotating logger: %v", err)
	}
	if err := rl.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := rl.Write([]byte("late")); err == nil {
		t.Error("Expected error writing to a closed logger")
	}
}

package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAcquireLock(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")

	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	defer lock.Release()

	content, err := os.ReadFile(filepath.Join(dir, LockFileName))
	if err != nil {
		t.Fatalf("Failed to read lock file: %v", err)
	}
	if !strings.HasPrefix(string(content), fmt.Sprintf("pid=%d\n", os.Getpid())) {
		t.Errorf("lock file should start with our pid, got %q", content)
	}
	if lock.Path() != filepath.Join(dir, LockFileName) {
		t.Errorf("unexpected lock path %q", lock.Path())
	}
}

func TestLockConflict(t *testing.T) {
	dir := t.TempDir()

	first, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("Failed to acquire first lock: %v", err)
	}
	defer first.Release()

	second, err := AcquireLock(dir)
	if err == nil {
		second.Release()
		t.Fatal("second acquisition should have failed")
	}

	var lockErr *LockError
	if !errors.As(err, &lockErr) {
		t.Fatalf("expected *LockError, got %T", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "Another LetterCraft instance") {
		t.Errorf("message should mention another instance: %s", msg)
	}
	if !strings.Contains(msg, fmt.Sprintf("PID %d (running)", os.Getpid())) {
		t.Errorf("message should name the holder: %s", msg)
	}
	if lockErr.Unwrap() == nil {
		t.Error("expected underlying cause")
	}

	// The losing attempt must not clobber the holder's pid.
	content, _ := os.ReadFile(filepath.Join(dir, LockFileName))
	if parsePID(string(content)) != os.Getpid() {
		t.Errorf("lock file content changed: %q", content)
	}
}

func TestReleaseAllowsReacquire(t *testing.T) {
	dir := t.TempDir()
	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("Failed to acquire lock: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Errorf("second Release should be a no-op, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, LockFileName)); !os.IsNotExist(err) {
		t.Error("lock file should be removed on release")
	}

	again, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("reacquire failed: %v", err)
	}
	again.Release()
}

func TestParsePID(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"pid=1234\nstarted=2026-01-01T00:00:00Z", 1234},
		{"started=x\npid=42", 42},
		{"pid=abc", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := parsePID(tt.content); got != tt.want {
			t.Errorf("parsePID(%q) = %d, want %d", tt.content, got, tt.want)
		}
	}
}

func TestDescribeHolder_Stale(t *testing.T) {
	path := filepath.Join(t.TempDir(), LockFileName)
	// PIDs this large are not allocated on Linux.
	if err := os.WriteFile(path, []byte("pid=99999999\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := describeHolder(path); !strings.Contains(got, "stale") {
		t.Errorf("expected stale holder, got %q", got)
	}
}

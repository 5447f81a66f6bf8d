package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcher_DebouncedRun(t *testing.T) {
	dir := t.TempDir()
	ran := make(chan struct{}, 16)

	w, err := New(dir, 50*time.Millisecond, func() { ran <- struct{}{} })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	// A burst of writes should collapse into one run.
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(filepath.Join(dir, "a.png"), []byte{byte(i)}, 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("callback never fired")
	}

	// After the debounce settles no further runs arrive.
	select {
	case <-ran:
		t.Fatal("burst produced more than one run")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_BadDir(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing"), time.Millisecond, func() {}); err == nil {
		t.Fatal("expected error for nonexistent directory")
	}
}

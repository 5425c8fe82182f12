package workers

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/thirdwheel/companion-backend/pkg/index"
)

type stubInvalidator struct {
	invalidated chan struct{}
}

func (s *stubInvalidator) Invalidate() {
	select {
	case s.invalidated <- struct{}{}:
	default:
	}
}

func TestIndexWatcherInvalidatesOnStoreRewrite(t *testing.T) {
	dir := t.TempDir()
	invalidator := &stubInvalidator{invalidated: make(chan struct{}, 1)}

	watcher, err := NewIndexWatcher(dir, invalidator)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- watcher.Start(ctx) }()

	// Give the watcher a moment to register before touching the dir.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, index.FileName), []byte("rebuilt"), 0o644); err != nil {
		t.Fatalf("writing store file: %v", err)
	}

	select {
	case <-invalidator.invalidated:
	case <-time.After(2 * time.Second):
		t.Fatal("engine was never invalidated after a store rewrite")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestIndexWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	invalidator := &stubInvalidator{invalidated: make(chan struct{}, 1)}

	watcher, err := NewIndexWatcher(dir, invalidator)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Start(ctx)

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "stray.log"), []byte("noise"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	select {
	case <-invalidator.invalidated:
		t.Fatal("unrelated file triggered invalidation")
	case <-time.After(300 * time.Millisecond):
	}
}

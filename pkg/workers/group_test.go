package workers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type stubWorker struct {
	name    string
	err     error
	started chan struct{}
}

func (s *stubWorker) Name() string { return s.name }

func (s *stubWorker) Start(ctx context.Context) error {
	if s.started != nil {
		close(s.started)
	}
	if s.err != nil {
		return s.err
	}
	<-ctx.Done()
	return nil
}

func TestGroupStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	group := Group{&stubWorker{name: "a"}, &stubWorker{name: "b"}}

	done := make(chan error, 1)
	go func() { done <- group.Start(ctx) }()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("group did not stop on cancellation")
	}
}

func TestGroupFailureCancelsPeers(t *testing.T) {
	peerStarted := make(chan struct{})
	group := Group{
		&stubWorker{name: "healthy", started: peerStarted},
		&stubWorker{name: "broken", err: errors.New("bind failed")},
	}

	done := make(chan error, 1)
	go func() { done <- group.Start(context.Background()) }()

	<-peerStarted

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected the worker failure to surface")
		}
		if !strings.Contains(err.Error(), "broken") || !strings.Contains(err.Error(), "bind failed") {
			t.Errorf("error does not name the failed worker: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("group did not stop after a worker failure")
	}
}

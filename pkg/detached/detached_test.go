package detached

import (
	"errors"
	"testing"
	"time"
)

func TestGoRunsTask(t *testing.T) {
	done := make(chan struct{})

	Go("test task", func() error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never ran")
	}
}

func TestGoSwallowsErrors(t *testing.T) {
	done := make(chan struct{})

	Go("failing task", func() error {
		defer close(done)
		return errors.New("boom")
	})

	<-done
}

func TestGoRecoversPanics(t *testing.T) {
	first := make(chan struct{})
	second := make(chan struct{})

	Go("panicking task", func() error {
		defer close(first)
		panic("boom")
	})
	<-first

	// The process must survive a panicking task and keep running new ones.
	Go("follow-up task", func() error {
		close(second)
		return nil
	})

	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("follow-up task never ran")
	}
}

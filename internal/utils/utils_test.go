package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitForReturnsAfterSleep(t *testing.T) {
	var slept time.Duration
	restore := StubSleep(func(d time.Duration) { slept = d })
	defer restore()

	if err := WaitFor(context.Background(), 3*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slept != 3*time.Second {
		t.Fatalf("expected sleep of 3s, got %s", slept)
	}
}

func TestWaitForHonoursCancellation(t *testing.T) {
	release := make(chan struct{})
	restore := StubSleep(func(time.Duration) { <-release })
	defer func() {
		close(release)
		restore()
	}()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WaitFor(ctx, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitForCancelledThenRestored(t *testing.T) {
	started := make(chan struct{})
	restore := StubSleep(func(time.Duration) {
		close(started)
		time.Sleep(10 * time.Millisecond)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// Restoring while the sleeping goroutine is still alive must not race.
	restore()
	<-started
	time.Sleep(20 * time.Millisecond)
}

func TestWaitForZeroDuration(t *testing.T) {
	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

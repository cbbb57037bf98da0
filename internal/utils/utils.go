package utils

import (
	"context"
	"time"
)

var sleep = time.Sleep

// WaitFor blocks for d or until ctx is done, whichever happens first.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	// The hook is read here so a goroutine left behind on cancellation never
	// touches the package variable.
	wait := sleep
	done := make(chan struct{})
	go func() {
		defer close(done)
		wait(d)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// StubSleep replaces the sleep used by WaitFor and returns a restore func.
// Intended for tests in other packages that poll through WaitFor.
func StubSleep(fn func(time.Duration)) func() {
	original := sleep
	sleep = fn
	return func() { sleep = original }
}

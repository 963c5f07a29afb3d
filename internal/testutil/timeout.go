package testutil

import (
	"context"
	"testing"
	"time"
)

const (
	// DefaultShortTimeout bounds a single dial/read/write exchange with a
	// loopback server.
	DefaultShortTimeout = 5 * time.Second

	// DefaultTestBuffer is the buffer time subtracted from test deadline
	// to allow for cleanup operations before the test times out.
	DefaultTestBuffer = 2 * time.Second
)

// ContextWithTestDeadline creates a context that respects the test's deadline.
// It subtracts a buffer from the test deadline to allow time for cleanup.
// If the test has no deadline, it falls back to the provided fallback duration.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    ctx, cancel := testutil.ContextWithTestDeadline(t, 5*time.Second)
//	    defer cancel()
//	    // ... test code using ctx
//	}
func ContextWithTestDeadline(t *testing.T, fallback time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()
	return ContextWithTestDeadlineBuffer(t, fallback, DefaultTestBuffer)
}

// ContextWithTestDeadlineBuffer creates a context that respects the test's deadline
// with a custom buffer.
//
// If the test has no deadline, it uses the fallback duration.
// If the calculated deadline (test deadline minus buffer) is later than the
// fallback, the fallback wins so a hung server fails fast.
func ContextWithTestDeadlineBuffer(t *testing.T, fallback, buffer time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()

	if deadline, ok := t.Deadline(); ok {
		adjusted := deadline.Add(-buffer)
		if remaining := time.Until(adjusted); remaining > 0 && remaining < fallback {
			t.Logf("Using test deadline: %v (buffer: %v)", remaining.Round(time.Millisecond), buffer)
			return context.WithDeadline(context.Background(), adjusted)
		}
	}

	return context.WithTimeout(context.Background(), fallback)
}

// ShortOperationContext creates a context for one request/response exchange.
func ShortOperationContext(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return ContextWithTestDeadline(t, DefaultShortTimeout)
}

package migrate

import (
	"context"
	"time"
)

// Sleeper pauses between destination mutations. Implementations must
// return early when the context ends.
type Sleeper interface {
	Sleep(executionContext context.Context, pauseDuration time.Duration) error
}

// ContextSleeper waits on a timer while honoring context cancellation.
type ContextSleeper struct{}

// NewContextSleeper constructs a ContextSleeper.
func NewContextSleeper() ContextSleeper {
	return ContextSleeper{}
}

// Sleep blocks for pauseDuration or until the context ends.
func (ContextSleeper) Sleep(executionContext context.Context, pauseDuration time.Duration) error {
	if pauseDuration <= 0 {
		return nil
	}

	pauseTimer := time.NewTimer(pauseDuration)
	defer pauseTimer.Stop()

	select {
	case <-executionContext.Done():
		return executionContext.Err()
	case <-pauseTimer.C:
		return nil
	}
}

package must

import (
	"context"
	"time"
)

// Wait sleeps linearly longer on each call, up to max.
type Wait struct {
	max        time.Duration
	step       time.Duration
	occurences int
}

func NewWait(step, max time.Duration) *Wait {
	return &Wait{
		max:  max,
		step: step,
	}
}

func (w *Wait) Reset() {
	w.occurences = 0
}

// Linearly waits step times the number of previous calls. It returns early
// with the context error if ctx is done.
func (w *Wait) Linearly(ctx context.Context) error {
	sleep := min(w.step*time.Duration(w.occurences), w.max)
	w.occurences++

	timer := time.NewTimer(sleep)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

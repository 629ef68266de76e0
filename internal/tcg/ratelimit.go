package tcg

import (
	"fmt"
	"sync"
	"time"

	apperrors "github.com/Oustad/kortly-pokemon-api-sub001/internal/errors"
)

// rateWindow enforces a sliding-window request budget over the
// trailing hour. Timestamps are pruned on every check; when the
// budget is exhausted the caller fails fast instead of blocking.
type rateWindow struct {
	mu         sync.Mutex
	limit      int
	window     time.Duration
	timestamps []time.Time
	now        func() time.Time
}

func newRateWindow(limit int, window time.Duration, now func() time.Time) *rateWindow {
	if now == nil {
		now = time.Now
	}
	return &rateWindow{
		limit:  limit,
		window: window,
		now:    now,
	}
}

// Allow records one request if the budget permits, or returns a typed
// rate-limit error without recording anything.
func (w *rateWindow) Allow() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune()
	if len(w.timestamps) >= w.limit {
		return apperrors.NewRateLimitError(
			fmt.Sprintf("rate limit exceeded: %d requests per %s", w.limit, w.window), nil)
	}
	w.timestamps = append(w.timestamps, w.now())
	return nil
}

// Count reports how many requests fall inside the current window.
func (w *rateWindow) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prune()
	return len(w.timestamps)
}

func (w *rateWindow) prune() {
	cutoff := w.now().Add(-w.window)
	kept := w.timestamps[:0]
	for _, ts := range w.timestamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	w.timestamps = kept
}

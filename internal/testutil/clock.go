package testutil

import (
	"sync"
	"time"
)

// NowAt returns a clock function fixed at the provided time.
func NowAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// Waits stands in for time.After. It records every requested duration and
// fires immediately until Limit waits have been requested; the wait that
// reaches Limit calls OnLimit and never fires.
type Waits struct {
	Limit   int
	OnLimit func()

	mu  sync.Mutex
	got []time.Duration
}

// After records d and returns a channel according to the limit.
func (w *Waits) After(d time.Duration) <-chan time.Time {
	w.mu.Lock()
	w.got = append(w.got, d)
	reached := w.Limit > 0 && len(w.got) >= w.Limit
	w.mu.Unlock()

	ch := make(chan time.Time, 1)
	if reached {
		if w.OnLimit != nil {
			w.OnLimit()
		}
		return ch
	}
	ch <- time.Time{}
	return ch
}

// Durations returns the waits requested so far.
func (w *Waits) Durations() []time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]time.Duration(nil), w.got...)
}

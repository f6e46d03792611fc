// Package schedule holds small timing helpers for the event loop.
package schedule

import "time"

// Debouncer coalesces bursts of triggers. Each Trigger hands out a new tag;
// when the scheduled delay elapses the caller asks Fire whether its tag is
// still the latest. Only the last trigger of a burst fires.
type Debouncer struct {
	delay time.Duration
	gen   uint64
}

// NewDebouncer returns a debouncer with the given delay. Non-positive
// delays fall back to 300ms.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	return &Debouncer{delay: delay}
}

// Delay is the quiet period after the last trigger.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Trigger supersedes any pending trigger and returns the new tag.
func (d *Debouncer) Trigger() uint64 {
	d.gen++
	return d.gen
}

// Fire reports whether tag belongs to the most recent trigger. A tag fires
// at most once.
func (d *Debouncer) Fire(tag uint64) bool {
	if tag == 0 || tag != d.gen {
		return false
	}
	d.gen++
	return true
}

// Cancel drops any pending trigger.
func (d *Debouncer) Cancel() { d.gen++ }

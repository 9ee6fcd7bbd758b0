package sched

import (
	"sync"
	"time"
)

type pending struct {
	timer *time.Timer
	fn    func()
}

// Debouncer delays execution per key until a quiet period has passed.
// Repeated triggers for the same key within the delay window collapse
// into a single invocation of the most recent function.
type Debouncer struct {
	delay   time.Duration
	mu      sync.Mutex
	pending map[string]*pending
}

// NewDebouncer creates a debouncer with the specified quiet period.
// A zero or negative delay makes Trigger run synchronously.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{
		delay:   delay,
		pending: make(map[string]*pending),
	}
}

// Trigger schedules fn to run after the quiet period for key,
// replacing any previously scheduled function for that key.
func (d *Debouncer) Trigger(key string, fn func()) {
	if d.delay <= 0 {
		fn()
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
	}

	p := &pending{fn: fn}
	p.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		cur, ok := d.pending[key]
		if ok && cur == p {
			delete(d.pending, key)
		}
		d.mu.Unlock()

		// A newer trigger superseded this one while the timer fired.
		if !ok || cur != p {
			return
		}
		p.fn()
	})
	d.pending[key] = p
}

// Cancel drops any pending execution for key.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
		delete(d.pending, key)
	}
}

// Flush immediately runs the pending function for key, if any.
func (d *Debouncer) Flush(key string) {
	d.mu.Lock()
	p, ok := d.pending[key]
	if ok {
		p.timer.Stop()
		delete(d.pending, key)
	}
	d.mu.Unlock()

	if ok {
		p.fn()
	}
}

// Stop cancels every pending execution.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for k, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, k)
	}
}

// PendingCount returns the number of keys awaiting execution.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

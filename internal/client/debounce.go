package client

import (
	"sync"
	"time"
)

// debouncer coalesces rapid calls per key into one trailing-edge invocation.
// Used for per-keystroke item text edits: the local state changes on every
// call, but only the last pending function runs when the interval elapses.
type debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	timers   map[string]*time.Timer
	pending  map[string]func()
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{
		interval: interval,
		timers:   make(map[string]*time.Timer),
		pending:  make(map[string]func()),
	}
}

// trigger schedules fn to run after the interval, replacing any function
// already pending for the key and restarting its timer.
func (d *debouncer) trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending[key] = fn
	if timer, ok := d.timers[key]; ok {
		timer.Reset(d.interval)
		return
	}
	d.timers[key] = time.AfterFunc(d.interval, func() {
		d.fire(key)
	})
}

func (d *debouncer) fire(key string) {
	d.mu.Lock()
	fn := d.pending[key]
	delete(d.pending, key)
	delete(d.timers, key)
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// flush runs every pending function immediately.
func (d *debouncer) flush() {
	d.mu.Lock()
	fns := make([]func(), 0, len(d.pending))
	for key, fn := range d.pending {
		if timer, ok := d.timers[key]; ok {
			timer.Stop()
		}
		fns = append(fns, fn)
		delete(d.pending, key)
		delete(d.timers, key)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// stop cancels all pending functions without running them.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, timer := range d.timers {
		timer.Stop()
		delete(d.timers, key)
		delete(d.pending, key)
	}
}

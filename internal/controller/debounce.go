package controller

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounceDelay is the quiet period of search input.
const DefaultDebounceDelay = 300 * time.Millisecond

// Debouncer hands out request generations per key. Only the most recently
// issued generation of a key is current; responses for older ones are dropped.
// A key is held only while its latest generation is in flight: Release drops
// it once that request is done.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	next   uint64
	latest map[string]uint64
}

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounceDelay
	}
	return &Debouncer{
		delay:  delay,
		latest: make(map[string]uint64),
	}
}

func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Begin issues a new generation for key, superseding every earlier one.
func (d *Debouncer) Begin(key string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.next++
	d.latest[key] = d.next
	return d.next
}

// Current reports whether gen is still the latest generation of key.
func (d *Debouncer) Current(key string, gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.latest[key] == gen
}

// Settle waits out the quiet period and reports whether gen survived it.
func (d *Debouncer) Settle(ctx context.Context, key string, gen uint64) bool {
	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		d.Release(key, gen)
		return false
	case <-timer.C:
	}
	return d.Current(key, gen)
}

// Release drops key if gen is still its latest generation. Older generations
// stay superseded after the key is gone.
func (d *Debouncer) Release(key string, gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.latest[key] == gen {
		delete(d.latest, key)
	}
}

// Pending returns the number of keys with a generation in flight.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.latest)
}

// Forget drops key. Outstanding generations of it are no longer current.
func (d *Debouncer) Forget(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.latest, key)
}

// Package clicks records click timestamps delivered by an input source.
package clicks

import (
	"sync"
	"time"
)

// Recorder collects epoch-millisecond click timestamps.
// Record may be called from an input callback goroutine while other
// goroutines read snapshots.
type Recorder struct {
	mu         sync.RWMutex
	timestamps []int64
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends a click at the given epoch milliseconds.
func (r *Recorder) Record(ms int64) {
	r.mu.Lock()
	r.timestamps = append(r.timestamps, ms)
	r.mu.Unlock()
}

// RecordTime appends a click at t.
func (r *Recorder) RecordTime(t time.Time) {
	r.Record(t.UnixMilli())
}

// Reset drops every recorded click.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.timestamps = r.timestamps[:0]
	r.mu.Unlock()
}

// Snapshot returns a copy of the recorded timestamps in arrival order.
func (r *Recorder) Snapshot() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int64, len(r.timestamps))
	copy(out, r.timestamps)
	return out
}

// Len returns the number of recorded clicks.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.timestamps)
}

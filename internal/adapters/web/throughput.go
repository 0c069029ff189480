package web

import (
	"sync"
	"time"
)

// Throughput computes a rolling annotation rate over a configurable window.
// Safe for concurrent use; handlers record from many goroutines.
type Throughput struct {
	mu      sync.Mutex
	window  time.Duration
	samples []throughputSample
	docs    int64
	bytes   int64
}

type throughputSample struct {
	ts    time.Time
	bytes int
}

// NewThroughput creates a tracker with the given rolling window duration.
func NewThroughput(window time.Duration) *Throughput {
	return &Throughput{window: window}
}

// Record adds one annotated document of n input bytes at the current time.
func (t *Throughput) Record(n int) {
	t.RecordAt(time.Now(), n)
}

// RecordAt adds a sample at a specific timestamp.
func (t *Throughput) RecordAt(ts time.Time, n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples = append(t.samples, throughputSample{ts: ts, bytes: n})
	t.docs++
	t.bytes += int64(n)
	t.evict(ts)
}

// BytesPerMinAt computes the input rate as of the given time. Fewer than
// two samples in the window give zero.
func (t *Throughput) BytesPerMinAt(now time.Time) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.evict(now)
	if len(t.samples) < 2 {
		return 0
	}
	span := now.Sub(t.samples[0].ts)
	if span <= 0 {
		return 0
	}
	sum := 0
	for _, s := range t.samples {
		sum += s.bytes
	}
	return float64(sum) / span.Minutes()
}

// Totals returns the lifetime document and byte counts.
func (t *Throughput) Totals() (docs, bytes int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.docs, t.bytes
}

// evict removes samples older than the window.
func (t *Throughput) evict(now time.Time) {
	cutoff := now.Add(-t.window)
	i := 0
	for i < len(t.samples) && t.samples[i].ts.Before(cutoff) {
		i++
	}
	if i > 0 {
		t.samples = t.samples[i:]
	}
}

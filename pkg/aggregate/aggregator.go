// Package aggregate accumulates per-credential byte totals within one
// sampling window. The tracer clears its kernel-side sum maps after every
// window dump, so each data line is a single window's delta and plain
// summation here cannot double-count across windows.
package aggregate

import "github.com/srodi/nfstop-bpf/pkg/types"

// Aggregator owns the running totals for the window currently accumulating.
// It is driven by the single event-consuming loop and needs no locking; Flush
// hands off an immutable snapshot that later Observe calls can never touch.
type Aggregator struct {
	groupView bool
	totals    types.WindowTotals
}

// New returns an empty aggregator. With groupView set, samples are keyed by
// gid instead of uid.
func New(groupView bool) *Aggregator {
	return &Aggregator{
		groupView: groupView,
		totals:    make(types.WindowTotals),
	}
}

// Observe adds a sample's bytes to the view-appropriate credential's running
// read or write total for the current window.
func (a *Aggregator) Observe(s types.Sample) {
	key := s.UID
	if a.groupView {
		key = s.GID
	}

	t := a.totals[key]
	switch s.Metric {
	case types.MetricRead:
		t.ReadBytes += s.Bytes
	case types.MetricWrite:
		t.WriteBytes += s.Bytes
	}
	a.totals[key] = t
}

// Flush returns the completed window's totals and resets internal state so the
// next window starts empty.
func (a *Aggregator) Flush() types.WindowTotals {
	snapshot := a.totals
	a.totals = make(types.WindowTotals)
	return snapshot
}

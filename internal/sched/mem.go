package sched

import (
	"log/slog"
	"sync/atomic"
)

// MemTracker keeps a running total of bytes held by retained document
// text and warns once each time the total crosses the soft threshold.
// It never blocks work; exceeding the threshold is advisory.
type MemTracker struct {
	soft   int64
	total  atomic.Int64
	warned atomic.Bool
	log    *slog.Logger
}

// NewMemTracker creates a tracker with the given soft threshold in
// bytes. A threshold of zero or less disables warnings.
func NewMemTracker(soft int64, log *slog.Logger) *MemTracker {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &MemTracker{soft: soft, log: log}
}

// Add records n more bytes held (n may be negative to release).
func (m *MemTracker) Add(n int64) {
	total := m.total.Add(n)
	if m.soft <= 0 {
		return
	}
	if total > m.soft {
		if m.warned.CompareAndSwap(false, true) {
			m.log.Warn("retained document memory above soft limit",
				"total_bytes", total, "soft_limit_bytes", m.soft)
		}
	} else {
		m.warned.Store(false)
	}
}

// Total returns the current running total in bytes.
func (m *MemTracker) Total() int64 {
	return m.total.Load()
}

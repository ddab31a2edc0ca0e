// Package repository defines the snapshot history store interface and errors.
package repository

import "time"

// Option applies a configuration option to the HistoryStore.
type Option func(*HistoryStore)

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *HistoryStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithMaxSnapshots caps the history kept per account. The oldest snapshots
// are dropped first. Zero or negative keeps everything.
func WithMaxSnapshots(n int) Option {
	return func(s *HistoryStore) {
		if n > 0 {
			s.maxSnapshots = n
		}
	}
}

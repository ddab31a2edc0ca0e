package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/okian/xptrack/internal/domain/model"
	"github.com/okian/xptrack/pkg/metrics"
)

// Store limits.
const (
	maxAccountLength             = 64
	defaultMetricsUpdateInterval = 5 * time.Second
)

// HistoryStore is an in-memory Store. Each account keeps a slice of
// snapshots sorted by date; lookups use binary search.
type HistoryStore struct {
	mu        sync.RWMutex
	byAccount map[string][]model.RawSnapshot
	total     int

	maxSnapshots          int
	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewHistoryStore constructs a history store with configuration options.
// The background metrics updater stops when ctx is done or Close is called.
func NewHistoryStore(ctx context.Context, opts ...Option) *HistoryStore {
	s := &HistoryStore{
		byAccount:             make(map[string][]model.RawSnapshot),
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stopChan:              make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.updateMetrics()
	s.startMetricsUpdater(ctx)

	return s
}

// NormalizeAccount trims and lower-cases an account name and validates it.
// Account names are case-insensitive.
func NormalizeAccount(account string) (string, error) {
	a := strings.ToLower(strings.TrimSpace(account))
	switch {
	case a == "":
		return "", fmt.Errorf("%w: empty", ErrInvalidAccount)
	case len(a) > maxAccountLength:
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidAccount, maxAccountLength)
	case strings.ContainsAny(a, "/?#"):
		return "", fmt.Errorf("%w: %q contains a reserved character", ErrInvalidAccount, account)
	}
	return a, nil
}

// Append implements Store.Append.
func (s *HistoryStore) Append(ctx context.Context, account string, snap model.RawSnapshot) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("append: %w", err)
	}
	key, err := NormalizeAccount(account)
	if err != nil {
		metrics.RecordErrorByComponent("repository", "invalid_account")
		return false, err
	}
	snap = snap.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.byAccount[key]
	i := sort.Search(len(history), func(i int) bool { return !history[i].Date.Before(snap.Date) })
	if i < len(history) && history[i].Date.Equal(snap.Date) {
		history[i] = snap
		return true, nil
	}

	history = append(history, model.RawSnapshot{})
	copy(history[i+1:], history[i:])
	history[i] = snap
	s.total++

	if s.maxSnapshots > 0 && len(history) > s.maxSnapshots {
		evicted := len(history) - s.maxSnapshots
		history = append([]model.RawSnapshot(nil), history[evicted:]...)
		s.total -= evicted
		metrics.RecordSnapshotsEvicted(evicted)
	}
	s.byAccount[key] = history
	return false, nil
}

// Window implements Store.Window.
func (s *HistoryStore) Window(ctx context.Context, account string, from, to time.Time) ([]model.RawSnapshot, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("window: %w", err)
	}
	key, err := NormalizeAccount(account)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.byAccount[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	lo := 0
	if !from.IsZero() {
		lo = sort.Search(len(history), func(i int) bool { return !history[i].Date.Before(from) })
	}
	hi := len(history)
	if !to.IsZero() {
		hi = sort.Search(len(history), func(i int) bool { return history[i].Date.After(to) })
	}
	if hi < lo {
		hi = lo
	}

	out := make([]model.RawSnapshot, 0, hi-lo)
	for _, snap := range history[lo:hi] {
		out = append(out, snap.Clone())
	}
	return out, nil
}

// Accounts implements Store.Accounts.
func (s *HistoryStore) Accounts(_ context.Context) []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.byAccount))
	for a := range s.byAccount {
		out = append(out, a)
	}
	s.mu.RUnlock()

	sort.Strings(out)
	return out
}

// Count implements Store.Count.
func (s *HistoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byAccount)
}

// Len implements Store.Len.
func (s *HistoryStore) Len(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Close stops the background metrics updater.
func (s *HistoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// startMetricsUpdater starts a background goroutine that updates repository metrics.
func (s *HistoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

// updateMetrics publishes account and snapshot totals.
func (s *HistoryStore) updateMetrics() {
	s.mu.RLock()
	accounts, total := len(s.byAccount), s.total
	s.mu.RUnlock()

	metrics.UpdateAccountsTotal(accounts)
	metrics.UpdateSnapshotsTotal(total)
}

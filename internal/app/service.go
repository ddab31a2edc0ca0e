// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	repository "github.com/okian/xptrack/internal/adapters/repository"
	"github.com/okian/xptrack/internal/domain/aggregate"
	"github.com/okian/xptrack/internal/domain/model"
	"github.com/okian/xptrack/internal/domain/parser"
	"github.com/okian/xptrack/internal/domain/period"
	"github.com/okian/xptrack/internal/domain/types"
	"github.com/okian/xptrack/pkg/logger"
	"github.com/okian/xptrack/pkg/metrics"
)

// ErrNotStarted is returned by operations invoked before Start.
var ErrNotStarted = errors.New("service not started")

// Service implements the API dependencies for progress tracking.
type Service struct {
	mu sync.RWMutex

	// Core components
	history   repository.Store
	ownsStore bool

	// Configuration
	maxSnapshots         int
	storeMetricsInterval time.Duration
	defaultPeriod        period.Preset
	maxGainsLimit        int
	now                  func() time.Time

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects a history store. The service does not close injected stores.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.history = store
		}
	}
}

// WithMaxSnapshots caps per-account history in the store created by Start.
func WithMaxSnapshots(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSnapshots = n
		}
	}
}

// WithStoreMetricsInterval sets how often the store publishes its gauges.
func WithStoreMetricsInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.storeMetricsInterval = interval
		}
	}
}

// WithDefaultPeriod sets the preset used when a query names no period.
func WithDefaultPeriod(p period.Preset) Option {
	return func(s *Service) {
		if p != "" {
			s.defaultPeriod = p
		}
	}
}

// WithMaxGainsLimit caps the number of rows Gains returns.
func WithMaxGainsLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxGainsLimit = n
		}
	}
}

// WithClock overrides the time source used to resolve periods.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		storeMetricsInterval: 5 * time.Second,
		defaultPeriod:        period.Week,
		maxGainsLimit:        100,
		now:                  time.Now,
		logger:               nil, // Will be replaced when service starts
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting progress service...")

	if s.history == nil {
		s.history = repository.NewHistoryStore(ctx,
			repository.WithMaxSnapshots(s.maxSnapshots),
			repository.WithMetricsUpdateInterval(s.storeMetricsInterval),
		)
		s.ownsStore = true
		s.logger.Info(ctx, "using in-memory history store")
	}

	s.started = true
	s.logger.Info(ctx, "progress service started",
		logger.String("defaultPeriod", string(s.defaultPeriod)),
		logger.Int("maxSnapshots", s.maxSnapshots),
		logger.Int("maxGainsLimit", s.maxGainsLimit),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping progress service...")

	if s.ownsStore {
		if closer, ok := s.history.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		s.history = nil
		s.ownsStore = false
	}

	s.started = false
	s.logger.Info(context.Background(), "progress service stopped")
}

func (s *Service) store() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.history, nil
}

// Ingest stores one snapshot for account. A snapshot with an already stored
// date replaces the previous one.
func (s *Service) Ingest(ctx context.Context, account string, raw model.RawSnapshot) (bool, error) {
	const op = "service.Ingest"

	store, err := s.store()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if raw.Date.IsZero() {
		return false, fmt.Errorf("%s: %w", op, model.ErrMissingDate)
	}

	if unknown := parser.Unrecognized(raw); len(unknown) > 0 {
		metrics.RecordUnknownFields(len(unknown))
		s.logger.Debug(ctx, "ignoring unrecognized fields",
			logger.String("account", account),
			logger.Any("fields", unknown),
		)
	}

	replaced, err := store.Append(ctx, account, raw)
	if err != nil {
		metrics.RecordErrorByComponent("service", "ingest")
		return false, fmt.Errorf("%s: %w", op, err)
	}

	metrics.RecordSnapshotIngested()
	if replaced {
		metrics.RecordSnapshotReplaced()
	}
	s.logger.Debug(ctx, "snapshot stored",
		logger.String("account", account),
		logger.Time("date", raw.Date),
		logger.Bool("replaced", replaced),
	)
	return replaced, nil
}

// ResolvePeriod turns a preset name into a window ending now. An empty name
// selects the configured default preset.
func (s *Service) ResolvePeriod(name string) (period.Window, error) {
	p := s.defaultPeriod
	if name != "" {
		var err error
		if p, err = period.Parse(name); err != nil {
			return period.Window{}, err
		}
	}
	return p.Resolve(s.now()), nil
}

// Progress aggregates the account's history inside w.
func (s *Service) Progress(ctx context.Context, account string, w period.Window) (types.Result, error) {
	const op = "service.Progress"

	store, err := s.store()
	if err != nil {
		return types.Result{}, fmt.Errorf("%s: %w", op, err)
	}

	start := time.Now()
	snaps, err := store.Window(ctx, account, w.From, w.To)
	if err != nil {
		metrics.RecordAggregation(metrics.OutcomeError, msSince(start), 0)
		return types.Result{}, fmt.Errorf("%s: %w", op, err)
	}

	result := aggregate.Aggregate(model.NewXpRange(w.Name, snaps))

	outcome := metrics.OutcomeOK
	if len(snaps) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	metrics.RecordAggregation(outcome, msSince(start), len(snaps))

	s.logger.Debug(ctx, "progress aggregated",
		logger.String("account", account),
		logger.String("range", w.Name),
		logger.Int("snapshots", len(snaps)),
	)
	return result, nil
}

// Gains ranks accounts by overall xp gained inside w. Ties are broken by
// account name. Accounts with no snapshot in w are left out.
func (s *Service) Gains(ctx context.Context, w period.Window, limit int) ([]types.GainEntry, error) {
	const op = "service.Gains"

	store, err := s.store()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if limit <= 0 || limit > s.maxGainsLimit {
		limit = s.maxGainsLimit
	}

	start := time.Now()
	defer func() { metrics.RecordGainsLatency(msSince(start)) }()

	accounts := store.Accounts(ctx)
	entries := make([]types.GainEntry, 0, len(accounts))
	for _, account := range accounts {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		snaps, err := store.Window(ctx, account, w.From, w.To)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if len(snaps) == 0 {
			continue
		}

		overall, _ := aggregate.Aggregate(model.NewXpRange(w.Name, snaps)).Overall()
		entries = append(entries, types.GainEntry{
			Account:   account,
			XpDelta:   overall.XpDelta,
			RankDelta: overall.RankDelta,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].XpDelta != entries[j].XpDelta {
			return entries[i].XpDelta > entries[j].XpDelta
		}
		return entries[i].Account < entries[j].Account
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"defaultPeriod": string(s.defaultPeriod),
		"maxSnapshots":  s.maxSnapshots,
		"maxGainsLimit": s.maxGainsLimit,
	}

	if s.started {
		accounts := s.history.Count(ctx)
		snapshots := s.history.Len(ctx)

		stats["totalAccounts"] = accounts
		stats["totalSnapshots"] = snapshots

		metrics.UpdateAccountsTotal(accounts)
		metrics.UpdateSnapshotsTotal(snapshots)
	}

	return stats
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}

// Package service wires the comparison pipeline together: submissions are
// deduplicated, queued, and folded into the rating engine by the worker
// pool, while full recomputations periodically rebuild the snapshot from
// the complete history.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	comparisonqueue "github.com/bodi/pairrank/internal/adapters/mq/queue"
	workerpool "github.com/bodi/pairrank/internal/adapters/mq/worker"
	"github.com/bodi/pairrank/internal/adapters/repository"
	"github.com/bodi/pairrank/internal/domain/dedupe"
	"github.com/bodi/pairrank/internal/domain/model"
	"github.com/bodi/pairrank/internal/domain/ranking"
	"github.com/bodi/pairrank/internal/domain/rating"
	"github.com/bodi/pairrank/pkg/logger"
	"github.com/bodi/pairrank/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize          = 100_000
	defaultDedupeSize         = 500_000
	defaultShardCount         = 8
	defaultMaxLimit           = 100
	defaultRecomputeThreshold = 50
	defaultWorkerMultiplier   = 2
)

// BoardRow is a leaderboard entry enriched with the ranking projections.
type BoardRow struct {
	Rank       int
	ItemID     string
	Score      float64
	Percentile float64
	Confidence float64
	Tier       string
	Trophies   float64
}

// Service owns the comparison pipeline and the rating state.
type Service struct {
	mu sync.RWMutex

	// Core components, built at Start.
	store     repository.Store
	deduper   dedupe.Deduper
	queue     *comparisonqueue.InMemoryQueue
	engine    *rating.Engine
	projector *ranking.Projector
	pool      *workerpool.Pool
	scheduler *cron.Cron

	// Registered population and the full comparison history; the history
	// is the input to every full recompute.
	histMu  sync.Mutex
	items   []string
	itemSet map[string]struct{}
	history []model.Comparison

	// recomputeMu serializes full recomputations: at most one in flight.
	recomputeMu sync.Mutex
	pending     atomic.Int64 // incremental updates since the last full recompute

	// Configuration.
	workerCount        int
	queueSize          int
	dedupeSize         int
	shardCount         int
	maxLimit           int
	recomputeThreshold int
	recomputeSchedule  string
	engineOpts         []rating.Option
	projectorOpts      []ranking.Option

	started bool
	runCtx  context.Context
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:        runtime.NumCPU() * defaultWorkerMultiplier,
		queueSize:          defaultQueueSize,
		dedupeSize:         defaultDedupeSize,
		shardCount:         defaultShardCount,
		maxLimit:           defaultMaxLimit,
		recomputeThreshold: defaultRecomputeThreshold,
		itemSet:            make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the pipeline components and begins processing.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.runCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))

	s.store = repository.NewMemStore(
		repository.WithShardCount(s.shardCount),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = comparisonqueue.NewInMemoryQueue(
		comparisonqueue.WithCapacity(s.queueSize),
	)
	s.engine = rating.New(s.engineOpts...)
	s.projector = ranking.New(s.projectorOpts...)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, &engineAdapter{service: s}, s.store)
	s.pool.Start(s.runCtx)

	if s.recomputeSchedule != "" {
		s.scheduler = cron.New()
		if _, err := s.scheduler.AddFunc(s.recomputeSchedule, s.scheduledRecompute); err != nil {
			s.cancel()
			return fmt.Errorf("invalid recompute schedule %q: %w", s.recomputeSchedule, err)
		}
		s.scheduler.Start()
	}

	metrics.UpdateQueueCapacity(s.queueSize)
	metrics.UpdateWorkerCount(s.workerCount)

	s.started = true
	s.logger.Info(ctx, "rating service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("recomputeSchedule", s.recomputeSchedule),
	)
	return nil
}

// Stop drains the queue and shuts the pipeline down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping rating service")

	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown incomplete", logger.Error(err))
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "rating service stopped")
}

// RegisterItems adds items to the rated population. New items start at the
// neutral score; known ids are left untouched.
func (s *Service) RegisterItems(ctx context.Context, itemIDs ...string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}

	for _, id := range itemIDs {
		if id == "" {
			return fmt.Errorf("%w: empty item id", ErrUnknownItem)
		}
	}

	s.histMu.Lock()
	fresh := make([]string, 0, len(itemIDs))
	for _, id := range itemIDs {
		if _, ok := s.itemSet[id]; ok {
			continue
		}
		s.itemSet[id] = struct{}{}
		s.items = append(s.items, id)
		fresh = append(fresh, id)
	}
	s.histMu.Unlock()

	if len(fresh) == 0 {
		return nil
	}

	s.engine.Register(fresh...)
	neutral := make([]model.Rating, 0, len(fresh))
	for _, id := range fresh {
		r, err := s.engine.Rating(id)
		if err != nil {
			return fmt.Errorf("register %q: %w", id, err)
		}
		neutral = append(neutral, r)
	}
	return s.store.Upsert(ctx, neutral...)
}

// SubmitComparison validates and enqueues one comparison outcome for
// asynchronous processing. A missing id is assigned; the id is returned so
// the caller can correlate or retry. Resubmitting an accepted id returns
// ErrDuplicateComparison.
func (s *Service) SubmitComparison(ctx context.Context, c model.Comparison) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return "", ErrNotStarted
	}

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
	if err := c.Validate(); err != nil {
		metrics.RecordComparisonRejected()
		return c.ID, err
	}

	s.histMu.Lock()
	_, winnerKnown := s.itemSet[c.WinnerID]
	_, loserKnown := s.itemSet[c.LoserID]
	s.histMu.Unlock()
	if !winnerKnown || !loserKnown {
		metrics.RecordComparisonRejected()
		missing := c.WinnerID
		if winnerKnown {
			missing = c.LoserID
		}
		return c.ID, fmt.Errorf("%w: %q", ErrUnknownItem, missing)
	}

	if s.deduper.SeenAndRecord(ctx, c.ID) {
		metrics.RecordComparisonDuplicate()
		s.logger.Debug(ctx, "duplicate comparison dropped",
			logger.String("comparisonID", c.ID),
		)
		return c.ID, fmt.Errorf("%w: %q", ErrDuplicateComparison, c.ID)
	}

	if !s.queue.Enqueue(ctx, c) {
		// Let the caller retry with the same id later.
		s.deduper.Unrecord(ctx, c.ID)
		metrics.RecordComparisonRejected()
		return c.ID, fmt.Errorf("%w: comparison %q", ErrQueueFull, c.ID)
	}

	metrics.RecordComparisonAccepted()
	metrics.UpdateQueueSize(s.queue.Len(ctx))
	return c.ID, nil
}

// Rating returns the stored rating for an item.
func (s *Service) Rating(ctx context.Context, itemID string) (model.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.Rating{}, ErrNotStarted
	}
	return s.store.Get(ctx, itemID)
}

// Rank returns an item's rating together with its leaderboard position.
func (s *Service) Rank(ctx context.Context, itemID string) (repository.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return repository.Entry{}, ErrNotStarted
	}
	return s.store.Rank(ctx, itemID)
}

// TopN returns the best n compared entries. Requests beyond the configured
// limit are capped, not rejected.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	if n > s.maxLimit {
		n = s.maxLimit
	}
	return s.store.TopN(ctx, n)
}

// Leaderboard returns the top n entries with percentile, tier, and trophy
// projections attached.
func (s *Service) Leaderboard(ctx context.Context, n int) ([]BoardRow, error) {
	entries, err := s.TopN(ctx, n)
	if err != nil {
		return nil, err
	}

	percentiles := s.projector.Percentiles(s.store.Snapshot(ctx))

	rows := make([]BoardRow, 0, len(entries))
	for _, e := range entries {
		row := BoardRow{
			Rank:       e.Rank,
			ItemID:     e.Rating.ItemID,
			Score:      e.Rating.Score,
			Confidence: e.Rating.Confidence,
		}
		if pct, ok := percentiles[e.Rating.ItemID]; ok {
			row.Percentile = pct
			row.Trophies = s.projector.TrophyTarget(pct)
		}
		if tier, err := s.projector.AssignTier(e.Rating.Score); err == nil {
			row.Tier = tier
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Stats returns pipeline statistics for monitoring.
func (s *Service) Stats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}
	if !s.started {
		return stats
	}

	s.histMu.Lock()
	historyLen := len(s.history)
	itemCount := len(s.items)
	s.histMu.Unlock()

	queueLen := s.queue.Len(ctx)
	stats["queueLength"] = queueLen
	stats["itemsRegistered"] = itemCount
	stats["itemsStored"] = s.store.Count(ctx)
	stats["comparisonsRecorded"] = historyLen
	stats["updatesSinceRecompute"] = int(s.pending.Load())
	stats["dedupeEntries"] = s.deduper.Size()

	metrics.UpdateQueueSize(queueLen)
	metrics.UpdateItemsTracked(s.store.Count(ctx))
	return stats
}

// engineAdapter lets the worker pool drive the engine and feeds the
// incremental-update counter that triggers threshold recomputes.
type engineAdapter struct {
	service *Service
}

func (a *engineAdapter) ApplyComparison(ctx context.Context, c model.Comparison) ([]model.Rating, error) {
	updated, err := a.service.engine.ApplyComparison(ctx, c.WinnerID, c.LoserID)
	if err != nil {
		return nil, err
	}

	// The engine does not track projected percentiles. Carry the stored
	// ones forward so a live update never resets a compared item to the
	// never-compared placeholder.
	for i := range updated {
		if prev, err := a.service.store.Get(ctx, updated[i].ItemID); err == nil {
			updated[i].Percentile = prev.Percentile
		}
	}

	// History grows only after the comparison has been applied, so a
	// recompute snapshot can never count work still sitting in the
	// queue and then see the worker apply it a second time.
	a.service.histMu.Lock()
	a.service.history = append(a.service.history, c)
	a.service.histMu.Unlock()

	a.service.noteIncrementalUpdate()
	return updated, nil
}

// Package engine feeds revenue and clock observations to the pending
// conditional splits and persists every phase change.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/robfig/cron/v3"

	"github.com/mmynk/royaltysplit/internal/models"
	"github.com/mmynk/royaltysplit/internal/royalty"
)

// Store is the part of storage.Store the tracker needs.
type Store interface {
	ListPendingConditionals(ctx context.Context) ([]*models.ConditionalRecord, error)
	ResolveConditional(ctx context.Context, id string, resolvedAt time.Time) (bool, error)
}

// Options configures a Tracker.
type Options struct {
	// Workers bounds concurrent song evaluations in ObserveRevenueBatch.
	Workers int
	// QueueSize bounds tasks waiting for a worker.
	QueueSize int
	// ClockSpec is the cron schedule (with seconds) of clock ticks.
	ClockSpec string
	// Registerer receives the tracker metrics; nil skips registration.
	Registerer prometheus.Registerer
	Logger     *slog.Logger
}

// DefaultClockSpec ticks once a minute.
const DefaultClockSpec = "0 * * * * *"

// Resolution describes one phase change.
type Resolution struct {
	ConditionalID string
	SongID        string
	ConditionType royalty.ConditionType
	ResolvedAt    time.Time
}

// RevenueReport is the cumulative revenue of one song.
type RevenueReport struct {
	SongID string
	Total  royalty.Cents
}

type entry struct {
	songID string
	split  *royalty.ConditionalSplit
	// unsaved is set when the split resolved in memory but the phase change
	// has not reached the store yet.
	unsaved atomic.Bool
}

// Tracker holds every pending conditional split in memory, keyed by id. A
// split leaves the tracker once its resolution is persisted.
type Tracker struct {
	store     Store
	live      *xsync.Map[string, *entry]
	pool      pond.Pool
	clockSpec string
	metrics   *Metrics
	logger    *slog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewTracker returns an empty tracker. Call Load to fill it from storage.
func NewTracker(store Store, opts Options) *Tracker {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.ClockSpec == "" {
		opts.ClockSpec = DefaultClockSpec
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Tracker{
		store:     store,
		live:      xsync.NewMap[string, *entry](),
		pool:      pond.NewPool(opts.Workers, pond.WithQueueSize(opts.QueueSize)),
		clockSpec: opts.ClockSpec,
		metrics:   NewMetrics(opts.Registerer),
		logger:    opts.Logger,
	}
}

// Load registers every pending conditional split from storage. Records that
// fail validation are logged and skipped.
func (t *Tracker) Load(ctx context.Context) (int, error) {
	recs, err := t.store.ListPendingConditionals(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load pending conditionals: %w", err)
	}
	n := 0
	for _, rec := range recs {
		cs, err := rec.Restore()
		if err != nil {
			t.logger.Warn("skipping invalid conditional split", "conditional_id", rec.ID, "song_id", rec.SongID, "error", err)
			continue
		}
		t.Track(rec.SongID, cs)
		n++
	}
	t.logger.Info("loaded pending conditional splits", "count", n, "skipped", len(recs)-n)
	return n, nil
}

// Track starts watching cs. Resolved splits are ignored.
func (t *Tracker) Track(songID string, cs *royalty.ConditionalSplit) {
	if cs.Phase() != royalty.PhasePre {
		return
	}
	t.live.Store(cs.ID(), &entry{songID: songID, split: cs})
	t.metrics.live.Set(float64(t.live.Size()))
}

// Forget stops watching every conditional split of songID.
func (t *Tracker) Forget(songID string) {
	t.live.Range(func(id string, e *entry) bool {
		if e.songID == songID {
			t.live.Delete(id)
		}
		return true
	})
	t.metrics.live.Set(float64(t.live.Size()))
}

// Live is the number of conditional splits being watched.
func (t *Tracker) Live() int {
	return t.live.Size()
}

// Lookup returns the watched split with id, if any.
func (t *Tracker) Lookup(id string) (*royalty.ConditionalSplit, bool) {
	e, ok := t.live.Load(id)
	if !ok {
		return nil, false
	}
	return e.split, true
}

func (t *Tracker) pending(songID string, ct royalty.ConditionType) []*entry {
	var out []*entry
	t.live.Range(func(_ string, e *entry) bool {
		if (songID == "" || e.songID == songID) && e.split.ConditionType() == ct {
			out = append(out, e)
		}
		return true
	})
	return out
}

// ObserveRevenue evaluates the cumulative revenue of a song against its
// pending recoupment splits and returns the ones that resolved.
func (t *Tracker) ObserveRevenue(ctx context.Context, songID string, total royalty.Cents) ([]Resolution, error) {
	if total < 0 {
		return nil, &royalty.ThresholdError{Input: total.String(), Reason: "revenue is negative"}
	}
	var (
		out  []Resolution
		errs []error
	)
	for _, e := range t.pending(songID, royalty.ConditionRecoupment) {
		res, err := t.evaluate(ctx, e, royalty.Revenue{Total: total})
		if err != nil {
			errs = append(errs, err)
		}
		if res != nil {
			out = append(out, *res)
		}
	}
	return out, errors.Join(errs...)
}

// ObserveRevenueBatch evaluates many reports on the worker pool, one task
// per song. When a song is reported more than once the highest total wins.
func (t *Tracker) ObserveRevenueBatch(ctx context.Context, reports []RevenueReport) ([]Resolution, error) {
	totals := make(map[string]royalty.Cents, len(reports))
	for _, r := range reports {
		if r.Total < 0 {
			return nil, &royalty.ThresholdError{Input: r.Total.String(), Reason: fmt.Sprintf("revenue of song %s is negative", r.SongID)}
		}
		if cur, ok := totals[r.SongID]; !ok || r.Total > cur {
			totals[r.SongID] = r.Total
		}
	}

	var (
		mu   sync.Mutex
		out  []Resolution
		errs []error
	)
	group := t.pool.NewGroupContext(ctx)
	groupCtx := group.Context()
	for songID, total := range totals {
		group.Submit(func() {
			if err := groupCtx.Err(); err != nil {
				return
			}
			res, err := t.ObserveRevenue(groupCtx, songID, total)
			mu.Lock()
			defer mu.Unlock()
			out = append(out, res...)
			if err != nil {
				errs = append(errs, err)
			}
		})
	}
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		errs = append(errs, err)
	}
	if err := ctx.Err(); err != nil {
		errs = append(errs, err)
	}

	mu.Lock()
	defer mu.Unlock()
	return out, errors.Join(errs...)
}

// Tick evaluates every pending time split against now. It also retries
// phase changes that previously failed to persist.
func (t *Tracker) Tick(ctx context.Context, now time.Time) ([]Resolution, error) {
	var (
		out  []Resolution
		errs []error
	)
	t.live.Range(func(_ string, e *entry) bool {
		if !e.unsaved.Load() {
			return true
		}
		if res, err := t.persist(ctx, e); err != nil {
			errs = append(errs, err)
		} else if res != nil {
			out = append(out, *res)
		}
		return true
	})
	for _, e := range t.pending("", royalty.ConditionTime) {
		if e.unsaved.Load() {
			continue
		}
		res, err := t.evaluate(ctx, e, royalty.Clock{Now: now})
		if err != nil {
			errs = append(errs, err)
		}
		if res != nil {
			out = append(out, *res)
		}
	}
	return out, errors.Join(errs...)
}

func (t *Tracker) evaluate(ctx context.Context, e *entry, obs royalty.Observation) (*Resolution, error) {
	ct := e.split.ConditionType()
	t.metrics.evaluations.WithLabelValues(string(ct)).Inc()

	resolved, err := e.split.Evaluate(obs)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate conditional split %s: %w", e.split.ID(), err)
	}
	if !resolved {
		return nil, nil
	}
	t.metrics.transitions.WithLabelValues(string(ct)).Inc()
	e.unsaved.Store(true)
	return t.persist(ctx, e)
}

// persist writes the resolution of e and drops it from the live map. Only
// one caller claims a given unsaved entry.
func (t *Tracker) persist(ctx context.Context, e *entry) (*Resolution, error) {
	if !e.unsaved.CompareAndSwap(true, false) {
		return nil, nil
	}
	id := e.split.ID()
	ct := e.split.ConditionType()
	at := e.split.ResolvedAt()

	if _, err := t.store.ResolveConditional(ctx, id, at); err != nil {
		e.unsaved.Store(true)
		t.metrics.persistErrs.WithLabelValues(string(ct)).Inc()
		t.logger.Warn("failed to persist conditional split resolution",
			"conditional_id", id, "song_id", e.songID, "error", err)
		return nil, fmt.Errorf("failed to persist conditional split %s: %w", id, err)
	}
	t.live.Delete(id)
	t.metrics.live.Set(float64(t.live.Size()))

	t.logger.Info("conditional split resolved",
		"conditional_id", id,
		"song_id", e.songID,
		"condition_type", ct,
		"resolved_at", at,
	)
	return &Resolution{ConditionalID: id, SongID: e.songID, ConditionType: ct, ResolvedAt: at}, nil
}

// Start schedules clock ticks. Ticks run until Stop is called.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cron != nil {
		return errors.New("tracker already started")
	}

	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cronLogger{t.logger})))
	_, err := c.AddFunc(t.clockSpec, func() {
		// keep each run bounded
		rctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if _, err := t.Tick(rctx, time.Now().UTC()); err != nil {
			t.logger.Warn("clock tick failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid clock spec %q: %w", t.clockSpec, err)
	}
	c.Start()
	t.cron = c
	t.logger.Info("threshold tracker started", "clock_spec", t.clockSpec, "live", t.Live())
	return nil
}

// Stop waits for a running tick and for queued revenue tasks to finish.
func (t *Tracker) Stop() {
	t.mu.Lock()
	c := t.cron
	t.cron = nil
	t.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	t.pool.StopAndWait()
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

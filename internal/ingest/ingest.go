// Package ingest orchestrates the scrape cycle: run every source adapter in
// priority order, upsert what they return, and fall back to the seed dataset
// when the store would otherwise be empty.
package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/coverscan/coverscan/internal/adapter"
	"github.com/coverscan/coverscan/internal/store"
)

// ErrRunInProgress is returned when a run is requested while another is
// already executing. At most one ingestion cycle runs at a time.
var ErrRunInProgress = eris.New("ingest: run already in progress")

// SourceReport summarizes one adapter's contribution to a run.
type SourceReport struct {
	Source   string        `json:"source"`
	Plans    int           `json:"plans"`
	Inserted int           `json:"inserted"`
	Updated  int           `json:"updated"`
	Error    string        `json:"error,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`
}

// RunReport summarizes a full ingestion cycle.
type RunReport struct {
	StartedAt  time.Time      `json:"started_at"`
	Elapsed    time.Duration  `json:"elapsed"`
	Sources    []SourceReport `json:"sources"`
	Inserted   int            `json:"inserted"`
	Updated    int            `json:"updated"`
	Seeded     bool           `json:"seeded"`
	TotalPlans int            `json:"total_plans"`
}

// Runner drives ingestion against a fixed, priority-ordered adapter list.
type Runner struct {
	store    store.Store
	adapters []adapter.Adapter

	mu sync.Mutex
}

// NewRunner builds a Runner. Adapter order is priority order: the most
// reliable source first.
func NewRunner(st store.Store, adapters ...adapter.Adapter) *Runner {
	return &Runner{store: st, adapters: adapters}
}

// EnsureSeeded loads the seed dataset when the store is empty. Called at
// startup so the recommendation endpoints never see an empty store, even
// before the first scrape completes.
func (r *Runner) EnsureSeeded(ctx context.Context) error {
	n, err := r.store.CountPlans(ctx)
	if err != nil {
		return eris.Wrap(err, "ingest: count plans")
	}
	if n > 0 {
		return nil
	}

	res, err := r.store.UpsertPlans(ctx, Seed())
	if err != nil {
		return eris.Wrap(err, "ingest: seed store")
	}
	zap.L().Info("seeded empty store", zap.Int("plans", res.Inserted))
	return nil
}

// Run executes one full ingestion cycle. Adapter failures are soft: the run
// continues with the remaining sources and reports per-source outcomes.
// Returns ErrRunInProgress when another cycle holds the lock.
func (r *Runner) Run(ctx context.Context) (*RunReport, error) {
	if !r.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer r.mu.Unlock()

	report := &RunReport{StartedAt: time.Now().UTC()}
	defer func() { report.Elapsed = time.Since(report.StartedAt) }()

	for _, a := range r.adapters {
		if ctx.Err() != nil {
			return report, eris.Wrap(ctx.Err(), "ingest: run canceled")
		}

		res := adapter.Run(ctx, a)
		sr := SourceReport{Source: res.Source, Plans: len(res.Plans), Elapsed: res.Elapsed}

		switch {
		case !res.OK():
			sr.Error = res.Err.Error()
			zap.L().Warn("source failed",
				zap.String("source", res.Source),
				zap.Error(res.Err))
		case len(res.Plans) == 0:
			zap.L().Warn("source returned no plans", zap.String("source", res.Source))
		default:
			up, err := r.store.UpsertPlans(ctx, res.Plans)
			if err != nil {
				sr.Error = err.Error()
				zap.L().Error("upsert failed",
					zap.String("source", res.Source),
					zap.Error(err))
			} else {
				sr.Inserted, sr.Updated = up.Inserted, up.Updated
				report.Inserted += up.Inserted
				report.Updated += up.Updated
				zap.L().Info("source ingested",
					zap.String("source", res.Source),
					zap.Int("plans", len(res.Plans)),
					zap.Int("inserted", up.Inserted),
					zap.Int("updated", up.Updated),
					zap.Duration("elapsed", res.Elapsed))
			}
		}
		report.Sources = append(report.Sources, sr)
	}

	// Every source can fail on a fresh install. The store must still serve.
	n, err := r.store.CountPlans(ctx)
	if err != nil {
		return report, eris.Wrap(err, "ingest: count after run")
	}
	if n == 0 {
		res, err := r.store.UpsertPlans(ctx, Seed())
		if err != nil {
			return report, eris.Wrap(err, "ingest: seed after empty run")
		}
		report.Seeded = true
		report.Inserted += res.Inserted
		n = res.Inserted
		zap.L().Warn("all sources empty, loaded seed dataset", zap.Int("plans", res.Inserted))
	}
	report.TotalPlans = n

	zap.L().Info("ingestion cycle complete",
		zap.Int("inserted", report.Inserted),
		zap.Int("updated", report.Updated),
		zap.Int("total_plans", report.TotalPlans),
		zap.Bool("seeded", report.Seeded),
		zap.Duration("elapsed", report.Elapsed))
	return report, nil
}

// Schedule runs ingestion cycles on a fixed interval until the context ends.
// A cycle skipped because one is already running is not an error.
func (r *Runner) Schedule(ctx context.Context, interval time.Duration, runOnStart bool) error {
	if runOnStart {
		if _, err := r.Run(ctx); err != nil && !eris.Is(err, ErrRunInProgress) {
			zap.L().Error("initial ingestion run failed", zap.Error(err))
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.Run(ctx); err != nil {
				if eris.Is(err, ErrRunInProgress) {
					zap.L().Info("skipping scheduled run, previous still active")
					continue
				}
				zap.L().Error("scheduled ingestion run failed", zap.Error(err))
			}
		}
	}
}

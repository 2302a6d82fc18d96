// Package adapter holds one scraper per upstream comparison source. Each
// adapter fetches its listing page, extracts raw plan rows, and hands them to
// the normalizer; the ingestion orchestrator decides what to do with the
// results.
package adapter

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/coverscan/coverscan/internal/model"
)

// Adapter scrapes one source into canonical plans.
type Adapter interface {
	// Name is the source identifier recorded on every plan it produces.
	Name() string
	// Scrape fetches and parses the source. An empty slice with a nil error
	// is a legitimate outcome (the page changed shape, nothing matched);
	// a non-nil error means the source could not be read at all.
	Scrape(ctx context.Context) ([]model.Plan, error)
}

// Result is the outcome of running one adapter. A Result with Err set is a
// soft failure: the run continues with the remaining sources.
type Result struct {
	Source  string
	Plans   []model.Plan
	Err     error
	Elapsed time.Duration
}

// OK reports whether the adapter ran without error.
func (r Result) OK() bool { return r.Err == nil }

// Run executes an adapter and converts panics into errors so one misbehaving
// parser cannot take down the whole ingestion cycle.
func Run(ctx context.Context, a Adapter) (res Result) {
	res.Source = a.Name()
	start := time.Now()
	defer func() {
		res.Elapsed = time.Since(start)
		if r := recover(); r != nil {
			res.Plans = nil
			res.Err = eris.Errorf("adapter %s panicked: %v", a.Name(), r)
		}
	}()

	plans, err := a.Scrape(ctx)
	res.Plans = plans
	res.Err = err
	return res
}

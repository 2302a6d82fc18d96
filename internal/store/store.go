// Package store persists the canonical plan set. The reconciler is the single
// writer; every other consumer only reads.
package store

import (
	"context"

	"github.com/coverscan/coverscan/internal/model"
)

// PlanFilter specifies criteria for listing plans. Zero values mean "no
// filter". Results are always ordered by claim settlement ratio descending.
type PlanFilter struct {
	Source string  `json:"source,omitempty"`
	MinCSR float64 `json:"min_csr,omitempty"`
}

// UpsertResult reports what a batch upsert did.
type UpsertResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

// Store defines the persistence interface for the ingestion pipeline and the
// recommendation engine.
type Store interface {
	// UpsertPlans merges a batch of normalized plans into the stored set,
	// keyed by (plan_name, provider). Existing records are overwritten whole
	// and stamped with a fresh retrieval time; absent records are inserted.
	// The batch commits atomically. Nothing is ever deleted.
	UpsertPlans(ctx context.Context, plans []model.Plan) (*UpsertResult, error)

	// GetPlan looks up a plan by its natural key. Returns (nil, nil) when
	// the plan does not exist.
	GetPlan(ctx context.Context, key model.PlanKey) (*model.Plan, error)

	// ListPlans returns stored plans matching the filter, ordered by claim
	// settlement ratio descending.
	ListPlans(ctx context.Context, filter PlanFilter) ([]model.Plan, error)

	// CountPlans returns the total number of stored plans.
	CountPlans(ctx context.Context) (int, error)

	// Sources returns the distinct source labels present in the store.
	Sources(ctx context.Context) ([]string, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverscan/coverscan/internal/model"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testPlan(name, provider string, csr float64) model.Plan {
	return model.Plan{
		PlanName:             name,
		Provider:             provider,
		Source:               "bankbazaar",
		SumAssuredMin:        50,
		SumAssuredMax:        20000,
		PremiumAnnual:        8800,
		PolicyTermMin:        10,
		PolicyTermMax:        40,
		AgeMin:               18,
		AgeMax:               65,
		ClaimSettlementRatio: csr,
		KeyFeatures:          []string{"Critical illness cover", "Online purchase"},
		SourceURL:            "https://example.com/plan",
	}
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()

	t.Run("InsertNewPlan", func(t *testing.T) {
		s := newTestSQLite(t)

		res, err := s.UpsertPlans(ctx, []model.Plan{testPlan("iProtect Smart", "ICICI Prudential", 97.8)})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Inserted)
		assert.Equal(t, 0, res.Updated)

		n, err := s.CountPlans(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		got, err := s.GetPlan(ctx, model.PlanKey{PlanName: "iProtect Smart", Provider: "ICICI Prudential"})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, 97.8, got.ClaimSettlementRatio)
		assert.Equal(t, []string{"Critical illness cover", "Online purchase"}, got.KeyFeatures)
		assert.False(t, got.LastRetrievedAt.IsZero())
	})

	t.Run("UpsertExistingOverwritesAndStampsTime", func(t *testing.T) {
		s := newTestSQLite(t)

		_, err := s.UpsertPlans(ctx, []model.Plan{testPlan("eShield Next", "SBI Life", 97.0)})
		require.NoError(t, err)
		first, err := s.GetPlan(ctx, model.PlanKey{PlanName: "eShield Next", Provider: "SBI Life"})
		require.NoError(t, err)
		require.NotNil(t, first)

		time.Sleep(10 * time.Millisecond)

		updated := testPlan("eShield Next", "SBI Life", 98.1)
		updated.Source = "policyx"
		updated.PremiumAnnual = 7800
		res, err := s.UpsertPlans(ctx, []model.Plan{updated})
		require.NoError(t, err)
		assert.Equal(t, 0, res.Inserted)
		assert.Equal(t, 1, res.Updated)

		n, err := s.CountPlans(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "upsert of an existing key must not grow the store")

		got, err := s.GetPlan(ctx, model.PlanKey{PlanName: "eShield Next", Provider: "SBI Life"})
		require.NoError(t, err)
		assert.Equal(t, 98.1, got.ClaimSettlementRatio)
		assert.Equal(t, "policyx", got.Source)
		assert.Equal(t, 7800.0, got.PremiumAnnual)
		assert.Equal(t, first.ID, got.ID, "identity is stable across upserts")
		assert.True(t, got.LastRetrievedAt.After(first.LastRetrievedAt))
	})

	t.Run("GetPlanMissing", func(t *testing.T) {
		s := newTestSQLite(t)

		got, err := s.GetPlan(ctx, model.PlanKey{PlanName: "Nope", Provider: "Nobody"})
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ListPlansOrderedByCSR", func(t *testing.T) {
		s := newTestSQLite(t)

		_, err := s.UpsertPlans(ctx, []model.Plan{
			testPlan("Plan A", "HDFC Life", 99.5),
			testPlan("Plan B", "LIC", 98.6),
			testPlan("Plan C", "Kotak Life", 98.9),
		})
		require.NoError(t, err)

		plans, err := s.ListPlans(ctx, PlanFilter{})
		require.NoError(t, err)
		require.Len(t, plans, 3)
		assert.Equal(t, "Plan A", plans[0].PlanName)
		assert.Equal(t, "Plan C", plans[1].PlanName)
		assert.Equal(t, "Plan B", plans[2].PlanName)
	})

	t.Run("ListPlansFilters", func(t *testing.T) {
		s := newTestSQLite(t)

		seed := testPlan("Plan A", "HDFC Life", 99.5)
		seed.Source = "seed"
		scraped := testPlan("Plan B", "LIC", 92.0)
		_, err := s.UpsertPlans(ctx, []model.Plan{seed, scraped})
		require.NoError(t, err)

		bySource, err := s.ListPlans(ctx, PlanFilter{Source: "seed"})
		require.NoError(t, err)
		require.Len(t, bySource, 1)
		assert.Equal(t, "Plan A", bySource[0].PlanName)

		byCSR, err := s.ListPlans(ctx, PlanFilter{MinCSR: 95})
		require.NoError(t, err)
		require.Len(t, byCSR, 1)
		assert.Equal(t, "Plan A", byCSR[0].PlanName)
	})

	t.Run("Sources", func(t *testing.T) {
		s := newTestSQLite(t)

		a := testPlan("Plan A", "HDFC Life", 99.5)
		a.Source = "seed"
		b := testPlan("Plan B", "LIC", 98.6)
		c := testPlan("Plan C", "Kotak Life", 98.9)
		_, err := s.UpsertPlans(ctx, []model.Plan{a, b, c})
		require.NoError(t, err)

		sources, err := s.Sources(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"bankbazaar", "seed"}, sources)
	})

	t.Run("EmptyBatchIsNoop", func(t *testing.T) {
		s := newTestSQLite(t)

		res, err := s.UpsertPlans(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Inserted+res.Updated)
	})

	t.Run("EmptyFeatures", func(t *testing.T) {
		s := newTestSQLite(t)

		p := testPlan("Plan A", "HDFC Life", 99.5)
		p.KeyFeatures = nil
		_, err := s.UpsertPlans(ctx, []model.Plan{p})
		require.NoError(t, err)

		got, err := s.GetPlan(ctx, p.Key())
		require.NoError(t, err)
		assert.Nil(t, got.KeyFeatures)
	})
}

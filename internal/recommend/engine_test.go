package recommend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coverscan/coverscan/internal/model"
	"github.com/coverscan/coverscan/internal/store"
)

type fakeGen struct {
	name  string
	out   string
	err   error
	calls int
}

func (f *fakeGen) Name() string { return f.name }

func (f *fakeGen) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.out, f.err
}

func newTestStore(t *testing.T, plans ...model.Plan) store.Store {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	if len(plans) > 0 {
		_, err = s.UpsertPlans(context.Background(), plans)
		require.NoError(t, err)
	}
	return s
}

const rankedResponse = "```json\n" + `{
  "overall_summary": "Plan A is the standout choice for this profile.",
  "top_pick": "A by X",
  "ranked_plans": [
    {"rank": 1, "plan_name": "A", "provider": "X", "score": 92, "reason": "Best CSR.",
     "pros": ["High CSR"], "cons": ["None"], "within_budget": true, "claim_settlement_ratio": 99}
  ]
}` + "\n```"

func TestEngine_Recommend(t *testing.T) {
	ctx := context.Background()
	profile := testProfile()

	t.Run("empty store", func(t *testing.T) {
		e := NewEngine(newTestStore(t))
		_, err := e.Recommend(ctx, profile)
		assert.True(t, eris.Is(err, ErrNoPlans))
	})

	t.Run("llm ranking", func(t *testing.T) {
		st := newTestStore(t, testPlan("A", "X", 99, 8000), testPlan("B", "Y", 97, 9000))
		gen := &fakeGen{name: "fake", out: rankedResponse}
		e := NewEngine(st, gen)

		rec, err := e.Recommend(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, "A by X", rec.TopPick)
		assert.Equal(t, 2, rec.TotalPlansAnalyzed)
		assert.Equal(t, 1, gen.calls)
		require.NotEmpty(t, rec.RankedPlans)
		assert.NotContains(t, rec.RankedPlans[0].Cons, aiUnavailableNote)
	})

	t.Run("second generator covers for the first", func(t *testing.T) {
		st := newTestStore(t, testPlan("A", "X", 99, 8000))
		bad := &fakeGen{name: "bad", err: eris.New("quota exhausted")}
		good := &fakeGen{name: "good", out: rankedResponse}

		rec, err := NewEngine(st, bad, good).Recommend(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, "A by X", rec.TopPick)
		assert.Equal(t, 1, bad.calls)
		assert.Equal(t, 1, good.calls)
	})

	t.Run("unparseable output falls through", func(t *testing.T) {
		st := newTestStore(t, testPlan("A", "X", 99, 8000))
		garbage := &fakeGen{name: "garbage", out: "I am sorry, I cannot rank these plans."}
		good := &fakeGen{name: "good", out: rankedResponse}

		rec, err := NewEngine(st, garbage, good).Recommend(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, "A by X", rec.TopPick)
	})

	t.Run("all generators fail uses rule-based ranking", func(t *testing.T) {
		st := newTestStore(t,
			testPlan("A", "X", 99, 8000),
			testPlan("B", "Y", 99, 20000),
			testPlan("C", "Z", 90, 5000),
		)
		e := NewEngine(st, &fakeGen{name: "bad", err: eris.New("down")})

		rec, err := e.Recommend(ctx, profile)
		require.NoError(t, err)
		require.Len(t, rec.RankedPlans, 3)
		assert.Equal(t, "A", rec.RankedPlans[0].PlanName)
		assert.Equal(t, "C", rec.RankedPlans[1].PlanName)
		assert.Equal(t, "B", rec.RankedPlans[2].PlanName)
		assert.Contains(t, rec.RankedPlans[0].Cons, aiUnavailableNote)
	})

	t.Run("no generators configured", func(t *testing.T) {
		st := newTestStore(t, testPlan("A", "X", 99, 8000))
		rec, err := NewEngine(st).Recommend(ctx, profile)
		require.NoError(t, err)
		assert.NotEmpty(t, rec.RankedPlans)
		assert.Contains(t, rec.RankedPlans[0].Cons, aiUnavailableNote)
	})

	t.Run("age filter relaxes rather than returning nothing", func(t *testing.T) {
		old := testProfile()
		old.Age = 70
		st := newTestStore(t, testPlan("A", "X", 99, 8000)) // entry age capped at 65

		rec, err := NewEngine(st).Recommend(ctx, old)
		require.NoError(t, err)
		assert.NotEmpty(t, rec.RankedPlans, "ineligible set falls back to the full set")
		assert.Equal(t, 1, rec.TotalPlansAnalyzed)
	})
}

func TestEligiblePlans(t *testing.T) {
	plans := []model.Plan{testPlan("A", "X", 99, 8000)} // ages 18 to 65

	assert.Len(t, eligiblePlans(30, plans), 1)
	assert.Len(t, eligiblePlans(65, plans), 1)
	assert.Len(t, eligiblePlans(70, plans), 1, "empty filter result relaxes to full set")
	assert.Len(t, eligiblePlans(17, plans), 1, "empty filter result relaxes to full set")
}

func TestEngine_Compare(t *testing.T) {
	ctx := context.Background()
	profile := testProfile()
	planA := testPlan("iProtect Smart", "ICICI Prudential", 97.8, 8800)
	planB := testPlan("Smart Secure Plus", "Axis Max Life", 99.51, 8100)
	keys := []model.PlanKey{planA.Key(), planB.Key()}

	t.Run("needs 2 or 3 plans", func(t *testing.T) {
		e := NewEngine(newTestStore(t, planA, planB))
		_, err := e.Compare(ctx, profile, keys[:1])
		assert.Error(t, err)
		_, err = e.Compare(ctx, profile, make([]model.PlanKey, 4))
		assert.Error(t, err)
	})

	t.Run("empty store", func(t *testing.T) {
		e := NewEngine(newTestStore(t))
		_, err := e.Compare(ctx, profile, keys)
		assert.True(t, eris.Is(err, ErrNoPlans))
	})

	t.Run("unknown plan", func(t *testing.T) {
		e := NewEngine(newTestStore(t, planA, planB))
		_, err := e.Compare(ctx, profile, []model.PlanKey{planA.Key(), {PlanName: "Ghost", Provider: "Nobody"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("llm response keys are normalized", func(t *testing.T) {
		resp := `{
		  "verdict": "Smart Secure Plus wins on claim settlement.",
		  "winner": "Max Smart Secure Plus Plan",
		  "comparison_table": [
		    {"plan_name": "ICICI iProtect Smart Plan", "provider": "?", "premium_annual": 0,
		     "claim_settlement_ratio": 0, "strengths": ["s"], "weaknesses": ["w"], "best_for": "b"},
		    {"plan_name": "Max Smart Secure Plus Plan", "provider": "?", "premium_annual": 0,
		     "claim_settlement_ratio": 0, "strengths": ["s"], "weaknesses": ["w"], "best_for": "b"}
		  ],
		  "detailed_comparison": "..."
		}`
		e := NewEngine(newTestStore(t, planA, planB), &fakeGen{name: "fake", out: resp})

		cmp, err := e.Compare(ctx, profile, keys)
		require.NoError(t, err)
		assert.Equal(t, "Smart Secure Plus", cmp.Winner)
		require.Len(t, cmp.ComparisonTable, 2)
		assert.Equal(t, "iProtect Smart", cmp.ComparisonTable[0].PlanName)
		assert.Equal(t, 8800.0, cmp.ComparisonTable[0].PremiumAnnual)
	})

	t.Run("all generators fail uses rule-based comparison", func(t *testing.T) {
		e := NewEngine(newTestStore(t, planA, planB), &fakeGen{name: "bad", err: eris.New("down")})

		cmp, err := e.Compare(ctx, profile, keys)
		require.NoError(t, err)
		assert.Equal(t, "Smart Secure Plus", cmp.Winner, "highest CSR wins")
		assert.Len(t, cmp.ComparisonTable, 2)
		assert.Contains(t, cmp.Verdict, "Rule-based comparison")
	})
}

func TestEngine_Chat(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		_, err := NewEngine(newTestStore(t)).Chat(ctx, "which plan is best?")
		assert.True(t, eris.Is(err, ErrNoPlans))
	})

	t.Run("llm answer", func(t *testing.T) {
		st := newTestStore(t, testPlan("A", "X", 99, 8000))
		e := NewEngine(st, &fakeGen{name: "fake", out: "Plan A by X has the best ratio."})

		ans, err := e.Chat(ctx, "which plan is best?")
		require.NoError(t, err)
		assert.Equal(t, "llm", ans.Method)
		assert.Equal(t, "Plan A by X has the best ratio.", ans.Answer)
	})

	t.Run("fallback answer names stored plans", func(t *testing.T) {
		st := newTestStore(t, testPlan("A", "X", 99, 8000))
		e := NewEngine(st, &fakeGen{name: "bad", err: eris.New("down")})

		ans, err := e.Chat(ctx, "which plan is best?")
		require.NoError(t, err)
		assert.Equal(t, "rule_based", ans.Method)
		assert.Contains(t, ans.Answer, "A by X")
	})
}

func TestEngine_Estimate(t *testing.T) {
	ctx := context.Background()
	profile := testProfile()

	t.Run("empty store", func(t *testing.T) {
		_, err := NewEngine(newTestStore(t)).Estimate(ctx, profile)
		assert.True(t, eris.Is(err, ErrNoPlans))
	})

	t.Run("llm estimate", func(t *testing.T) {
		st := newTestStore(t, testPlan("A", "X", 99, 8000))
		resp := `{"annual_premium_low": 7000, "annual_premium_typical": 9500, "annual_premium_high": 13000, "notes": "n"}`
		e := NewEngine(st, &fakeGen{name: "fake", out: resp})

		est, err := e.Estimate(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, "llm", est.Method)
		assert.Equal(t, 9500.0, est.AnnualPremiumTypical)
	})

	t.Run("inverted llm band falls back to rule", func(t *testing.T) {
		st := newTestStore(t, testPlan("A", "X", 99, 8000))
		resp := `{"annual_premium_low": 13000, "annual_premium_typical": 9500, "annual_premium_high": 7000, "notes": "n"}`
		e := NewEngine(st, &fakeGen{name: "fake", out: resp})

		est, err := e.Estimate(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, "rule_based", est.Method)
	})

	t.Run("no generators uses rule", func(t *testing.T) {
		st := newTestStore(t, testPlan("A", "X", 99, 8000))
		est, err := NewEngine(st).Estimate(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, "rule_based", est.Method)
		assert.Equal(t, RuleEstimate(profile), est)
	})
}

// Package recommend ranks stored plans for a user profile. Rankers are tried
// in a fixed chain (Gemini model cascade, then Claude); every chain failure
// degrades to a deterministic rule-based result rather than an error. The one
// error callers see is an empty plan store.
package recommend

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/coverscan/coverscan/internal/model"
	"github.com/coverscan/coverscan/internal/store"
)

// ErrNoPlans means the store has never been populated. Callers surface it as
// a not-found condition telling the user to trigger ingestion.
var ErrNoPlans = eris.New("no plans ingested yet")

// ErrPlanNotFound means a comparison named a plan the store does not hold.
var ErrPlanNotFound = eris.New("plan not found")

// Engine answers recommendation, comparison, chat and estimate requests over
// the stored plan set. It never mutates the store.
type Engine struct {
	store      store.Store
	generators []TextGenerator
}

// NewEngine builds an engine. An empty generator chain is valid; every answer
// is then rule-based.
func NewEngine(st store.Store, generators ...TextGenerator) *Engine {
	return &Engine{store: st, generators: generators}
}

// Recommend ranks all stored plans for the profile.
func (e *Engine) Recommend(ctx context.Context, profile model.UserProfile) (*model.Recommendation, error) {
	plans, err := e.loadPlans(ctx)
	if err != nil {
		return nil, err
	}
	eligible := eligiblePlans(profile.Age, plans)

	var rec model.Recommendation
	if e.generateInto(ctx, rankPrompt(profile, eligible), &rec) && len(rec.RankedPlans) > 0 {
		rec.TotalPlansAnalyzed = len(eligible)
		return &rec, nil
	}

	fallback := FallbackRank(profile, eligible)
	return fallback, nil
}

// Compare builds a side-by-side comparison of 2 or 3 stored plans.
func (e *Engine) Compare(ctx context.Context, profile model.UserProfile, keys []model.PlanKey) (*model.Comparison, error) {
	if len(keys) < 2 || len(keys) > 3 {
		return nil, eris.Errorf("recommend: compare needs 2 or 3 plans, got %d", len(keys))
	}
	if n, err := e.store.CountPlans(ctx); err != nil {
		return nil, eris.Wrap(err, "recommend: count plans")
	} else if n == 0 {
		return nil, ErrNoPlans
	}

	plans := make([]model.Plan, 0, len(keys))
	for _, key := range keys {
		p, err := e.store.GetPlan(ctx, key)
		if err != nil {
			return nil, eris.Wrap(err, "recommend: load plan")
		}
		if p == nil {
			return nil, eris.Wrapf(ErrPlanNotFound, "recommend: %s", key)
		}
		plans = append(plans, *p)
	}

	var cmp model.Comparison
	if e.generateInto(ctx, comparePrompt(profile, plans), &cmp) && len(cmp.ComparisonTable) > 0 {
		normalizeComparison(&cmp, plans)
		if len(cmp.ComparisonTable) > 0 {
			return &cmp, nil
		}
	}
	return fallbackCompare(profile, plans), nil
}

// Chat answers a free-text question over the stored plans.
func (e *Engine) Chat(ctx context.Context, question string) (*model.ChatAnswer, error) {
	plans, err := e.loadPlans(ctx)
	if err != nil {
		return nil, err
	}

	raw, name, err := e.generate(ctx, chatPrompt(question, plans))
	if err == nil && strings.TrimSpace(raw) != "" {
		zap.L().Info("chat answered", zap.String("generator", name))
		return &model.ChatAnswer{Answer: strings.TrimSpace(raw), Method: "llm"}, nil
	}
	return fallbackChat(plans), nil
}

// Estimate produces an annual premium range for the profile.
func (e *Engine) Estimate(ctx context.Context, profile model.UserProfile) (*model.Estimate, error) {
	plans, err := e.loadPlans(ctx)
	if err != nil {
		return nil, err
	}
	eligible := eligiblePlans(profile.Age, plans)

	var est model.Estimate
	if e.generateInto(ctx, estimatePrompt(profile, eligible), &est) && validEstimate(est) {
		est.Method = "llm"
		return &est, nil
	}
	return RuleEstimate(profile), nil
}

// loadPlans fetches every stored plan, CSR descending. An empty store is the
// one user-visible error.
func (e *Engine) loadPlans(ctx context.Context) ([]model.Plan, error) {
	plans, err := e.store.ListPlans(ctx, store.PlanFilter{})
	if err != nil {
		return nil, eris.Wrap(err, "recommend: list plans")
	}
	if len(plans) == 0 {
		return nil, ErrNoPlans
	}
	return plans, nil
}

// eligiblePlans keeps plans whose entry-age window covers the user. When the
// filter empties the set, the full set is used instead so the user always
// sees a ranking.
func eligiblePlans(age int, plans []model.Plan) []model.Plan {
	eligible := make([]model.Plan, 0, len(plans))
	for _, p := range plans {
		if p.AgeMin <= age && age <= p.AgeMax {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		return plans
	}
	return eligible
}

// generate runs the prompt down the generator chain, returning the first
// successful raw response and the generator that produced it.
func (e *Engine) generate(ctx context.Context, prompt string) (string, string, error) {
	var lastErr error
	for _, g := range e.generators {
		out, err := g.Generate(ctx, prompt)
		if err != nil {
			zap.L().Warn("generator failed, trying next",
				zap.String("generator", g.Name()),
				zap.Error(err),
			)
			lastErr = err
			continue
		}
		return out, g.Name(), nil
	}
	if lastErr == nil {
		lastErr = eris.New("recommend: no generators configured")
	}
	return "", "", lastErr
}

// generateInto runs the prompt down the chain and decodes the first response
// that yields the expected JSON shape. A generator whose output does not
// parse counts as a failure for that generator, not for the chain.
func (e *Engine) generateInto(ctx context.Context, prompt string, out any) bool {
	for _, g := range e.generators {
		raw, err := g.Generate(ctx, prompt)
		if err != nil {
			zap.L().Warn("generator failed, trying next",
				zap.String("generator", g.Name()),
				zap.Error(err),
			)
			continue
		}
		if err := decodeJSON(raw, out); err != nil {
			zap.L().Warn("generator response did not parse, trying next",
				zap.String("generator", g.Name()),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("ranker responded", zap.String("generator", g.Name()))
		return true
	}
	return false
}

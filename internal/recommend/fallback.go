package recommend

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/coverscan/coverscan/internal/model"
)

// aiUnavailableNote is appended to every fallback result so callers can tell
// a rule-based ranking from an AI one.
const aiUnavailableNote = "AI analysis unavailable — rule-based ranking"

// fallbackScore is the deterministic ranking function used when no LLM ranker
// is reachable. Claim settlement ratio dominates, with fixed bonuses for
// staying inside the budget and clearing the user's CSR threshold.
func fallbackScore(p model.Plan, budget, minCSR float64) float64 {
	s := p.ClaimSettlementRatio * 0.5
	if p.PremiumAnnual <= budget {
		s += 30
	}
	if p.ClaimSettlementRatio >= minCSR {
		s += 20
	}
	return s
}

// FallbackRank produces a recommendation without any LLM call. It is a pure
// function of its inputs: equal scores keep their original relative order.
func FallbackRank(profile model.UserProfile, plans []model.Plan) *model.Recommendation {
	sorted := make([]model.Plan, len(plans))
	copy(sorted, plans)
	sort.SliceStable(sorted, func(i, j int) bool {
		return fallbackScore(sorted[i], profile.PremiumBudget, profile.MinCSR) >
			fallbackScore(sorted[j], profile.PremiumBudget, profile.MinCSR)
	})

	ranked := make([]model.RankedPlan, 0, len(sorted))
	for i, p := range sorted {
		withinBudget := p.PremiumAnnual <= profile.PremiumBudget
		reason := "Within budget. "
		if !withinBudget {
			reason = "Exceeds budget. "
		}
		reason += fmt.Sprintf("Claim settlement ratio: %s%%.", formatCSR(p.ClaimSettlementRatio))

		score := fallbackScore(p, profile.PremiumBudget, profile.MinCSR)
		ranked = append(ranked, model.RankedPlan{
			Rank:                 i + 1,
			PlanName:             p.PlanName,
			Provider:             p.Provider,
			Score:                math.Round(score*10) / 10,
			Reason:               reason,
			Pros:                 firstN(p.KeyFeatures, 3),
			Cons:                 []string{aiUnavailableNote},
			WithinBudget:         withinBudget,
			ClaimSettlementRatio: p.ClaimSettlementRatio,
		})
	}

	rec := &model.Recommendation{
		RankedPlans:        ranked,
		TotalPlansAnalyzed: len(plans),
	}
	if len(sorted) > 0 {
		top := sorted[0]
		rec.TopPick = top.Key().String()
		rec.OverallSummary = fmt.Sprintf(
			"Based on rule-based analysis, '%s' by %s ranks highest with a claim settlement ratio of %s%%. "+
				"Configure a Gemini or Anthropic API key for detailed AI analysis.",
			top.PlanName, top.Provider, formatCSR(top.ClaimSettlementRatio))
	} else {
		rec.TopPick = "N/A"
		rec.OverallSummary = "No plans available to rank."
	}
	return rec
}

// fallbackCompare builds a deterministic side-by-side comparison when no LLM
// ranker is reachable. The winner is the plan with the highest claim
// settlement ratio.
func fallbackCompare(profile model.UserProfile, plans []model.Plan) *model.Comparison {
	rows := make([]model.ComparisonRow, 0, len(plans))
	winner := plans[0]
	for _, p := range plans {
		if p.ClaimSettlementRatio > winner.ClaimSettlementRatio {
			winner = p
		}

		strengths := firstN(p.KeyFeatures, 2)
		if p.ClaimSettlementRatio >= 98 {
			strengths = append(strengths, "High claim settlement ratio")
		}
		var weaknesses []string
		if p.PremiumAnnual > profile.PremiumBudget {
			weaknesses = append(weaknesses, "Premium exceeds the stated budget")
		}
		if p.ClaimSettlementRatio < profile.MinCSR {
			weaknesses = append(weaknesses, "Claim settlement ratio below preferred minimum")
		}
		if len(weaknesses) == 0 {
			weaknesses = append(weaknesses, aiUnavailableNote)
		}

		bestFor := "Buyers prioritising affordability"
		if p.ClaimSettlementRatio >= 99 {
			bestFor = "Buyers prioritising claim reliability"
		}
		rows = append(rows, model.ComparisonRow{
			PlanName:             p.PlanName,
			Provider:             p.Provider,
			PremiumAnnual:        p.PremiumAnnual,
			ClaimSettlementRatio: p.ClaimSettlementRatio,
			Strengths:            strengths,
			Weaknesses:           weaknesses,
			BestFor:              bestFor,
		})
	}

	return &model.Comparison{
		Verdict: fmt.Sprintf(
			"Rule-based comparison: '%s' by %s leads with a claim settlement ratio of %s%%.",
			winner.PlanName, winner.Provider, formatCSR(winner.ClaimSettlementRatio)),
		Winner:          winner.PlanName,
		ComparisonTable: rows,
		DetailedComparison: "AI comparison is unavailable. The ranking above uses claim settlement ratio " +
			"as the deciding factor; review premiums and features against your own priorities.",
	}
}

// fallbackChat answers a question without an LLM by summarising the
// highest-CSR plans in the store.
func fallbackChat(plans []model.Plan) *model.ChatAnswer {
	top := firstNPlans(plans, 3)
	answer := "AI chat is unavailable right now. Based on the stored data, the plans with the highest claim settlement ratios are: "
	for i, p := range top {
		if i > 0 {
			answer += "; "
		}
		answer += fmt.Sprintf("%s by %s (%s%%, about ₹%.0f/year)",
			p.PlanName, p.Provider, formatCSR(p.ClaimSettlementRatio), p.PremiumAnnual)
	}
	answer += "."
	return &model.ChatAnswer{Answer: answer, Method: "rule_based"}
}

func formatCSR(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func firstNPlans(plans []model.Plan, n int) []model.Plan {
	if len(plans) > n {
		return plans[:n]
	}
	return plans
}

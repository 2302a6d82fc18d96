package recommend

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coverscan/coverscan/internal/model"
)

// planSummary is the bounded view of a plan sent to the rankers. Identity and
// ranking-relevant numbers only, no row IDs or provenance URLs.
type planSummary struct {
	PlanName             string   `json:"plan_name"`
	Provider             string   `json:"provider"`
	PremiumAnnual        float64  `json:"premium_annual"`
	SumAssuredMinLakhs   float64  `json:"sum_assured_min_lakhs"`
	SumAssuredMaxLakhs   float64  `json:"sum_assured_max_lakhs"`
	PolicyTermMin        int      `json:"policy_term_min"`
	PolicyTermMax        int      `json:"policy_term_max"`
	ClaimSettlementRatio float64  `json:"claim_settlement_ratio"`
	KeyFeatures          []string `json:"key_features"`
}

func summarize(plans []model.Plan) []planSummary {
	out := make([]planSummary, 0, len(plans))
	for _, p := range plans {
		out = append(out, planSummary{
			PlanName:             p.PlanName,
			Provider:             p.Provider,
			PremiumAnnual:        p.PremiumAnnual,
			SumAssuredMinLakhs:   p.SumAssuredMin,
			SumAssuredMaxLakhs:   p.SumAssuredMax,
			PolicyTermMin:        p.PolicyTermMin,
			PolicyTermMax:        p.PolicyTermMax,
			ClaimSettlementRatio: p.ClaimSettlementRatio,
			KeyFeatures:          p.KeyFeatures,
		})
	}
	return out
}

func plansJSON(plans []model.Plan) string {
	b, err := json.MarshalIndent(summarize(plans), "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}

func profileText(profile model.UserProfile) string {
	return fmt.Sprintf(`USER PROFILE:
- Age: %d years
- Desired Sum Assured: ₹%.0f Lakhs
- Maximum Annual Premium Budget: ₹%.0f
- Desired Policy Term: %d years
- Minimum Claim Settlement Ratio preferred: %.1f%%`,
		profile.Age, profile.SumAssured, profile.PremiumBudget, profile.PolicyTerm, profile.MinCSR)
}

func rankPrompt(profile model.UserProfile, plans []model.Plan) string {
	return fmt.Sprintf(`You are an expert Indian term insurance advisor. Analyze the following term insurance plans and recommend the best ones for the user described below.

%s

AVAILABLE PLANS (filtered for this user's age):
%s

INSTRUCTIONS:
1. Rank ALL plans from best to worst for this specific user.
2. For each plan provide: rank, plan_name, provider, reason (2-3 sentences explaining why it suits or doesn't suit the user), score (0-100), and a pros/cons list.
3. Give an overall_summary paragraph (3-4 sentences) explaining the top recommendation clearly.
4. Consider: claim settlement ratio, premium affordability, policy term match, sum assured coverage, and key features.
5. If a plan's premium exceeds the budget, flag it clearly.

Respond ONLY with valid JSON in this exact format:
{
  "overall_summary": "...",
  "top_pick": "Plan Name by Provider",
  "ranked_plans": [
    {
      "rank": 1,
      "plan_name": "...",
      "provider": "...",
      "score": 92,
      "reason": "...",
      "pros": ["...", "..."],
      "cons": ["...", "..."],
      "within_budget": true,
      "claim_settlement_ratio": 99.5
    }
  ]
}`, profileText(profile), plansJSON(plans))
}

func comparePrompt(profile model.UserProfile, plans []model.Plan) string {
	names := make([]string, 0, len(plans))
	for _, p := range plans {
		names = append(names, fmt.Sprintf("%q", p.PlanName))
	}

	return fmt.Sprintf(`You are an expert Indian term insurance advisor. Compare the following term insurance plans side by side for the user described below and pick a winner.

%s

PLANS TO COMPARE:
%s

INSTRUCTIONS:
1. Use the exact plan names %s in your response.
2. For each plan list its strengths, weaknesses, and the buyer profile it suits best.
3. Declare one winner for this specific user and explain the verdict in 2-3 sentences.
4. Write a detailed_comparison paragraph covering premiums, claim settlement ratios, and features.

Respond ONLY with valid JSON in this exact format:
{
  "verdict": "...",
  "winner": "Plan Name",
  "comparison_table": [
    {
      "plan_name": "...",
      "provider": "...",
      "premium_annual": 9200,
      "claim_settlement_ratio": 99.5,
      "strengths": ["...", "..."],
      "weaknesses": ["..."],
      "best_for": "..."
    }
  ],
  "detailed_comparison": "..."
}`, profileText(profile), plansJSON(plans), strings.Join(names, ", "))
}

func chatPrompt(question string, plans []model.Plan) string {
	return fmt.Sprintf(`You are an expert Indian term insurance advisor. Answer the user's question using only the plan data below. Be concise and concrete; cite plan names and numbers from the data. If the data cannot answer the question, say so.

AVAILABLE PLANS:
%s

QUESTION:
%s

Answer in plain text, not JSON.`, plansJSON(plans), question)
}

func estimatePrompt(profile model.UserProfile, plans []model.Plan) string {
	return fmt.Sprintf(`You are an expert Indian term insurance advisor. Estimate the annual term insurance premium range for the user described below, anchored on the indicative market premiums in the plan data.

%s

MARKET DATA (indicative annual premiums for flagship plans):
%s

Respond ONLY with valid JSON in this exact format:
{
  "annual_premium_low": 7000,
  "annual_premium_typical": 10000,
  "annual_premium_high": 14000,
  "notes": "..."
}`, profileText(profile), plansJSON(plans))
}

package model

// RankedPlan is one entry in a recommendation response. Produced fresh per
// request, never cached.
type RankedPlan struct {
	Rank                 int      `json:"rank"`
	PlanName             string   `json:"plan_name"`
	Provider             string   `json:"provider"`
	Score                float64  `json:"score"` // 0-100
	Reason               string   `json:"reason"`
	Pros                 []string `json:"pros"`
	Cons                 []string `json:"cons"`
	WithinBudget         bool     `json:"within_budget"`
	ClaimSettlementRatio float64  `json:"claim_settlement_ratio"`
}

// Recommendation is the full ranking response.
type Recommendation struct {
	OverallSummary     string       `json:"overall_summary"`
	TopPick            string       `json:"top_pick"`
	RankedPlans        []RankedPlan `json:"ranked_plans"`
	TotalPlansAnalyzed int          `json:"total_plans_analyzed"`
}

// ComparisonRow is one plan's column in a side-by-side comparison.
type ComparisonRow struct {
	PlanName             string   `json:"plan_name"`
	Provider             string   `json:"provider"`
	PremiumAnnual        float64  `json:"premium_annual"`
	ClaimSettlementRatio float64  `json:"claim_settlement_ratio"`
	Strengths            []string `json:"strengths"`
	Weaknesses           []string `json:"weaknesses"`
	BestFor              string   `json:"best_for"`
}

// Comparison is the response for comparing 2-3 plans side by side.
type Comparison struct {
	Verdict            string          `json:"verdict"`
	Winner             string          `json:"winner"`
	ComparisonTable    []ComparisonRow `json:"comparison_table"`
	DetailedComparison string          `json:"detailed_comparison"`
}

// Estimate is a premium range estimate for a profile.
type Estimate struct {
	AnnualPremiumLow     float64 `json:"annual_premium_low"`
	AnnualPremiumTypical float64 `json:"annual_premium_typical"`
	AnnualPremiumHigh    float64 `json:"annual_premium_high"`
	Notes                string  `json:"notes"`
	Method               string  `json:"method"` // "llm" or "rule_based"
}

// ChatAnswer is the response to a free-text question.
type ChatAnswer struct {
	Answer string `json:"answer"`
	Method string `json:"method"` // "llm" or "rule_based"
}

package model

import (
	"fmt"
	"strings"
	"time"
)

// Plan is the canonical stored record for a term insurance plan.
// Identity is the (PlanName, Provider) pair; uniqueness is enforced by the
// store's upsert path, not by a schema constraint.
type Plan struct {
	ID                   string    `json:"id"`
	PlanName             string    `json:"plan_name"`
	Provider             string    `json:"provider"`
	Source               string    `json:"source"`
	SumAssuredMin        float64   `json:"sum_assured_min"` // lakhs
	SumAssuredMax        float64   `json:"sum_assured_max"` // lakhs
	PremiumAnnual        float64   `json:"premium_annual"`  // INR, indicative
	PolicyTermMin        int       `json:"policy_term_min"` // years
	PolicyTermMax        int       `json:"policy_term_max"` // years
	AgeMin               int       `json:"age_min"`
	AgeMax               int       `json:"age_max"`
	ClaimSettlementRatio float64   `json:"claim_settlement_ratio"` // percentage
	KeyFeatures          []string  `json:"key_features"`
	SourceURL            string    `json:"source_url"`
	LastRetrievedAt      time.Time `json:"last_retrieved_at"`
}

// PlanKey is the composite natural key of a plan.
type PlanKey struct {
	PlanName string `json:"plan_name"`
	Provider string `json:"provider"`
}

// Key returns the plan's natural key.
func (p Plan) Key() PlanKey {
	return PlanKey{PlanName: p.PlanName, Provider: p.Provider}
}

// String renders the key as "Plan by Provider".
func (k PlanKey) String() string {
	return fmt.Sprintf("%s by %s", k.PlanName, k.Provider)
}

// Validate checks the plan invariants. Plans failing validation are dropped
// before they reach the store.
func (p Plan) Validate() error {
	if strings.TrimSpace(p.PlanName) == "" {
		return fmt.Errorf("plan name is empty")
	}
	if strings.TrimSpace(p.Provider) == "" {
		return fmt.Errorf("provider is empty")
	}
	if p.ClaimSettlementRatio <= 0 || p.ClaimSettlementRatio > 100 {
		return fmt.Errorf("claim settlement ratio %.2f outside (0, 100]", p.ClaimSettlementRatio)
	}
	if p.AgeMin > p.AgeMax {
		return fmt.Errorf("age range inverted: %d > %d", p.AgeMin, p.AgeMax)
	}
	if p.PolicyTermMin > p.PolicyTermMax {
		return fmt.Errorf("policy term range inverted: %d > %d", p.PolicyTermMin, p.PolicyTermMax)
	}
	if p.SumAssuredMin > p.SumAssuredMax {
		return fmt.Errorf("sum assured range inverted: %.1f > %.1f", p.SumAssuredMin, p.SumAssuredMax)
	}
	return nil
}

// RawPlan is what a source adapter emits before normalization. Numeric fields
// arrive as display text straight off the page; absent fields stay empty and
// are filled from the provider reference tables during normalization.
type RawPlan struct {
	PlanName       string `json:"plan_name"`
	Provider       string `json:"provider"`
	Source         string `json:"source"`
	SourceURL      string `json:"source_url"`
	CSRText        string `json:"csr_text"`         // e.g. "99.5%"
	PremiumText    string `json:"premium_text"`     // e.g. "₹9,200" or "Starts at 595/Month"
	SumAssuredText string `json:"sum_assured_text"` // e.g. "₹50 Lakh - 1 Cr"
	AgeText        string `json:"age_text"`         // e.g. "18 - 65 years"
	TermText       string `json:"term_text"`        // e.g. "10 to 40 years"
	FeaturesText   string `json:"features_text"`    // pipe/bullet separated
}

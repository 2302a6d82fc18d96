package recommend

import (
	"math"

	"github.com/coverscan/coverscan/internal/model"
)

// Rule-based premium estimate parameters. The base rate is the indicative
// annual premium per lakh of cover for a healthy 30-year-old non-smoker;
// each year past 30 compounds linearly.
const (
	baseRatePerLakh  = 85.0
	ageLoadPerYear   = 0.04
	baselineAge      = 30
	lowBandFraction  = 0.7
	highBandFraction = 1.4
)

// RuleEstimate computes an annual premium band from age and sum assured
// alone. Always available; used when no LLM refinement succeeds.
func RuleEstimate(profile model.UserProfile) *model.Estimate {
	ageFactor := 1.0
	if profile.Age > baselineAge {
		ageFactor += ageLoadPerYear * float64(profile.Age-baselineAge)
	}
	typical := math.Round(profile.SumAssured * baseRatePerLakh * ageFactor)

	return &model.Estimate{
		AnnualPremiumLow:     math.Round(typical * lowBandFraction),
		AnnualPremiumTypical: typical,
		AnnualPremiumHigh:    math.Round(typical * highBandFraction),
		Notes: "Indicative estimate for a healthy non-smoker. Actual premiums vary by insurer, " +
			"health profile, smoking status, and policy term.",
		Method: "rule_based",
	}
}

// validEstimate rejects LLM estimates with non-positive or inverted bands.
func validEstimate(e model.Estimate) bool {
	return e.AnnualPremiumLow > 0 &&
		e.AnnualPremiumLow <= e.AnnualPremiumTypical &&
		e.AnnualPremiumTypical <= e.AnnualPremiumHigh
}

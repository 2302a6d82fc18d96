package ingest

import (
	"github.com/coverscan/coverscan/internal/model"
	"github.com/coverscan/coverscan/internal/normalize"
)

// SeedSource marks plans that came from the built-in dataset rather than a
// live scrape. A later successful scrape overwrites them in place.
const SeedSource = "seed"

// seedCSR holds IRDAI 2022-23 claim settlement ratios for the seeded
// insurers, keyed by reference-table alias.
var seedCSR = map[string]float64{
	"hdfc":      99.50,
	"icici":     97.80,
	"max":       99.51,
	"lic":       98.62,
	"sbi":       97.05,
	"tata":      99.13,
	"bajaj":     99.29,
	"kotak":     98.50,
	"pnb":       99.06,
	"aditya":    98.12,
	"edelweiss": 99.23,
	"canara":    99.04,
}

// seedOrder keeps the seed deterministic.
var seedOrder = []string{
	"hdfc", "icici", "max", "lic", "sbi", "tata",
	"bajaj", "kotak", "pnb", "aditya", "edelweiss", "canara",
}

// Seed builds the fallback dataset: one flagship term plan per major insurer,
// assembled from the provider reference table. It guarantees recommendations
// work before the first scrape lands and whenever every source is blocked.
func Seed() []model.Plan {
	plans := make([]model.Plan, 0, len(seedOrder))
	for _, key := range seedOrder {
		ref, ok := normalize.ProviderByKey(key)
		if !ok {
			continue
		}
		plans = append(plans, model.Plan{
			PlanName:             ref.FlagshipPlan,
			Provider:             ref.DisplayName,
			Source:               SeedSource,
			SumAssuredMin:        ref.SumAssuredMin,
			SumAssuredMax:        ref.SumAssuredMax,
			PremiumAnnual:        ref.PremiumAnnual,
			PolicyTermMin:        ref.TermMin,
			PolicyTermMax:        ref.TermMax,
			AgeMin:               ref.AgeMin,
			AgeMax:               ref.AgeMax,
			ClaimSettlementRatio: seedCSR[key],
			KeyFeatures:          ref.Features,
			SourceURL:            ref.PlanURL,
		})
	}
	return plans
}

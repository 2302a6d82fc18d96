package normalize

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/coverscan/coverscan/internal/model"
)

// Plan converts one raw scraped record into the canonical schema. Missing
// numeric fields fall back to the provider reference entry, then to the
// package defaults, so a sparse listing page still yields a complete record.
// A plan that fails validation after fill-in is rejected.
func Plan(raw model.RawPlan) (model.Plan, error) {
	ref, known := LookupProvider(raw.Provider)
	if !known {
		ref = ProviderInfo{
			DisplayName:   CollapseSpace(raw.Provider),
			PremiumAnnual: DefaultPremium,
			AgeMin:        DefaultAgeMin, AgeMax: DefaultAgeMax,
			TermMin: DefaultTermMin, TermMax: DefaultTermMax,
			SumAssuredMin: DefaultSumAssuredMin, SumAssuredMax: DefaultSumAssuredMax,
			Features: DefaultFeatures,
		}
	}

	p := model.Plan{
		PlanName: CollapseSpace(raw.PlanName),
		Provider: ref.DisplayName,
		Source:   raw.Source,
	}
	if p.PlanName == "" {
		p.PlanName = ref.FlagshipPlan
	}

	csr, ok := ParseCSR(raw.CSRText)
	if !ok {
		return model.Plan{}, eris.Errorf("normalize: no usable claim settlement ratio in %q for %s", raw.CSRText, p.Key())
	}
	p.ClaimSettlementRatio = csr

	if premium, ok := ParsePremium(raw.PremiumText); ok {
		p.PremiumAnnual = premium
	} else {
		p.PremiumAnnual = ref.PremiumAnnual
	}

	if lo, hi, ok := ParseSumAssured(raw.SumAssuredText); ok {
		p.SumAssuredMin, p.SumAssuredMax = lo, hi
	} else {
		p.SumAssuredMin, p.SumAssuredMax = ref.SumAssuredMin, ref.SumAssuredMax
	}

	p.AgeMin, p.AgeMax = ParseIntRange(raw.AgeText, ref.AgeMin, ref.AgeMax)
	p.PolicyTermMin, p.PolicyTermMax = ParseIntRange(raw.TermText, ref.TermMin, ref.TermMax)

	if feats := SplitFeatures(raw.FeaturesText); len(feats) > 0 {
		p.KeyFeatures = feats
	} else {
		p.KeyFeatures = ref.Features
	}

	p.SourceURL = raw.SourceURL
	if p.SourceURL == "" {
		p.SourceURL = ref.PlanURL
	}

	if err := p.Validate(); err != nil {
		return model.Plan{}, eris.Wrapf(err, "normalize: plan %s", p.Key())
	}
	return p, nil
}

// Plans normalizes a batch, logging and dropping records that cannot be
// salvaged rather than failing the whole scrape.
func Plans(raws []model.RawPlan) []model.Plan {
	out := make([]model.Plan, 0, len(raws))
	for _, raw := range raws {
		p, err := Plan(raw)
		if err != nil {
			zap.L().Debug("dropping unnormalizable plan",
				zap.String("plan", raw.PlanName),
				zap.String("provider", raw.Provider),
				zap.String("source", raw.Source),
				zap.Error(err))
			continue
		}
		out = append(out, p)
	}
	return out
}

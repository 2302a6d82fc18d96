// Package normalize converts the heterogeneous raw text scraped by source
// adapters into the canonical plan schema, filling gaps from a fixed
// per-provider reference table.
package normalize

import "strings"

// ProviderInfo is the static reference record for one insurer. Premium values
// are indicative annual figures (INR, 1 crore cover, 30-year-old non-smoker)
// used when a source page carries no premium column; age/term/sum-assured
// limits are the insurer's published eligibility bands.
type ProviderInfo struct {
	Key           string
	Aliases       []string
	DisplayName   string
	FlagshipPlan  string
	PremiumAnnual float64
	AgeMin        int
	AgeMax        int
	TermMin       int
	TermMax       int
	SumAssuredMin float64 // lakhs
	SumAssuredMax float64 // lakhs
	Features      []string
	PlanURL       string
}

// Defaults applied when a provider is not in the alias table or a field is
// missing from its entry.
const (
	DefaultAgeMin        = 18
	DefaultAgeMax        = 65
	DefaultTermMin       = 10
	DefaultTermMax       = 40
	DefaultSumAssuredMin = 25.0
	DefaultSumAssuredMax = 100000.0
	DefaultPremium       = 8500.0
)

// DefaultFeatures are used when neither the page nor the reference table has
// anything better.
var DefaultFeatures = []string{"Term insurance", "Death benefit", "Online purchase"}

// providers is the alias table. Matching is case-insensitive substring against
// Key in declaration order, so multi-word keys that contain shorter keys
// ("axis max", "india first") must come before the shorter ones.
var providers = []ProviderInfo{
	{
		Key: "axis max", DisplayName: "Axis Max Life", FlagshipPlan: "Smart Term Plan Plus",
		PremiumAnnual: 9000, AgeMin: 18, AgeMax: 65, TermMin: 10, TermMax: 50,
		SumAssuredMin: 25, SumAssuredMax: 100000,
		Features: []string{"7 plan options", "Cover continuance benefit", "Critical illness", "Joint life cover", "Return of premium"},
		PlanURL:  "https://www.axismaxlife.com/term-insurance/smart-term-plan-plus",
	},
	{
		Key: "india first", DisplayName: "IndiaFirst Life", FlagshipPlan: "e-Term Plan",
		PremiumAnnual: 7500, AgeMin: 18, AgeMax: 65, TermMin: 5, TermMax: 40,
		SumAssuredMin: 50, SumAssuredMax: 100000,
		Features: []string{"e-Term Plan", "Critical illness", "Accidental death", "Flexible payout", "Online process"},
		PlanURL:  "https://www.indiafirstlife.com/term-insurance",
	},
	{
		Key: "hdfc", DisplayName: "HDFC Life", FlagshipPlan: "Click 2 Protect Super",
		PremiumAnnual: 9200, AgeMin: 18, AgeMax: 65, TermMin: 10, TermMax: 40,
		SumAssuredMin: 50, SumAssuredMax: 20000,
		Features: []string{"Life & CI Rebalance", "Income benefit option", "Return of premium", "Waiver on disability", "Cover till age 85"},
		PlanURL:  "https://www.hdfclife.com/term-insurance-plans/click-2-protect-super",
	},
	{
		Key: "icici", DisplayName: "ICICI Prudential", FlagshipPlan: "iProtect Smart",
		PremiumAnnual: 8800, AgeMin: 18, AgeMax: 65, TermMin: 5, TermMax: 40,
		SumAssuredMin: 50, SumAssuredMax: 20000,
		Features: []string{"4 plan options", "Critical illness cover", "Accidental death benefit", "Waiver of premium", "Terminal illness benefit"},
		PlanURL:  "https://www.iciciprulife.com/term-insurance/iprotect-smart-term-plan.html",
	},
	{
		Key: "max", DisplayName: "Max Life", FlagshipPlan: "Smart Secure Plus",
		PremiumAnnual: 8100, AgeMin: 18, AgeMax: 60, TermMin: 10, TermMax: 50,
		SumAssuredMin: 25, SumAssuredMax: 100000,
		Features: []string{"Highest CSR in private sector", "Critical illness rider", "Terminal illness benefit", "Accidental death cover", "Joint life cover"},
		PlanURL:  "https://www.maxlifeinsurance.com/term-insurance-plans/smart-secure-plus-plan",
	},
	{
		Key: "tata", DisplayName: "Tata AIA", FlagshipPlan: "Sampoorna Raksha Supreme",
		PremiumAnnual: 8300, AgeMin: 18, AgeMax: 65, TermMin: 10, TermMax: 40,
		SumAssuredMin: 50, SumAssuredMax: 100000,
		Features: []string{"Whole life cover option", "Increasing income option", "Disability benefit", "Waiver of premium", "Comprehensive protection"},
		PlanURL:  "https://www.tataaia.com/all-products/life-insurance/term-insurance/sampoorna-raksha-supreme.html",
	},
	{
		Key: "sbi", DisplayName: "SBI Life", FlagshipPlan: "eShield Next",
		PremiumAnnual: 7800, AgeMin: 18, AgeMax: 65, TermMin: 5, TermMax: 40,
		SumAssuredMin: 35, SumAssuredMax: 20000,
		Features: []string{"3 plan options", "Increasing cover", "Level cover", "Return of premium", "Flexible premium payment"},
		PlanURL:  "https://www.sbilife.co.in/en/individual-life-insurance/term-insurance/eshield-next",
	},
	{
		Key: "bajaj", DisplayName: "Bajaj Allianz", FlagshipPlan: "eTouch Online Term",
		PremiumAnnual: 7200, AgeMin: 18, AgeMax: 65, TermMin: 10, TermMax: 40,
		SumAssuredMin: 25, SumAssuredMax: 100000,
		Features: []string{"Discount on high sum assured", "Flexible payout options", "Cover continuance", "Critical illness rider", "Online process"},
		PlanURL:  "https://www.bajajallianzlife.com/term-insurance/etouch-online-term-plan.html",
	},
	{
		Key: "kotak", DisplayName: "Kotak Life", FlagshipPlan: "e-Term Plan",
		PremiumAnnual: 7500, AgeMin: 18, AgeMax: 65, TermMin: 10, TermMax: 40,
		SumAssuredMin: 25, SumAssuredMax: 100000,
		Features: []string{"Low premiums", "3 plan options", "Critical illness optional", "Accidental death benefit", "Online discount"},
		PlanURL:  "https://www.kotaklife.com/online-plans/term-insurance/kotak-e-term",
	},
	{
		Key: "lic", Aliases: []string{"life insurance corporation"}, DisplayName: "LIC", FlagshipPlan: "Tech Term Plan",
		PremiumAnnual: 8500, AgeMin: 18, AgeMax: 65, TermMin: 10, TermMax: 40,
		SumAssuredMin: 50, SumAssuredMax: 10000,
		Features: []string{"Pure term plan", "Online purchase", "Return of premium option", "Accidental death benefit", "Government-backed"},
		PlanURL:  "https://www.licindia.in/Products/Insurance-Plan/lic-tech-term",
	},
	{
		Key: "pnb", DisplayName: "PNB MetLife", FlagshipPlan: "Mera Term Plan Plus",
		PremiumAnnual: 8400, AgeMin: 18, AgeMax: 65, TermMin: 10, TermMax: 40,
		SumAssuredMin: 25, SumAssuredMax: 100000,
		Features: []string{"Flexible cover options", "Critical illness", "Accidental death", "Return of premium", "Family income benefit"},
		PlanURL:  "https://www.pnbmetlife.com/products/protection/mera-term-plan-plus.html",
	},
	{
		Key: "edelweiss", DisplayName: "Edelweiss Life", FlagshipPlan: "Total Protect Plus",
		PremiumAnnual: 7700, AgeMin: 18, AgeMax: 65, TermMin: 10, TermMax: 40,
		SumAssuredMin: 25, SumAssuredMax: 100000,
		Features: []string{"Total Protect Plus", "Critical illness", "Accidental death", "Income benefit", "Waiver of premium"},
		PlanURL:  "https://www.edelweisslife.in/term-insurance/total-protect-plus",
	},
	{
		Key: "aditya", DisplayName: "Aditya Birla Sun Life", FlagshipPlan: "DigiShield Plan",
		PremiumAnnual: 8600, AgeMin: 18, AgeMax: 65, TermMin: 10, TermMax: 40,
		SumAssuredMin: 30, SumAssuredMax: 100000,
		Features: []string{"Comprehensive protection", "Critical illness", "Accidental death", "Income benefit", "Waiver of premium"},
		PlanURL:  "https://lifeinsurance.adityabirlacapital.com/term-insurance/shield-plan",
	},
	{
		Key: "birla", DisplayName: "Aditya Birla Sun Life", FlagshipPlan: "DigiShield Plan",
		PremiumAnnual: 8600, AgeMin: 18, AgeMax: 65, TermMin: 10, TermMax: 40,
		SumAssuredMin: 30, SumAssuredMax: 100000,
		Features: []string{"Comprehensive protection", "Critical illness", "Accidental death", "Income benefit", "Waiver of premium"},
		PlanURL:  "https://lifeinsurance.adityabirlacapital.com/term-insurance/shield-plan",
	},
	{
		Key: "aegon", DisplayName: "Aegon Life", FlagshipPlan: "iTerm Prime Plan",
		PremiumAnnual: 7600, AgeMin: 18, AgeMax: 65, TermMin: 5, TermMax: 40,
		SumAssuredMin: 25, SumAssuredMax: 100000,
		Features: []string{"Affordable premiums", "Return of premium option", "Critical illness", "Accidental death", "Income benefit"},
		PlanURL:  "https://www.aegonlife.com/insurance-products/iTerm-Prime",
	},
	{
		Key: "reliance", DisplayName: "Reliance Nippon Life", FlagshipPlan: "Digi-Term Plan",
		PremiumAnnual: 7600, AgeMin: 18, AgeMax: 60, TermMin: 10, TermMax: 35,
		SumAssuredMin: 25, SumAssuredMax: 100000,
		Features: []string{"Affordable premiums", "Flexible sum assured", "Critical illness", "Accidental death", "Online purchase"},
		PlanURL:  "https://www.reliancenipponlife.com/term-insurance/digi-term",
	},
	{
		Key: "canara", DisplayName: "Canara HSBC Life", FlagshipPlan: "iSelect Smart360",
		PremiumAnnual: 7900, AgeMin: 18, AgeMax: 65, TermMin: 5, TermMax: 40,
		SumAssuredMin: 25, SumAssuredMax: 100000,
		Features: []string{"Flexible cover options", "Increasing cover", "Critical illness add-on", "Return of premium", "Joint life cover"},
		PlanURL:  "https://www.canarahsbclife.com/term-insurance",
	},
	{
		Key: "future", DisplayName: "Future Generali", FlagshipPlan: "Smart Life Plan",
		PremiumAnnual: 7400, AgeMin: 18, AgeMax: 65, TermMin: 10, TermMax: 35,
		SumAssuredMin: 25, SumAssuredMax: 100000,
		Features: []string{"Affordable premiums", "Flexible payout", "Critical illness", "Accidental death", "Online process"},
		PlanURL:  "https://www.futuregenerali.in/life-insurance/term-insurance",
	},
	{
		Key: "bharti", DisplayName: "Bharti AXA Life", FlagshipPlan: "Smart Jeevan",
		PremiumAnnual: 8200, AgeMin: 18, AgeMax: 65, TermMin: 10, TermMax: 40,
		SumAssuredMin: 25, SumAssuredMax: 100000,
		Features: []string{"Comprehensive cover", "Critical illness", "Accidental death", "Income benefit", "Waiver of premium"},
		PlanURL:  "https://www.bharti-axalife.com/products/protection/smart-jeevan-plan",
	},
	{
		Key: "aviva", DisplayName: "Aviva India", FlagshipPlan: "i-Term Smart",
		PremiumAnnual: 8000, AgeMin: 18, AgeMax: 60, TermMin: 10, TermMax: 35,
		SumAssuredMin: 25, SumAssuredMax: 100000,
		Features: []string{"Multiple options", "Critical illness", "Accidental death", "Return of premium", "Flexible payment"},
		PlanURL:  "https://www.avivaindiablog.com/life-insurance/term-insurance",
	},
	{
		Key: "idbi", DisplayName: "IDBI Federal Life", FlagshipPlan: "iSurance Flexi Term",
		PremiumAnnual: 8300, AgeMin: 18, AgeMax: 65, TermMin: 10, TermMax: 40,
		SumAssuredMin: 25, SumAssuredMax: 100000,
		Features: []string{"Flexible term", "Critical illness", "Accidental death", "Online purchase", "Affordable premiums"},
		PlanURL:  "https://www.idbifederal.com/term-insurance",
	},
}

// LookupProvider resolves freeform provider text against the alias table with
// case-insensitive substring matching. Declaration order breaks ties. The
// second return is false when no alias matches.
func LookupProvider(text string) (ProviderInfo, bool) {
	t := strings.ToLower(text)
	for _, p := range providers {
		if strings.Contains(t, p.Key) {
			return p, true
		}
		for _, alias := range p.Aliases {
			if strings.Contains(t, alias) {
				return p, true
			}
		}
	}
	return ProviderInfo{}, false
}

// ProviderByKey returns the reference entry for an exact alias key.
func ProviderByKey(key string) (ProviderInfo, bool) {
	for _, p := range providers {
		if p.Key == key {
			return p, true
		}
	}
	return ProviderInfo{}, false
}

// DisplayName resolves provider text to a canonical display name, falling
// back to the trimmed input when no alias matches. Using one spelling per
// insurer keeps the (plan_name, provider) key stable across sources.
func DisplayName(text string) string {
	if p, ok := LookupProvider(text); ok {
		return p.DisplayName
	}
	return strings.TrimSpace(text)
}

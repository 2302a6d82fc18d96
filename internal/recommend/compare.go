package recommend

import (
	"strings"

	"github.com/coverscan/coverscan/internal/model"
)

// jaccardThreshold is the minimum token-set similarity for a fuzzy plan-name
// match. Below it a key is dropped, never guessed.
const jaccardThreshold = 0.25

// NormalizePlanKey maps a possibly-inexact plan name returned by an LLM back
// to one of the caller's exact plan names. Tries exact match, then
// case-insensitive match, then token-overlap similarity.
func NormalizePlanKey(got string, exact []string) (string, bool) {
	for _, name := range exact {
		if got == name {
			return name, true
		}
	}
	for _, name := range exact {
		if strings.EqualFold(got, name) {
			return name, true
		}
	}

	gotTokens := tokenSet(got)
	best := ""
	bestScore := 0.0
	for _, name := range exact {
		if score := jaccard(gotTokens, tokenSet(name)); score > bestScore {
			best, bestScore = name, score
		}
	}
	if bestScore >= jaccardThreshold {
		return best, true
	}
	return "", false
}

// normalizeComparison rewrites the winner and each table row to the caller's
// exact plan names. Rows whose name cannot be reconciled are dropped.
func normalizeComparison(cmp *model.Comparison, plans []model.Plan) {
	exact := make([]string, 0, len(plans))
	byName := make(map[string]model.Plan, len(plans))
	for _, p := range plans {
		exact = append(exact, p.PlanName)
		byName[p.PlanName] = p
	}

	if name, ok := NormalizePlanKey(cmp.Winner, exact); ok {
		cmp.Winner = name
	} else {
		cmp.Winner = ""
	}

	rows := cmp.ComparisonTable[:0]
	for _, row := range cmp.ComparisonTable {
		name, ok := NormalizePlanKey(row.PlanName, exact)
		if !ok {
			continue
		}
		row.PlanName = name
		// Numbers come from the store, not from the model.
		p := byName[name]
		row.Provider = p.Provider
		row.PremiumAnnual = p.PremiumAnnual
		row.ClaimSettlementRatio = p.ClaimSettlementRatio
		rows = append(rows, row)
	}
	cmp.ComparisonTable = rows
}

func tokenSet(s string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, tok := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		out[tok] = struct{}{}
	}
	return out
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

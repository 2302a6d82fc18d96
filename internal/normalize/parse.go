package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	numberRe = regexp.MustCompile(`\d[\d,]*\.?\d*`)
	croreRe  = regexp.MustCompile(`(?i)(cr\b|crore)`)
	lakhRe   = regexp.MustCompile(`(?i)(lakh|lac\b|\bl\b)`)
	monthRe  = regexp.MustCompile(`(?i)(/\s*month|per\s+month|monthly|/mo\b)`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// CollapseSpace trims and squashes runs of whitespace to single spaces.
func CollapseSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// ParseNumber extracts the first number from freeform display text, tolerating
// currency symbols and Indian digit grouping ("₹9,200.50"). Returns false when
// the text carries no digits.
func ParseNumber(s string) (float64, bool) {
	m := numberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseNumbers extracts every number in order of appearance.
func parseNumbers(s string) []float64 {
	var out []float64
	for _, m := range numberRe.FindAllString(s, -1) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
		if err == nil {
			out = append(out, v)
		}
	}
	return out
}

// MonthlyToAnnual converts a monthly premium to the annual figure the store
// keeps.
func MonthlyToAnnual(monthly float64) float64 {
	return monthly * 12
}

// ParsePremium returns the annual premium in INR from display text such as
// "₹9,200/year" or "Starts at ₹995/Month". Text mentioning a monthly cadence
// is multiplied out to annual. Returns false when no number is present.
func ParsePremium(text string) (float64, bool) {
	v, ok := ParseNumber(text)
	if !ok || v <= 0 {
		return 0, false
	}
	if monthRe.MatchString(text) {
		return MonthlyToAnnual(v), true
	}
	return v, true
}

// ParseCSR extracts a claim settlement ratio percentage from text like
// "99.50%" or "CSR: 98.6". Values outside (0, 100] are rejected.
func ParseCSR(text string) (float64, bool) {
	v, ok := ParseNumber(text)
	if !ok || v <= 0 || v > 100 {
		return 0, false
	}
	return v, true
}

// ParseIntRange extracts a [min, max] pair of integers from text like
// "18 - 65 years" or "10 to 40". A single number is treated as the maximum
// with the supplied default minimum. Inverted pairs are swapped.
func ParseIntRange(text string, defMin, defMax int) (int, int) {
	nums := parseNumbers(text)
	switch len(nums) {
	case 0:
		return defMin, defMax
	case 1:
		return defMin, int(nums[0])
	default:
		lo, hi := int(nums[0]), int(nums[1])
		if lo > hi {
			lo, hi = hi, lo
		}
		return lo, hi
	}
}

// ParseSumAssured extracts a cover range in lakhs from text such as
// "₹50 Lakh - ₹1 Cr" or "Up to 2 Crore". Crore figures are converted at
// 1 crore = 100 lakhs. When the text names a single amount it becomes the
// maximum. The unit suffix applies to each number up to its own position:
// in "50 Lakh - 1 Cr" the first number reads as lakhs, the second as crores.
func ParseSumAssured(text string) (float64, float64, bool) {
	locs := numberRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return 0, 0, false
	}

	vals := make([]float64, 0, len(locs))
	for i, loc := range locs {
		raw := strings.ReplaceAll(text[loc[0]:loc[1]], ",", "")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		// The unit for this number is whatever appears between it and the
		// next number (or end of text).
		tail := text[loc[1]:]
		if i+1 < len(locs) {
			tail = text[loc[1]:locs[i+1][0]]
		}
		switch {
		case croreRe.MatchString(tail):
			v *= 100
		case lakhRe.MatchString(tail):
			// already lakhs
		case v >= 100000:
			// Bare rupee amount, convert to lakhs.
			v /= 100000
		}
		vals = append(vals, v)
	}

	switch len(vals) {
	case 0:
		return 0, 0, false
	case 1:
		return DefaultSumAssuredMin, vals[0], true
	default:
		lo, hi := vals[0], vals[1]
		if lo > hi {
			lo, hi = hi, lo
		}
		return lo, hi, true
	}
}

var featureSplitRe = regexp.MustCompile(`[|•·;\n]+`)

// SplitFeatures breaks a delimited feature blob into clean items, capped at
// five per plan to keep comparison tables readable.
func SplitFeatures(text string) []string {
	var out []string
	for _, part := range featureSplitRe.Split(text, -1) {
		part = CollapseSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
		if len(out) == 5 {
			break
		}
	}
	return out
}

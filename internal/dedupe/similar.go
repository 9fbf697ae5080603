package dedupe

import (
	"strings"
	"unicode"

	"github.com/Avinav1299/RealityCheck-sub000/internal/models"
)

// tokens splits a title into its lowercase word set. Punctuation is dropped
// so reordered or re-punctuated titles compare equal.
func tokens(title string) map[string]struct{} {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	set := make(map[string]struct{})
	for _, f := range strings.Fields(b.String()) {
		set[f] = struct{}{}
	}
	return set
}

func setSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	var common int
	for tok := range small {
		if _, ok := large[tok]; ok {
			common++
		}
	}
	return float64(common) / float64(len(large))
}

// Similarity compares two titles as token sets: intersection size over the
// larger set size. Empty titles score zero against everything.
func Similarity(a, b string) float64 {
	return setSimilarity(tokens(a), tokens(b))
}

// Filter drops results whose title is a near-duplicate of an earlier one.
// The first occurrence wins and input order is preserved.
func Filter(results []models.CanonicalResult, threshold float64) []models.CanonicalResult {
	if len(results) < 2 {
		return results
	}

	kept := make([]models.CanonicalResult, 0, len(results))
	keptSets := make([]map[string]struct{}, 0, len(results))

	for _, r := range results {
		set := tokens(r.Title)
		dup := false
		for _, prev := range keptSets {
			if setSimilarity(set, prev) > threshold {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		kept = append(kept, r)
		keptSets = append(keptSets, set)
	}
	return kept
}

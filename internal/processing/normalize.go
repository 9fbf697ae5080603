package processing

import (
	"math"
	"strings"

	"github.com/Avinav1299/RealityCheck-sub000/internal/models"
)

// Normalizer converts raw provider results into canonical form using the
// configured category table and position penalty.
type Normalizer struct {
	rules   []models.CategoryRule
	penalty float64
}

// NewNormalizer lowercases the keyword table once so per-result matching
// stays cheap.
func NewNormalizer(rules []models.CategoryRule, positionPenalty float64) *Normalizer {
	lowered := make([]models.CategoryRule, 0, len(rules))
	for _, rule := range rules {
		kws := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		lowered = append(lowered, models.CategoryRule{Name: rule.Name, Keywords: kws})
	}
	return &Normalizer{rules: lowered, penalty: positionPenalty}
}

// Categorize returns the first category whose keywords match the text.
// Rules are checked in table order; no match means general.
func (n *Normalizer) Categorize(text string) models.Category {
	lower := strings.ToLower(text)
	for _, rule := range n.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Name
			}
		}
	}
	return models.CategoryGeneral
}

// Relevance scores how well text answers query. Exact token hits count
// double, substring hits count single, and later list positions are
// penalized. The score is clamped to [0, 1].
func (n *Normalizer) Relevance(query, text string, position int) float64 {
	qtokens := queryTokens(query)
	if len(qtokens) == 0 {
		return 0
	}

	lower := strings.ToLower(text)
	exact := make(map[string]struct{})
	for _, tok := range strings.Fields(punctuation.ReplaceAllString(lower, " ")) {
		exact[tok] = struct{}{}
	}

	var score float64
	for _, qt := range qtokens {
		if _, ok := exact[qt]; ok {
			score += 2
		} else if strings.Contains(lower, qt) {
			score++
		}
	}

	raw := score/float64(len(qtokens)) - n.penalty*float64(position)
	return math.Min(1, math.Max(0, raw))
}

// Normalize converts one raw provider result. Dates resolve from the
// provider field first, then from a date written in the text, and stay
// absent otherwise.
func (n *Normalizer) Normalize(q models.Query, raw models.RawResult, position int) models.CanonicalResult {
	title := StripTags(raw.Title)
	content := StripTags(raw.Content)
	body := title + " " + content

	res := models.CanonicalResult{
		ID:        BuildArticleID(title, raw.URL),
		Title:     title,
		URL:       raw.URL,
		Content:   content,
		Source:    Domain(raw.URL),
		Category:  n.Categorize(body),
		Relevance: n.Relevance(q.Text, body, position),
		Image:     raw.Image,
	}
	if ts, ok := ParsePublished(raw.Published); ok {
		res.Published = &ts
	} else if ts, ok := ExtractDate(body); ok {
		res.Published = &ts
	}
	return res
}

func queryTokens(query string) []string {
	fields := strings.Fields(strings.ToLower(punctuation.ReplaceAllString(query, " ")))
	out := fields[:0]
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

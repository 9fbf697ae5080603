package models

import "time"

// TrendingTopic is one scored entry in the trending list. Score is derived
// from the candidate weight and how completely the search filled the
// requested result budget.
type TrendingTopic struct {
	ID        string            `json:"id"`
	Query     string            `json:"query"`
	Category  Category          `json:"category"`
	Score     float64           `json:"score"`
	Results   []CanonicalResult `json:"results"`
	FetchedAt time.Time         `json:"fetched_at"`
}

// Synthetic reports whether the topic was filled from fallback data.
func (t TrendingTopic) Synthetic() bool {
	for _, r := range t.Results {
		if r.Source != SourceFallback {
			return false
		}
	}
	return len(t.Results) > 0
}

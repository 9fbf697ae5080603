package models

import "time"

// Fact is one labeled value from a knowledge lookup.
type Fact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// KnowledgeContext is the background material returned for a single topic.
type KnowledgeContext struct {
	Topic   string   `json:"topic"`
	Summary string   `json:"summary"`
	Facts   []Fact   `json:"facts,omitempty"`
	Related []string `json:"related_titles,omitempty"`
}

// AggregatedContext bundles an article with background lookups and
// fact-check results. Assembly is best effort: any slice may be empty when
// the corresponding lookups failed. The value is treated as read-only once
// built.
type AggregatedContext struct {
	Topic       string             `json:"topic"`
	Article     CanonicalResult    `json:"article"`
	Keywords    []string           `json:"keywords,omitempty"`
	Background  []KnowledgeContext `json:"background,omitempty"`
	FactChecks  []CanonicalResult  `json:"fact_checks,omitempty"`
	AssembledAt time.Time          `json:"assembled_at"`
}

// Summary is the contract filled by an external summarization collaborator
// from an AggregatedContext.
type Summary struct {
	TLDR          string   `json:"tldr"`
	KeyPoints     []string `json:"key_points,omitempty"`
	Timeline      []string `json:"timeline,omitempty"`
	Context       string   `json:"context,omitempty"`
	Implications  string   `json:"implications,omitempty"`
	TrustScore    float64  `json:"trust_score"`
	RelatedTopics []string `json:"related_topics,omitempty"`
	Sources       []string `json:"sources,omitempty"`
	Confidence    float64  `json:"confidence"`
}

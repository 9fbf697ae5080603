package models

import "time"

// TimelineEvent is one dated entry in a synthesized topic timeline.
// DateEstimated marks dates recovered from freshness wording rather than an
// explicit publish date.
type TimelineEvent struct {
	Date          time.Time `json:"date"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Source        string    `json:"source"`
	Relevance     float64   `json:"relevance"`
	DateEstimated bool      `json:"date_estimated,omitempty"`
}

// TimelineAnalysis is the contract filled by an external analysis
// collaborator from an ordered event list.
type TimelineAnalysis struct {
	Summary           string   `json:"summary"`
	KeyPatterns       []string `json:"key_patterns,omitempty"`
	CauseEffect       []string `json:"cause_effect,omitempty"`
	FuturePredictions []string `json:"future_predictions,omitempty"`
	Significance      string   `json:"significance,omitempty"`
}

package models

import (
	"errors"
	"time"
)

// ErrNoResults reports that an entire fan-out produced zero usable items.
// Leaf failures never surface it; only the enclosing aggregate does.
var ErrNoResults = errors.New("no results")

// SourceFallback tags synthetic results so fabricated data is never
// indistinguishable from live data downstream.
const SourceFallback = "fallback"

// Category classifies a result into one of the UI's news sections.
type Category string

const (
	CategoryGeneral       Category = "general"
	CategoryWorld         Category = "world"
	CategoryPolitics      Category = "politics"
	CategoryTechnology    Category = "technology"
	CategoryBusiness      Category = "business"
	CategoryScience       Category = "science"
	CategoryHealth        Category = "health"
	CategorySports        Category = "sports"
	CategoryEntertainment Category = "entertainment"
)

// ParseCategory maps free-form input to a known category, defaulting to general.
func ParseCategory(raw string) Category {
	switch Category(raw) {
	case CategoryWorld, CategoryPolitics, CategoryTechnology, CategoryBusiness,
		CategoryScience, CategoryHealth, CategorySports, CategoryEntertainment:
		return Category(raw)
	default:
		return CategoryGeneral
	}
}

// CategoryRule binds a category to the keywords that select it. Rules are
// evaluated in table order; the first match wins.
type CategoryRule struct {
	Name     Category `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Query describes one logical search request. Values are not mutated after
// being handed to the executor.
type Query struct {
	Text       string     `json:"text"`
	Categories []Category `json:"categories,omitempty"`
	Start      time.Time  `json:"start,omitempty"`
	End        time.Time  `json:"end,omitempty"`
	MaxResults int        `json:"max_results,omitempty"`
}

// RawResult carries provider-specific fields before normalization. Missing
// fields are expected; the normalizer degrades gracefully.
type RawResult struct {
	Title     string
	URL       string
	Content   string
	Published string
	Image     string
	Engine    string
}

// CanonicalResult is the normalized record used uniformly by all downstream
// consumers regardless of the originating backend.
type CanonicalResult struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	URL       string     `json:"url"`
	Content   string     `json:"content"`
	Source    string     `json:"source"`
	Category  Category   `json:"category"`
	Relevance float64    `json:"relevance"`
	Published *time.Time `json:"published,omitempty"`
	Image     string     `json:"image,omitempty"`
	Author    string     `json:"author,omitempty"`
}

// PublishedOrZero returns the publish time or the zero time when absent.
func (r CanonicalResult) PublishedOrZero() time.Time {
	if r.Published == nil {
		return time.Time{}
	}
	return *r.Published
}

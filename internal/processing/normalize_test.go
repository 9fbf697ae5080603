package processing_test

import (
	"testing"
	"time"

	"github.com/Avinav1299/RealityCheck-sub000/internal/models"
	"github.com/Avinav1299/RealityCheck-sub000/internal/processing"
	"github.com/stretchr/testify/require"
)

func testRules() []models.CategoryRule {
	return []models.CategoryRule{
		{Name: models.CategoryPolitics, Keywords: []string{"election", "senate"}},
		{Name: models.CategoryTechnology, Keywords: []string{"software", "chip"}},
	}
}

func TestCategorize(t *testing.T) {
	n := processing.NewNormalizer(testRules(), 0)

	tests := []struct {
		name string
		text string
		want models.Category
	}{
		{name: "politics", text: "Senate passes the bill", want: models.CategoryPolitics},
		{name: "technology", text: "New chip ships this fall", want: models.CategoryTechnology},
		{name: "table order breaks ties", text: "Election coverage of software", want: models.CategoryPolitics},
		{name: "case insensitive", text: "SENATE vote scheduled", want: models.CategoryPolitics},
		{name: "default general", text: "Nothing matches here", want: models.CategoryGeneral},
		{name: "empty text", text: "", want: models.CategoryGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, n.Categorize(tt.text))
		})
	}
}

func TestRelevance(t *testing.T) {
	n := processing.NewNormalizer(nil, 0.02)

	t.Run("empty query", func(t *testing.T) {
		require.Zero(t, n.Relevance("", "anything", 0))
	})

	t.Run("all exact clamps to one", func(t *testing.T) {
		require.Equal(t, 1.0, n.Relevance("climate summit", "The climate summit opened", 0))
	})

	t.Run("substring scores half of exact", func(t *testing.T) {
		// "climates" only contains the token, "summit" is missing.
		require.InDelta(t, 0.5, n.Relevance("climate summit", "climates are changing", 0), 1e-9)
	})

	t.Run("position penalty", func(t *testing.T) {
		require.InDelta(t, 0.3, n.Relevance("climate summit", "climates are changing", 10), 1e-9)
	})

	t.Run("never negative", func(t *testing.T) {
		require.Zero(t, n.Relevance("climate", "unrelated text", 500))
	})
}

func TestNormalize(t *testing.T) {
	n := processing.NewNormalizer(testRules(), 0.02)
	q := models.Query{Text: "senate vote"}

	t.Run("full result", func(t *testing.T) {
		raw := models.RawResult{
			Title:   "<b>Senate</b> schedules vote",
			URL:     "https://www.example.com/news/1",
			Content: "The chamber meets 2024-01-05 to vote.",
		}
		got := n.Normalize(q, raw, 0)

		require.Equal(t, "Senate schedules vote", got.Title)
		require.Equal(t, "example.com", got.Source)
		require.Equal(t, models.CategoryPolitics, got.Category)
		require.NotEmpty(t, got.ID)
		require.Equal(t, 1.0, got.Relevance)
		require.NotNil(t, got.Published)
		require.True(t, got.Published.Equal(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("provider date wins over text date", func(t *testing.T) {
		raw := models.RawResult{
			Title:     "Senate recap",
			URL:       "https://example.com/2",
			Content:   "Looking back at 2024-01-05.",
			Published: "2023-11-02T10:00:00Z",
		}
		got := n.Normalize(q, raw, 0)
		require.NotNil(t, got.Published)
		require.True(t, got.Published.Equal(time.Date(2023, 11, 2, 10, 0, 0, 0, time.UTC)))
	})

	t.Run("date stays absent", func(t *testing.T) {
		raw := models.RawResult{Title: "Senate watch", URL: "https://example.com/3", Content: "No dates at all."}
		got := n.Normalize(q, raw, 0)
		require.Nil(t, got.Published)
	})
}

package dedupe_test

import (
	"testing"

	"github.com/Avinav1299/RealityCheck-sub000/internal/dedupe"
	"github.com/Avinav1299/RealityCheck-sub000/internal/models"
	"github.com/stretchr/testify/require"
)

func results(titles ...string) []models.CanonicalResult {
	out := make([]models.CanonicalResult, len(titles))
	for i, title := range titles {
		out[i] = models.CanonicalResult{ID: title, Title: title}
	}
	return out
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "Senate passes budget bill", b: "Senate passes budget bill", want: 1},
		{name: "reordered tokens", a: "Senate Passes Budget Bill", b: "Budget Bill Passes Senate", want: 1},
		{name: "punctuation ignored", a: "Senate passes budget bill!", b: "senate, passes: budget bill", want: 1},
		{name: "partial overlap", a: "alpha beta gamma delta epsilon", b: "alpha beta gamma", want: 0.6},
		{name: "disjoint", a: "alpha beta", b: "gamma delta", want: 0},
		{name: "both empty", a: "", b: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, dedupe.Similarity(tt.a, tt.b), 1e-9)
			require.InDelta(t, tt.want, dedupe.Similarity(tt.b, tt.a), 1e-9)
		})
	}
}

func TestFilterDropsRearrangedDuplicates(t *testing.T) {
	in := results(
		"Senate Passes Budget Bill",
		"Budget Bill Passes Senate",
		"Chip factory opens in Ohio",
	)

	got := dedupe.Filter(in, 0.8)
	require.Len(t, got, 2)
	require.Equal(t, "Senate Passes Budget Bill", got[0].Title)
	require.Equal(t, "Chip factory opens in Ohio", got[1].Title)
}

func TestFilterKeepsBelowThreshold(t *testing.T) {
	in := results(
		"alpha beta gamma delta epsilon",
		"alpha beta gamma",
	)

	// Overlap is 0.6, under the 0.8 cutoff.
	got := dedupe.Filter(in, 0.8)
	require.Len(t, got, 2)
}

func TestFilterPreservesOrder(t *testing.T) {
	in := results("one story", "two story lines", "three different headlines")
	got := dedupe.Filter(in, 0.9)
	require.Equal(t, in, got)
}

func TestFilterKeepsEmptyTitles(t *testing.T) {
	in := results("", "", "real headline")
	got := dedupe.Filter(in, 0.8)
	require.Len(t, got, 3)
}

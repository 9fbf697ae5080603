package search_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Avinav1299/RealityCheck-sub000/internal/models"
	"github.com/Avinav1299/RealityCheck-sub000/internal/search"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	resp search.Response
	err  error
}

func (s stubSource) Execute(context.Context, models.Query) (search.Response, error) {
	return s.resp, s.err
}

func TestSyntheticAlwaysTagged(t *testing.T) {
	resp, err := search.Synthetic{}.Execute(context.Background(), models.Query{
		Text:       "grid failure",
		MaxResults: 4,
		Categories: []models.Category{models.CategoryTechnology},
	})
	require.NoError(t, err)
	require.Equal(t, models.SourceFallback, resp.ServedBy)
	require.Len(t, resp.Results, 4)

	for _, r := range resp.Results {
		require.Equal(t, models.SourceFallback, r.Source)
		require.Equal(t, models.CategoryTechnology, r.Category)
		require.Contains(t, r.Title, "grid failure")
		require.NotEmpty(t, r.ID)
	}
}

func TestSyntheticDefaultCount(t *testing.T) {
	resp, err := search.Synthetic{}.Execute(context.Background(), models.Query{Text: "anything"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)
}

func TestFallbackCompositionPassesLiveThrough(t *testing.T) {
	live := stubSource{resp: search.Response{
		Results:  []models.CanonicalResult{{Title: "live story", Source: "example.com"}},
		ServedBy: "https://searx.example",
	}}
	ds := search.LiveWithSyntheticFallback{Live: live, Synthetic: search.Synthetic{}, Log: discardLog()}

	resp, err := ds.Execute(context.Background(), models.Query{Text: "topic"})
	require.NoError(t, err)
	require.Equal(t, "https://searx.example", resp.ServedBy)
	require.Equal(t, "example.com", resp.Results[0].Source)
}

func TestFallbackCompositionServesSynthetic(t *testing.T) {
	live := stubSource{err: errors.New("every instance down")}
	ds := search.LiveWithSyntheticFallback{Live: live, Synthetic: search.Synthetic{}, Log: discardLog()}

	resp, err := ds.Execute(context.Background(), models.Query{Text: "topic", MaxResults: 2})
	require.NoError(t, err)
	require.Equal(t, models.SourceFallback, resp.ServedBy)
	require.Len(t, resp.Results, 2)
	for _, r := range resp.Results {
		require.Equal(t, models.SourceFallback, r.Source)
	}
}

func TestFallbackCompositionHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	live := stubSource{err: context.Canceled}
	ds := search.LiveWithSyntheticFallback{Live: live, Synthetic: search.Synthetic{}, Log: discardLog()}

	_, err := ds.Execute(ctx, models.Query{Text: "topic"})
	require.ErrorIs(t, err, context.Canceled)
}

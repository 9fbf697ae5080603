package trending_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Avinav1299/RealityCheck-sub000/internal/config"
	"github.com/Avinav1299/RealityCheck-sub000/internal/models"
	"github.com/Avinav1299/RealityCheck-sub000/internal/search"
	"github.com/Avinav1299/RealityCheck-sub000/internal/trending"
)

type scriptedSource struct {
	mu    sync.Mutex
	calls int
	fn    func(q models.Query) (search.Response, error)
}

func (s *scriptedSource) Execute(_ context.Context, q models.Query) (search.Response, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.fn(q)
}

func (s *scriptedSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeResults(n int) []models.CanonicalResult {
	out := make([]models.CanonicalResult, n)
	for i := range out {
		out[i] = models.CanonicalResult{
			Title:  fmt.Sprintf("headline %d", i),
			Source: "example.com",
		}
	}
	return out
}

func newService(src search.DataSource, cfg config.Trending) *trending.Service {
	return trending.NewService(src, cfg, discardLog())
}

func TestComputeScoresAndSorts(t *testing.T) {
	src := &scriptedSource{fn: func(q models.Query) (search.Response, error) {
		switch q.Text {
		case "alpha":
			return search.Response{Results: makeResults(8)}, nil
		case "beta":
			return search.Response{Results: makeResults(4)}, nil
		default:
			return search.Response{Results: makeResults(8)}, nil
		}
	}}
	svc := newService(src, config.Trending{ExpectedResults: 8})

	candidates := []trending.Candidate{
		{Query: "beta", Category: models.CategoryWorld, Weight: 1},
		{Query: "gamma", Category: models.CategoryScience, Weight: 0.6},
		{Query: "alpha", Category: models.CategoryTechnology, Weight: 1},
	}

	topics, err := svc.Compute(context.Background(), candidates, trending.DropFailed)
	require.NoError(t, err)
	require.Len(t, topics, 3)

	require.Equal(t, "alpha", topics[0].Query)
	require.InDelta(t, 100.0, topics[0].Score, 1e-9)
	require.Equal(t, "gamma", topics[1].Query)
	require.InDelta(t, 60.0, topics[1].Score, 1e-9)
	require.Equal(t, "beta", topics[2].Query)
	require.InDelta(t, 50.0, topics[2].Score, 1e-9)

	for _, tp := range topics {
		require.NotEmpty(t, tp.ID)
		require.False(t, tp.FetchedAt.IsZero())
		require.False(t, tp.Synthetic())
	}
}

func TestComputeDropsFailedCandidates(t *testing.T) {
	src := &scriptedSource{fn: func(q models.Query) (search.Response, error) {
		if q.Text == "beta" {
			return search.Response{}, errors.New("upstream down")
		}
		return search.Response{Results: makeResults(8)}, nil
	}}
	svc := newService(src, config.Trending{ExpectedResults: 8})

	candidates := []trending.Candidate{
		{Query: "alpha", Weight: 1},
		{Query: "beta", Weight: 1},
	}

	topics, err := svc.Compute(context.Background(), candidates, trending.DropFailed)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	require.Equal(t, "alpha", topics[0].Query)
}

func TestComputeSyntheticFallbackKeepsShape(t *testing.T) {
	src := &scriptedSource{fn: func(q models.Query) (search.Response, error) {
		if q.Text == "beta" {
			return search.Response{}, errors.New("upstream down")
		}
		return search.Response{Results: makeResults(8)}, nil
	}}
	svc := newService(src, config.Trending{ExpectedResults: 8, ResultsPerTopic: 8})

	candidates := []trending.Candidate{
		{Query: "alpha", Weight: 1},
		{Query: "beta", Category: models.CategoryWorld, Weight: 1},
	}

	topics, err := svc.Compute(context.Background(), candidates, trending.SyntheticFallback)
	require.NoError(t, err)
	require.Len(t, topics, 2)

	require.Equal(t, "alpha", topics[0].Query)

	degraded := topics[1]
	require.Equal(t, "beta", degraded.Query)
	require.True(t, degraded.Synthetic())
	require.NotEmpty(t, degraded.Results)
	for _, r := range degraded.Results {
		require.Equal(t, models.SourceFallback, r.Source)
	}
	require.InDelta(t, 37.5, degraded.Score, 1e-9)
}

func TestComputeAllFailedDropped(t *testing.T) {
	src := &scriptedSource{fn: func(models.Query) (search.Response, error) {
		return search.Response{}, errors.New("upstream down")
	}}
	svc := newService(src, config.Trending{})

	_, err := svc.Compute(context.Background(), []trending.Candidate{{Query: "alpha", Weight: 1}}, trending.DropFailed)
	require.ErrorIs(t, err, models.ErrNoResults)
}

func TestComputeNoCandidates(t *testing.T) {
	svc := newService(&scriptedSource{fn: func(models.Query) (search.Response, error) {
		return search.Response{}, nil
	}}, config.Trending{})

	_, err := svc.Compute(context.Background(), nil, trending.DropFailed)
	require.ErrorIs(t, err, models.ErrNoResults)
}

func TestTrendingSnapshotAndRefresh(t *testing.T) {
	src := &scriptedSource{fn: func(models.Query) (search.Response, error) {
		return search.Response{Results: makeResults(8)}, nil
	}}
	svc := newService(src, config.Trending{
		Candidates: []config.Candidate{
			{Query: "alpha", Weight: 1},
			{Query: "beta", Weight: 1},
		},
		CacheTTL: 30 * time.Millisecond,
	})

	topics, err := svc.Trending(context.Background())
	require.NoError(t, err)
	require.Len(t, topics, 2)
	require.Equal(t, 2, src.callCount())

	_, err = svc.Trending(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, src.callCount())

	time.Sleep(40 * time.Millisecond)

	_, err = svc.Trending(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, src.callCount())
}

func TestTrendingCollapsesConcurrentRefresh(t *testing.T) {
	src := &scriptedSource{fn: func(models.Query) (search.Response, error) {
		time.Sleep(10 * time.Millisecond)
		return search.Response{Results: makeResults(8)}, nil
	}}
	svc := newService(src, config.Trending{
		Candidates: []config.Candidate{
			{Query: "alpha", Weight: 1},
			{Query: "beta", Weight: 1},
		},
		CacheTTL: time.Minute,
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Trending(context.Background())
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Equal(t, 2, src.callCount())
}

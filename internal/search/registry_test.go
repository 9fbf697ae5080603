package search_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/Avinav1299/RealityCheck-sub000/internal/config"
	"github.com/Avinav1299/RealityCheck-sub000/internal/models"
	"github.com/Avinav1299/RealityCheck-sub000/internal/search"
	"github.com/stretchr/testify/require"
)

func wrapQueryCapture(dst *url.Values) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*dst = r.URL.Query()
		searxJSON()(w, r)
	}
}

func TestNewRegistryRejectsUnknownKind(t *testing.T) {
	_, err := search.NewRegistry(config.Search{
		Instances: []config.Instance{{URL: "http://x", Kind: "sqlite"}},
	}, discardLog())
	require.ErrorContains(t, err, "unknown search instance kind")
}

func TestNewRegistryRequiresInstances(t *testing.T) {
	_, err := search.NewRegistry(config.Search{}, discardLog())
	require.ErrorIs(t, err, search.ErrNoInstances)
}

func TestRegistrySnapshotInitialState(t *testing.T) {
	reg, err := search.NewRegistry(config.Search{
		Instances: []config.Instance{
			{URL: "https://one.example", Kind: "searxng"},
			{URL: "https://two.example", Kind: "searxng"},
		},
	}, discardLog())
	require.NoError(t, err)

	snap := reg.Snapshot()
	require.Len(t, snap, 2)
	for _, st := range snap {
		require.Equal(t, "closed", st.State)
		require.Equal(t, search.KindSearxNG, st.Kind)
		require.Nil(t, st.LastUsed)
	}
}

func TestRegistryNextCycles(t *testing.T) {
	reg, err := search.NewRegistry(config.Search{
		Instances: []config.Instance{
			{URL: "https://one.example", Kind: "searxng"},
			{URL: "https://two.example", Kind: "searxng"},
			{URL: "https://three.example", Kind: "searxng"},
		},
	}, discardLog())
	require.NoError(t, err)

	var order []string
	for i := 0; i < 6; i++ {
		order = append(order, reg.Next().URL())
	}
	require.Equal(t, []string{
		"https://one.example", "https://two.example", "https://three.example",
		"https://one.example", "https://two.example", "https://three.example",
	}, order)
}

func TestSearxNGRequestShape(t *testing.T) {
	var got url.Values
	s := httptest.NewServer(wrapQueryCapture(&got))
	defer s.Close()

	ex, _ := newExecutor(t, fastPolicy(), s.URL)

	_, err := ex.Execute(context.Background(), models.Query{
		Text:       "solar flare",
		Categories: []models.Category{models.CategoryScience},
		Start:      time.Now().Add(-2 * time.Hour),
	})
	require.NoError(t, err)

	require.Equal(t, "solar flare", got.Get("q"))
	require.Equal(t, "json", got.Get("format"))
	require.Equal(t, "science", got.Get("categories"))
	require.Equal(t, "day", got.Get("time_range"))
}

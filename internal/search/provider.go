package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Avinav1299/RealityCheck-sub000/internal/config"
	"github.com/Avinav1299/RealityCheck-sub000/internal/models"
)

// Kind names a provider implementation.
type Kind string

const (
	KindSearxNG       Kind = "searxng"
	KindElasticsearch Kind = "elasticsearch"
)

// Provider executes one search request against one backend. Implementations
// return raw provider fields; normalization happens in the executor.
type Provider interface {
	Kind() Kind
	Search(ctx context.Context, q models.Query) ([]models.RawResult, error)
}

type builder func(cfg config.Instance, client *http.Client) (Provider, error)

// builders dispatches instance construction by kind. Supporting a new
// backend means adding an entry here.
var builders = map[Kind]builder{
	KindSearxNG:       newSearxNG,
	KindElasticsearch: newElastic,
}

func newProvider(cfg config.Instance, client *http.Client) (Provider, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(cfg.Kind)))
	if kind == "" {
		kind = KindSearxNG
	}
	build, ok := builders[kind]
	if !ok {
		return nil, fmt.Errorf("unknown search instance kind %q", cfg.Kind)
	}
	return build(cfg, client)
}

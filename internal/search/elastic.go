package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/Avinav1299/RealityCheck-sub000/internal/config"
	"github.com/Avinav1299/RealityCheck-sub000/internal/models"
)

// elastic queries a read-only article index maintained outside this
// service. It participates in the rotation like any other instance.
type elastic struct {
	es    *elasticsearch.Client
	index string
}

type indexedArticle struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Content   string `json:"content"`
	Published string `json:"published"`
	Image     string `json:"image"`
	Category  string `json:"category"`
}

func newElastic(cfg config.Instance, _ *http.Client) (Provider, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	index := cfg.Index
	if index == "" {
		index = "articles"
	}
	return &elastic{es: es, index: index}, nil
}

func (e *elastic) Kind() Kind { return KindElasticsearch }

func (e *elastic) Search(ctx context.Context, q models.Query) ([]models.RawResult, error) {
	size := q.MaxResults
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}

	must := make([]map[string]any, 0, 1)
	filters := make([]map[string]any, 0, 2)

	if q.Text != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":  q.Text,
				"fields": []string{"title^2", "content"},
			},
		})
	}

	if len(q.Categories) > 0 {
		cats := make([]string, 0, len(q.Categories))
		for _, c := range q.Categories {
			cats = append(cats, string(c))
		}
		filters = append(filters, map[string]any{
			"terms": map[string]any{"category": cats},
		})
	}

	if !q.Start.IsZero() || !q.End.IsZero() {
		rangeQuery := map[string]any{}
		if !q.Start.IsZero() {
			rangeQuery["gte"] = q.Start.UTC().Format(time.RFC3339)
		}
		if !q.End.IsZero() {
			rangeQuery["lte"] = q.End.UTC().Format(time.RFC3339)
		}
		filters = append(filters, map[string]any{
			"range": map[string]any{"published": rangeQuery},
		})
	}

	boolQuery := map[string]any{}
	if len(must) > 0 {
		boolQuery["must"] = must
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}
	if len(must) == 0 && len(filters) == 0 {
		boolQuery["must"] = []map[string]any{
			{"match_all": map[string]any{}},
		}
	}

	body := map[string]any{
		"size":  size,
		"query": map[string]any{"bool": boolQuery},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search body: %w", err)
	}

	res, err := e.es.Search(
		e.es.Search.WithContext(ctx),
		e.es.Search.WithIndex(e.index),
		e.es.Search.WithBody(bytes.NewReader(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("search index %s: %w", e.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, &StatusError{Endpoint: e.index, Code: res.StatusCode}
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source indexedArticle `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]models.RawResult, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		doc := hit.Source
		out = append(out, models.RawResult{
			Title:     doc.Title,
			URL:       doc.URL,
			Content:   doc.Content,
			Published: doc.Published,
			Image:     doc.Image,
			Engine:    string(KindElasticsearch),
		})
	}
	return out, nil
}

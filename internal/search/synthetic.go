package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Avinav1299/RealityCheck-sub000/internal/models"
	"github.com/Avinav1299/RealityCheck-sub000/internal/processing"
)

const syntheticBody = "Live sources were unreachable when this entry was generated. " +
	"It is placeholder filler, not retrieved content."

// Synthetic fabricates placeholder results for callers that must render
// something when live backends are down. Every result carries
// Source == models.SourceFallback so fabricated data can never be mistaken
// for live data downstream.
type Synthetic struct{}

func (Synthetic) Execute(_ context.Context, q models.Query) (Response, error) {
	n := q.MaxResults
	if n <= 0 || n > 5 {
		n = 3
	}

	topic := strings.TrimSpace(q.Text)
	if topic == "" {
		topic = "current events"
	}
	category := models.CategoryGeneral
	if len(q.Categories) > 0 {
		category = q.Categories[0]
	}

	results := make([]models.CanonicalResult, 0, n)
	for i := 0; i < n; i++ {
		title := fmt.Sprintf("%s: placeholder report %d", topic, i+1)
		results = append(results, models.CanonicalResult{
			ID:       processing.BuildArticleID(title, ""),
			Title:    title,
			Content:  syntheticBody,
			Source:   models.SourceFallback,
			Category: category,
		})
	}
	return Response{Results: results, ServedBy: models.SourceFallback}, nil
}

// LiveWithSyntheticFallback serves live results and degrades to synthetic
// ones instead of failing. Callers opt into the composition explicitly; the
// plain Executor never fabricates data on its own.
type LiveWithSyntheticFallback struct {
	Live      DataSource
	Synthetic DataSource
	Log       *slog.Logger
}

func (d LiveWithSyntheticFallback) Execute(ctx context.Context, q models.Query) (Response, error) {
	resp, err := d.Live.Execute(ctx, q)
	if err == nil {
		return resp, nil
	}
	if ctx.Err() != nil {
		return Response{}, ctx.Err()
	}
	if d.Log != nil {
		d.Log.Warn("live search failed, serving synthetic fallback",
			"query", q.Text, "error", err)
	}
	return d.Synthetic.Execute(ctx, q)
}

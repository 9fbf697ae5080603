package timeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Avinav1299/RealityCheck-sub000/internal/config"
	"github.com/Avinav1299/RealityCheck-sub000/internal/dedupe"
	"github.com/Avinav1299/RealityCheck-sub000/internal/models"
	"github.com/Avinav1299/RealityCheck-sub000/internal/processing"
	"github.com/Avinav1299/RealityCheck-sub000/internal/search"
)

// Analyzer is implemented by an external collaborator that narrates an
// ordered event list.
type Analyzer interface {
	Analyze(ctx context.Context, topic string, events []models.TimelineEvent) (models.TimelineAnalysis, error)
}

// queryVariants are the angles a topic is fanned out through. Each variant
// pulls a different slice of the coverage.
var queryVariants = []string{
	"%s timeline of events",
	"%s history chronology",
	"when did %s start",
	"%s recent developments",
	"%s sequence of events",
}

const descriptionLimit = 280

// Synthesizer builds dated timelines from the variant fan-out.
type Synthesizer struct {
	source     search.DataSource
	perVariant int
	maxEvents  int
	epsilon    float64
	threshold  float64
	log        *slog.Logger
}

// NewSynthesizer wires the search source. threshold is the duplicate
// similarity cutoff shared with the rest of the pipeline.
func NewSynthesizer(source search.DataSource, cfg config.Timeline, threshold float64, log *slog.Logger) *Synthesizer {
	perVariant := cfg.ResultsPerVariant
	if perVariant <= 0 {
		perVariant = 5
	}
	maxEvents := cfg.MaxEvents
	if maxEvents <= 0 {
		maxEvents = 15
	}
	epsilon := cfg.Epsilon
	if epsilon < 0 {
		epsilon = 0.05
	}
	if threshold <= 0 {
		threshold = 0.8
	}

	return &Synthesizer{
		source:     source,
		perVariant: perVariant,
		maxEvents:  maxEvents,
		epsilon:    epsilon,
		threshold:  threshold,
		log:        log,
	}
}

// Build fans the topic out through every query variant and synthesizes at
// most maxEvents dated events. Failed variants shrink the pool; only an
// empty pool errors.
func (s *Synthesizer) Build(ctx context.Context, topic string) ([]models.TimelineEvent, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, fmt.Errorf("empty timeline topic")
	}

	batches := make([][]models.CanonicalResult, len(queryVariants))

	var wg sync.WaitGroup
	for i, variant := range queryVariants {
		wg.Add(1)
		go func(i int, variant string) {
			defer wg.Done()

			q := models.Query{Text: fmt.Sprintf(variant, topic), MaxResults: s.perVariant}
			resp, err := s.source.Execute(ctx, q)
			if err != nil {
				s.log.Warn("timeline variant failed", "query", q.Text, "error", err)
				return
			}
			batches[i] = resp.Results
		}(i, variant)
	}
	wg.Wait()

	var pool []models.CanonicalResult
	for _, batch := range batches {
		pool = append(pool, batch...)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("timeline %q: %w", topic, models.ErrNoResults)
	}

	pool = dedupe.Filter(pool, s.threshold)

	now := time.Now().UTC()
	events := make([]models.TimelineEvent, 0, len(pool))
	for _, r := range pool {
		events = append(events, eventFrom(r, now))
	}

	s.sortEvents(events)
	if len(events) > s.maxEvents {
		events = events[:s.maxEvents]
	}
	return events, nil
}

// eventFrom dates a result: the explicit publish date, then a date written
// in the text, then an estimate from its freshness wording.
func eventFrom(r models.CanonicalResult, now time.Time) models.TimelineEvent {
	ev := models.TimelineEvent{
		Title:       r.Title,
		Description: clip(r.Content, descriptionLimit),
		Source:      r.Source,
		Relevance:   r.Relevance,
	}

	if r.Published != nil {
		ev.Date = r.Published.UTC()
		return ev
	}

	text := r.Title + " " + r.Content
	if ts, ok := processing.ExtractDate(text); ok {
		ev.Date = ts
		return ev
	}
	ev.Date = processing.FreshnessDate(text, now)
	ev.DateEstimated = true
	return ev
}

// sortEvents orders by relevance with newest first inside a band.
// Relevance gaps smaller than epsilon count as ties, so fresher coverage
// of equally relevant hits surfaces first.
func (s *Synthesizer) sortEvents(events []models.TimelineEvent) {
	band := func(rel float64) int {
		if s.epsilon == 0 {
			return int(math.Round(rel * 1e9))
		}
		return int(math.Round(rel / s.epsilon))
	}
	sort.SliceStable(events, func(i, j int) bool {
		bi, bj := band(events[i].Relevance), band(events[j].Relevance)
		if bi != bj {
			return bi > bj
		}
		return events[i].Date.After(events[j].Date)
	})
}

func clip(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := strings.LastIndex(text[:limit], " ")
	if cut <= 0 {
		cut = limit
	}
	return text[:cut] + "..."
}

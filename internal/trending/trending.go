package trending

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/Avinav1299/RealityCheck-sub000/internal/config"
	"github.com/Avinav1299/RealityCheck-sub000/internal/models"
	"github.com/Avinav1299/RealityCheck-sub000/internal/search"
)

// FailurePolicy decides what a failed candidate contributes.
type FailurePolicy int

const (
	// DropFailed omits candidates whose search failed.
	DropFailed FailurePolicy = iota
	// SyntheticFallback substitutes tagged placeholder results so the
	// topic list keeps its shape.
	SyntheticFallback
)

// ParsePolicy maps an API-facing name to a policy, defaulting to drop.
func ParsePolicy(raw string) FailurePolicy {
	if raw == "synthetic" {
		return SyntheticFallback
	}
	return DropFailed
}

// Candidate is one weighted trending query.
type Candidate struct {
	Query    string
	Category models.Category
	Weight   float64
}

// Service computes the scored trending list and keeps a short-lived
// snapshot so bursts of callers share one upstream pass.
type Service struct {
	live       search.DataSource
	fallback   search.DataSource
	candidates []Candidate
	perTopic   int
	expected   int
	parallel   int64
	cacheTTL   time.Duration
	refresh    time.Duration
	log        *slog.Logger

	sf        singleflight.Group
	mu        sync.Mutex
	snapshot  []models.TrendingTopic
	fetchedAt time.Time
}

// NewService wires the live source and the configured candidate list.
func NewService(live search.DataSource, cfg config.Trending, log *slog.Logger) *Service {
	candidates := make([]Candidate, 0, len(cfg.Candidates))
	for _, c := range cfg.Candidates {
		if c.Query == "" {
			continue
		}
		weight := c.Weight
		if weight <= 0 {
			weight = 1
		}
		candidates = append(candidates, Candidate{
			Query:    c.Query,
			Category: models.ParseCategory(c.Category),
			Weight:   weight,
		})
	}

	perTopic := cfg.ResultsPerTopic
	if perTopic <= 0 {
		perTopic = 8
	}
	expected := cfg.ExpectedResults
	if expected <= 0 {
		expected = 8
	}
	parallel := cfg.MaxParallel
	if parallel <= 0 {
		parallel = 4
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	refresh := cfg.RefreshTimeout
	if refresh <= 0 {
		refresh = 45 * time.Second
	}

	return &Service{
		live:       live,
		fallback:   search.Synthetic{},
		candidates: candidates,
		perTopic:   perTopic,
		expected:   expected,
		parallel:   int64(parallel),
		cacheTTL:   cacheTTL,
		refresh:    refresh,
		log:        log,
	}
}

// Candidates exposes the configured list so callers can recompute with a
// different failure policy.
func (s *Service) Candidates() []Candidate {
	out := make([]Candidate, len(s.candidates))
	copy(out, s.candidates)
	return out
}

// Compute scores every candidate with bounded parallelism. policy decides
// whether failed candidates vanish or contribute tagged synthetic topics.
// The returned list is always sorted by score, highest first.
func (s *Service) Compute(ctx context.Context, candidates []Candidate, policy FailurePolicy) ([]models.TrendingTopic, error) {
	if len(candidates) == 0 {
		return nil, models.ErrNoResults
	}

	sem := semaphore.NewWeighted(s.parallel)
	topics := make([]*models.TrendingTopic, len(candidates))

	var wg sync.WaitGroup
	for i, cand := range candidates {
		wg.Add(1)
		go func(i int, cand Candidate) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)
			topics[i] = s.computeOne(ctx, cand, policy)
		}(i, cand)
	}
	wg.Wait()

	out := make([]models.TrendingTopic, 0, len(candidates))
	for _, tp := range topics {
		if tp != nil {
			out = append(out, *tp)
		}
	}
	if len(out) == 0 {
		return nil, models.ErrNoResults
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (s *Service) computeOne(ctx context.Context, cand Candidate, policy FailurePolicy) *models.TrendingTopic {
	q := models.Query{
		Text:       cand.Query,
		Categories: []models.Category{cand.Category},
		MaxResults: s.perTopic,
	}

	resp, err := s.live.Execute(ctx, q)
	if err != nil {
		if policy != SyntheticFallback || ctx.Err() != nil {
			s.log.Warn("trending candidate dropped", "query", cand.Query, "error", err)
			return nil
		}
		s.log.Warn("trending candidate degraded to synthetic", "query", cand.Query, "error", err)
		resp, _ = s.fallback.Execute(ctx, q)
	}

	// Score rewards candidates whose search filled the requested budget.
	score := cand.Weight * (float64(len(resp.Results)) / float64(s.expected)) * 100

	return &models.TrendingTopic{
		ID:        uuid.NewString(),
		Query:     cand.Query,
		Category:  cand.Category,
		Score:     score,
		Results:   resp.Results,
		FetchedAt: time.Now().UTC(),
	}
}

// Trending serves the configured candidates from the snapshot, refreshing
// it when stale. Concurrent refreshes collapse into a single upstream pass
// that is detached from any one caller's lifetime.
func (s *Service) Trending(ctx context.Context) ([]models.TrendingTopic, error) {
	s.mu.Lock()
	if s.snapshot != nil && time.Since(s.fetchedAt) < s.cacheTTL {
		cached := s.snapshot
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	v, err, _ := s.sf.Do("trending", func() (any, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.refresh)
		defer cancel()

		topics, err := s.Compute(refreshCtx, s.candidates, DropFailed)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.snapshot = topics
		s.fetchedAt = time.Now()
		s.mu.Unlock()
		return topics, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.TrendingTopic), nil
}

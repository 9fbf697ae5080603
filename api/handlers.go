package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Avinav1299/RealityCheck-sub000/internal/models"
	"github.com/Avinav1299/RealityCheck-sub000/internal/search"
	"github.com/Avinav1299/RealityCheck-sub000/internal/trending"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	instances := s.registry.Snapshot()

	healthy := 0
	for _, inst := range instances {
		if inst.State != "open" {
			healthy++
		}
	}

	status := "ok"
	code := http.StatusOK
	if healthy == 0 {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"instances": instances,
	})
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.searchBudget)
	defer cancel()

	text := strings.TrimSpace(r.URL.Query().Get("q"))
	if text == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "q is required"})
		return
	}

	query := models.Query{
		Text:       text,
		Categories: parseCategories(r.URL.Query().Get("categories")),
		MaxResults: clampInt(r.URL.Query().Get("size"), s.cfg.Search.MaxResults, 50),
	}
	if start := parseTime(r.URL.Query().Get("start")); start != nil {
		query.Start = *start
	}
	if end := parseTime(r.URL.Query().Get("end")); end != nil {
		query.End = *end
	}

	var source search.DataSource = s.executor
	if r.URL.Query().Get("fallback") == "synthetic" {
		source = search.LiveWithSyntheticFallback{Live: s.executor, Synthetic: search.Synthetic{}, Log: s.log}
	}

	resp, err := source.Execute(ctx, query)
	if err != nil {
		var exhausted *search.RetryExhaustedError
		if errors.As(err, &exhausted) {
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: exhausted.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleArticles(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.feedBudget)
	defer cancel()

	category := models.ParseCategory(r.URL.Query().Get("category"))
	limit := clampInt(r.URL.Query().Get("limit"), 20, 100)

	articles, err := s.ingestor.RealWorldArticles(ctx, category, limit)
	if err != nil {
		if errors.Is(err, models.ErrNoResults) {
			writeJSON(w, http.StatusOK, map[string]any{
				"category": category,
				"articles": []models.CanonicalResult{},
			})
			return
		}
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"category": category,
		"articles": articles,
	})
}

func (s *server) handleTrending(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Trending.RefreshTimeout+5*time.Second)
	defer cancel()

	var (
		topics []models.TrendingTopic
		err    error
	)
	if raw := strings.TrimSpace(r.URL.Query().Get("policy")); raw != "" {
		topics, err = s.trending.Compute(ctx, s.trending.Candidates(), trending.ParsePolicy(raw))
	} else {
		topics, err = s.trending.Trending(ctx)
	}
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"topics": topics})
}

func (s *server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.searchBudget+5*time.Second)
	defer cancel()

	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	if topic == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "topic is required"})
		return
	}

	events, err := s.timeline.Build(ctx, topic)
	if err != nil {
		if errors.Is(err, models.ErrNoResults) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "no events found for topic"})
			return
		}
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"topic":  topic,
		"events": events,
	})
}

func (s *server) handleContext(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Enrich.LookupTimeout+s.searchBudget)
	defer cancel()

	var article models.CanonicalResult
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(&article); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid article payload"})
		return
	}
	if strings.TrimSpace(article.Title) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "article title is required"})
		return
	}

	writeJSON(w, http.StatusOK, s.assembler.Assemble(ctx, article))
}

func parseCategories(raw string) []models.Category {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]models.Category, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, models.ParseCategory(trimmed))
		}
	}
	return out
}

func parseTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts
	}
	return nil
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// nothing better to do
	}
}

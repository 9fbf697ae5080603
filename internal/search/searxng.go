package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Avinav1299/RealityCheck-sub000/internal/config"
	"github.com/Avinav1299/RealityCheck-sub000/internal/models"
)

const searxUserAgent = "realitycheck/1.0"

type searxNG struct {
	base   string
	client *http.Client
}

func newSearxNG(cfg config.Instance, client *http.Client) (Provider, error) {
	base := strings.TrimRight(cfg.URL, "/")
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("searxng url %q: %w", cfg.URL, err)
	}
	return &searxNG{base: base, client: client}, nil
}

func (s *searxNG) Kind() Kind { return KindSearxNG }

func (s *searxNG) Search(ctx context.Context, q models.Query) ([]models.RawResult, error) {
	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("format", "json")
	if cats := searxCategories(q.Categories); cats != "" {
		params.Set("categories", cats)
	}
	if tr := searxTimeRange(q.Start); tr != "" {
		params.Set("time_range", tr)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build searxng request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", searxUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searxng %s: %w", s.base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Endpoint: s.base, Code: resp.StatusCode}
	}

	var parsed struct {
		Results []struct {
			Title         string `json:"title"`
			URL           string `json:"url"`
			Content       string `json:"content"`
			PublishedDate string `json:"publishedDate"`
			ImgSrc        string `json:"img_src"`
			Engine        string `json:"engine"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode searxng response: %w", err)
	}

	out := make([]models.RawResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		out = append(out, models.RawResult{
			Title:     r.Title,
			URL:       r.URL,
			Content:   r.Content,
			Published: r.PublishedDate,
			Image:     r.ImgSrc,
			Engine:    r.Engine,
		})
	}
	return out, nil
}

// searxCategories maps internal categories onto the engine's buckets.
func searxCategories(cats []models.Category) string {
	if len(cats) == 0 {
		return "news"
	}

	var out []string
	add := func(bucket string) {
		for _, b := range out {
			if b == bucket {
				return
			}
		}
		out = append(out, bucket)
	}
	for _, c := range cats {
		switch c {
		case models.CategoryTechnology:
			add("it")
		case models.CategoryScience:
			add("science")
		default:
			add("news")
		}
	}
	return strings.Join(out, ",")
}

// searxTimeRange buckets the start bound onto the engine's fixed ranges.
func searxTimeRange(start time.Time) string {
	if start.IsZero() {
		return ""
	}
	age := time.Since(start)
	switch {
	case age <= 24*time.Hour:
		return "day"
	case age <= 31*24*time.Hour:
		return "month"
	case age <= 366*24*time.Hour:
		return "year"
	default:
		return ""
	}
}

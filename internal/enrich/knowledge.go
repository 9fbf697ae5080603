package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Avinav1299/RealityCheck-sub000/internal/models"
	"github.com/Avinav1299/RealityCheck-sub000/internal/search"
)

const knowledgeUserAgent = "realitycheck/1.0"

// KnowledgeClient looks up background material for a topic.
type KnowledgeClient interface {
	Lookup(ctx context.Context, topic string) (models.KnowledgeContext, error)
}

// HTTPKnowledge resolves topics against a wikipedia-compatible REST API.
type HTTPKnowledge struct {
	base   string
	client *http.Client
	log    *slog.Logger
}

func NewHTTPKnowledge(baseURL string, log *slog.Logger) *HTTPKnowledge {
	return &HTTPKnowledge{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}
}

type pageSummary struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Extract     string `json:"extract"`
	Timestamp   string `json:"timestamp"`
}

type relatedPages struct {
	Pages []struct {
		Title string `json:"title"`
	} `json:"pages"`
}

// Lookup fetches the topic summary. A topic the knowledge base does not
// know yields an empty context, not an error. Related titles are best
// effort on top of the summary.
func (k *HTTPKnowledge) Lookup(ctx context.Context, topic string) (models.KnowledgeContext, error) {
	var out models.KnowledgeContext

	var summary pageSummary
	status, err := k.getJSON(ctx, k.base+"/page/summary/"+url.PathEscape(topic), &summary)
	if err != nil {
		return out, err
	}
	if status == http.StatusNotFound {
		return out, nil
	}
	if status != http.StatusOK {
		return out, &search.StatusError{Endpoint: k.base, Code: status}
	}

	out.Topic = summary.Title
	if out.Topic == "" {
		out.Topic = topic
	}
	out.Summary = summary.Extract
	if summary.Description != "" {
		out.Facts = append(out.Facts, models.Fact{Name: "description", Value: summary.Description})
	}
	if summary.Timestamp != "" {
		out.Facts = append(out.Facts, models.Fact{Name: "last_updated", Value: summary.Timestamp})
	}

	var related relatedPages
	if status, err := k.getJSON(ctx, k.base+"/page/related/"+url.PathEscape(topic), &related); err == nil && status == http.StatusOK {
		for i, p := range related.Pages {
			if i == 5 {
				break
			}
			out.Related = append(out.Related, p.Title)
		}
	} else if err != nil {
		k.log.Debug("related lookup failed", "topic", topic, "error", err)
	}

	return out, nil
}

func (k *HTTPKnowledge) getJSON(ctx context.Context, target string, dst any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("build knowledge request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", knowledgeUserAgent)

	resp, err := k.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return resp.StatusCode, fmt.Errorf("decode knowledge response: %w", err)
	}
	return resp.StatusCode, nil
}

package feeds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mmcdole/gofeed"

	"github.com/Avinav1299/RealityCheck-sub000/internal/config"
	"github.com/Avinav1299/RealityCheck-sub000/internal/dedupe"
	"github.com/Avinav1299/RealityCheck-sub000/internal/models"
	"github.com/Avinav1299/RealityCheck-sub000/internal/processing"
	"github.com/Avinav1299/RealityCheck-sub000/internal/search"
)

const feedUserAgent = "realitycheck/1.0"

var imgTag = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["']`)

// ParseError reports a feed body that could not be parsed as RSS or Atom.
type ParseError struct {
	FeedURL string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse feed %s: %v", e.FeedURL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Source is one configured feed with its category.
type Source struct {
	URL      string
	Category models.Category
}

// Ingestor fetches and normalizes RSS/Atom feeds.
type Ingestor struct {
	client    *http.Client
	parser    *gofeed.Parser
	sources   map[models.Category][]string
	proxies   []string
	timeout   time.Duration
	attempts  int
	threshold float64
	log       *slog.Logger
}

// NewIngestor builds the ingestor. The dedupe threshold governs
// near-duplicate filtering when fan-out results are merged.
func NewIngestor(cfg config.Feeds, threshold float64, log *slog.Logger) *Ingestor {
	sources := make(map[models.Category][]string, len(cfg.Sources))
	for name, urls := range cfg.Sources {
		cat := models.ParseCategory(name)
		sources[cat] = append(sources[cat], urls...)
	}

	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Ingestor{
		client:    &http.Client{Timeout: timeout},
		parser:    gofeed.NewParser(),
		sources:   sources,
		proxies:   cfg.Proxies,
		timeout:   timeout,
		attempts:  attempts,
		threshold: threshold,
		log:       log,
	}
}

// Sources lists every configured feed in stable order.
func (in *Ingestor) Sources() []Source {
	var out []Source
	for cat, urls := range in.sources {
		for _, u := range urls {
			out = append(out, Source{URL: u, Category: cat})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category == out[j].Category {
			return out[i].URL < out[j].URL
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Categories lists the categories that have at least one feed.
func (in *Ingestor) Categories() []models.Category {
	out := make([]models.Category, 0, len(in.sources))
	for cat := range in.sources {
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Fetch downloads and parses one feed. Transient download failures retry
// with growing backoff, switching to the configured fetch proxies after the
// direct attempt. A body that downloads but does not parse is a ParseError
// and yields no items.
func (in *Ingestor) Fetch(ctx context.Context, feedURL string) ([]models.CanonicalResult, error) {
	category := in.categoryFor(feedURL)

	var body []byte
	attempt := 0
	op := func() error {
		target := in.attemptURL(feedURL, attempt)
		attempt++

		data, err := in.download(ctx, target)
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		body = data
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	limited := backoff.WithMaxRetries(bo, uint64(in.attempts-1))
	if err := backoff.Retry(op, backoff.WithContext(limited, ctx)); err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feedURL, err)
	}

	feed, err := in.parser.ParseString(string(body))
	if err != nil {
		return nil, &ParseError{FeedURL: feedURL, Err: err}
	}

	items := make([]models.CanonicalResult, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		items = append(items, in.toResult(item, category))
	}
	return items, nil
}

// RealWorldArticles fans out across every feed configured for the category
// and merges the survivors: newest first, near-duplicates dropped, capped
// at limit. A failed feed only shrinks the merge; the aggregate errors only
// when nothing usable remains.
func (in *Ingestor) RealWorldArticles(ctx context.Context, category models.Category, limit int) ([]models.CanonicalResult, error) {
	urls := in.sources[category]
	if len(urls) == 0 {
		return nil, fmt.Errorf("category %q: %w", category, models.ErrNoResults)
	}
	if limit <= 0 {
		limit = 20
	}

	type outcome struct {
		url   string
		items []models.CanonicalResult
		err   error
	}

	results := make(chan outcome, len(urls))
	var wg sync.WaitGroup
	for _, u := range urls {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			items, err := in.Fetch(ctx, u)
			results <- outcome{url: u, items: items, err: err}
		}(u)
	}
	wg.Wait()
	close(results)

	var merged []models.CanonicalResult
	for out := range results {
		if out.err != nil {
			in.log.Warn("feed fetch failed", "feed", out.url, "error", out.err)
			continue
		}
		merged = append(merged, out.items...)
	}

	if len(merged) == 0 {
		return nil, fmt.Errorf("category %q: %w", category, models.ErrNoResults)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedOrZero().After(merged[j].PublishedOrZero())
	})
	merged = dedupe.Filter(merged, in.threshold)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// attemptURL routes the first try directly and later tries through the
// fetch proxies, rotating across them.
func (in *Ingestor) attemptURL(feedURL string, attempt int) string {
	if attempt == 0 || len(in.proxies) == 0 {
		return feedURL
	}
	proxy := in.proxies[(attempt-1)%len(in.proxies)]
	return proxy + url.QueryEscape(feedURL)
}

func (in *Ingestor) download(ctx context.Context, target string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, in.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("User-Agent", feedUserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := in.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &search.StatusError{Endpoint: target, Code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// retryable extends the transient set with statuses that a fetch proxy can
// usually get around.
func retryable(err error) bool {
	if search.IsTransient(err) {
		return true
	}
	var se *search.StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusForbidden
	}
	return false
}

func (in *Ingestor) categoryFor(feedURL string) models.Category {
	for cat, urls := range in.sources {
		for _, u := range urls {
			if u == feedURL {
				return cat
			}
		}
	}
	return models.CategoryGeneral
}

func (in *Ingestor) toResult(item *gofeed.Item, category models.Category) models.CanonicalResult {
	rawDesc := item.Description
	if rawDesc == "" {
		rawDesc = item.Content
	}
	title := processing.StripTags(item.Title)
	desc := processing.StripTags(rawDesc)
	if title == "" {
		title = processing.GenerateTitleFromText(desc, 12)
	}

	res := models.CanonicalResult{
		ID:       processing.BuildArticleID(title, item.Link),
		Title:    title,
		URL:      item.Link,
		Content:  desc,
		Source:   processing.Domain(item.Link),
		Category: category,
		Image:    itemImage(item, rawDesc),
		Author:   itemAuthor(item),
	}

	switch {
	case item.PublishedParsed != nil:
		ts := item.PublishedParsed.UTC()
		res.Published = &ts
	case item.UpdatedParsed != nil:
		ts := item.UpdatedParsed.UTC()
		res.Published = &ts
	default:
		if ts, ok := processing.ExtractDate(title + " " + desc); ok {
			res.Published = &ts
		}
	}
	return res
}

// itemImage walks the fallback ladder: native feed image, media extensions,
// enclosures, then an <img> tag inside the raw description.
func itemImage(item *gofeed.Item, rawDesc string) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	if media, ok := item.Extensions["media"]; ok {
		for _, key := range []string{"content", "thumbnail"} {
			for _, ext := range media[key] {
				if u := ext.Attrs["url"]; u != "" {
					return u
				}
			}
		}
	}
	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		if strings.HasPrefix(enc.Type, "image/") || hasImageExt(enc.URL) {
			return enc.URL
		}
	}
	if m := imgTag.FindStringSubmatch(rawDesc); m != nil {
		return m[1]
	}
	return ""
}

func hasImageExt(u string) bool {
	lower := strings.ToLower(u)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".gif", ".webp"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func itemAuthor(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil && item.Authors[0].Name != "" {
		return item.Authors[0].Name
	}
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	return ""
}

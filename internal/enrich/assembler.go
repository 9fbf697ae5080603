package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Avinav1299/RealityCheck-sub000/internal/config"
	"github.com/Avinav1299/RealityCheck-sub000/internal/models"
	"github.com/Avinav1299/RealityCheck-sub000/internal/processing"
	"github.com/Avinav1299/RealityCheck-sub000/internal/search"
)

// Summarizer is implemented by an external collaborator that turns an
// assembled context into a reader-facing summary.
type Summarizer interface {
	Summarize(ctx context.Context, agg models.AggregatedContext) (models.Summary, error)
}

// Assembler gathers background knowledge and fact-check coverage around
// one article. Every lookup is independent; a failure only leaves a gap.
type Assembler struct {
	source      search.DataSource
	knowledge   KnowledgeClient
	maxKeywords int
	minKeyword  int
	lookup      time.Duration
	factSites   []string
	factResults int
	log         *slog.Logger
}

func NewAssembler(source search.DataSource, knowledge KnowledgeClient, cfg config.Enrich, log *slog.Logger) *Assembler {
	maxKeywords := cfg.MaxKeywords
	if maxKeywords <= 0 {
		maxKeywords = 5
	}
	minKeyword := cfg.KeywordMinLength
	if minKeyword <= 0 {
		minKeyword = 4
	}
	lookup := cfg.LookupTimeout
	if lookup <= 0 {
		lookup = 5 * time.Second
	}
	factResults := cfg.FactCheckResults
	if factResults <= 0 {
		factResults = 5
	}

	return &Assembler{
		source:      source,
		knowledge:   knowledge,
		maxKeywords: maxKeywords,
		minKeyword:  minKeyword,
		lookup:      lookup,
		factSites:   cfg.FactCheckSites,
		factResults: factResults,
		log:         log,
	}
}

// Assemble runs the knowledge lookups and the fact-check search in
// parallel and returns whatever resolved within the per-lookup timeout.
// It never fails outright.
func (a *Assembler) Assemble(ctx context.Context, article models.CanonicalResult) models.AggregatedContext {
	keywords := processing.ExtractKeywords(article.Title+" "+article.Content, a.maxKeywords, a.minKeyword)

	background := make([]models.KnowledgeContext, len(keywords))
	var factChecks []models.CanonicalResult

	var wg sync.WaitGroup
	for i, kw := range keywords {
		wg.Add(1)
		go func(i int, kw string) {
			defer wg.Done()

			lookupCtx, cancel := context.WithTimeout(ctx, a.lookup)
			defer cancel()

			kc, err := a.knowledge.Lookup(lookupCtx, kw)
			if err != nil {
				a.log.Debug("knowledge lookup failed", "topic", kw, "error", err)
				return
			}
			background[i] = kc
		}(i, kw)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()

		searchCtx, cancel := context.WithTimeout(ctx, a.lookup)
		defer cancel()

		q := models.Query{Text: factCheckQuery(article.Title, a.factSites), MaxResults: a.factResults}
		resp, err := a.source.Execute(searchCtx, q)
		if err != nil {
			a.log.Debug("fact-check search failed", "title", article.Title, "error", err)
			return
		}
		factChecks = resp.Results
	}()
	wg.Wait()

	agg := models.AggregatedContext{
		Topic:       article.Title,
		Article:     article,
		Keywords:    keywords,
		FactChecks:  factChecks,
		AssembledAt: time.Now().UTC(),
	}
	for _, kc := range background {
		if kc.Topic != "" || kc.Summary != "" {
			agg.Background = append(agg.Background, kc)
		}
	}
	return agg
}

// factCheckQuery scopes the claim to the configured fact-checking sites.
func factCheckQuery(title string, sites []string) string {
	title = strings.TrimSpace(title)
	if len(sites) == 0 {
		return title + " fact check"
	}
	scoped := make([]string, 0, len(sites))
	for _, s := range sites {
		scoped = append(scoped, "site:"+s)
	}
	return fmt.Sprintf("%s (%s)", title, strings.Join(scoped, " OR "))
}

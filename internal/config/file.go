package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Avinav1299/RealityCheck-sub000/internal/models"
)

// fileConfig is the YAML half of the configuration: the structured tables
// that are awkward to express as environment variables. File values overlay
// the built-in defaults; a present key replaces the default wholesale.
type fileConfig struct {
	Instances        []Instance            `yaml:"instances"`
	Proxies          []string              `yaml:"proxies"`
	Feeds            map[string][]string   `yaml:"feeds"`
	Categories       []models.CategoryRule `yaml:"categories"`
	Trending         []Candidate           `yaml:"trending"`
	FactCheckSites   []string              `yaml:"factcheck_sites"`
	KnowledgeBaseURL string                `yaml:"knowledge_base_url"`
}

// loadFile reads path on top of the defaults. A missing file is not an
// error; the defaults stand on their own.
func loadFile(path string) (*fileConfig, error) {
	c := defaultFile()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	// Decoded separately so a present key replaces its default wholesale.
	// Unmarshalling straight into the defaults would merge the feed map.
	var overlay fileConfig
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if overlay.Instances != nil {
		c.Instances = overlay.Instances
	}
	if overlay.Proxies != nil {
		c.Proxies = overlay.Proxies
	}
	if overlay.Feeds != nil {
		c.Feeds = overlay.Feeds
	}
	if overlay.Categories != nil {
		c.Categories = overlay.Categories
	}
	if overlay.Trending != nil {
		c.Trending = overlay.Trending
	}
	if overlay.FactCheckSites != nil {
		c.FactCheckSites = overlay.FactCheckSites
	}
	if overlay.KnowledgeBaseURL != "" {
		c.KnowledgeBaseURL = overlay.KnowledgeBaseURL
	}
	return c, nil
}

func defaultFile() *fileConfig {
	return &fileConfig{
		Instances: []Instance{
			{URL: "https://searx.be", Kind: "searxng"},
			{URL: "https://searx.tiekoetter.com", Kind: "searxng"},
			{URL: "https://search.sapti.me", Kind: "searxng"},
		},
		Proxies: []string{
			"https://api.allorigins.win/raw?url=",
			"https://corsproxy.io/?",
		},
		Feeds: map[string][]string{
			"general": {
				"https://feeds.bbci.co.uk/news/rss.xml",
				"https://rss.cnn.com/rss/edition.rss",
			},
			"world": {
				"https://feeds.bbci.co.uk/news/world/rss.xml",
				"https://www.aljazeera.com/xml/rss/all.xml",
			},
			"politics": {
				"https://feeds.bbci.co.uk/news/politics/rss.xml",
				"https://thehill.com/feed/",
			},
			"technology": {
				"https://feeds.arstechnica.com/arstechnica/index",
				"https://www.theverge.com/rss/index.xml",
				"https://techcrunch.com/feed/",
			},
			"business": {
				"https://feeds.bbci.co.uk/news/business/rss.xml",
				"https://www.cnbc.com/id/100003114/device/rss/rss.html",
			},
			"science": {
				"https://www.sciencedaily.com/rss/all.xml",
				"https://phys.org/rss-feed/",
			},
			"health": {
				"https://feeds.bbci.co.uk/news/health/rss.xml",
			},
			"sports": {
				"https://www.espn.com/espn/rss/news",
				"https://feeds.bbci.co.uk/sport/rss.xml",
			},
			"entertainment": {
				"https://variety.com/feed/",
				"https://www.rollingstone.com/feed/",
			},
		},
		Categories: []models.CategoryRule{
			{Name: models.CategoryPolitics, Keywords: []string{
				"election", "senate", "congress", "parliament", "president",
				"minister", "campaign", "legislation", "vote",
			}},
			{Name: models.CategoryTechnology, Keywords: []string{
				"artificial intelligence", "machine learning", "software",
				"startup", "semiconductor", "cybersecurity", "smartphone",
				"robot", "openai",
			}},
			{Name: models.CategoryBusiness, Keywords: []string{
				"stock", "market", "economy", "earnings", "inflation",
				"merger", "revenue", "investor",
			}},
			{Name: models.CategoryScience, Keywords: []string{
				"research", "study finds", "scientist", "nasa", "climate",
				"physics", "discovery", "telescope",
			}},
			{Name: models.CategoryHealth, Keywords: []string{
				"health", "vaccine", "hospital", "disease", "virus",
				"medical", "outbreak",
			}},
			{Name: models.CategorySports, Keywords: []string{
				"championship", "league", "tournament", "olympic",
				"playoff", "coach", "season opener",
			}},
			{Name: models.CategoryEntertainment, Keywords: []string{
				"film", "movie", "music", "celebrity", "album",
				"box office", "streaming",
			}},
			{Name: models.CategoryWorld, Keywords: []string{
				"united nations", "treaty", "border", "diplomat",
				"sanctions", "summit", "ceasefire",
			}},
		},
		Trending: []Candidate{
			{Query: "breaking news", Category: "general", Weight: 1.0},
			{Query: "artificial intelligence", Category: "technology", Weight: 0.9},
			{Query: "election results", Category: "politics", Weight: 0.85},
			{Query: "stock market today", Category: "business", Weight: 0.8},
			{Query: "climate change", Category: "science", Weight: 0.75},
			{Query: "championship finals", Category: "sports", Weight: 0.6},
			{Query: "public health alert", Category: "health", Weight: 0.6},
			{Query: "new movie releases", Category: "entertainment", Weight: 0.5},
		},
		FactCheckSites: []string{
			"snopes.com",
			"politifact.com",
			"factcheck.org",
		},
		KnowledgeBaseURL: "https://en.wikipedia.org/api/rest_v1",
	}
}

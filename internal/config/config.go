package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Avinav1299/RealityCheck-sub000/internal/models"
)

// Search controls instance rotation and query failover.
type Search struct {
	Instances       []Instance
	MaxAttempts     int
	Backoff         time.Duration
	AttemptTimeout  time.Duration
	MaxResults      int
	PositionPenalty float64
}

// Instance is one configured search backend. Index only applies to
// elasticsearch instances.
type Instance struct {
	URL   string `yaml:"url"`
	Kind  string `yaml:"kind"`
	Index string `yaml:"index,omitempty"`
}

// Feeds controls RSS/Atom ingestion. Sources maps a category name to its
// feed URLs.
type Feeds struct {
	Sources     map[string][]string
	Proxies     []string
	Timeout     time.Duration
	MaxAttempts int
}

// Dedupe controls near-duplicate filtering.
type Dedupe struct {
	Threshold float64
}

// Trending controls the trending aggregation pass.
type Trending struct {
	Candidates      []Candidate
	ResultsPerTopic int
	ExpectedResults int
	MaxParallel     int
	CacheTTL        time.Duration
	RefreshTimeout  time.Duration
}

// Candidate is one weighted trending query.
type Candidate struct {
	Query    string  `yaml:"query"`
	Category string  `yaml:"category"`
	Weight   float64 `yaml:"weight"`
}

// Timeline controls timeline synthesis.
type Timeline struct {
	ResultsPerVariant int
	MaxEvents         int
	Epsilon           float64
}

// Enrich controls background-context assembly.
type Enrich struct {
	KnowledgeBaseURL string
	LookupTimeout    time.Duration
	MaxKeywords      int
	KeywordMinLength int
	FactCheckSites   []string
	FactCheckResults int
}

// Pipeline gathers the settings shared by every binary. Structured tables
// come from the YAML file, scalar knobs from the environment.
type Pipeline struct {
	Search     Search
	Feeds      Feeds
	Categories []models.CategoryRule
	Dedupe     Dedupe
	Trending   Trending
	Timeline   Timeline
	Enrich     Enrich
}

// API describes HTTP-layer configuration.
type API struct {
	Pipeline
	BindAddr string
}

// Worker holds configuration for the feed poller that publishes normalized
// articles to Kafka.
type Worker struct {
	Pipeline
	KafkaBrokers  []string
	KafkaTopic    string
	PollInterval  time.Duration
	BatchSize     int
	CacheCapacity int
	CacheTTL      time.Duration
}

// Feedcheck configures the periodic source audit loop.
type Feedcheck struct {
	Pipeline
	Interval     time.Duration
	FetchTimeout time.Duration
	ProbeTimeout time.Duration
}

// LoadAPI builds an API config from the config file and environment.
func LoadAPI() (*API, error) {
	p, err := loadPipeline()
	if err != nil {
		return nil, err
	}

	c := &API{
		Pipeline: *p,
		BindAddr: getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
	}
	return c, nil
}

// LoadWorker builds a Worker config from the config file and environment.
func LoadWorker() (*Worker, error) {
	p, err := loadPipeline()
	if err != nil {
		return nil, err
	}

	c := &Worker{
		Pipeline:      *p,
		KafkaBrokers:  splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "articles_normalized"),
		PollInterval:  getDuration("WORKER_POLL_INTERVAL", "15m"),
		BatchSize:     getInt("WORKER_BATCH_SIZE", 20),
		CacheCapacity: getInt("WORKER_CACHE_CAPACITY", 20000),
		CacheTTL:      getDuration("WORKER_CACHE_TTL", "24h"),
	}

	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.PollInterval <= 0 {
		return nil, fmt.Errorf("WORKER_POLL_INTERVAL must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}
	if c.CacheCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_CACHE_CAPACITY must be positive")
	}

	return c, nil
}

// LoadFeedcheck builds a Feedcheck config from the config file and
// environment.
func LoadFeedcheck() (*Feedcheck, error) {
	p, err := loadPipeline()
	if err != nil {
		return nil, err
	}

	c := &Feedcheck{
		Pipeline:     *p,
		Interval:     getDuration("FEEDCHECK_INTERVAL", "30m"),
		FetchTimeout: getDuration("FEEDCHECK_FETCH_TIMEOUT", "20s"),
		ProbeTimeout: getDuration("FEEDCHECK_PROBE_TIMEOUT", "10s"),
	}

	if c.Interval <= 0 {
		return nil, fmt.Errorf("FEEDCHECK_INTERVAL must be positive")
	}
	if c.FetchTimeout <= 0 {
		return nil, fmt.Errorf("FEEDCHECK_FETCH_TIMEOUT must be positive")
	}
	if c.ProbeTimeout <= 0 {
		return nil, fmt.Errorf("FEEDCHECK_PROBE_TIMEOUT must be positive")
	}

	return c, nil
}

func loadPipeline() (*Pipeline, error) {
	f, err := loadFile(getEnv("CONFIG_FILE", "config.yaml"))
	if err != nil {
		return nil, err
	}

	c := &Pipeline{
		Search: Search{
			Instances:       f.Instances,
			MaxAttempts:     getInt("SEARCH_MAX_ATTEMPTS", 3),
			Backoff:         getDuration("SEARCH_BACKOFF", "1s"),
			AttemptTimeout:  getDuration("SEARCH_ATTEMPT_TIMEOUT", "15s"),
			MaxResults:      getInt("SEARCH_MAX_RESULTS", 10),
			PositionPenalty: getFloat("RELEVANCE_POSITION_PENALTY", 0.02),
		},
		Feeds: Feeds{
			Sources:     f.Feeds,
			Proxies:     f.Proxies,
			Timeout:     getDuration("FEED_TIMEOUT", "10s"),
			MaxAttempts: getInt("FEED_MAX_ATTEMPTS", 3),
		},
		Categories: f.Categories,
		Dedupe: Dedupe{
			Threshold: getFloat("DEDUPE_THRESHOLD", 0.8),
		},
		Trending: Trending{
			Candidates:      f.Trending,
			ResultsPerTopic: getInt("TRENDING_RESULTS_PER_TOPIC", 8),
			ExpectedResults: getInt("TRENDING_EXPECTED_RESULTS", 8),
			MaxParallel:     getInt("TRENDING_MAX_PARALLEL", 4),
			CacheTTL:        getDuration("TRENDING_CACHE_TTL", "5m"),
			RefreshTimeout:  getDuration("TRENDING_REFRESH_TIMEOUT", "45s"),
		},
		Timeline: Timeline{
			ResultsPerVariant: getInt("TIMELINE_RESULTS_PER_VARIANT", 5),
			MaxEvents:         getInt("TIMELINE_MAX_EVENTS", 15),
			Epsilon:           getFloat("TIMELINE_EPSILON", 0.05),
		},
		Enrich: Enrich{
			KnowledgeBaseURL: getEnv("KNOWLEDGE_BASE_URL", f.KnowledgeBaseURL),
			LookupTimeout:    getDuration("CONTEXT_LOOKUP_TIMEOUT", "5s"),
			MaxKeywords:      getInt("CONTEXT_MAX_KEYWORDS", 5),
			KeywordMinLength: getInt("CONTEXT_KEYWORD_MIN_LEN", 4),
			FactCheckSites:   f.FactCheckSites,
			FactCheckResults: getInt("CONTEXT_FACTCHECK_RESULTS", 5),
		},
	}

	if len(c.Search.Instances) == 0 {
		return nil, fmt.Errorf("config: at least one search instance is required")
	}
	for _, inst := range c.Search.Instances {
		if inst.URL == "" {
			return nil, fmt.Errorf("config: search instance without url")
		}
	}
	if c.Search.MaxAttempts <= 0 {
		return nil, fmt.Errorf("SEARCH_MAX_ATTEMPTS must be positive")
	}
	if c.Search.Backoff < 0 {
		return nil, fmt.Errorf("SEARCH_BACKOFF cannot be negative")
	}
	if c.Search.AttemptTimeout <= 0 {
		return nil, fmt.Errorf("SEARCH_ATTEMPT_TIMEOUT must be positive")
	}
	if c.Search.MaxResults <= 0 {
		return nil, fmt.Errorf("SEARCH_MAX_RESULTS must be positive")
	}
	if c.Search.PositionPenalty < 0 {
		return nil, fmt.Errorf("RELEVANCE_POSITION_PENALTY cannot be negative")
	}
	if c.Feeds.MaxAttempts <= 0 {
		return nil, fmt.Errorf("FEED_MAX_ATTEMPTS must be positive")
	}
	if c.Feeds.Timeout <= 0 {
		return nil, fmt.Errorf("FEED_TIMEOUT must be positive")
	}
	if c.Dedupe.Threshold < 0 || c.Dedupe.Threshold > 1 {
		return nil, fmt.Errorf("DEDUPE_THRESHOLD must be within [0, 1]")
	}
	if c.Trending.ResultsPerTopic <= 0 {
		return nil, fmt.Errorf("TRENDING_RESULTS_PER_TOPIC must be positive")
	}
	if c.Trending.ExpectedResults <= 0 {
		return nil, fmt.Errorf("TRENDING_EXPECTED_RESULTS must be positive")
	}
	if c.Trending.MaxParallel <= 0 {
		return nil, fmt.Errorf("TRENDING_MAX_PARALLEL must be positive")
	}
	if c.Timeline.ResultsPerVariant <= 0 {
		return nil, fmt.Errorf("TIMELINE_RESULTS_PER_VARIANT must be positive")
	}
	if c.Timeline.MaxEvents <= 0 {
		return nil, fmt.Errorf("TIMELINE_MAX_EVENTS must be positive")
	}
	if c.Timeline.Epsilon < 0 {
		return nil, fmt.Errorf("TIMELINE_EPSILON cannot be negative")
	}
	if c.Enrich.LookupTimeout <= 0 {
		return nil, fmt.Errorf("CONTEXT_LOOKUP_TIMEOUT must be positive")
	}
	if c.Enrich.MaxKeywords <= 0 {
		return nil, fmt.Errorf("CONTEXT_MAX_KEYWORDS must be positive")
	}
	if c.Enrich.KeywordMinLength < 0 {
		return nil, fmt.Errorf("CONTEXT_KEYWORD_MIN_LEN cannot be negative")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

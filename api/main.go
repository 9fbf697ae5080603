package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Avinav1299/RealityCheck-sub000/internal/config"
	"github.com/Avinav1299/RealityCheck-sub000/internal/enrich"
	"github.com/Avinav1299/RealityCheck-sub000/internal/feeds"
	"github.com/Avinav1299/RealityCheck-sub000/internal/logger"
	"github.com/Avinav1299/RealityCheck-sub000/internal/processing"
	"github.com/Avinav1299/RealityCheck-sub000/internal/search"
	"github.com/Avinav1299/RealityCheck-sub000/internal/timeline"
	"github.com/Avinav1299/RealityCheck-sub000/internal/trending"
)

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	registry, err := search.NewRegistry(cfg.Search, log)
	if err != nil {
		log.Error("init search registry", slog.Any("err", err))
		os.Exit(1)
	}

	norm := processing.NewNormalizer(cfg.Categories, cfg.Search.PositionPenalty)
	executor := search.NewExecutor(registry, search.FailoverPolicy{
		MaxAttempts:    cfg.Search.MaxAttempts,
		Backoff:        cfg.Search.Backoff,
		AttemptTimeout: cfg.Search.AttemptTimeout,
	}, norm, log)

	srv := &server{
		log:       log,
		cfg:       cfg,
		registry:  registry,
		executor:  executor,
		ingestor:  feeds.NewIngestor(cfg.Feeds, cfg.Dedupe.Threshold, log),
		trending:  trending.NewService(executor, cfg.Trending, log),
		timeline:  timeline.NewSynthesizer(executor, cfg.Timeline, cfg.Dedupe.Threshold, log),
		assembler: enrich.NewAssembler(executor, enrich.NewHTTPKnowledge(cfg.Enrich.KnowledgeBaseURL, log), cfg.Enrich, log),
	}
	// Worst case a search burns every attempt plus the backoff between them.
	srv.searchBudget = time.Duration(cfg.Search.MaxAttempts)*(cfg.Search.AttemptTimeout+cfg.Search.Backoff) + 2*time.Second
	srv.feedBudget = time.Duration(cfg.Feeds.MaxAttempts)*cfg.Feeds.Timeout + 10*time.Second

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)
	r.Get("/search", srv.handleSearch)
	r.Get("/articles", srv.handleArticles)
	r.Get("/trending", srv.handleTrending)
	r.Get("/timeline", srv.handleTimeline)
	r.Post("/context", srv.handleContext)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      srv.searchBudget + 5*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

type server struct {
	log       *slog.Logger
	cfg       *config.API
	registry  *search.Registry
	executor  *search.Executor
	ingestor  *feeds.Ingestor
	trending  *trending.Service
	timeline  *timeline.Synthesizer
	assembler *enrich.Assembler

	searchBudget time.Duration
	feedBudget   time.Duration
}

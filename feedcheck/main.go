package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Avinav1299/RealityCheck-sub000/internal/config"
	"github.com/Avinav1299/RealityCheck-sub000/internal/feeds"
	"github.com/Avinav1299/RealityCheck-sub000/internal/logger"
	"github.com/Avinav1299/RealityCheck-sub000/internal/search"
)

func main() {
	log := logger.New("feedcheck")
	cfg, err := config.LoadFeedcheck()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	registry, err := search.NewRegistry(cfg.Search, log)
	if err != nil {
		log.Error("init search registry", slog.Any("err", err))
		os.Exit(1)
	}

	ingestor := feeds.NewIngestor(cfg.Feeds, cfg.Dedupe.Threshold, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info("feedcheck running",
		slog.Duration("interval", cfg.Interval),
		slog.Int("feeds", len(ingestor.Sources())),
		slog.Int("instances", registry.Len()),
	)

	// Run immediately on start so a broken config is reported right away.
	runOnce(ctx, log, ingestor, registry, cfg)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
			runOnce(ctx, log, ingestor, registry, cfg)
		}
	}
}

// runOnce audits every configured feed and search instance. Read-only: a
// bad entry is reported, never removed.
func runOnce(ctx context.Context, log *slog.Logger, ingestor *feeds.Ingestor, registry *search.Registry, cfg *config.Feedcheck) {
	feedsOK := auditFeeds(ctx, log, ingestor, cfg.FetchTimeout)
	instancesOK := auditInstances(ctx, log, registry, cfg.ProbeTimeout)

	log.Info("audit completed",
		slog.Int("feeds_ok", feedsOK),
		slog.Int("feeds_total", len(ingestor.Sources())),
		slog.Int("instances_ok", instancesOK),
		slog.Int("instances_total", registry.Len()),
	)
}

func auditFeeds(ctx context.Context, log *slog.Logger, ingestor *feeds.Ingestor, timeout time.Duration) int {
	ok := 0
	for _, src := range ingestor.Sources() {
		if ctx.Err() != nil {
			return ok
		}

		fetchCtx, cancel := context.WithTimeout(ctx, timeout)
		items, err := ingestor.Fetch(fetchCtx, src.URL)
		cancel()

		if err != nil {
			var parseErr *feeds.ParseError
			if errors.As(err, &parseErr) {
				log.Warn("feed unparsable",
					slog.String("feed", src.URL),
					slog.String("category", string(src.Category)),
					slog.Any("err", err))
			} else {
				log.Warn("feed unreachable",
					slog.String("feed", src.URL),
					slog.String("category", string(src.Category)),
					slog.Any("err", err))
			}
			continue
		}
		if len(items) == 0 {
			log.Warn("feed empty",
				slog.String("feed", src.URL),
				slog.String("category", string(src.Category)))
			continue
		}

		log.Debug("feed ok", slog.String("feed", src.URL), slog.Int("items", len(items)))
		ok++
	}
	return ok
}

func auditInstances(ctx context.Context, log *slog.Logger, registry *search.Registry, timeout time.Duration) int {
	ok := 0
	for _, inst := range registry.Instances() {
		if ctx.Err() != nil {
			return ok
		}

		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		err := inst.Probe(probeCtx)
		cancel()

		if err != nil {
			log.Warn("instance probe failed",
				slog.String("instance", inst.URL()),
				slog.String("kind", string(inst.Kind())),
				slog.Any("err", err))
			continue
		}

		log.Debug("instance ok", slog.String("instance", inst.URL()))
		ok++
	}
	return ok
}

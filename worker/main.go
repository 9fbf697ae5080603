package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/Avinav1299/RealityCheck-sub000/internal/config"
	"github.com/Avinav1299/RealityCheck-sub000/internal/dedupe"
	"github.com/Avinav1299/RealityCheck-sub000/internal/feeds"
	"github.com/Avinav1299/RealityCheck-sub000/internal/logger"
	"github.com/Avinav1299/RealityCheck-sub000/internal/models"
)

// articlePublisher is the downstream sink for normalized articles.
type articlePublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// kafkaPublisher writes one message per article, keyed by article ID so a
// republished article lands on the same partition.
type kafkaPublisher struct {
	writer *kafka.Writer
}

func (p *kafkaPublisher) Publish(ctx context.Context, key string, value []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value})
}

func main() {
	log := logger.New("worker")
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ingestor := feeds.NewIngestor(cfg.Feeds, cfg.Dedupe.Threshold, log)
	cache := dedupe.NewSeenCache(cfg.CacheCapacity, cfg.CacheTTL)

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaTopic,
		Balancer:    &kafka.Hash{},
		MaxAttempts: 3,
	})
	defer writer.Close()

	publisher := &kafkaPublisher{writer: writer}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	log.Info("worker started",
		slog.String("topic", cfg.KafkaTopic),
		slog.Duration("poll_interval", cfg.PollInterval),
	)

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	pollOnce(ctx, log, ingestor, cache, publisher, cfg)
	for {
		select {
		case <-ctx.Done():
			log.Info("context canceled, stopping")
			return
		case <-ticker.C:
			pollOnce(ctx, log, ingestor, cache, publisher, cfg)
		}
	}
}

// pollOnce walks every configured category and publishes unseen articles.
// A failed category never blocks the others.
func pollOnce(ctx context.Context, log *slog.Logger, ingestor *feeds.Ingestor, cache *dedupe.SeenCache, publisher articlePublisher, cfg *config.Worker) {
	for _, category := range ingestor.Categories() {
		articles, err := ingestor.RealWorldArticles(ctx, category, cfg.BatchSize)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			log.Warn("category poll failed",
				slog.String("category", string(category)), slog.Any("err", err))
			continue
		}

		published, err := publishArticles(ctx, log, cache, publisher, articles)
		if err != nil {
			log.Error("publish articles",
				slog.String("category", string(category)), slog.Any("err", err))
			continue
		}

		log.Info("category polled",
			slog.String("category", string(category)),
			slog.Int("fetched", len(articles)),
			slog.Int("published", published),
		)
	}
}

// publishArticles pushes unseen articles to the sink. An article is marked
// seen only after its publish succeeded, so a failed publish is retried on
// the next poll.
func publishArticles(ctx context.Context, log *slog.Logger, cache *dedupe.SeenCache, publisher articlePublisher, articles []models.CanonicalResult) (int, error) {
	published := 0
	for _, article := range articles {
		key := article.ID
		if key == "" {
			key = uuid.NewString()
		}
		if cache.Seen(key) {
			log.Debug("duplicate article", slog.String("id", key))
			continue
		}

		value, err := json.Marshal(article)
		if err != nil {
			return published, err
		}

		policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)
		err = backoff.Retry(func() error {
			return publisher.Publish(ctx, key, value)
		}, policy)
		if err != nil {
			return published, err
		}

		cache.Remember(key)
		published++
	}
	return published, nil
}

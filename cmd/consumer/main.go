package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/DIP-Sharing-Board/discord-bot/internal/config"
	"github.com/DIP-Sharing-Board/discord-bot/internal/consumer"
	"github.com/DIP-Sharing-Board/discord-bot/internal/extractor"
	"github.com/DIP-Sharing-Board/discord-bot/internal/idempotency"
	"github.com/DIP-Sharing-Board/discord-bot/internal/ingest"
	"github.com/DIP-Sharing-Board/discord-bot/internal/logger"
	"github.com/DIP-Sharing-Board/discord-bot/internal/metrics"
	"github.com/DIP-Sharing-Board/discord-bot/internal/queue/sqs"
	"github.com/DIP-Sharing-Board/discord-bot/internal/repository/gormstore"
	"github.com/DIP-Sharing-Board/discord-bot/internal/textanalysis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.Service.Environment, "consumer")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		err := log.Sync()
		if err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting consumer service",
		zap.String("environment", cfg.Service.Environment),
		zap.Int("workers", cfg.Consumer.Workers))

	ctx := context.Background()

	// Initialize database client
	dbClient, err := gormstore.NewClient(ctx, &cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to create database client", zap.Error(err))
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			log.Error("Failed to close database client", zap.Error(err))
		}
	}()

	// Initialize repository
	repo := gormstore.NewRepository(dbClient, log)

	// Initialize schema (create tables if not exist)
	if err := repo.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema", zap.Error(err))
	}
	log.Info("Database schema initialized")

	// Initialize SQS client
	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// Extraction
	analyzer := textanalysis.NewAnalyzer(textanalysis.NewClassifier(nil, log), nil, nil, log)
	crawler := extractor.NewCrawler(extractor.CrawlerConfig{
		UserAgent:      cfg.Crawler.UserAgent,
		RequestTimeout: time.Duration(cfg.Crawler.RequestTimeoutSec) * time.Second,
		CrawlTimeout:   cfg.Consumer.CrawlTimeout(),
	}, log)
	instagram := extractor.NewInstagramStrategy(extractor.InstagramConfig{
		AppID:    cfg.Instagram.AppID,
		Endpoint: cfg.Instagram.Endpoint,
		Timeout:  time.Duration(cfg.Instagram.TimeoutSec) * time.Second,
	}, nil, log)
	dispatcher := extractor.NewDispatcher([]extractor.Strategy{
		instagram,
		extractor.NewCamphubStrategy(crawler),
		extractor.NewGenericStrategy(crawler),
	}, analyzer, m, log)

	// Optional in-flight marker
	var guard ingest.InflightGuard
	if cfg.Valkey.IdempotencyEnabled {
		valkeyClient := idempotency.NewClient(cfg.Valkey)
		defer func() {
			if err := valkeyClient.Close(); err != nil {
				log.Error("Failed to close Valkey client", zap.Error(err))
			}
		}()

		g := idempotency.NewGuard(valkeyClient,
			time.Duration(cfg.Valkey.IdempotencyTTLSecond)*time.Second,
			cfg.Valkey.IdempotencyFailOpen, log)
		if err := g.Ping(ctx); err != nil {
			log.Warn("Valkey is unreachable at startup",
				zap.String("addr", cfg.Valkey.Addr),
				zap.Bool("fail_open", cfg.Valkey.IdempotencyFailOpen),
				zap.Error(err))
		}
		guard = g
		log.Info("In-flight guard enabled", zap.String("addr", cfg.Valkey.Addr))
	}

	ingestor := ingest.NewIngestor(repo, time.Now, m, log)
	pipeline := ingest.NewPipeline(ingest.NewRouter(cfg.Channels), dispatcher, ingestor, guard, log)

	// Initialize consumer
	c := consumer.NewConsumer(cfg, sqsClient, pipeline, m, log)

	// Start health check and metrics endpoint
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			if err := repo.Ping(r.Context()); err != nil {
				log.Warn("Health check failed", zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		})
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

		addr := ":" + cfg.Consumer.HealthCheckPort
		log.Info("Health check server starting", zap.String("address", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("Health check server error", zap.Error(err))
		}
	}()

	// Start consumer
	consumerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Info("Consumer starting")

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := c.Start(consumerCtx); err != nil {
			log.Error("Consumer error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down consumer gracefully")
	cancel()
	<-done
}

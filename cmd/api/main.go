package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/DIP-Sharing-Board/discord-bot/docs"
	"github.com/DIP-Sharing-Board/discord-bot/internal/config"
	"github.com/DIP-Sharing-Board/discord-bot/internal/handler"
	"github.com/DIP-Sharing-Board/discord-bot/internal/logger"
	"github.com/DIP-Sharing-Board/discord-bot/internal/queue/sqs"
	"github.com/DIP-Sharing-Board/discord-bot/internal/repository/gormstore"
	"github.com/DIP-Sharing-Board/discord-bot/internal/service"
)

// @title Activity Board API
// @version 1.0
// @description API for submitting chat messages and browsing extracted activities
// @host localhost:8080
// @BasePath /
// @schemes http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	docs.SwaggerInfo.Host = cfg.Service.PublicHost

	// Initialize logger
	log, err := logger.New(cfg.Service.Environment, "api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		err := log.Sync()
		if err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting API service",
		zap.String("environment", cfg.Service.Environment),
		zap.String("host", cfg.Service.PublicHost),
		zap.String("port", cfg.Service.APIPort))

	ctx := context.Background()

	// Initialize SQS client
	sqsClient, err := sqs.NewClient(ctx, cfg.SQS, log)
	if err != nil {
		log.Fatal("Failed to create SQS client", zap.Error(err))
	}

	// Initialize database client
	dbClient, err := gormstore.NewClient(ctx, &cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to create database client", zap.Error(err))
	}
	defer func(dbClient *gormstore.Client) {
		if err := dbClient.Close(); err != nil {
			log.Error("Failed to close database client", zap.Error(err))
		}
	}(dbClient)

	// Initialize repository
	repo := gormstore.NewRepository(dbClient, log)

	if err := repo.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Initialize activity service
	activityService := service.NewActivityService(sqsClient, repo, log)

	// Initialize handler
	h := handler.NewHandler(activityService, reg, log)

	addr := fmt.Sprintf(":%s", cfg.Service.APIPort)
	log.Info("API server starting", zap.String("address", addr))

	if err := http.ListenAndServe(addr, h); err != nil {
		log.Fatal("Failed to start API server", zap.Error(err))
	}
}

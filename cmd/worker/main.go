package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/anhtran/folio-api/adapters/event"
	"github.com/anhtran/folio-api/adapters/media_storage"
	"github.com/anhtran/folio-api/adapters/persistence"
	backupUC "github.com/anhtran/folio-api/internal/application/usecase/backup"
	portfolioUC "github.com/anhtran/folio-api/internal/application/usecase/portfolio"
	"github.com/anhtran/folio-api/internal/config"
	"github.com/anhtran/folio-api/pkg/logger"
)

const backupInterval = 24 * time.Hour

func main() {
	fmt.Println("Starting Folio Worker...")

	// Configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)

	// Database
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Postgres", err)
	}
	defer dbPool.Close()

	redisClient, err := persistence.NewRedisClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Redis", err)
	}
	defer redisClient.Close()

	// Cloudinary Uploader for backup artifacts
	uploader, err := media_storage.NewCloudinaryAdapter(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize uploader", err)
	}

	portfolioStore := persistence.NewPostgresPortfolioStore(dbPool, appLogger)
	publicCache := portfolioUC.NewPublicCache(redisClient, portfolioStore, appLogger)
	backupUseCase := backupUC.NewBackupUseCase(cfg, uploader, appLogger)

	ctx := context.Background()

	// Periodic database backup
	go func() {
		ticker := time.NewTicker(backupInterval)
		defer ticker.Stop()
		for range ticker.C {
			backupUseCase.Execute(ctx)
		}
	}()

	// Kafka Consumer
	portfolioConsumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicPortfolioEvents,
		GroupID:  "portfolio-cache-group",
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer portfolioConsumer.Close()

	appLogger.Info("Worker listening on topic " + event.TopicPortfolioEvents)

	for {
		msg, err := portfolioConsumer.ReadMessage(ctx)
		if err != nil {
			appLogger.Error("Failed to read message from Kafka", err)
			continue
		}

		var payload event.PortfolioEventPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			appLogger.Error("Failed to unmarshal event, skipping", err)
			commitMessage(portfolioConsumer, msg, appLogger)
			continue
		}

		appLogger.Info("Processing portfolio event",
			zap.String("event_type", payload.EventType),
			zap.Int64("revision", payload.Revision))

		if err := publicCache.Refresh(ctx); err != nil {
			appLogger.Error("Failed to refresh portfolio cache", err)
			continue
		}

		commitMessage(portfolioConsumer, msg, appLogger)
	}
}

func commitMessage(consumer *kafka.Reader, msg kafka.Message, log logger.Logger) {
	if err := consumer.CommitMessages(context.Background(), msg); err != nil {
		log.Error("Failed to commit message", err)
	}
}

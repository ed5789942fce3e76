package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/dkarpov/takeout-ingest/internal/config"
	"github.com/dkarpov/takeout-ingest/internal/ingest"
	"github.com/dkarpov/takeout-ingest/internal/store"
	"github.com/dkarpov/takeout-ingest/pkg/kafka"
	"github.com/dkarpov/takeout-ingest/pkg/logger"
	"github.com/dkarpov/takeout-ingest/pkg/postgres"
	"go.uber.org/zap"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Error loading config: %v", err))
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		panic(fmt.Sprintf("Error initializing logger: %v", err))
	}

	defer log.Sync()

	log = logger.WithComponent(log, "ingest-service")
	log.Info("Starting ingest",
		zap.String("environment", cfg.Environment),
		zap.String("takeout_dir", cfg.TakeoutDir),
	)

	db, err := postgres.New(postgres.Config{
		DSN:             cfg.Postgres.PostgresDSN(),
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime}, log)

	if err != nil {
		log.Fatal("Error initializing postgres client", zap.Error(err))
	}

	defer db.Close()

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:          cfg.Kafka.Brokers,
		Topic:            cfg.Kafka.Topic,
		Retries:          cfg.Kafka.ProducerRetries,
		Timeout:          cfg.Kafka.ProducerTimeout,
		RequiredAcks:     cfg.Kafka.RequiredAcks,
		Compression:      cfg.Kafka.CompressionType,
		IdempotentWrites: cfg.Kafka.IdempotentWrites,
		MaxMessageBytes:  cfg.Kafka.MaxMessageBytes,
	}, log)

	if err != nil {
		log.Fatal("Error initializing kafka", zap.Error(err))
	}

	defer producer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo := store.NewRepository(db, log)
	service := ingest.NewService(repo, producer, log)

	summary, err := service.Run(ctx, cfg.TakeoutDir)
	if err != nil {
		log.Fatal("Ingest failed", zap.Error(err))
	}

	log.Info("Done",
		zap.String("run_id", summary.RunID.String()),
		zap.Int("files", summary.Files),
		zap.Int("events", summary.Events),
		zap.Int("record_errors", summary.RecordErrors),
		zap.Int("stored", summary.Stored),
		zap.Int("duplicates", summary.Duplicates),
	)
}

// cmd/worker/main.go
package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/alexpetro/campaign-notifier/internal/config"
	"github.com/alexpetro/campaign-notifier/internal/db"
	"github.com/alexpetro/campaign-notifier/internal/queue"
	"github.com/alexpetro/campaign-notifier/internal/repository"
	"github.com/alexpetro/campaign-notifier/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	pool, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer pool.Close()

	broker, err := queue.Dial(cfg.RabbitURL())
	if err != nil {
		logger.Fatal("connect broker", zap.Error(err))
	}
	defer broker.Close()

	orchestrator := &service.Orchestrator{
		Campaigns:  &repository.CampaignRepository{DB: pool},
		Recipients: &repository.RecipientRepository{DB: pool},
		Ledger:     &repository.NotificationRepository{DB: pool},
		Publisher:  broker,
		Interval:   cfg.WorkerInterval,
		Logger:     logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orchestrator.Run(ctx)
}

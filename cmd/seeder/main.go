// cmd/seeder/main.go
package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/alexpetro/campaign-notifier/internal/config"
	"github.com/alexpetro/campaign-notifier/internal/db"
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

	seedFiles := []string{
		"seed/schema.sql",
		"seed/recipients.sql",
		"seed/campaigns.sql",
	}

	for _, file := range seedFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			logger.Fatal("read seed file", zap.String("file", file), zap.Error(err))
		}
		if _, err := pool.Exec(string(content)); err != nil {
			logger.Fatal("execute seed file", zap.String("file", file), zap.Error(err))
		}
		logger.Info("seeded", zap.String("file", file))
	}

	logger.Info("database seeding completed")
}

// cmd/server/main.go
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/alexpetro/campaign-notifier/internal/auth"
	"github.com/alexpetro/campaign-notifier/internal/config"
	"github.com/alexpetro/campaign-notifier/internal/db"
	"github.com/alexpetro/campaign-notifier/internal/handler"
	"github.com/alexpetro/campaign-notifier/internal/repository"
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

	campaignRepo := &repository.CampaignRepository{DB: pool}
	recipientRepo := &repository.RecipientRepository{DB: pool}
	notificationRepo := &repository.NotificationRepository{DB: pool}
	userRepo := &repository.UserRepository{DB: pool}

	authService := auth.NewService(userRepo, cfg.JWTSecret, cfg.JWTExp, cfg.WorkerToken)

	campaignHandler := &handler.CampaignHandler{Repo: campaignRepo}
	recipientHandler := &handler.RecipientHandler{Repo: recipientRepo}
	notificationHandler := &handler.NotificationHandler{Repo: notificationRepo}
	authHandler := &handler.AuthHandler{Auth: authService}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(authService.Middleware)

		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/", campaignHandler.Create)
			r.Get("/", campaignHandler.List)
			r.Post("/acquire", campaignHandler.Acquire)
			r.Post("/complete", campaignHandler.CompleteNext)
			r.Get("/{id}", campaignHandler.Get)
			r.Put("/{id}", campaignHandler.Update)
			r.Delete("/{id}", campaignHandler.Delete)
			r.Post("/{id}/run", campaignHandler.Run)
			r.Post("/{id}/complete", campaignHandler.Complete)
		})

		r.Route("/recipients", func(r chi.Router) {
			r.Post("/", recipientHandler.Create)
			r.Get("/", recipientHandler.List)
			r.Get("/{id}", recipientHandler.Get)
			r.Put("/{id}", recipientHandler.Update)
			r.Delete("/{id}", recipientHandler.Delete)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Post("/add/many", notificationHandler.AddMany)
			r.Get("/", notificationHandler.List)
			r.Get("/{id}", notificationHandler.Get)
			r.Delete("/{id}", notificationHandler.Delete)
			r.Get("/{id}/stats", notificationHandler.Stats)
			r.Post("/{id}/recipients/{recipientID}/run", notificationHandler.RecordOutcome)
		})
	})

	logger.Info("server listening", zap.String("addr", cfg.HTTPAddr))
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

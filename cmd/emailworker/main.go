// cmd/emailworker/main.go
package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/alexpetro/campaign-notifier/internal/config"
	"github.com/alexpetro/campaign-notifier/internal/db"
	"github.com/alexpetro/campaign-notifier/internal/mailer"
	"github.com/alexpetro/campaign-notifier/internal/queue"
	"github.com/alexpetro/campaign-notifier/internal/repository"
	"github.com/alexpetro/campaign-notifier/internal/service"
)

const maxRetries = 3

type deliveryHandler interface {
	Handle(ctx context.Context, body []byte) error
}

type republisher interface {
	Republish(body []byte, retries int32) error
}

// handleDelivery processes one message and settles it exactly once. Failed
// deliveries are re-enqueued with an incremented retry count; the broker does
// not touch headers on a plain nack requeue, so retries are counted by
// republishing instead. Messages that can never succeed and messages out of
// retries are acked and dropped, which leaves their notification pending.
func handleDelivery(ctx context.Context, handler deliveryHandler, broker republisher, logger *zap.Logger, d amqp.Delivery) {
	err := handler.Handle(ctx, d.Body)
	if err == nil {
		d.Ack(false)
		return
	}

	if errors.Is(err, service.ErrBadMessage) {
		logger.Error("dropping undeliverable message", zap.Error(err))
		d.Ack(false)
		return
	}

	var retries int32
	if v, found := d.Headers[queue.RetryCountHeader]; found {
		retries, _ = v.(int32)
	}
	if retries >= maxRetries {
		logger.Error("dropping message after retries",
			zap.Int32("retries", retries),
			zap.Error(err),
		)
		d.Ack(false)
		return
	}

	if pubErr := broker.Republish(d.Body, retries+1); pubErr != nil {
		// Could not re-enqueue; hand the message back to the broker instead
		// of losing it.
		logger.Error("republish failed", zap.Error(pubErr))
		d.Nack(false, true)
		return
	}
	logger.Warn("delivery re-enqueued", zap.Int32("retry", retries+1), zap.Error(err))
	d.Ack(false)
}

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

	deliverer := &service.Deliverer{
		Sender:   mailer.New(cfg),
		Outcomes: &repository.NotificationRepository{DB: pool},
		Logger:   logger,
	}

	deliveries, err := broker.Consume()
	if err != nil {
		logger.Fatal("start consumer", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("email worker running")
	for {
		select {
		case <-ctx.Done():
			logger.Info("email worker stopped")
			return
		case d, ok := <-deliveries:
			if !ok {
				logger.Error("delivery channel closed")
				return
			}
			handleDelivery(ctx, deliverer, broker, logger, d)
		}
	}
}

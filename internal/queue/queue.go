package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// EmailQueue is the durable queue carrying one message per (recipient,
// campaign) pair from the orchestrator to the email worker.
const EmailQueue = "email_queue"

// RetryCountHeader carries how many times a delivery has been re-enqueued.
// The broker never touches headers on a nack requeue, so the count only
// advances through Republish.
const RetryCountHeader = "x-retry-count"

// NotificationMessage is the wire payload for a single delivery job.
type NotificationMessage struct {
	RecipientID   int    `json:"recipient_id"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	CampaignID    int    `json:"campaign_id"`
	CampaignTitle string `json:"campaign_title"`
	Content       string `json:"content"`
}

// Publisher is the orchestrator's view of the broker.
type Publisher interface {
	Publish(ctx context.Context, msg NotificationMessage) error
}

// RabbitMQ wraps one connection and channel against the broker. Not safe for
// concurrent publishers; each process opens its own.
type RabbitMQ struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects, opens a channel and declares the durable email queue.
func Dial(url string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(EmailQueue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	return &RabbitMQ{conn: conn, ch: ch}, nil
}

// Publish enqueues one persistent JSON message.
func (r *RabbitMQ) Publish(_ context.Context, msg NotificationMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return r.ch.Publish("", EmailQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Republish re-enqueues a failed delivery body at the tail of the queue with
// an updated retry count, so the next message is dispatched first.
func (r *RabbitMQ) Republish(body []byte, retries int32) error {
	return r.ch.Publish("", EmailQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Headers:      amqp.Table{RetryCountHeader: retries},
		Body:         body,
	})
}

// Consume registers a consumer with manual acknowledgement and a prefetch of
// one, so an unacked delivery blocks further dispatch to this worker.
func (r *RabbitMQ) Consume() (<-chan amqp.Delivery, error) {
	if err := r.ch.Qos(1, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := r.ch.Consume(EmailQueue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("register consumer: %w", err)
	}
	return deliveries, nil
}

func (r *RabbitMQ) Close() {
	r.ch.Close()
	r.conn.Close()
}

var _ Publisher = (*RabbitMQ)(nil)

// internal/service/delivery.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/alexpetro/campaign-notifier/internal/model"
	"github.com/alexpetro/campaign-notifier/internal/queue"
)

// ErrBadMessage marks a delivery that can never succeed. Consumers must drop
// the message instead of retrying it.
var ErrBadMessage = errors.New("malformed notification message")

// Sender delivers one rendered notification to its recipient.
type Sender interface {
	Send(msg queue.NotificationMessage) error
}

// OutcomeRecorder is the ledger's write side as seen from delivery.
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, campaignID, recipientID int, status model.NotificationStatus) (*model.Notification, error)
}

// Deliverer processes one queued notification: send the email, then report
// the outcome. Every pending notification receives exactly one outcome;
// a send failure is an undelivered outcome, not a processing error.
type Deliverer struct {
	Sender   Sender
	Outcomes OutcomeRecorder
	Logger   *zap.Logger
}

// Handle consumes one raw queue message. A returned error wrapping
// ErrBadMessage is final; any other error means the outcome could not be
// recorded and the delivery should be retried by the caller.
func (d *Deliverer) Handle(ctx context.Context, body []byte) error {
	var msg queue.NotificationMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrBadMessage, err)
	}

	outcome := model.NotificationDelivered
	if err := d.Sender.Send(msg); err != nil {
		outcome = model.NotificationUndelivered
		d.Logger.Warn("send failed",
			zap.Int("campaign_id", msg.CampaignID),
			zap.Int("recipient_id", msg.RecipientID),
			zap.Error(err),
		)
	}

	if _, err := d.Outcomes.RecordOutcome(ctx, msg.CampaignID, msg.RecipientID, outcome); err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}

	d.Logger.Info("notification resolved",
		zap.Int("campaign_id", msg.CampaignID),
		zap.Int("recipient_id", msg.RecipientID),
		zap.String("status", string(outcome)),
	)
	return nil
}

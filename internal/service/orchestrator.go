// internal/service/orchestrator.go
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/alexpetro/campaign-notifier/internal/apperrors"
	"github.com/alexpetro/campaign-notifier/internal/model"
	"github.com/alexpetro/campaign-notifier/internal/queue"
)

// CampaignSource is the slice of the campaign store the orchestrator drives.
type CampaignSource interface {
	Acquire(ctx context.Context) (*model.Campaign, error)
	CompleteNext(ctx context.Context) (*model.Campaign, error)
}

// RecipientSource provides the full recipient snapshot for fan-out.
type RecipientSource interface {
	ListAll(ctx context.Context) ([]model.Recipient, error)
}

// Ledger materializes pending notifications for an acquired campaign.
type Ledger interface {
	AddMany(ctx context.Context, campaignID int, recipientIDs []int) ([]model.Notification, error)
}

// Orchestrator drives the campaign state machine forward by polling: acquire
// one due campaign, fan it out to the delivery queue, then sweep any running
// campaign whose notifications are all resolved into its terminal status.
// Multiple orchestrator processes can run against one database; exclusivity
// lives in the store's row locking, not here.
type Orchestrator struct {
	Campaigns  CampaignSource
	Recipients RecipientSource
	Ledger     Ledger
	Publisher  queue.Publisher
	Interval   time.Duration
	Logger     *zap.Logger
}

// Run loops until ctx is cancelled. A failing cycle is logged and the next
// tick proceeds; one bad campaign never stops the worker.
func (o *Orchestrator) Run(ctx context.Context) {
	ticker := time.NewTicker(o.Interval)
	defer ticker.Stop()

	o.Logger.Info("orchestrator started", zap.Duration("interval", o.Interval))
	for {
		o.RunCycle(ctx)
		select {
		case <-ctx.Done():
			o.Logger.Info("orchestrator stopped")
			return
		case <-ticker.C:
		}
	}
}

// RunCycle performs one dispatch attempt followed by one completion sweep.
func (o *Orchestrator) RunCycle(ctx context.Context) {
	if err := o.dispatch(ctx); err != nil {
		if errors.Is(err, apperrors.ErrNoCampaignsAvailable) {
			o.Logger.Info("no campaigns due for launch")
		} else {
			o.Logger.Error("dispatch failed", zap.Error(err))
		}
	}

	campaign, err := o.Campaigns.CompleteNext(ctx)
	switch {
	case errors.Is(err, apperrors.ErrNoCampaignsAvailable):
		o.Logger.Info("no campaigns ready to complete")
	case err != nil:
		o.Logger.Error("completion sweep failed", zap.Error(err))
	default:
		o.Logger.Info("campaign completed",
			zap.Int("campaign_id", campaign.ID),
			zap.String("status", string(campaign.Status)),
		)
	}
}

func (o *Orchestrator) dispatch(ctx context.Context) error {
	campaign, err := o.Campaigns.Acquire(ctx)
	if err != nil {
		return err
	}
	o.Logger.Info("campaign acquired",
		zap.Int("campaign_id", campaign.ID),
		zap.String("name", campaign.Name),
	)

	recipients, err := o.Recipients.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		// Nothing to fan out; the campaign stays running until recipients
		// and notifications exist.
		o.Logger.Warn("no recipients to notify", zap.Int("campaign_id", campaign.ID))
		return nil
	}

	recipientIDs := make([]int, len(recipients))
	for i, rec := range recipients {
		recipientIDs[i] = rec.ID
	}
	if _, err := o.Ledger.AddMany(ctx, campaign.ID, recipientIDs); err != nil {
		return err
	}

	for _, rec := range recipients {
		msg := queue.NotificationMessage{
			RecipientID:   rec.ID,
			Email:         rec.ContactEmail,
			FirstName:     rec.Name,
			LastName:      rec.Lastname,
			CampaignID:    campaign.ID,
			CampaignTitle: campaign.Name,
			Content:       campaign.Content,
		}
		if err := o.Publisher.Publish(ctx, msg); err != nil {
			// The notification row stays pending and blocks completion until
			// the delivery side resolves it.
			o.Logger.Error("publish failed",
				zap.Int("campaign_id", campaign.ID),
				zap.Int("recipient_id", rec.ID),
				zap.Error(err),
			)
		}
	}

	o.Logger.Info("campaign fanned out",
		zap.Int("campaign_id", campaign.ID),
		zap.Int("recipients", len(recipients)),
	)
	return nil
}

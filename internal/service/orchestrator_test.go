package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alexpetro/campaign-notifier/internal/apperrors"
	"github.com/alexpetro/campaign-notifier/internal/model"
	"github.com/alexpetro/campaign-notifier/internal/queue"
)

type mockCampaignSource struct {
	acquired     *model.Campaign
	acquireErr   error
	completed    *model.Campaign
	completeErr  error
	acquireCalls int
	sweepCalls   int
}

func (m *mockCampaignSource) Acquire(context.Context) (*model.Campaign, error) {
	m.acquireCalls++
	return m.acquired, m.acquireErr
}

func (m *mockCampaignSource) CompleteNext(context.Context) (*model.Campaign, error) {
	m.sweepCalls++
	return m.completed, m.completeErr
}

type mockRecipientSource struct {
	recipients []model.Recipient
	err        error
}

func (m *mockRecipientSource) ListAll(context.Context) ([]model.Recipient, error) {
	return m.recipients, m.err
}

type mockLedger struct {
	campaignID   int
	recipientIDs []int
	err          error
}

func (m *mockLedger) AddMany(_ context.Context, campaignID int, recipientIDs []int) ([]model.Notification, error) {
	m.campaignID = campaignID
	m.recipientIDs = recipientIDs
	if m.err != nil {
		return nil, m.err
	}
	notifications := make([]model.Notification, len(recipientIDs))
	for i, id := range recipientIDs {
		notifications[i] = model.Notification{
			ID:          i + 1,
			Status:      model.NotificationPending,
			CampaignID:  campaignID,
			RecipientID: id,
		}
	}
	return notifications, nil
}

type mockPublisher struct {
	messages []queue.NotificationMessage
	err      error
}

func (m *mockPublisher) Publish(_ context.Context, msg queue.NotificationMessage) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func newOrchestrator(campaigns *mockCampaignSource, recipients *mockRecipientSource, ledger *mockLedger, publisher *mockPublisher) *Orchestrator {
	return &Orchestrator{
		Campaigns:  campaigns,
		Recipients: recipients,
		Ledger:     ledger,
		Publisher:  publisher,
		Interval:   time.Millisecond,
		Logger:     zap.NewNop(),
	}
}

func TestRunCycleFansOutAcquiredCampaign(t *testing.T) {
	campaign := &model.Campaign{ID: 1, Name: "Black Friday", Content: "Sale!", Status: model.CampaignRunning}
	campaigns := &mockCampaignSource{acquired: campaign, completeErr: apperrors.ErrNoCampaignsAvailable}
	recipients := &mockRecipientSource{recipients: []model.Recipient{
		{ID: 10, Name: "Alice", Lastname: "Smith", ContactEmail: "alice@example.com"},
		{ID: 11, Name: "Bob", Lastname: "Jones", ContactEmail: "bob@example.com"},
		{ID: 12, Name: "Carol", Lastname: "Nguyen", ContactEmail: "carol@example.com"},
	}}
	ledger := &mockLedger{}
	publisher := &mockPublisher{}

	newOrchestrator(campaigns, recipients, ledger, publisher).RunCycle(context.Background())

	assert.Equal(t, 1, ledger.campaignID)
	assert.Equal(t, []int{10, 11, 12}, ledger.recipientIDs)
	require.Len(t, publisher.messages, 3)
	assert.Equal(t, "alice@example.com", publisher.messages[0].Email)
	assert.Equal(t, "Black Friday", publisher.messages[0].CampaignTitle)
	assert.Equal(t, "Sale!", publisher.messages[0].Content)
	assert.Equal(t, 1, campaigns.sweepCalls)
}

func TestRunCycleNothingToDo(t *testing.T) {
	campaigns := &mockCampaignSource{
		acquireErr:  apperrors.ErrNoCampaignsAvailable,
		completeErr: apperrors.ErrNoCampaignsAvailable,
	}
	ledger := &mockLedger{}
	publisher := &mockPublisher{}

	newOrchestrator(campaigns, &mockRecipientSource{}, ledger, publisher).RunCycle(context.Background())

	assert.Zero(t, ledger.campaignID)
	assert.Empty(t, publisher.messages)
	assert.Equal(t, 1, campaigns.acquireCalls)
	assert.Equal(t, 1, campaigns.sweepCalls)
}

func TestRunCycleSurvivesStorageFault(t *testing.T) {
	campaigns := &mockCampaignSource{
		acquireErr:  errors.New("connection reset"),
		completeErr: errors.New("connection reset"),
	}

	// Must not panic, and the sweep still runs after a failed dispatch.
	newOrchestrator(campaigns, &mockRecipientSource{}, &mockLedger{}, &mockPublisher{}).
		RunCycle(context.Background())

	assert.Equal(t, 1, campaigns.sweepCalls)
}

func TestRunCycleNoRecipients(t *testing.T) {
	campaign := &model.Campaign{ID: 2, Name: "Empty", Status: model.CampaignRunning}
	campaigns := &mockCampaignSource{acquired: campaign, completeErr: apperrors.ErrNoCampaignsAvailable}
	ledger := &mockLedger{}
	publisher := &mockPublisher{}

	newOrchestrator(campaigns, &mockRecipientSource{}, ledger, publisher).RunCycle(context.Background())

	// Nothing was materialized or published; the campaign stays running.
	assert.Zero(t, ledger.campaignID)
	assert.Empty(t, publisher.messages)
}

func TestRunCycleReportsCompletedCampaign(t *testing.T) {
	campaigns := &mockCampaignSource{
		acquireErr: apperrors.ErrNoCampaignsAvailable,
		completed:  &model.Campaign{ID: 9, Status: model.CampaignDone},
	}

	newOrchestrator(campaigns, &mockRecipientSource{}, &mockLedger{}, &mockPublisher{}).
		RunCycle(context.Background())

	assert.Equal(t, 1, campaigns.sweepCalls)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	campaigns := &mockCampaignSource{
		acquireErr:  apperrors.ErrNoCampaignsAvailable,
		completeErr: apperrors.ErrNoCampaignsAvailable,
	}
	o := newOrchestrator(campaigns, &mockRecipientSource{}, &mockLedger{}, &mockPublisher{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		o.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("orchestrator did not stop on cancellation")
	}
	assert.GreaterOrEqual(t, campaigns.acquireCalls, 1)
}

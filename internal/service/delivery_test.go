package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alexpetro/campaign-notifier/internal/model"
	"github.com/alexpetro/campaign-notifier/internal/queue"
)

type mockSender struct {
	err  error
	sent []queue.NotificationMessage
}

func (m *mockSender) Send(msg queue.NotificationMessage) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type mockOutcomes struct {
	err         error
	campaignID  int
	recipientID int
	status      model.NotificationStatus
}

func (m *mockOutcomes) RecordOutcome(_ context.Context, campaignID, recipientID int, status model.NotificationStatus) (*model.Notification, error) {
	m.campaignID = campaignID
	m.recipientID = recipientID
	m.status = status
	if m.err != nil {
		return nil, m.err
	}
	return &model.Notification{CampaignID: campaignID, RecipientID: recipientID, Status: status}, nil
}

func deliveryBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(queue.NotificationMessage{
		RecipientID:   10,
		Email:         "alice@example.com",
		FirstName:     "Alice",
		LastName:      "Smith",
		CampaignID:    1,
		CampaignTitle: "Black Friday",
		Content:       "Sale!",
	})
	require.NoError(t, err)
	return body
}

func TestHandleRecordsDelivered(t *testing.T) {
	sender := &mockSender{}
	outcomes := &mockOutcomes{}
	d := &Deliverer{Sender: sender, Outcomes: outcomes, Logger: zap.NewNop()}

	err := d.Handle(context.Background(), deliveryBody(t))

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, 1, outcomes.campaignID)
	assert.Equal(t, 10, outcomes.recipientID)
	assert.Equal(t, model.NotificationDelivered, outcomes.status)
}

func TestHandleSendFailureRecordsUndelivered(t *testing.T) {
	sender := &mockSender{err: errors.New("smtp unavailable")}
	outcomes := &mockOutcomes{}
	d := &Deliverer{Sender: sender, Outcomes: outcomes, Logger: zap.NewNop()}

	err := d.Handle(context.Background(), deliveryBody(t))

	// A failed send is a resolved outcome, not a processing error.
	require.NoError(t, err)
	assert.Equal(t, model.NotificationUndelivered, outcomes.status)
}

func TestHandleRecordFailureIsRetryable(t *testing.T) {
	outcomes := &mockOutcomes{err: errors.New("connection reset")}
	d := &Deliverer{Sender: &mockSender{}, Outcomes: outcomes, Logger: zap.NewNop()}

	err := d.Handle(context.Background(), deliveryBody(t))

	assert.Error(t, err)
}

func TestHandleRejectsMalformedBody(t *testing.T) {
	d := &Deliverer{Sender: &mockSender{}, Outcomes: &mockOutcomes{}, Logger: zap.NewNop()}

	err := d.Handle(context.Background(), []byte("not json"))

	// Marked final so consumers drop the message instead of retrying it.
	assert.True(t, errors.Is(err, ErrBadMessage))
}

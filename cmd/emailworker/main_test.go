// cmd/emailworker/main_test.go
package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/alexpetro/campaign-notifier/internal/queue"
	"github.com/alexpetro/campaign-notifier/internal/service"
)

type fakeHandler struct {
	err error
}

func (f *fakeHandler) Handle(context.Context, []byte) error { return f.err }

type fakeAcknowledger struct {
	acks  int
	nacks int
}

func (f *fakeAcknowledger) Ack(uint64, bool) error        { f.acks++; return nil }
func (f *fakeAcknowledger) Nack(uint64, bool, bool) error { f.nacks++; return nil }
func (f *fakeAcknowledger) Reject(uint64, bool) error     { return nil }

type fakeRepublisher struct {
	err     error
	bodies  [][]byte
	retries []int32
}

func (f *fakeRepublisher) Republish(body []byte, retries int32) error {
	if f.err != nil {
		return f.err
	}
	f.bodies = append(f.bodies, body)
	f.retries = append(f.retries, retries)
	return nil
}

func delivery(ack *fakeAcknowledger, retries int32) amqp.Delivery {
	d := amqp.Delivery{Acknowledger: ack, Body: []byte(`{"campaign_id":1}`)}
	if retries > 0 {
		d.Headers = amqp.Table{queue.RetryCountHeader: retries}
	}
	return d
}

func TestHandleDeliverySuccessAcks(t *testing.T) {
	ack := &fakeAcknowledger{}
	broker := &fakeRepublisher{}

	handleDelivery(context.Background(), &fakeHandler{}, broker, zap.NewNop(), delivery(ack, 0))

	assert.Equal(t, 1, ack.acks)
	assert.Zero(t, ack.nacks)
	assert.Empty(t, broker.bodies)
}

func TestHandleDeliveryReenqueuesWithIncrementedCount(t *testing.T) {
	ack := &fakeAcknowledger{}
	broker := &fakeRepublisher{}
	handler := &fakeHandler{err: errors.New("connection reset")}

	// A fresh failure carries no retry header yet and goes around once more.
	handleDelivery(context.Background(), handler, broker, zap.NewNop(), delivery(ack, 0))

	assert.Equal(t, []int32{1}, broker.retries)
	assert.Equal(t, 1, ack.acks)
	assert.Zero(t, ack.nacks)

	// The re-enqueued copy fails again; the count keeps climbing.
	handleDelivery(context.Background(), handler, broker, zap.NewNop(), delivery(ack, 1))

	assert.Equal(t, []int32{1, 2}, broker.retries)
}

func TestHandleDeliveryDropsAfterMaxRetries(t *testing.T) {
	ack := &fakeAcknowledger{}
	broker := &fakeRepublisher{}
	handler := &fakeHandler{err: errors.New("connection reset")}

	handleDelivery(context.Background(), handler, broker, zap.NewNop(), delivery(ack, maxRetries))

	assert.Empty(t, broker.bodies)
	assert.Equal(t, 1, ack.acks)
	assert.Zero(t, ack.nacks)
}

func TestHandleDeliveryDropsUndeliverableMessage(t *testing.T) {
	ack := &fakeAcknowledger{}
	broker := &fakeRepublisher{}
	handler := &fakeHandler{err: fmt.Errorf("%w: bad json", service.ErrBadMessage)}

	handleDelivery(context.Background(), handler, broker, zap.NewNop(), delivery(ack, 0))

	// Unparseable bodies are settled immediately, never retried.
	assert.Empty(t, broker.bodies)
	assert.Equal(t, 1, ack.acks)
	assert.Zero(t, ack.nacks)
}

func TestHandleDeliveryRequeuesWhenRepublishFails(t *testing.T) {
	ack := &fakeAcknowledger{}
	broker := &fakeRepublisher{err: errors.New("channel closed")}
	handler := &fakeHandler{err: errors.New("connection reset")}

	handleDelivery(context.Background(), handler, broker, zap.NewNop(), delivery(ack, 0))

	assert.Zero(t, ack.acks)
	assert.Equal(t, 1, ack.nacks)
}

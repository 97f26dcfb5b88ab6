package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAcknowledger records how a delivery was settled.
type fakeAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *fakeAcknowledger) Ack(uint64, bool) error {
	a.acked = true
	return nil
}

func (a *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

// MockProcessor
type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) Process(ctx context.Context, event LeadCapturedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func delivery(t *testing.T, body any, redelivered bool) (amqp.Delivery, *fakeAcknowledger) {
	t.Helper()
	raw, ok := body.([]byte)
	if !ok {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	ack := &fakeAcknowledger{}
	return amqp.Delivery{Acknowledger: ack, Body: raw, Redelivered: redelivered, DeliveryTag: 1}, ack
}

func TestWorkerHandle(t *testing.T) {
	event := LeadCapturedEvent{EventID: "evt-1", LeadID: "lead-1", Source: "elevenlabs-phone"}

	t.Run("Success Acks", func(t *testing.T) {
		p := new(MockProcessor)
		p.On("Process", mock.Anything, event).Return(nil)
		d, ack := delivery(t, event, false)

		NewWorker(nil, p, zap.NewNop()).Handle(context.Background(), d)

		assert.True(t, ack.acked)
		assert.False(t, ack.nacked)
	})

	t.Run("First Failure Requeues", func(t *testing.T) {
		p := new(MockProcessor)
		p.On("Process", mock.Anything, event).Return(errors.New("store down"))
		d, ack := delivery(t, event, false)

		NewWorker(nil, p, zap.NewNop()).Handle(context.Background(), d)

		assert.True(t, ack.nacked)
		assert.True(t, ack.requeue)
	})

	t.Run("Second Failure Dead Letters", func(t *testing.T) {
		p := new(MockProcessor)
		p.On("Process", mock.Anything, event).Return(errors.New("store down"))
		d, ack := delivery(t, event, true)

		NewWorker(nil, p, zap.NewNop()).Handle(context.Background(), d)

		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
	})

	t.Run("Malformed Message", func(t *testing.T) {
		p := new(MockProcessor)
		d, ack := delivery(t, []byte("{not json"), false)

		NewWorker(nil, p, zap.NewNop()).Handle(context.Background(), d)

		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
		p.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
	})

	t.Run("Missing Lead ID", func(t *testing.T) {
		p := new(MockProcessor)
		d, ack := delivery(t, LeadCapturedEvent{EventID: "evt-2"}, false)

		NewWorker(nil, p, zap.NewNop()).Handle(context.Background(), d)

		assert.True(t, ack.nacked)
		assert.False(t, ack.requeue)
	})
}

type fakePublisher struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (f *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func TestPublishLeadCaptured(t *testing.T) {
	pub := &fakePublisher{}
	producer := &RabbitMQProducer{Ch: pub}
	event := LeadCapturedEvent{
		EventID:    "evt-1",
		LeadID:     "lead-1",
		Source:     "elevenlabs-phone",
		OccurredAt: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, producer.PublishLeadCaptured(context.Background(), event))

	assert.Equal(t, ExchangeName, pub.exchange)
	assert.Equal(t, RoutingKey, pub.key)
	assert.Equal(t, "evt-1", pub.msg.MessageId)
	assert.Equal(t, amqp.Persistent, pub.msg.DeliveryMode)
	assert.Equal(t, "application/json", pub.msg.ContentType)

	var data map[string]any
	require.NoError(t, json.Unmarshal(pub.msg.Body, &data))
	assert.Equal(t, "lead-1", data["lead_id"])
	assert.Equal(t, "evt-1", data["event_id"])
}

func TestPublishLeadCapturedError(t *testing.T) {
	producer := &RabbitMQProducer{Ch: &fakePublisher{err: amqp.ErrClosed}}

	err := producer.PublishLeadCaptured(context.Background(), LeadCapturedEvent{LeadID: "lead-1"})

	assert.ErrorIs(t, err, amqp.ErrClosed)
}

package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// LeadProcessor handles one captured lead.
type LeadProcessor interface {
	Process(ctx context.Context, event LeadCapturedEvent) error
}

type Worker struct {
	Channel   *amqp.Channel
	Processor LeadProcessor
	Logger    *zap.Logger
}

func NewWorker(ch *amqp.Channel, processor LeadProcessor, logger *zap.Logger) *Worker {
	return &Worker{
		Channel:   ch,
		Processor: processor,
		Logger:    logger.Named("worker"),
	}
}

// Start consumes queueName until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	if err := w.Channel.Qos(4, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := w.Channel.ConsumeWithContext(ctx,
		queueName,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	w.Logger.Info("worker waiting for messages", zap.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			w.Handle(ctx, d)
		}
	}
}

// Handle processes one delivery. Malformed messages go straight to the DLQ; a
// failed message is requeued once and dead-lettered on the second failure.
func (w *Worker) Handle(ctx context.Context, d amqp.Delivery) {
	var event LeadCapturedEvent
	if err := json.Unmarshal(d.Body, &event); err != nil || event.LeadID == "" {
		w.Logger.Error("discarding malformed message", zap.ByteString("body", d.Body), zap.Error(err))
		d.Nack(false, false)
		return
	}

	log := w.Logger.With(zap.String("lead_id", event.LeadID), zap.String("event_id", event.EventID))

	if err := w.Processor.Process(ctx, event); err != nil {
		requeue := !d.Redelivered
		log.Error("processing failed", zap.Bool("requeue", requeue), zap.Error(err))
		d.Nack(false, requeue)
		return
	}

	log.Info("lead processed")
	d.Ack(false)
}

package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aturgenev/skyreserve/internal/logger"
	"github.com/segmentio/kafka-go"
)

// EventHandler processes one decoded booking event.
type EventHandler func(ctx context.Context, event BookingEvent) error

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer reads booking events from one topic and hands them to a handler
// already decoded.
type Consumer struct {
	reader messageReader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume loops until the context is cancelled, the reader fails or the
// handler returns an error. Messages that do not decode as a BookingEvent
// are logged and skipped so one poison message cannot wedge the stream.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		var event BookingEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.ErrorLogger.
				WithField("topic", msg.Topic).
				WithField("offset", msg.Offset).
				WithError(err).
				Error("decode booking event")
			continue
		}

		if err := handler(ctx, event); err != nil {
			return err
		}
	}
}

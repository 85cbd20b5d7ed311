package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aturgenev/skyreserve/internal/logger"
	"github.com/segmentio/kafka-go"
)

// BookingEvent is the wire form of a booking lifecycle change. Type is one
// of booking_created, booking_cancelled.
type BookingEvent struct {
	Type         string    `json:"type"`
	BookingID    string    `json:"booking_id"`
	FlightNumber string    `json:"flight_number"`
	CustomerID   string    `json:"customer_id"`
	Email        string    `json:"email"`
	Seats        int       `json:"seats"`
	AmountCents  int64     `json:"amount_cents"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	logger.InfoLogger.WithField("topic", topic).WithField("key", key).Info("published booking event")
	return nil
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

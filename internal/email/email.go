package email

import (
	"context"

	"github.com/aturgenev/skyreserve/internal/kafka"
	"github.com/aturgenev/skyreserve/internal/logger"
)

// Sender delivers booking notifications. The current implementation only
// logs the outgoing message.
// TODO: plug in an SMTP transport once the mail relay is provisioned.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	logger.InfoLogger.
		WithField("to", event.Email).
		WithField("event", event.Type).
		WithField("flight", event.FlightNumber).
		WithField("seats", event.Seats).
		Info("sending booking notification email")
	return nil
}

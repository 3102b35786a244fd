package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/airtickets/internal/kafka"
	"github.com/Domenick1991/airtickets/internal/logger"
)

type Message struct {
	UserID  int64
	Subject string
	Body    string
}

// Sender delivers ticket notifications. Delivery is a structured log line
// until a mail transport is configured.
type Sender struct {
	log *slog.Logger
}

func NewSender(log *slog.Logger) *Sender {
	if log == nil {
		log = logger.Get()
	}
	return &Sender{log: log}
}

// Compose renders the notification for event. ok is false for event
// types that do not notify the traveler.
func Compose(event kafka.TicketEvent) (msg Message, ok bool) {
	msg.UserID = event.UserID
	price := formatCents(event.PriceCents)
	switch event.Type {
	case kafka.EventTicketPurchased:
		msg.Subject = fmt.Sprintf("Ticket #%d confirmed", event.TicketID)
		msg.Body = fmt.Sprintf("Your ticket #%d for flight %d is confirmed. Paid: %s.", event.TicketID, event.FlightID, price)
	case kafka.EventTicketRefunded:
		msg.Subject = fmt.Sprintf("Ticket #%d refunded", event.TicketID)
		msg.Body = fmt.Sprintf("Your ticket #%d for flight %d was cancelled. Refund: %s.", event.TicketID, event.FlightID, price)
	default:
		return Message{}, false
	}
	return msg, true
}

func (s *Sender) Send(ctx context.Context, event kafka.TicketEvent) error {
	msg, ok := Compose(event)
	if !ok {
		s.log.DebugContext(ctx, "no notification for event", "type", event.Type, "event_id", event.ID)
		return nil
	}
	s.log.InfoContext(ctx, "send email",
		"user_id", msg.UserID,
		"subject", msg.Subject,
		"body", msg.Body,
		"event_id", event.ID,
	)
	return nil
}

func formatCents(c int64) string {
	sign := ""
	if c < 0 {
		sign, c = "-", -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

package email

import (
	"bytes"
	"context"
	"testing"

	"github.com/Domenick1991/airtickets/internal/kafka"
	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestCompose(t *testing.T) {
	msg, ok := Compose(kafka.TicketEvent{Type: kafka.EventTicketPurchased, TicketID: 3, UserID: 9, FlightID: 4, PriceCents: 500005})
	assert.True(t, ok)
	assert.Equal(t, int64(9), msg.UserID)
	assert.Equal(t, "Ticket #3 confirmed", msg.Subject)
	assert.Contains(t, msg.Body, "5000.05")

	msg, ok = Compose(kafka.TicketEvent{Type: kafka.EventTicketRefunded, TicketID: 3, PriceCents: 99})
	assert.True(t, ok)
	assert.Equal(t, "Ticket #3 refunded", msg.Subject)
	assert.Contains(t, msg.Body, "0.99")

	_, ok = Compose(kafka.TicketEvent{Type: "seat_swapped"})
	assert.False(t, ok)
}

func TestSender_Send(t *testing.T) {
	var buf bytes.Buffer
	s := NewSender(logger.New(&buf, "debug", "json"))

	err := s.Send(context.Background(), kafka.TicketEvent{ID: "e1", Type: kafka.EventTicketPurchased, TicketID: 1, UserID: 2})

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"msg":"send email"`)
	assert.Contains(t, buf.String(), `"event_id":"e1"`)
}

func TestSender_SkipsUnknownEvents(t *testing.T) {
	var buf bytes.Buffer
	s := NewSender(logger.New(&buf, "info", "json"))

	assert.NoError(t, s.Send(context.Background(), kafka.TicketEvent{Type: "other"}))
	assert.Empty(t, buf.String())
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "0.00", formatCents(0))
	assert.Equal(t, "12.30", formatCents(1230))
	assert.Equal(t, "-1.05", formatCents(-105))
}

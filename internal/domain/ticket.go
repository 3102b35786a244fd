package domain

import "time"

type TicketStatus string

const (
	TicketStatusActive TicketStatus = "active"
	// TicketStatusCanceled is reserved for manager-initiated cancellation.
	// No operation moves a ticket into it yet.
	TicketStatusCanceled TicketStatus = "canceled"
	TicketStatusRefunded TicketStatus = "refunded"
)

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusActive, TicketStatusCanceled, TicketStatusRefunded:
		return true
	}
	return false
}

// HoldsSeat reports whether a ticket in this status counts against the
// flight's available seats.
func (s TicketStatus) HoldsSeat() bool {
	return s == TicketStatusActive
}

type Ticket struct {
	ID         int64        `json:"id"`
	UserID     int64        `json:"user_id"`
	FlightID   int64        `json:"flight_id"`
	PriceCents int64        `json:"price_cents"`
	Status     TicketStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	CanceledAt *time.Time   `json:"canceled_at,omitempty"`
}

// UserTicket is one row of a traveler's ticket history.
type UserTicket struct {
	Ticket Ticket        `json:"ticket"`
	Flight FlightSummary `json:"flight"`
}

// Passenger is one row of a flight manifest.
type Passenger struct {
	Ticket    Ticket           `json:"ticket"`
	Purchaser PurchaserSummary `json:"user"`
}

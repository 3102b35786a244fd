package kafka

import "time"

const (
	EventTicketPurchased     = "ticket_purchased"
	EventTicketRefunded      = "ticket_refunded"
	EventFlightCreated       = "flight_created"
	EventFlightStatusChanged = "flight_status_changed"
	EventFlightDeleted       = "flight_deleted"
)

type TicketEvent struct {
	ID             string     `json:"id"`
	Type           string     `json:"type"`
	TicketID       int64      `json:"ticket_id"`
	UserID         int64      `json:"user_id"`
	FlightID       int64      `json:"flight_id"`
	PriceCents     int64      `json:"price_cents"`
	Status         string     `json:"status"`
	AvailableSeats int        `json:"available_seats"`
	CanceledAt     *time.Time `json:"canceled_at,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

type FlightEvent struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	FlightID       int64     `json:"flight_id"`
	CompanyID      int64     `json:"company_id"`
	FlightNumber   string    `json:"flight_number"`
	IsActive       bool      `json:"is_active"`
	AvailableSeats int       `json:"available_seats"`
	OccurredAt     time.Time `json:"occurred_at"`
}

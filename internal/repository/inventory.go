package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
)

// Inventory serializes every seat-affecting change to a flight.
type Inventory interface {
	// WithFlightLock runs fn in one unit of work holding the flight's
	// exclusive lock. Nothing fn wrote is kept when it returns an error.
	// Returns domain.ErrFlightNotFound without calling fn if the flight
	// does not exist.
	WithFlightLock(ctx context.Context, flightID int64, fn func(ctx context.Context, tx InventoryTx) error) error
}

// InventoryTx is the view of the store available inside WithFlightLock.
type InventoryTx interface {
	// Flight returns the locked flight as read at the start of the unit of work,
	// with any SetAvailableSeats applied.
	Flight() domain.Flight
	Ticket(ctx context.Context, ticketID int64) (*domain.Ticket, error)
	InsertTicket(ctx context.Context, ticket *domain.Ticket) error
	SetTicketStatus(ctx context.Context, ticketID int64, status domain.TicketStatus, canceledAt *time.Time) error
	SetAvailableSeats(ctx context.Context, available int) error
	CountTickets(ctx context.Context) (int, error)
	DeleteFlight(ctx context.Context) error
}

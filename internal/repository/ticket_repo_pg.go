package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	// ListByUser returns the user's tickets newest first.
	ListByUser(ctx context.Context, userID int64) ([]domain.UserTicket, error)
	// ListByFlight returns the flight's tickets with purchasers, newest first.
	ListByFlight(ctx context.Context, flightID int64) ([]domain.Passenger, error)
}

type PGTicketRepository struct {
	db *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) TicketRepository {
	return &PGTicketRepository{db: db}
}

const ticketColumns = `t.id, t.user_id, t.flight_id, t.price_cents, t.status, t.created_at, t.canceled_at`

func scanTicket(row scanner, extra ...any) (*domain.Ticket, error) {
	var t domain.Ticket
	dest := append([]any{&t.ID, &t.UserID, &t.FlightID, &t.PriceCents, &t.Status, &t.CreatedAt, &t.CanceledAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *PGTicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	return scanTicket(r.db.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets t WHERE t.id=$1`, id))
}

func (r *PGTicketRepository) ListByUser(ctx context.Context, userID int64) ([]domain.UserTicket, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ticketColumns+`, f.id, f.flight_number, f.departure_city, f.arrival_city, f.departure_time
		FROM tickets t JOIN flights f ON f.id = t.flight_id
		WHERE t.user_id=$1
		ORDER BY t.created_at DESC, t.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.UserTicket, 0)
	for rows.Next() {
		var f domain.FlightSummary
		t, err := scanTicket(rows, &f.ID, &f.FlightNumber, &f.DepartureCity, &f.ArrivalCity, &f.DepartureTime)
		if err != nil {
			return nil, err
		}
		f.DepartureTime = f.DepartureTime.UTC()
		result = append(result, domain.UserTicket{Ticket: *t, Flight: f})
	}
	return result, rows.Err()
}

func (r *PGTicketRepository) ListByFlight(ctx context.Context, flightID int64) ([]domain.Passenger, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ticketColumns+`, u.id, u.email, u.first_name, u.last_name, u.is_active
		FROM tickets t JOIN users u ON u.id = t.user_id
		WHERE t.flight_id=$1
		ORDER BY t.created_at DESC, t.id DESC`, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.Passenger, 0)
	for rows.Next() {
		var u domain.PurchaserSummary
		t, err := scanTicket(rows, &u.ID, &u.Email, &u.FirstName, &u.LastName, &u.IsActive)
		if err != nil {
			return nil, err
		}
		result = append(result, domain.Passenger{Ticket: *t, Purchaser: u})
	}
	return result, rows.Err()
}

var _ TicketRepository = (*PGTicketRepository)(nil)

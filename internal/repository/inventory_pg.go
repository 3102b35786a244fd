package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGInventory locks the flight row with SELECT ... FOR UPDATE for the
// duration of one transaction.
type PGInventory struct {
	db *pgxpool.Pool
}

func NewInventory(db *pgxpool.Pool) Inventory {
	return &PGInventory{db: db}
}

func (r *PGInventory) WithFlightLock(ctx context.Context, flightID int64, fn func(ctx context.Context, tx InventoryTx) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	flight, err := scanFlight(tx.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1 FOR UPDATE`, flightID))
	if err != nil {
		return err
	}

	if err := fn(ctx, &pgInventoryTx{tx: tx, flight: *flight}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type pgInventoryTx struct {
	tx     pgx.Tx
	flight domain.Flight
}

func (t *pgInventoryTx) Flight() domain.Flight {
	return t.flight
}

func (t *pgInventoryTx) Ticket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := scanTicket(t.tx.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets t WHERE t.id=$1 AND t.flight_id=$2 FOR UPDATE`, ticketID, t.flight.ID))
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (t *pgInventoryTx) InsertTicket(ctx context.Context, ticket *domain.Ticket) error {
	ticket.FlightID = t.flight.ID
	err := t.tx.QueryRow(ctx, `INSERT INTO tickets (user_id, flight_id, price_cents, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`, ticket.UserID, ticket.FlightID, ticket.PriceCents, ticket.Status).
		Scan(&ticket.ID, &ticket.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", missingReference(err, "user"))
	}
	return nil
}

func (t *pgInventoryTx) SetTicketStatus(ctx context.Context, ticketID int64, status domain.TicketStatus, canceledAt *time.Time) error {
	cmd, err := t.tx.Exec(ctx, `UPDATE tickets SET status=$1, canceled_at=$2 WHERE id=$3 AND flight_id=$4`, status, canceledAt, ticketID, t.flight.ID)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func (t *pgInventoryTx) SetAvailableSeats(ctx context.Context, available int) error {
	if !t.flight.SeatsInRange(available) {
		return fmt.Errorf("%w: flight %d available=%d total=%d", domain.ErrIntegrity, t.flight.ID, available, t.flight.TotalSeats)
	}
	if _, err := t.tx.Exec(ctx, `UPDATE flights SET available_seats=$1 WHERE id=$2`, available, t.flight.ID); err != nil {
		return fmt.Errorf("update seats: %w", err)
	}
	t.flight.AvailableSeats = available
	return nil
}

func (t *pgInventoryTx) CountTickets(ctx context.Context) (int, error) {
	var n int
	if err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM tickets WHERE flight_id=$1`, t.flight.ID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (t *pgInventoryTx) DeleteFlight(ctx context.Context) error {
	cmd, err := t.tx.Exec(ctx, `DELETE FROM flights WHERE id=$1`, t.flight.ID)
	if err != nil {
		return fmt.Errorf("delete flight: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return errors.New("flight vanished under lock")
	}
	return nil
}

var _ Inventory = (*PGInventory)(nil)

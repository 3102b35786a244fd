package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFlightRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewFlightRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewTicketRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewTicketRepository(pool)
	assert.NotNil(t, repo)
}

func TestNewInventory(t *testing.T) {
	pool := &pgxpool.Pool{}
	inv := NewInventory(pool)
	assert.NotNil(t, inv)
}

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case *int64:
			*d = v.(int64)
		case *int:
			*d = v.(int)
		case *string:
			*d = v.(string)
		case *bool:
			*d = v.(bool)
		case *time.Time:
			*d = v.(time.Time)
		}
	}
	return nil
}

func TestScanFlight_NoRows(t *testing.T) {
	f, err := scanFlight(fakeRow{err: pgx.ErrNoRows})
	assert.Nil(t, f)
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
}

func TestScanFlight_PassesOtherErrors(t *testing.T) {
	boom := errors.New("conn reset")
	_, err := scanFlight(fakeRow{err: boom})
	assert.Equal(t, boom, err)
}

func TestScanFlight_NormalizesToUTC(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	dep := time.Date(2026, 11, 2, 12, 30, 0, 0, msk)
	row := fakeRow{values: []any{
		int64(7), int64(2), "SU100", "Moscow", "Kazan",
		dep, dep.Add(90 * time.Minute), 10, 4, int64(500000), true, dep,
	}}

	f, err := scanFlight(row)

	require.NoError(t, err)
	assert.Equal(t, int64(7), f.ID)
	assert.Equal(t, 4, f.AvailableSeats)
	assert.Equal(t, time.UTC, f.DepartureTime.Location())
	assert.Equal(t, 9, f.DepartureTime.Hour())
	assert.Equal(t, time.UTC, f.ArrivalTime.Location())
}

func TestScanTicket_NoRows(t *testing.T) {
	ticket, err := scanTicket(fakeRow{err: pgx.ErrNoRows})
	assert.Nil(t, ticket)
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestMissingReference(t *testing.T) {
	fk := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503", ConstraintName: "tickets_user_id_fkey"})

	err := missingReference(fk, "user")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorContains(t, err, "user is not registered")

	unique := &pgconn.PgError{Code: "23505"}
	assert.Same(t, unique, missingReference(unique, "user"))

	plain := errors.New("connection reset")
	assert.Same(t, plain, missingReference(plain, "company"))
}

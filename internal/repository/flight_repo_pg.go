package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	Create(ctx context.Context, flight *domain.Flight) error
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	GetForCompany(ctx context.Context, id, companyID int64) (*domain.Flight, error)
	ListByCompany(ctx context.Context, companyID int64) ([]domain.Flight, error)
	Search(ctx context.Context, q domain.FlightSearch) ([]domain.Flight, error)
	SetActive(ctx context.Context, id, companyID int64, active bool) (*domain.Flight, error)
	Stats(ctx context.Context, companyID int64) (*domain.CompanyStats, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, company_id, flight_number, departure_city, arrival_city, departure_time, arrival_time, total_seats, available_seats, price_cents, is_active, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanFlight(row scanner) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.CompanyID, &f.FlightNumber, &f.DepartureCity, &f.ArrivalCity, &f.DepartureTime, &f.ArrivalTime, &f.TotalSeats, &f.AvailableSeats, &f.PriceCents, &f.IsActive, &f.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrFlightNotFound
		}
		return nil, err
	}
	f.DepartureTime = f.DepartureTime.UTC()
	f.ArrivalTime = f.ArrivalTime.UTC()
	return &f, nil
}

const foreignKeyViolation = "23503"

// missingReference turns a foreign key violation into a validation error
// naming the absent row. Other errors pass through.
func missingReference(err error, what string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return errors.Join(domain.ErrValidation, fmt.Errorf("%s is not registered", what))
	}
	return err
}

func collectFlights(rows pgx.Rows) ([]domain.Flight, error) {
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) Create(ctx context.Context, f *domain.Flight) error {
	row := r.db.QueryRow(ctx, `INSERT INTO flights (company_id, flight_number, departure_city, arrival_city, departure_time, arrival_time, total_seats, available_seats, price_cents, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`,
		f.CompanyID, f.FlightNumber, f.DepartureCity, f.ArrivalCity, f.DepartureTime, f.ArrivalTime, f.TotalSeats, f.AvailableSeats, f.PriceCents, f.IsActive)
	if err := row.Scan(&f.ID, &f.CreatedAt); err != nil {
		return fmt.Errorf("insert flight: %w", missingReference(err, "company"))
	}
	return nil
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id))
}

func (r *PGFlightRepository) GetForCompany(ctx context.Context, id, companyID int64) (*domain.Flight, error) {
	return scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1 AND company_id=$2`, id, companyID))
}

func (r *PGFlightRepository) ListByCompany(ctx context.Context, companyID int64) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights WHERE company_id=$1 ORDER BY departure_time, id`, companyID)
	if err != nil {
		return nil, err
	}
	return collectFlights(rows)
}

func (r *PGFlightRepository) Search(ctx context.Context, q domain.FlightSearch) ([]domain.Flight, error) {
	var date *string
	if q.Date != nil {
		d := q.Date.UTC().Format("2006-01-02")
		date = &d
	}
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights
		WHERE is_active
		  AND ($1 = '' OR departure_city ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR arrival_city ILIKE '%' || $2 || '%')
		  AND ($3::text IS NULL OR (departure_time AT TIME ZONE 'UTC')::date = $3::date)
		ORDER BY departure_time, id`, q.DepartureCity, q.ArrivalCity, date)
	if err != nil {
		return nil, err
	}
	return collectFlights(rows)
}

// SetActive takes the row lock so a toggle never interleaves with a seat change.
func (r *PGFlightRepository) SetActive(ctx context.Context, id, companyID int64, active bool) (*domain.Flight, error) {
	return scanFlight(r.db.QueryRow(ctx, `UPDATE flights SET is_active=$1 WHERE id=$2 AND company_id=$3 RETURNING `+flightColumns, active, id, companyID))
}

func (r *PGFlightRepository) Stats(ctx context.Context, companyID int64) (*domain.CompanyStats, error) {
	var s domain.CompanyStats
	err := r.db.QueryRow(ctx, `SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COALESCE(SUM(total_seats), 0),
			COALESCE(SUM(available_seats), 0),
			COALESCE(SUM((total_seats - available_seats)::bigint * price_cents), 0)
		FROM flights WHERE company_id=$1`, companyID).
		Scan(&s.TotalFlights, &s.ActiveFlights, &s.TotalSeats, &s.AvailableSeats, &s.RevenueCents)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)

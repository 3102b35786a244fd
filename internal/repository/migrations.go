package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrate creates the schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	slog.Info("running database migrations")

	for i, stmt := range migrations {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("database migrations completed", "count", len(migrations))
	return nil
}

var migrations = []string{
	createCompaniesTable,
	createUsersTable,
	createFlightsTable,
	createTicketsTable,
	createTicketsIndexes,
}

const createCompaniesTable = `
CREATE TABLE IF NOT EXISTS companies (
    id BIGSERIAL PRIMARY KEY,
    name TEXT UNIQUE NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    email TEXT UNIQUE NOT NULL,
    hashed_password TEXT NOT NULL DEFAULT '',
    first_name TEXT,
    last_name TEXT,
    role TEXT NOT NULL DEFAULT 'regular',
    company_id BIGINT REFERENCES companies(id),
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),

    CHECK (role IN ('regular', 'manager', 'admin'))
);`

const createFlightsTable = `
CREATE TABLE IF NOT EXISTS flights (
    id BIGSERIAL PRIMARY KEY,
    company_id BIGINT NOT NULL REFERENCES companies(id),
    flight_number TEXT NOT NULL,
    departure_city TEXT NOT NULL,
    arrival_city TEXT NOT NULL,
    departure_time TIMESTAMPTZ NOT NULL,
    arrival_time TIMESTAMPTZ NOT NULL,
    total_seats INTEGER NOT NULL,
    available_seats INTEGER NOT NULL,
    price_cents BIGINT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),

    CHECK (total_seats > 0),
    CHECK (available_seats >= 0 AND available_seats <= total_seats),
    CHECK (price_cents >= 0)
);
CREATE INDEX IF NOT EXISTS flights_company_id_idx ON flights (company_id);
CREATE INDEX IF NOT EXISTS flights_departure_time_idx ON flights (departure_time);`

const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id),
    flight_id BIGINT NOT NULL REFERENCES flights(id) ON DELETE RESTRICT,
    price_cents BIGINT NOT NULL,
    status TEXT NOT NULL DEFAULT 'active',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    canceled_at TIMESTAMPTZ,

    CHECK (status IN ('active', 'canceled', 'refunded'))
);`

const createTicketsIndexes = `
CREATE INDEX IF NOT EXISTS tickets_flight_id_idx ON tickets (flight_id);
CREATE INDEX IF NOT EXISTS tickets_user_id_idx ON tickets (user_id);`

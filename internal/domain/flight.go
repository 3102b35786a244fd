package domain

import "time"

type Flight struct {
	ID             int64     `json:"id"`
	CompanyID      int64     `json:"company_id"`
	FlightNumber   string    `json:"flight_number"`
	DepartureCity  string    `json:"departure_city"`
	ArrivalCity    string    `json:"arrival_city"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	TotalSeats     int       `json:"total_seats"`
	AvailableSeats int       `json:"available_seats"`
	PriceCents     int64     `json:"price_cents"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// Bookable reports whether a seat can be sold on the flight right now.
func (f *Flight) Bookable() bool {
	return f.IsActive && f.AvailableSeats > 0
}

// SeatsInRange reports whether n is a legal value for AvailableSeats.
func (f *Flight) SeatsInRange(n int) bool {
	return n >= 0 && n <= f.TotalSeats
}

// FlightSummary is the part of a flight shown next to a user's ticket.
type FlightSummary struct {
	ID            int64     `json:"id"`
	FlightNumber  string    `json:"flight_number"`
	DepartureCity string    `json:"departure_city"`
	ArrivalCity   string    `json:"arrival_city"`
	DepartureTime time.Time `json:"departure_time"`
}

func (f *Flight) Summary() FlightSummary {
	return FlightSummary{
		ID:            f.ID,
		FlightNumber:  f.FlightNumber,
		DepartureCity: f.DepartureCity,
		ArrivalCity:   f.ArrivalCity,
		DepartureTime: f.DepartureTime,
	}
}

type FlightSearch struct {
	DepartureCity string
	ArrivalCity   string
	// Date restricts results to flights departing on that UTC calendar day.
	Date *time.Time
}

type CompanyStats struct {
	TotalFlights   int   `json:"total_flights"`
	ActiveFlights  int   `json:"active_flights"`
	TotalSeats     int   `json:"total_seats"`
	AvailableSeats int   `json:"available_seats"`
	RevenueCents   int64 `json:"total_revenue_cents"`
}

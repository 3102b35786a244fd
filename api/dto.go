package api

import (
	"errors"
	"math"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

func centsToPrice(c int64) float64 {
	return float64(c) / 100
}

// priceToCents rounds p to whole cents and rejects prices a cent count
// cannot hold.
func priceToCents(p float64) (int64, error) {
	cents := math.Round(p * 100)
	if !(cents >= math.MinInt64 && cents < math.MaxInt64) {
		return 0, errors.Join(domain.ErrValidation, errors.New("price is out of range"))
	}
	return int64(cents), nil
}

type flightResponse struct {
	ID             int64   `json:"id"`
	CompanyID      int64   `json:"company_id"`
	FlightNumber   string  `json:"flight_number"`
	DepartureCity  string  `json:"departure_city"`
	ArrivalCity    string  `json:"arrival_city"`
	DepartureDate  string  `json:"departure_date"`
	DepartureTime  string  `json:"departure_time"`
	ArrivalDate    string  `json:"arrival_date"`
	ArrivalTime    string  `json:"arrival_time"`
	TotalSeats     int     `json:"total_seats"`
	AvailableSeats int     `json:"available_seats"`
	Price          float64 `json:"price"`
	IsActive       bool    `json:"is_active"`
	CreatedAt      string  `json:"created_at"`
}

func newFlightResponse(f *domain.Flight) flightResponse {
	return flightResponse{
		ID:             f.ID,
		CompanyID:      f.CompanyID,
		FlightNumber:   f.FlightNumber,
		DepartureCity:  f.DepartureCity,
		ArrivalCity:    f.ArrivalCity,
		DepartureDate:  f.DepartureTime.Format(dateLayout),
		DepartureTime:  f.DepartureTime.Format(clockLayout),
		ArrivalDate:    f.ArrivalTime.Format(dateLayout),
		ArrivalTime:    f.ArrivalTime.Format(clockLayout),
		TotalSeats:     f.TotalSeats,
		AvailableSeats: f.AvailableSeats,
		Price:          centsToPrice(f.PriceCents),
		IsActive:       f.IsActive,
		CreatedAt:      f.CreatedAt.Format(time.RFC3339),
	}
}

func newFlightList(flights []domain.Flight) []flightResponse {
	out := make([]flightResponse, 0, len(flights))
	for i := range flights {
		out = append(out, newFlightResponse(&flights[i]))
	}
	return out
}

type ticketResponse struct {
	ID         int64   `json:"id"`
	UserID     int64   `json:"user_id"`
	FlightID   int64   `json:"flight_id"`
	Price      float64 `json:"price"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"created_at"`
	CanceledAt *string `json:"canceled_at"`
}

func newTicketResponse(t *domain.Ticket) ticketResponse {
	resp := ticketResponse{
		ID:        t.ID,
		UserID:    t.UserID,
		FlightID:  t.FlightID,
		Price:     centsToPrice(t.PriceCents),
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
	if t.CanceledAt != nil {
		s := t.CanceledAt.Format(time.RFC3339)
		resp.CanceledAt = &s
	}
	return resp
}

type userTicketResponse struct {
	ID           int64   `json:"id"`
	FlightID     int64   `json:"flight_id"`
	FlightNumber string  `json:"flight_number"`
	Route        string  `json:"route"`
	Date         string  `json:"date"`
	Time         string  `json:"time"`
	Price        float64 `json:"price"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"created_at"`
}

func newUserTicketList(list []domain.UserTicket) []userTicketResponse {
	out := make([]userTicketResponse, 0, len(list))
	for _, ut := range list {
		out = append(out, userTicketResponse{
			ID:           ut.Ticket.ID,
			FlightID:     ut.Flight.ID,
			FlightNumber: ut.Flight.FlightNumber,
			Route:        ut.Flight.DepartureCity + " → " + ut.Flight.ArrivalCity,
			Date:         ut.Flight.DepartureTime.Format(dateLayout),
			Time:         ut.Flight.DepartureTime.Format(clockLayout),
			Price:        centsToPrice(ut.Ticket.PriceCents),
			Status:       string(ut.Ticket.Status),
			CreatedAt:    ut.Ticket.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}

type passengerResponse struct {
	TicketID  int64                   `json:"ticket_id"`
	Status    string                  `json:"status"`
	Price     float64                 `json:"price"`
	CreatedAt string                  `json:"created_at"`
	User      domain.PurchaserSummary `json:"user"`
}

func newPassengerList(list []domain.Passenger) []passengerResponse {
	out := make([]passengerResponse, 0, len(list))
	for _, p := range list {
		out = append(out, passengerResponse{
			TicketID:  p.Ticket.ID,
			Status:    string(p.Ticket.Status),
			Price:     centsToPrice(p.Ticket.PriceCents),
			CreatedAt: p.Ticket.CreatedAt.Format(time.RFC3339),
			User:      p.Purchaser,
		})
	}
	return out
}

type statsResponse struct {
	TotalFlights   int     `json:"total_flights"`
	ActiveFlights  int     `json:"active_flights"`
	TotalSeats     int     `json:"total_seats"`
	AvailableSeats int     `json:"available_seats"`
	TotalRevenue   float64 `json:"total_revenue"`
}

package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
)

// Memory is an in-process store. Seat changes are serialized by a mutex
// per flight id; staged writes are applied only when the unit of work
// succeeds.
type Memory struct {
	mu      sync.RWMutex
	flights map[int64]domain.Flight
	tickets map[int64]domain.Ticket
	users   map[int64]domain.PurchaserSummary

	lockMu sync.Mutex
	locks  map[int64]*sync.Mutex

	nextFlightID int64
	nextTicketID int64
	now          func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		flights: make(map[int64]domain.Flight),
		tickets: make(map[int64]domain.Ticket),
		users:   make(map[int64]domain.PurchaserSummary),
		locks:   make(map[int64]*sync.Mutex),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// AddUser registers a purchaser for manifest projections.
func (m *Memory) AddUser(u domain.PurchaserSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *Memory) flightLock(id int64) *sync.Mutex {
	m.lockMu.Lock()
	defer m.lockMu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// Flights

func (m *Memory) Create(_ context.Context, f *domain.Flight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextFlightID++
	f.ID = m.nextFlightID
	f.CreatedAt = m.now()
	m.flights[f.ID] = *f
	return nil
}

func (m *Memory) GetByID(_ context.Context, id int64) (*domain.Flight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.flights[id]
	if !ok {
		return nil, domain.ErrFlightNotFound
	}
	return &f, nil
}

func (m *Memory) GetForCompany(ctx context.Context, id, companyID int64) (*domain.Flight, error) {
	f, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.CompanyID != companyID {
		return nil, domain.ErrFlightNotFound
	}
	return f, nil
}

func (m *Memory) ListByCompany(_ context.Context, companyID int64) ([]domain.Flight, error) {
	return m.filterFlights(func(f domain.Flight) bool { return f.CompanyID == companyID }), nil
}

func (m *Memory) Search(_ context.Context, q domain.FlightSearch) ([]domain.Flight, error) {
	from := strings.ToLower(q.DepartureCity)
	to := strings.ToLower(q.ArrivalCity)
	return m.filterFlights(func(f domain.Flight) bool {
		if !f.IsActive {
			return false
		}
		if from != "" && !strings.Contains(strings.ToLower(f.DepartureCity), from) {
			return false
		}
		if to != "" && !strings.Contains(strings.ToLower(f.ArrivalCity), to) {
			return false
		}
		if q.Date != nil && f.DepartureTime.UTC().Format(time.DateOnly) != q.Date.UTC().Format(time.DateOnly) {
			return false
		}
		return true
	}), nil
}

func (m *Memory) filterFlights(keep func(domain.Flight) bool) []domain.Flight {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]domain.Flight, 0)
	for _, f := range m.flights {
		if keep(f) {
			result = append(result, f)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].DepartureTime.Equal(result[j].DepartureTime) {
			return result[i].DepartureTime.Before(result[j].DepartureTime)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func (m *Memory) SetActive(_ context.Context, id, companyID int64, active bool) (*domain.Flight, error) {
	l := m.flightLock(id)
	l.Lock()
	defer l.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flights[id]
	if !ok || f.CompanyID != companyID {
		return nil, domain.ErrFlightNotFound
	}
	f.IsActive = active
	m.flights[id] = f
	return &f, nil
}

// SetPrice changes a flight's fare. Tickets already sold keep the price
// they were bought at.
func (m *Memory) SetPrice(id int64, cents int64) error {
	l := m.flightLock(id)
	l.Lock()
	defer l.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flights[id]
	if !ok {
		return domain.ErrFlightNotFound
	}
	f.PriceCents = cents
	m.flights[id] = f
	return nil
}

func (m *Memory) Stats(_ context.Context, companyID int64) (*domain.CompanyStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var s domain.CompanyStats
	for _, f := range m.flights {
		if f.CompanyID != companyID {
			continue
		}
		s.TotalFlights++
		if f.IsActive {
			s.ActiveFlights++
		}
		s.TotalSeats += f.TotalSeats
		s.AvailableSeats += f.AvailableSeats
		s.RevenueCents += int64(f.TotalSeats-f.AvailableSeats) * f.PriceCents
	}
	return &s, nil
}

// Tickets

type memoryTickets struct{ m *Memory }

// Tickets exposes the ticket read side, whose GetByID would otherwise
// collide with the flight one.
func (m *Memory) Tickets() TicketRepository {
	return memoryTickets{m: m}
}

func (r memoryTickets) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	t, ok := r.m.tickets[id]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	return &t, nil
}

func (r memoryTickets) ListByUser(_ context.Context, userID int64) ([]domain.UserTicket, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	result := make([]domain.UserTicket, 0)
	for _, t := range r.m.sortedTickets(func(t domain.Ticket) bool { return t.UserID == userID }) {
		f := r.m.flights[t.FlightID]
		result = append(result, domain.UserTicket{Ticket: t, Flight: f.Summary()})
	}
	return result, nil
}

func (r memoryTickets) ListByFlight(_ context.Context, flightID int64) ([]domain.Passenger, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	result := make([]domain.Passenger, 0)
	for _, t := range r.m.sortedTickets(func(t domain.Ticket) bool { return t.FlightID == flightID }) {
		u, ok := r.m.users[t.UserID]
		if !ok {
			u = domain.PurchaserSummary{ID: t.UserID}
		}
		result = append(result, domain.Passenger{Ticket: t, Purchaser: u})
	}
	return result, nil
}

// sortedTickets must be called with mu held.
func (m *Memory) sortedTickets(keep func(domain.Ticket) bool) []domain.Ticket {
	list := make([]domain.Ticket, 0)
	for _, t := range m.tickets {
		if keep(t) {
			list = append(list, t)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list
}

// Inventory

func (m *Memory) WithFlightLock(ctx context.Context, flightID int64, fn func(ctx context.Context, tx InventoryTx) error) error {
	l := m.flightLock(flightID)
	l.Lock()
	defer l.Unlock()

	m.mu.RLock()
	flight, ok := m.flights[flightID]
	m.mu.RUnlock()
	if !ok {
		return domain.ErrFlightNotFound
	}

	tx := &memoryTx{m: m, flight: flight, touched: make(map[int64]domain.Ticket)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.apply()
	return nil
}

type memoryTx struct {
	m       *Memory
	flight  domain.Flight
	touched map[int64]domain.Ticket
	deleted bool
}

func (t *memoryTx) Flight() domain.Flight {
	return t.flight
}

func (t *memoryTx) Ticket(_ context.Context, ticketID int64) (*domain.Ticket, error) {
	if staged, ok := t.touched[ticketID]; ok {
		return &staged, nil
	}
	t.m.mu.RLock()
	ticket, ok := t.m.tickets[ticketID]
	t.m.mu.RUnlock()
	if !ok || ticket.FlightID != t.flight.ID {
		return nil, domain.ErrTicketNotFound
	}
	return &ticket, nil
}

func (t *memoryTx) InsertTicket(_ context.Context, ticket *domain.Ticket) error {
	t.m.mu.Lock()
	t.m.nextTicketID++
	ticket.ID = t.m.nextTicketID
	t.m.mu.Unlock()

	ticket.FlightID = t.flight.ID
	ticket.CreatedAt = t.m.now()
	t.touched[ticket.ID] = *ticket
	return nil
}

func (t *memoryTx) SetTicketStatus(ctx context.Context, ticketID int64, status domain.TicketStatus, canceledAt *time.Time) error {
	ticket, err := t.Ticket(ctx, ticketID)
	if err != nil {
		return err
	}
	ticket.Status = status
	ticket.CanceledAt = canceledAt
	t.touched[ticketID] = *ticket
	return nil
}

func (t *memoryTx) SetAvailableSeats(_ context.Context, available int) error {
	if !t.flight.SeatsInRange(available) {
		return domain.ErrIntegrity
	}
	t.flight.AvailableSeats = available
	return nil
}

func (t *memoryTx) CountTickets(_ context.Context) (int, error) {
	t.m.mu.RLock()
	defer t.m.mu.RUnlock()

	n := 0
	for _, ticket := range t.m.tickets {
		if ticket.FlightID == t.flight.ID {
			n++
		}
	}
	for id := range t.touched {
		if _, ok := t.m.tickets[id]; !ok {
			n++
		}
	}
	return n, nil
}

func (t *memoryTx) DeleteFlight(_ context.Context) error {
	t.deleted = true
	return nil
}

func (t *memoryTx) apply() {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	if t.deleted {
		delete(t.m.flights, t.flight.ID)
		return
	}
	t.m.flights[t.flight.ID] = t.flight
	for id, ticket := range t.touched {
		t.m.tickets[id] = ticket
	}
}

var (
	_ FlightRepository = (*Memory)(nil)
	_ Inventory        = (*Memory)(nil)
)

package flights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/repository"
	"github.com/Domenick1991/airtickets/internal/service/tickets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetForCompany(ctx context.Context, id, companyID int64) (*domain.Flight, error) {
	args := m.Called(ctx, id, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) ListByCompany(ctx context.Context, companyID int64) ([]domain.Flight, error) {
	args := m.Called(ctx, companyID)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Search(ctx context.Context, q domain.FlightSearch) ([]domain.Flight, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) SetActive(ctx context.Context, id, companyID int64, active bool) (*domain.Flight, error) {
	args := m.Called(ctx, id, companyID, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Stats(ctx context.Context, companyID int64) (*domain.CompanyStats, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CompanyStats), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Generation(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCache) GetSearch(ctx context.Context, gen int64, q domain.FlightSearch) ([]domain.Flight, error) {
	args := m.Called(ctx, gen, q)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockCache) SetSearch(ctx context.Context, gen int64, q domain.FlightSearch, flights []domain.Flight) error {
	args := m.Called(ctx, gen, q, flights)
	return args.Error(0)
}

func (m *MockCache) InvalidateFlights(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

var baseNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func validInput() CreateFlightInput {
	return CreateFlightInput{
		FlightNumber:  "SU100",
		DepartureCity: "Moscow",
		ArrivalCity:   "Kazan",
		DepartureDate: "2026-11-02",
		DepartureTime: "09:30",
		ArrivalDate:   "2026-11-02",
		ArrivalTime:   "11:05",
		TotalSeats:    3,
		PriceCents:    10000,
	}
}

func sampleFlights() []domain.Flight {
	return []domain.Flight{
		{
			ID:             4,
			FlightNumber:   "SU100",
			DepartureCity:  "Moscow",
			ArrivalCity:    "Kazan",
			DepartureTime:  baseNow.Add(48 * time.Hour),
			ArrivalTime:    baseNow.Add(50 * time.Hour),
			TotalSeats:     150,
			AvailableSeats: 149,
			PriceCents:     500000,
			IsActive:       true,
		},
	}
}

func TestFlightService_Create_Success(t *testing.T) {
	store := repository.NewMemory()
	mockCache := &MockCache{}
	mockProducer := &MockProducer{}
	service := NewFlightService(store, store.Tickets(), store, WithCache(mockCache), WithEvents(mockProducer, "flights"))
	ctx := context.Background()

	mockCache.On("InvalidateFlights", ctx).Return(nil).Once()
	mockProducer.On("Publish", ctx, "flights", "1", mock.AnythingOfType("kafka.FlightEvent")).Return(nil).Once()

	flight, err := service.Create(ctx, 2, validInput())

	require.NoError(t, err)
	assert.Equal(t, int64(1), flight.ID)
	assert.Equal(t, int64(2), flight.CompanyID)
	assert.Equal(t, 3, flight.TotalSeats)
	assert.Equal(t, 3, flight.AvailableSeats)
	assert.True(t, flight.IsActive)
	assert.Equal(t, time.Date(2026, 11, 2, 9, 30, 0, 0, time.UTC), flight.DepartureTime)
	assert.Equal(t, time.Date(2026, 11, 2, 11, 5, 0, 0, time.UTC), flight.ArrivalTime)

	mockCache.AssertExpectations(t)
	mockProducer.AssertExpectations(t)
}

func TestFlightService_Create_Validation(t *testing.T) {
	cases := map[string]func(*CreateFlightInput){
		"zero seats":         func(in *CreateFlightInput) { in.TotalSeats = 0 },
		"negative seats":     func(in *CreateFlightInput) { in.TotalSeats = -4 },
		"bad departure date": func(in *CreateFlightInput) { in.DepartureDate = "2026-13-01" },
		"bad departure time": func(in *CreateFlightInput) { in.DepartureTime = "25:00" },
		"bad arrival date":   func(in *CreateFlightInput) { in.ArrivalDate = "02.11.2026" },
		"bad arrival time":   func(in *CreateFlightInput) { in.ArrivalTime = "noon" },
		"arrival before":     func(in *CreateFlightInput) { in.ArrivalTime = "08:00" },
		"missing number":     func(in *CreateFlightInput) { in.FlightNumber = " " },
		"missing city":       func(in *CreateFlightInput) { in.ArrivalCity = "" },
		"negative price":     func(in *CreateFlightInput) { in.PriceCents = -1 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			mockRepo := &MockFlightRepository{}
			service := NewFlightService(mockRepo, nil, nil)
			in := validInput()
			mutate(&in)

			flight, err := service.Create(context.Background(), 1, in)

			assert.Nil(t, flight)
			assert.ErrorIs(t, err, domain.ErrValidation)
			mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestFlightService_Create_RepositoryError(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, nil, nil, WithCache(mockCache))
	ctx := context.Background()

	expectedErr := errors.New("database error")
	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Flight")).Return(expectedErr).Once()

	_, err := service.Create(ctx, 1, validInput())

	assert.Equal(t, expectedErr, err)
	mockCache.AssertNotCalled(t, "InvalidateFlights", mock.Anything)
}

func TestFlightService_SetActive(t *testing.T) {
	store := repository.NewMemory()
	service := NewFlightService(store, store.Tickets(), store)
	ctx := context.Background()

	flight, err := service.Create(ctx, 1, validInput())
	require.NoError(t, err)

	updated, err := service.SetActive(ctx, flight.ID, 1, false)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, flight.AvailableSeats, updated.AvailableSeats)

	_, err = service.SetActive(ctx, flight.ID, 2, true)
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)

	_, err = service.SetActive(ctx, 999, 1, true)
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
}

func TestFlightService_Delete(t *testing.T) {
	store := repository.NewMemory()
	service := NewFlightService(store, store.Tickets(), store)
	ticketSvc := tickets.NewTicketService(store.Tickets(), store, tickets.WithClock(func() time.Time { return baseNow }))
	ctx := context.Background()

	empty, err := service.Create(ctx, 1, validInput())
	require.NoError(t, err)
	booked, err := service.Create(ctx, 1, validInput())
	require.NoError(t, err)
	_, err = ticketSvc.Purchase(ctx, 5, booked.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, service.Delete(ctx, booked.ID, 1), domain.ErrFlightHasTickets)
	_, err = store.GetByID(ctx, booked.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, service.Delete(ctx, empty.ID, 2), domain.ErrFlightNotFound)
	assert.NoError(t, service.Delete(ctx, empty.ID, 1))
	_, err = store.GetByID(ctx, empty.ID)
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)

	assert.ErrorIs(t, service.Delete(ctx, empty.ID, 1), domain.ErrFlightNotFound)
}

func TestFlightService_Delete_RefundedTicketStillBlocks(t *testing.T) {
	store := repository.NewMemory()
	service := NewFlightService(store, store.Tickets(), store)
	ticketSvc := tickets.NewTicketService(store.Tickets(), store, tickets.WithClock(func() time.Time { return baseNow }))
	ctx := context.Background()

	flight, err := service.Create(ctx, 1, validInput())
	require.NoError(t, err)
	ticket, err := ticketSvc.Purchase(ctx, 5, flight.ID)
	require.NoError(t, err)
	_, err = ticketSvc.Cancel(ctx, 5, ticket.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, service.Delete(ctx, flight.ID, 1), domain.ErrFlightHasTickets)
}

func TestFlightService_Search_CacheMiss(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, nil, nil, WithCache(mockCache))
	ctx := context.Background()
	q := domain.FlightSearch{DepartureCity: "mos"}
	flights := sampleFlights()

	mockCache.On("Generation", ctx).Return(int64(3), nil).Once()
	mockCache.On("GetSearch", ctx, int64(3), q).Return(([]domain.Flight)(nil), nil).Once()
	mockRepo.On("Search", ctx, q).Return(flights, nil).Once()
	mockCache.On("SetSearch", ctx, int64(3), q, flights).Return(nil).Once()

	result, err := service.Search(ctx, q)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	mockCache.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestFlightService_Search_CacheHit(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, nil, nil, WithCache(mockCache))
	ctx := context.Background()
	q := domain.FlightSearch{}
	flights := sampleFlights()

	mockCache.On("Generation", ctx).Return(int64(0), nil).Once()
	mockCache.On("GetSearch", ctx, int64(0), q).Return(flights, nil).Once()

	result, err := service.Search(ctx, q)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	mockRepo.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	mockCache.AssertNotCalled(t, "SetSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFlightService_Search_CacheDown(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	mockCache := &MockCache{}
	service := NewFlightService(mockRepo, nil, nil, WithCache(mockCache))
	ctx := context.Background()
	q := domain.FlightSearch{ArrivalCity: "kaz"}
	flights := sampleFlights()

	mockCache.On("Generation", ctx).Return(int64(0), errors.New("cache error")).Once()
	mockRepo.On("Search", ctx, q).Return(flights, nil).Once()

	result, err := service.Search(ctx, q)

	assert.NoError(t, err)
	assert.Equal(t, flights, result)
	mockCache.AssertNotCalled(t, "SetSearch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFlightService_Search_RepositoryError(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil, nil)
	ctx := context.Background()
	q := domain.FlightSearch{}

	expectedErr := errors.New("database error")
	mockRepo.On("Search", ctx, q).Return([]domain.Flight{}, expectedErr).Once()

	result, err := service.Search(ctx, q)

	assert.Nil(t, result)
	assert.Equal(t, expectedErr, err)
}

func TestFlightService_Search_Memory(t *testing.T) {
	store := repository.NewMemory()
	service := NewFlightService(store, store.Tickets(), store)
	ctx := context.Background()

	in := validInput()
	first, err := service.Create(ctx, 1, in)
	require.NoError(t, err)

	in.DepartureCity, in.ArrivalCity, in.DepartureTime = "Kazan", "Sochi", "07:00"
	_, err = service.Create(ctx, 1, in)
	require.NoError(t, err)

	in.DepartureCity, in.ArrivalCity = "Moscow", "Sochi"
	hidden, err := service.Create(ctx, 1, in)
	require.NoError(t, err)
	_, err = service.SetActive(ctx, hidden.ID, 1, false)
	require.NoError(t, err)

	fromMoscow, err := service.Search(ctx, domain.FlightSearch{DepartureCity: "MOS"})
	require.NoError(t, err)
	require.Len(t, fromMoscow, 1)
	assert.Equal(t, first.ID, fromMoscow[0].ID)

	day := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	onDay, err := service.Search(ctx, domain.FlightSearch{Date: &day})
	require.NoError(t, err)
	require.Len(t, onDay, 2)
	assert.Equal(t, "Kazan", onDay[0].DepartureCity, "ordered by departure")

	other := day.Add(24 * time.Hour)
	none, err := service.Search(ctx, domain.FlightSearch{Date: &other})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestFlightService_Passengers(t *testing.T) {
	store := repository.NewMemory()
	first := "Anna"
	store.AddUser(domain.PurchaserSummary{ID: 5, Email: "anna@example.com", FirstName: &first, IsActive: true})
	store.AddUser(domain.PurchaserSummary{ID: 6, Email: "oleg@example.com", IsActive: true})
	service := NewFlightService(store, store.Tickets(), store)
	ticketSvc := tickets.NewTicketService(store.Tickets(), store, tickets.WithClock(func() time.Time { return baseNow }))
	ctx := context.Background()

	flight, err := service.Create(ctx, 1, validInput())
	require.NoError(t, err)
	t1, err := ticketSvc.Purchase(ctx, 5, flight.ID)
	require.NoError(t, err)
	t2, err := ticketSvc.Purchase(ctx, 6, flight.ID)
	require.NoError(t, err)

	passengers, err := service.Passengers(ctx, flight.ID, 1)
	require.NoError(t, err)
	require.Len(t, passengers, 2)
	assert.Equal(t, t2.ID, passengers[0].Ticket.ID)
	assert.Equal(t, "oleg@example.com", passengers[0].Purchaser.Email)
	assert.Equal(t, t1.ID, passengers[1].Ticket.ID)
	assert.Equal(t, "Anna", *passengers[1].Purchaser.FirstName)

	_, err = service.Passengers(ctx, flight.ID, 2)
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
}

func TestFlightService_Stats(t *testing.T) {
	store := repository.NewMemory()
	service := NewFlightService(store, store.Tickets(), store)
	ticketSvc := tickets.NewTicketService(store.Tickets(), store, tickets.WithClock(func() time.Time { return baseNow }))
	ctx := context.Background()

	a, err := service.Create(ctx, 1, validInput())
	require.NoError(t, err)
	b, err := service.Create(ctx, 1, validInput())
	require.NoError(t, err)
	_, err = service.Create(ctx, 2, validInput())
	require.NoError(t, err)
	_, err = service.SetActive(ctx, b.ID, 1, false)
	require.NoError(t, err)
	_, err = ticketSvc.Purchase(ctx, 9, a.ID)
	require.NoError(t, err)
	_, err = ticketSvc.Purchase(ctx, 10, a.ID)
	require.NoError(t, err)

	stats, err := service.Stats(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, domain.CompanyStats{
		TotalFlights:   2,
		ActiveFlights:  1,
		TotalSeats:     6,
		AvailableSeats: 4,
		RevenueCents:   20000,
	}, *stats)
}

func TestFlightService_GetByID_NotFound(t *testing.T) {
	mockRepo := &MockFlightRepository{}
	service := NewFlightService(mockRepo, nil, nil)
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, int64(999)).Return(nil, domain.ErrFlightNotFound).Once()

	result, err := service.GetByID(ctx, 999)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
	mockRepo.AssertExpectations(t)
}

package flights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/kafka"
	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/Domenick1991/airtickets/internal/metrics"
	"github.com/Domenick1991/airtickets/internal/repository"
	"github.com/google/uuid"
)

type FlightUseCase interface {
	Create(ctx context.Context, companyID int64, input CreateFlightInput) (*domain.Flight, error)
	SetActive(ctx context.Context, flightID, companyID int64, active bool) (*domain.Flight, error)
	Delete(ctx context.Context, flightID, companyID int64) error
	ListCompany(ctx context.Context, companyID int64) ([]domain.Flight, error)
	Search(ctx context.Context, q domain.FlightSearch) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Passengers(ctx context.Context, flightID, companyID int64) ([]domain.Passenger, error)
	Stats(ctx context.Context, companyID int64) (*domain.CompanyStats, error)
}

type SearchCache interface {
	Generation(ctx context.Context) (int64, error)
	GetSearch(ctx context.Context, gen int64, q domain.FlightSearch) ([]domain.Flight, error)
	SetSearch(ctx context.Context, gen int64, q domain.FlightSearch, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type FlightService struct {
	repo         repository.FlightRepository
	tickets      repository.TicketRepository
	inventory    repository.Inventory
	cache        SearchCache
	producer     Producer
	flightsTopic string
	now          func() time.Time
}

type FlightServiceOption func(*FlightService)

func WithCache(cache SearchCache) FlightServiceOption {
	return func(s *FlightService) {
		s.cache = cache
	}
}

func WithEvents(producer Producer, topic string) FlightServiceOption {
	return func(s *FlightService) {
		s.producer = producer
		s.flightsTopic = topic
	}
}

func WithClock(now func() time.Time) FlightServiceOption {
	return func(s *FlightService) {
		s.now = now
	}
}

func NewFlightService(repo repository.FlightRepository, tickets repository.TicketRepository, inventory repository.Inventory, opts ...FlightServiceOption) *FlightService {
	s := &FlightService{
		repo:      repo,
		tickets:   tickets,
		inventory: inventory,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateFlightInput struct {
	FlightNumber  string
	DepartureCity string
	ArrivalCity   string
	// Dates are YYYY-MM-DD, times HH:MM, both read as UTC.
	DepartureDate string
	DepartureTime string
	ArrivalDate   string
	ArrivalTime   string
	TotalSeats    int
	PriceCents    int64
}

const (
	dateLayout     = "2006-01-02"
	clockLayout    = "15:04"
	scheduleLayout = dateLayout + " " + clockLayout
)

func parseSchedule(field, date, clock string) (time.Time, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return time.Time{}, fmt.Errorf("%w: %s date %q must be YYYY-MM-DD", domain.ErrValidation, field, date)
	}
	if _, err := time.Parse(clockLayout, clock); err != nil {
		return time.Time{}, fmt.Errorf("%w: %s time %q must be HH:MM", domain.ErrValidation, field, clock)
	}
	return time.ParseInLocation(scheduleLayout, date+" "+clock, time.UTC)
}

func (in CreateFlightInput) toFlight(companyID int64) (*domain.Flight, error) {
	if strings.TrimSpace(in.FlightNumber) == "" {
		return nil, fmt.Errorf("%w: flight number is required", domain.ErrValidation)
	}
	if strings.TrimSpace(in.DepartureCity) == "" || strings.TrimSpace(in.ArrivalCity) == "" {
		return nil, fmt.Errorf("%w: departure and arrival cities are required", domain.ErrValidation)
	}
	if in.TotalSeats <= 0 {
		return nil, fmt.Errorf("%w: total seats must be positive", domain.ErrValidation)
	}
	if in.PriceCents < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	departure, err := parseSchedule("departure", in.DepartureDate, in.DepartureTime)
	if err != nil {
		return nil, err
	}
	arrival, err := parseSchedule("arrival", in.ArrivalDate, in.ArrivalTime)
	if err != nil {
		return nil, err
	}
	if arrival.Before(departure) {
		return nil, fmt.Errorf("%w: arrival precedes departure", domain.ErrValidation)
	}

	return &domain.Flight{
		CompanyID:      companyID,
		FlightNumber:   strings.TrimSpace(in.FlightNumber),
		DepartureCity:  strings.TrimSpace(in.DepartureCity),
		ArrivalCity:    strings.TrimSpace(in.ArrivalCity),
		DepartureTime:  departure,
		ArrivalTime:    arrival,
		TotalSeats:     in.TotalSeats,
		AvailableSeats: in.TotalSeats,
		PriceCents:     in.PriceCents,
		IsActive:       true,
	}, nil
}

func (s *FlightService) Create(ctx context.Context, companyID int64, input CreateFlightInput) (*domain.Flight, error) {
	flight, err := input.toFlight(companyID)
	if err != nil {
		metrics.FlightChanges.WithLabelValues("create", metrics.OutcomeInvalid).Inc()
		return nil, err
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, domain.ErrValidation) {
			outcome = metrics.OutcomeInvalid
		}
		metrics.FlightChanges.WithLabelValues("create", outcome).Inc()
		return nil, err
	}

	metrics.FlightChanges.WithLabelValues("create", metrics.OutcomeSuccess).Inc()
	logger.WithContext(ctx).Info("flight created", "flight_id", flight.ID, "company_id", companyID, "total_seats", flight.TotalSeats)
	s.invalidate(ctx)
	s.publish(ctx, kafka.EventFlightCreated, flight)
	return flight, nil
}

func (s *FlightService) SetActive(ctx context.Context, flightID, companyID int64, active bool) (*domain.Flight, error) {
	flight, err := s.repo.SetActive(ctx, flightID, companyID, active)
	if err != nil {
		metrics.FlightChanges.WithLabelValues("set_active", outcomeOf(err)).Inc()
		return nil, err
	}

	metrics.FlightChanges.WithLabelValues("set_active", metrics.OutcomeSuccess).Inc()
	logger.WithContext(ctx).Info("flight status changed", "flight_id", flightID, "is_active", active)
	s.invalidate(ctx)
	s.publish(ctx, kafka.EventFlightStatusChanged, flight)
	return flight, nil
}

// Delete removes a flight that no ticket has ever referenced.
func (s *FlightService) Delete(ctx context.Context, flightID, companyID int64) error {
	var deleted domain.Flight
	err := s.inventory.WithFlightLock(ctx, flightID, func(ctx context.Context, tx repository.InventoryTx) error {
		deleted = tx.Flight()
		if deleted.CompanyID != companyID {
			return domain.ErrFlightNotFound
		}
		n, err := tx.CountTickets(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrFlightHasTickets
		}
		return tx.DeleteFlight(ctx)
	})
	if err != nil {
		metrics.FlightChanges.WithLabelValues("delete", outcomeOf(err)).Inc()
		if errors.Is(err, domain.ErrFlightHasTickets) {
			logger.WithContext(ctx).Info("flight delete blocked", "flight_id", flightID)
		}
		return err
	}

	metrics.FlightChanges.WithLabelValues("delete", metrics.OutcomeSuccess).Inc()
	logger.WithContext(ctx).Info("flight deleted", "flight_id", flightID, "company_id", companyID)
	s.invalidate(ctx)
	s.publish(ctx, kafka.EventFlightDeleted, &deleted)
	return nil
}

func (s *FlightService) ListCompany(ctx context.Context, companyID int64) ([]domain.Flight, error) {
	return s.repo.ListByCompany(ctx, companyID)
}

func (s *FlightService) Search(ctx context.Context, q domain.FlightSearch) ([]domain.Flight, error) {
	var gen int64
	cacheable := false
	if s.cache != nil {
		if g, err := s.cache.Generation(ctx); err == nil {
			gen, cacheable = g, true
			if cached, err := s.cache.GetSearch(ctx, gen, q); err == nil && cached != nil {
				metrics.SearchCache.WithLabelValues("hit").Inc()
				return cached, nil
			}
			metrics.SearchCache.WithLabelValues("miss").Inc()
		} else {
			logger.WithContext(ctx).Warn("flight search cache unavailable", "error", err)
		}
	}

	flights, err := s.repo.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	if cacheable {
		if err := s.cache.SetSearch(ctx, gen, q, flights); err != nil {
			logger.WithContext(ctx).Warn("flight search cache write failed", "error", err)
		}
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) Passengers(ctx context.Context, flightID, companyID int64) ([]domain.Passenger, error) {
	if _, err := s.repo.GetForCompany(ctx, flightID, companyID); err != nil {
		return nil, err
	}
	return s.tickets.ListByFlight(ctx, flightID)
}

func (s *FlightService) Stats(ctx context.Context, companyID int64) (*domain.CompanyStats, error) {
	return s.repo.Stats(ctx, companyID)
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		logger.WithContext(ctx).Warn("flight search cache invalidation failed", "error", err)
	}
}

// publish is best effort: the change is already committed.
func (s *FlightService) publish(ctx context.Context, eventType string, f *domain.Flight) {
	if s.producer == nil || s.flightsTopic == "" {
		return
	}
	event := kafka.FlightEvent{
		ID:             uuid.NewString(),
		Type:           eventType,
		FlightID:       f.ID,
		CompanyID:      f.CompanyID,
		FlightNumber:   f.FlightNumber,
		IsActive:       f.IsActive,
		AvailableSeats: f.AvailableSeats,
		OccurredAt:     s.now(),
	}
	if err := s.producer.Publish(ctx, s.flightsTopic, fmt.Sprint(f.ID), event); err != nil {
		logger.WithContext(ctx).Error("failed to publish flight event", "type", eventType, "flight_id", f.ID, "error", err)
	}
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, domain.ErrFlightNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, domain.ErrFlightHasTickets):
		return metrics.OutcomeBlocked
	default:
		return metrics.OutcomeError
	}
}

var _ FlightUseCase = (*FlightService)(nil)

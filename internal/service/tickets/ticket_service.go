package tickets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/kafka"
	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/Domenick1991/airtickets/internal/metrics"
	"github.com/Domenick1991/airtickets/internal/repository"
	"github.com/google/uuid"
)

// DefaultRefundWindow is how long before departure cancellation closes.
const DefaultRefundWindow = 24 * time.Hour

type TicketUseCase interface {
	Purchase(ctx context.Context, userID, flightID int64) (*domain.Ticket, error)
	Cancel(ctx context.Context, userID, ticketID int64) (*domain.Ticket, error)
	ListUserTickets(ctx context.Context, userID int64) ([]domain.UserTicket, error)
}

type CacheInvalidator interface {
	InvalidateFlights(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type TicketService struct {
	tickets      repository.TicketRepository
	inventory    repository.Inventory
	cache        CacheInvalidator
	producer     Producer
	ticketsTopic string
	refundWindow time.Duration
	now          func() time.Time
}

type TicketServiceOption func(*TicketService)

func WithRefundWindow(d time.Duration) TicketServiceOption {
	return func(s *TicketService) {
		s.refundWindow = d
	}
}

func WithClock(now func() time.Time) TicketServiceOption {
	return func(s *TicketService) {
		s.now = now
	}
}

func WithCache(cache CacheInvalidator) TicketServiceOption {
	return func(s *TicketService) {
		s.cache = cache
	}
}

func WithEvents(producer Producer, topic string) TicketServiceOption {
	return func(s *TicketService) {
		s.producer = producer
		s.ticketsTopic = topic
	}
}

func NewTicketService(tickets repository.TicketRepository, inventory repository.Inventory, opts ...TicketServiceOption) *TicketService {
	s := &TicketService{
		tickets:      tickets,
		inventory:    inventory,
		refundWindow: DefaultRefundWindow,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Purchase sells one seat at the flight's current price. A missing,
// inactive or sold out flight yields domain.ErrUnavailable.
func (s *TicketService) Purchase(ctx context.Context, userID, flightID int64) (*domain.Ticket, error) {
	var (
		ticket    *domain.Ticket
		available int
	)
	err := s.inventory.WithFlightLock(ctx, flightID, func(ctx context.Context, tx repository.InventoryTx) error {
		flight := tx.Flight()
		if !flight.IsActive {
			return fmt.Errorf("%w: flight %d is inactive", domain.ErrUnavailable, flightID)
		}
		if flight.AvailableSeats <= 0 {
			return fmt.Errorf("%w: flight %d is sold out", domain.ErrUnavailable, flightID)
		}

		if err := tx.SetAvailableSeats(ctx, flight.AvailableSeats-1); err != nil {
			return err
		}
		t := &domain.Ticket{
			UserID:     userID,
			PriceCents: flight.PriceCents,
			Status:     domain.TicketStatusActive,
		}
		if err := tx.InsertTicket(ctx, t); err != nil {
			return err
		}
		ticket = t
		available = flight.AvailableSeats - 1
		return nil
	})
	log := logger.WithContext(ctx).With("flight_id", flightID, "user_id", userID)
	if err != nil {
		if errors.Is(err, domain.ErrFlightNotFound) {
			err = fmt.Errorf("%w: flight %d not found", domain.ErrUnavailable, flightID)
		}
		switch {
		case errors.Is(err, domain.ErrUnavailable):
			metrics.Purchases.WithLabelValues(metrics.OutcomeUnavailable).Inc()
			log.Info("purchase rejected", "reason", err.Error())
		case errors.Is(err, domain.ErrValidation):
			metrics.Purchases.WithLabelValues(metrics.OutcomeInvalid).Inc()
			log.Info("purchase rejected", "reason", err.Error())
		default:
			metrics.Purchases.WithLabelValues(metrics.OutcomeError).Inc()
			log.Error("purchase failed", "error", err)
		}
		return nil, err
	}

	metrics.Purchases.WithLabelValues(metrics.OutcomeSuccess).Inc()
	log.Info("ticket purchased", "ticket_id", ticket.ID, "price_cents", ticket.PriceCents, "available_seats", available)
	s.afterCommit(ctx, kafka.EventTicketPurchased, ticket, available)
	return ticket, nil
}

// Cancel refunds an active ticket owned by userID while departure is at
// least the refund window away. Departure exactly one window away is
// still refundable.
func (s *TicketService) Cancel(ctx context.Context, userID, ticketID int64) (*domain.Ticket, error) {
	log := logger.WithContext(ctx).With("ticket_id", ticketID, "user_id", userID)

	current, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			return nil, s.rejectCancel(log, domain.ErrNotCancelable, "ticket not found")
		}
		metrics.Cancellations.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}
	if current.UserID != userID {
		return nil, s.rejectCancel(log, domain.ErrNotCancelable, "ticket belongs to another user")
	}

	var (
		refunded  *domain.Ticket
		available int
	)
	err = s.inventory.WithFlightLock(ctx, current.FlightID, func(ctx context.Context, tx repository.InventoryTx) error {
		t, err := tx.Ticket(ctx, ticketID)
		if err != nil {
			return err
		}
		if t.Status != domain.TicketStatusActive {
			return fmt.Errorf("%w: ticket is %s", domain.ErrNotCancelable, t.Status)
		}

		flight := tx.Flight()
		now := s.now()
		if flight.DepartureTime.Sub(now) < s.refundWindow {
			return domain.ErrWindowClosed
		}

		if err := tx.SetTicketStatus(ctx, t.ID, domain.TicketStatusRefunded, &now); err != nil {
			return err
		}
		if err := tx.SetAvailableSeats(ctx, flight.AvailableSeats+1); err != nil {
			return err
		}
		t.Status = domain.TicketStatusRefunded
		t.CanceledAt = &now
		refunded = t
		available = flight.AvailableSeats + 1
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrFlightNotFound), errors.Is(err, domain.ErrTicketNotFound):
			return nil, s.rejectCancel(log, domain.ErrNotCancelable, err.Error())
		case errors.Is(err, domain.ErrNotCancelable):
			return nil, s.rejectCancel(log, err, "")
		case errors.Is(err, domain.ErrWindowClosed):
			metrics.Cancellations.WithLabelValues(metrics.OutcomeWindowClosed).Inc()
			log.Info("cancellation rejected", "reason", "refund window closed", "flight_id", current.FlightID)
			return nil, err
		default:
			metrics.Cancellations.WithLabelValues(metrics.OutcomeError).Inc()
			log.Error("cancellation failed", "error", err)
			return nil, err
		}
	}

	metrics.Cancellations.WithLabelValues(metrics.OutcomeSuccess).Inc()
	log.Info("ticket refunded", "flight_id", refunded.FlightID, "available_seats", available)
	s.afterCommit(ctx, kafka.EventTicketRefunded, refunded, available)
	return refunded, nil
}

func (s *TicketService) rejectCancel(log *slog.Logger, err error, reason string) error {
	metrics.Cancellations.WithLabelValues(metrics.OutcomeNotCancelable).Inc()
	if reason == "" {
		reason = err.Error()
	}
	log.Info("cancellation rejected", "reason", reason)
	return err
}

func (s *TicketService) ListUserTickets(ctx context.Context, userID int64) ([]domain.UserTicket, error) {
	return s.tickets.ListByUser(ctx, userID)
}

// afterCommit runs the side effects of a committed seat change. Failures
// are logged and never retried.
func (s *TicketService) afterCommit(ctx context.Context, eventType string, t *domain.Ticket, available int) {
	if s.cache != nil {
		if err := s.cache.InvalidateFlights(ctx); err != nil {
			logger.WithContext(ctx).Warn("flight search cache invalidation failed", "error", err)
		}
	}
	if s.producer == nil || s.ticketsTopic == "" {
		return
	}
	event := kafka.TicketEvent{
		ID:             uuid.NewString(),
		Type:           eventType,
		TicketID:       t.ID,
		UserID:         t.UserID,
		FlightID:       t.FlightID,
		PriceCents:     t.PriceCents,
		Status:         string(t.Status),
		AvailableSeats: available,
		CanceledAt:     t.CanceledAt,
		OccurredAt:     s.now(),
	}
	if err := s.producer.Publish(ctx, s.ticketsTopic, fmt.Sprint(t.FlightID), event); err != nil {
		logger.WithContext(ctx).Error("failed to publish ticket event", "type", eventType, "ticket_id", t.ID, "error", err)
	}
}

var _ TicketUseCase = (*TicketService)(nil)

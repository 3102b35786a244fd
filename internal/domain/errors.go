package domain

import "errors"

// Validation faults: rejected before any mutation.
var ErrValidation = errors.New("validation failed")

// Business rejections.
var (
	ErrFlightNotFound   = errors.New("flight not found")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrUnavailable      = errors.New("flight is unavailable")
	ErrNotCancelable    = errors.New("cannot cancel this ticket")
	ErrWindowClosed     = errors.New("refund window closed")
	ErrFlightHasTickets = errors.New("flight has tickets")
)

// ErrIntegrity marks a seat counter that would leave [0, total_seats].
// Reaching it means a locking defect; the mutation is aborted.
var ErrIntegrity = errors.New("seat inventory integrity violation")

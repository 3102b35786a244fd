package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/logger"
	"github.com/gin-gonic/gin"
)

// writeError maps engine outcomes onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status, message := http.StatusInternalServerError, "Internal server error"
	switch {
	case errors.Is(err, domain.ErrValidation):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUnavailable):
		status, message = http.StatusBadRequest, "Flight is unavailable"
	case errors.Is(err, domain.ErrNotCancelable):
		status, message = http.StatusBadRequest, "Cannot cancel this ticket"
	case errors.Is(err, domain.ErrWindowClosed):
		status, message = http.StatusBadRequest, "Refund window closed (less than 24h before departure)"
	case errors.Is(err, domain.ErrFlightNotFound):
		status, message = http.StatusNotFound, "Flight not found"
	case errors.Is(err, domain.ErrTicketNotFound):
		status, message = http.StatusNotFound, "Ticket not found"
	case errors.Is(err, domain.ErrFlightHasTickets):
		status, message = http.StatusConflict, "Cannot delete flight with tickets"
	default:
		logger.WithContext(c.Request.Context()).Error("request failed", "path", c.FullPath(), "error", err)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": message})
}

package api

import (
	"net/http"

	"github.com/Domenick1991/airtickets/internal/middleware"
	"github.com/Domenick1991/airtickets/internal/service/tickets"
	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	service tickets.TicketUseCase
}

type purchaseRequest struct {
	FlightID int64 `json:"flight_id" binding:"required,gt=0"`
}

func NewTicketHandler(service tickets.TicketUseCase) *TicketHandler {
	return &TicketHandler{service: service}
}

// Register expects an authenticated group.
func (h *TicketHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.purchase)
	router.GET("/my", h.mine)
	router.PUT("/:id/cancel", h.cancel)
}

func (h *TicketHandler) purchase(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.service.Purchase(c.Request.Context(), id.UserID, req.FlightID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newTicketResponse(ticket))
}

func (h *TicketHandler) mine(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	list, err := h.service.ListUserTickets(c.Request.Context(), id.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserTicketList(list))
}

func (h *TicketHandler) cancel(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	ticketID, ok := pathID(c)
	if !ok {
		return
	}

	ticket, err := h.service.Cancel(c.Request.Context(), id.UserID, ticketID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "ticket": newTicketResponse(ticket)})
}

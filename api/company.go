package api

import (
	"net/http"

	"github.com/Domenick1991/airtickets/internal/middleware"
	"github.com/Domenick1991/airtickets/internal/service/flights"
	"github.com/gin-gonic/gin"
)

// CompanyHandler serves a manager's own company. Routes must sit behind
// middleware.RequireManager.
type CompanyHandler struct {
	service flights.FlightUseCase
}

type createFlightRequest struct {
	FlightNumber  string  `json:"flight_number" binding:"required"`
	DepartureCity string  `json:"departure_city" binding:"required"`
	ArrivalCity   string  `json:"arrival_city" binding:"required"`
	DepartureDate string  `json:"departure_date" binding:"required"`
	DepartureTime string  `json:"departure_time" binding:"required"`
	ArrivalDate   string  `json:"arrival_date" binding:"required"`
	ArrivalTime   string  `json:"arrival_time" binding:"required"`
	TotalSeats    int     `json:"total_seats"`
	Price         float64 `json:"price"`
}

type flightStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func NewCompanyHandler(service flights.FlightUseCase) *CompanyHandler {
	return &CompanyHandler{service: service}
}

func (h *CompanyHandler) Register(router *gin.RouterGroup) {
	router.GET("/flights", h.list)
	router.POST("/flights", h.create)
	router.PUT("/flights/:id/status", h.setStatus)
	router.DELETE("/flights/:id", h.delete)
	router.GET("/flights/:id/passengers", h.passengers)
	router.GET("/stats", h.stats)
}

func companyOf(c *gin.Context) (int64, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok || id.CompanyID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is not associated with any company"})
		return 0, false
	}
	return *id.CompanyID, true
}

func (h *CompanyHandler) list(c *gin.Context) {
	companyID, ok := companyOf(c)
	if !ok {
		return
	}
	list, err := h.service.ListCompany(c.Request.Context(), companyID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFlightList(list))
}

func (h *CompanyHandler) create(c *gin.Context) {
	companyID, ok := companyOf(c)
	if !ok {
		return
	}
	var req createFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	priceCents, err := priceToCents(req.Price)
	if err != nil {
		writeError(c, err)
		return
	}

	flight, err := h.service.Create(c.Request.Context(), companyID, flights.CreateFlightInput{
		FlightNumber:  req.FlightNumber,
		DepartureCity: req.DepartureCity,
		ArrivalCity:   req.ArrivalCity,
		DepartureDate: req.DepartureDate,
		DepartureTime: req.DepartureTime,
		ArrivalDate:   req.ArrivalDate,
		ArrivalTime:   req.ArrivalTime,
		TotalSeats:    req.TotalSeats,
		PriceCents:    priceCents,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newFlightResponse(flight))
}

func (h *CompanyHandler) setStatus(c *gin.Context) {
	companyID, ok := companyOf(c)
	if !ok {
		return
	}
	flightID, ok := pathID(c)
	if !ok {
		return
	}
	var req flightStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flight, err := h.service.SetActive(c.Request.Context(), flightID, companyID, *req.IsActive)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFlightResponse(flight))
}

func (h *CompanyHandler) delete(c *gin.Context) {
	companyID, ok := companyOf(c)
	if !ok {
		return
	}
	flightID, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), flightID, companyID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *CompanyHandler) passengers(c *gin.Context) {
	companyID, ok := companyOf(c)
	if !ok {
		return
	}
	flightID, ok := pathID(c)
	if !ok {
		return
	}
	list, err := h.service.Passengers(c.Request.Context(), flightID, companyID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPassengerList(list))
}

func (h *CompanyHandler) stats(c *gin.Context) {
	companyID, ok := companyOf(c)
	if !ok {
		return
	}
	s, err := h.service.Stats(c.Request.Context(), companyID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, statsResponse{
		TotalFlights:   s.TotalFlights,
		ActiveFlights:  s.ActiveFlights,
		TotalSeats:     s.TotalSeats,
		AvailableSeats: s.AvailableSeats,
		TotalRevenue:   centsToPrice(s.RevenueCents),
	})
}

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/Domenick1991/airtickets/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.search)
	router.GET("/:id", h.get)
}

func (h *FlightHandler) search(c *gin.Context) {
	q := domain.FlightSearch{
		DepartureCity: c.Query("departure_city"),
		ArrivalCity:   c.Query("arrival_city"),
	}
	if raw := c.Query("date"); raw != "" {
		day, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		q.Date = &day
	}

	found, err := h.service.Search(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFlightList(found))
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFlightResponse(flight))
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

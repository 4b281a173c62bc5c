package booking

import (
	"errors"
	"net/http"
	"time"

	"github.com/CarNest/CarNest/internal/common/logger"
	"github.com/CarNest/CarNest/internal/common/middleware"
	"github.com/gin-gonic/gin"
)

// Handler exposes the booking endpoints over HTTP.
type Handler struct {
	svc *Service
	log logger.Logger
}

func NewHandler(svc *Service, log logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

type checkAvailabilityRequest struct {
	Location   string `json:"location"`
	PickupDate string `json:"pickupDate"`
	ReturnDate string `json:"returnDate"`
}

// CheckAvailability handles POST /api/bookings/check-availability.
func (h *Handler) CheckAvailability(c *gin.Context) {
	var req checkAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid JSON"})
		return
	}
	pickup, ret, err := parseRange(req.PickupDate, req.ReturnDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	cars, err := h.svc.SearchAvailable(c.Request.Context(), req.Location, pickup, ret)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "availableCars": cars})
}

type createBookingRequest struct {
	Car        string `json:"car"`
	PickupDate string `json:"pickupDate"`
	ReturnDate string `json:"returnDate"`
}

// Create handles POST /api/bookings/create.
func (h *Handler) Create(c *gin.Context) {
	ai, ok := middleware.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing auth"})
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid JSON"})
		return
	}
	pickup, ret, err := parseRange(req.PickupDate, req.ReturnDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if _, err := h.svc.CreateBooking(c.Request.Context(), ai.Subject, req.Car, pickup, ret); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking created successfully"})
}

// UserBookings handles GET /api/bookings/user.
func (h *Handler) UserBookings(c *gin.Context) {
	ai, ok := middleware.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing auth"})
		return
	}

	bookings, err := h.svc.UserBookings(c.Request.Context(), ai.Subject)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": bookings})
}

// OwnerBookings handles GET /api/bookings/owner. The route carries the owner
// role gate.
func (h *Handler) OwnerBookings(c *gin.Context) {
	ai, ok := middleware.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing auth"})
		return
	}

	bookings, err := h.svc.OwnerBookings(c.Request.Context(), ai.Subject)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": bookings})
}

type changeStatusRequest struct {
	BookingID string `json:"bookingId"`
	Status    string `json:"status"`
}

// ChangeStatus handles POST /api/bookings/change-status.
func (h *Handler) ChangeStatus(c *gin.Context) {
	ai, ok := middleware.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing auth"})
		return
	}

	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid JSON"})
		return
	}

	if _, err := h.svc.ChangeStatus(c.Request.Context(), ai.Subject, req.BookingID, Status(req.Status)); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking status updated"})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, ErrDateConflict):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Car is not available for the selected dates"})
	case errors.Is(err, ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Access denied"})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found"})
	default:
		if h.log != nil {
			h.log.Errorf("booking handler error: %v", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
	}
}

// parseRange accepts RFC 3339 timestamps or plain dates (2006-01-02).
func parseRange(pickup, ret string) (time.Time, time.Time, error) {
	p, err := parseDate(pickup)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid pickupDate")
	}
	r, err := parseDate(ret)
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid returnDate")
	}
	return p, r, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

package car

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/CarNest/CarNest/internal/common/logger"
	"github.com/CarNest/CarNest/internal/common/middleware"
	"github.com/gin-gonic/gin"
)

// Handler exposes the fleet endpoints over HTTP.
type Handler struct {
	svc         *Service
	log         logger.Logger
	maxUploadMB int64
}

func NewHandler(svc *Service, log logger.Logger, maxUploadMB int64) *Handler {
	if maxUploadMB <= 0 {
		maxUploadMB = 8
	}
	return &Handler{svc: svc, log: log, maxUploadMB: maxUploadMB}
}

// AddCar handles POST /api/owner/add-car. The request is multipart: a
// carData JSON field plus an image file.
func (h *Handler) AddCar(c *gin.Context) {
	ai, ok := middleware.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing auth"})
		return
	}

	var in AddCarInput
	if err := json.Unmarshal([]byte(c.PostForm("carData")), &in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid carData JSON"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Image is required"})
		return
	}
	if fileHeader.Size > h.maxUploadMB*1024*1024 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Image too large"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Cannot read image"})
		return
	}
	defer file.Close()

	created, err := h.svc.AddCar(c.Request.Context(), ai.Subject, in, fileHeader.Filename, file)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Car added", "car": created})
}

// OwnerCars handles GET /api/owner/cars.
func (h *Handler) OwnerCars(c *gin.Context) {
	ai, ok := middleware.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing auth"})
		return
	}

	cars, err := h.svc.OwnerCars(c.Request.Context(), ai.Subject)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cars": cars})
}

type toggleRequest struct {
	CarID string `json:"carId"`
}

// ToggleAvailability handles POST /api/owner/toggle-availability.
func (h *Handler) ToggleAvailability(c *gin.Context) {
	ai, ok := middleware.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing auth"})
		return
	}

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CarID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "carId is required"})
		return
	}

	toggled, err := h.svc.ToggleAvailability(c.Request.Context(), ai.Subject, req.CarID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Availability toggled", "car": toggled})
}

// DeleteCar handles DELETE /api/owner/car/:carId.
func (h *Handler) DeleteCar(c *gin.Context) {
	ai, ok := middleware.AuthFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing auth"})
		return
	}

	if err := h.svc.DeleteCar(c.Request.Context(), ai.Subject, c.Param("carId")); err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Car removed"})
}

// PublicCars handles GET /api/user/cars.
func (h *Handler) PublicCars(c *gin.Context) {
	cars, err := h.svc.PublicCars(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cars": cars})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	case errors.Is(err, ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Access denied"})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Car not found"})
	default:
		if h.log != nil {
			h.log.Errorf("car handler error: %v", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
	}
}

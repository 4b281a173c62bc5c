package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CarNest/CarNest/internal/common/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuth injects an identity the way the JWT middleware would.
func fakeAuth(ai middleware.AuthInfo) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetAuthInfo(c, ai)
		c.Next()
	}
}

func newBookingRouter(svc *Service, ai middleware.AuthInfo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc, nil)
	r := gin.New()
	r.POST("/api/bookings/check-availability", h.CheckAvailability)
	authed := r.Group("/", fakeAuth(ai))
	authed.POST("/api/bookings/create", h.Create)
	authed.GET("/api/bookings/user", h.UserBookings)
	authed.POST("/api/bookings/change-status", h.ChangeStatus)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCheckAvailabilityEndpoint(t *testing.T) {
	svc := NewService(newMemStore(), newMemCarStore(testCar("car-1")))
	r := newBookingRouter(svc, middleware.AuthInfo{Subject: "renter-1", Role: "renter"})

	w := postJSON(t, r, "/api/bookings/check-availability", gin.H{
		"location":   "Berlin",
		"pickupDate": "2026-03-03",
		"returnDate": "2026-03-05",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success       bool `json:"success"`
		AvailableCars []struct {
			ID string `json:"id"`
		} `json:"availableCars"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.AvailableCars, 1)
	assert.Equal(t, "car-1", resp.AvailableCars[0].ID)
}

func TestCreateBookingEndpointConflict(t *testing.T) {
	svc := NewService(newMemStore(), newMemCarStore(testCar("car-1")))
	r := newBookingRouter(svc, middleware.AuthInfo{Subject: "renter-1", Role: "renter"})

	body := gin.H{"car": "car-1", "pickupDate": "2026-03-02", "returnDate": "2026-03-05"}
	w := postJSON(t, r, "/api/bookings/create", body)
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, r, "/api/bookings/create", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "not available")
}

func TestCreateBookingEndpointRejectsBadRange(t *testing.T) {
	svc := NewService(newMemStore(), newMemCarStore(testCar("car-1")))
	r := newBookingRouter(svc, middleware.AuthInfo{Subject: "renter-1", Role: "renter"})

	w := postJSON(t, r, "/api/bookings/create", gin.H{
		"car":        "car-1",
		"pickupDate": "2026-03-05",
		"returnDate": "2026-03-02",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChangeStatusEndpointDeniesForeignOwner(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, newMemCarStore(testCar("car-1")))

	b, err := svc.CreateBooking(context.Background(), "renter-1", "car-1", testDay(0), testDay(2))
	require.NoError(t, err)

	r := newBookingRouter(svc, middleware.AuthInfo{Subject: "someone-else", Role: "owner"})
	w := postJSON(t, r, "/api/bookings/change-status", gin.H{
		"bookingId": b.ID,
		"status":    "confirmed",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// The denial must leave the booking untouched.
	got, err := store.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
}

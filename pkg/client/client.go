// Package client is a Go client for the rental API. It keeps the session
// state an interactive frontend would hold: the bearer token, the current
// user, the derived owner flag, a cached car list and the active search
// dates.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// NotifyFunc receives user-facing outcome messages. success mirrors the
// server's success flag.
type NotifyFunc func(success bool, message string)

// User is the profile the API returns.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Car is the public car representation.
type Car struct {
	ID              string `json:"id"`
	Owner           string `json:"owner"`
	Brand           string `json:"brand"`
	Model           string `json:"model"`
	Year            int    `json:"year"`
	Category        string `json:"category"`
	SeatingCapacity int    `json:"seatingCapacity"`
	FuelType        string `json:"fuelType"`
	Transmission    string `json:"transmission"`
	PricePerDay     int64  `json:"pricePerDay"`
	Location        string `json:"location"`
	Description     string `json:"description"`
	Image           string `json:"image"`
	IsAvailable     bool   `json:"isAvailable"`
}

// Booking is a booking as listed by the API.
type Booking struct {
	ID         string    `json:"id"`
	Car        *Car      `json:"car"`
	PickupDate time.Time `json:"pickupDate"`
	ReturnDate time.Time `json:"returnDate"`
	Price      int64     `json:"price"`
	Status     string    `json:"status"`
}

// Client talks to the rental API and caches session state. Safe for
// concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	tokenPath string
	notify    NotifyFunc

	mu          sync.RWMutex
	token       string
	user        *User
	isOwner     bool
	cars        []Car
	carsFetched bool
	pickupDate  string
	returnDate  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithNotify sets the notification callback.
func WithNotify(fn NotifyFunc) Option {
	return func(c *Client) { c.notify = fn }
}

// WithTokenPath sets the file the token is persisted to. An empty path
// disables persistence.
func WithTokenPath(path string) Option {
	return func(c *Client) { c.tokenPath = path }
}

// New builds a Client. A token previously persisted at the token path is
// restored so the session survives restarts.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		notify:  func(bool, string) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tokenPath != "" {
		if data, err := os.ReadFile(c.tokenPath); err == nil {
			c.token = strings.TrimSpace(string(data))
		}
	}
	return c
}

// Token returns the current bearer token, empty when logged out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// CurrentUser returns the fetched profile, nil when unknown.
func (c *Client) CurrentUser() *User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.user
}

// IsOwner reports whether the current user has the owner role.
func (c *Client) IsOwner() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isOwner
}

// SetDates stores the active pickup/return search dates (YYYY-MM-DD).
func (c *Client) SetDates(pickup, ret string) {
	c.mu.Lock()
	c.pickupDate = pickup
	c.returnDate = ret
	c.mu.Unlock()
}

// Dates returns the active pickup/return search dates.
func (c *Client) Dates() (pickup, ret string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pickupDate, c.returnDate
}

type authResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
	User    *User  `json:"user"`
}

// Register creates an account and starts a session with the returned token.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/api/user/register",
		map[string]string{"name": name, "email": email, "password": password}, &resp)
	if err != nil {
		c.notify(false, err.Error())
		return err
	}
	c.startSession(resp.Token, resp.User)
	c.notify(true, "Registered successfully")
	return nil
}

// Login authenticates and stores the token for subsequent requests.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/api/user/login",
		map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		c.notify(false, err.Error())
		return err
	}
	c.startSession(resp.Token, resp.User)
	c.notify(true, "Logged in successfully")
	return nil
}

// Logout drops the session state and removes the persisted token.
func (c *Client) Logout() {
	c.mu.Lock()
	c.token = ""
	c.user = nil
	c.isOwner = false
	c.mu.Unlock()
	if c.tokenPath != "" {
		os.Remove(c.tokenPath)
	}
	c.notify(true, "You have been logged out")
}

// FetchUser loads the current profile. A failure resets the session, since
// the token is no longer trusted.
func (c *Client) FetchUser(ctx context.Context) (*User, error) {
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		User    *User  `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/user/data", nil, &resp); err != nil {
		c.resetSession()
		c.notify(false, err.Error())
		return nil, err
	}
	c.mu.Lock()
	c.user = resp.User
	c.isOwner = resp.User != nil && resp.User.Role == "owner"
	c.mu.Unlock()
	return resp.User, nil
}

// FetchCars returns the public catalogue. The list is cached until
// InvalidateCars is called.
func (c *Client) FetchCars(ctx context.Context) ([]Car, error) {
	c.mu.RLock()
	cached, ok := c.cars, c.carsFetched
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Cars    []Car  `json:"cars"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/user/cars", nil, &resp); err != nil {
		c.notify(false, err.Error())
		return nil, err
	}
	c.mu.Lock()
	c.cars = resp.Cars
	c.carsFetched = true
	c.mu.Unlock()
	return resp.Cars, nil
}

// InvalidateCars drops the cached catalogue so the next FetchCars refetches.
func (c *Client) InvalidateCars() {
	c.mu.Lock()
	c.cars = nil
	c.carsFetched = false
	c.mu.Unlock()
}

// CheckAvailability searches for free cars in a location using the stored
// pickup/return dates.
func (c *Client) CheckAvailability(ctx context.Context, location string) ([]Car, error) {
	pickup, ret := c.Dates()
	var resp struct {
		Success       bool   `json:"success"`
		Message       string `json:"message"`
		AvailableCars []Car  `json:"availableCars"`
	}
	err := c.do(ctx, http.MethodPost, "/api/bookings/check-availability",
		map[string]string{"location": location, "pickupDate": pickup, "returnDate": ret}, &resp)
	if err != nil {
		c.notify(false, err.Error())
		return nil, err
	}
	return resp.AvailableCars, nil
}

// CreateBooking books a car for the stored pickup/return dates.
func (c *Client) CreateBooking(ctx context.Context, carID string) error {
	pickup, ret := c.Dates()
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	err := c.do(ctx, http.MethodPost, "/api/bookings/create",
		map[string]string{"car": carID, "pickupDate": pickup, "returnDate": ret}, &resp)
	if err != nil {
		c.notify(false, err.Error())
		return err
	}
	c.notify(true, resp.Message)
	return nil
}

// MyBookings lists the current user's bookings.
func (c *Client) MyBookings(ctx context.Context) ([]Booking, error) {
	var resp struct {
		Success  bool      `json:"success"`
		Message  string    `json:"message"`
		Bookings []Booking `json:"bookings"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/bookings/user", nil, &resp); err != nil {
		c.notify(false, err.Error())
		return nil, err
	}
	return resp.Bookings, nil
}

func (c *Client) startSession(token string, user *User) {
	c.mu.Lock()
	c.token = token
	c.user = user
	c.isOwner = user != nil && user.Role == "owner"
	c.mu.Unlock()
	if c.tokenPath != "" && token != "" {
		os.MkdirAll(filepath.Dir(c.tokenPath), 0o755)
		os.WriteFile(c.tokenPath, []byte(token), 0o600)
	}
}

func (c *Client) resetSession() {
	c.mu.Lock()
	c.token = ""
	c.user = nil
	c.isOwner = false
	c.mu.Unlock()
	if c.tokenPath != "" {
		os.Remove(c.tokenPath)
	}
}

// do sends a JSON request and decodes the response envelope into out. Error
// responses with a message field become plain errors.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		var envelope struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &envelope) == nil && envelope.Message != "" {
			return fmt.Errorf("%s", envelope.Message)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

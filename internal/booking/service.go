package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/CarNest/CarNest/internal/car"
	"github.com/google/uuid"
)

const day = 24 * time.Hour

// Service implements the booking use cases without any transport coupling.
type Service struct {
	store Store
	cars  car.Store
}

func NewService(store Store, cars car.Store) *Service {
	return &Service{store: store, cars: cars}
}

// RentalDays is the billed length of a rental: the whole-day difference
// rounded up, never less than one day for a positive interval.
func RentalDays(pickup, ret time.Time) int64 {
	diff := ret.Sub(pickup)
	if diff <= 0 {
		return 0
	}
	days := int64(diff / day)
	if diff%day != 0 {
		days++
	}
	return days
}

// PriceFor computes pricePerDay x billed days.
func PriceFor(pricePerDay int64, pickup, ret time.Time) int64 {
	return pricePerDay * RentalDays(pickup, ret)
}

// SearchAvailable lists the cars at a location that are free for the whole
// date range. The per-car overlap checks fan out concurrently and are joined
// before returning.
func (s *Service) SearchAvailable(ctx context.Context, location string, pickup, ret time.Time) ([]car.Car, error) {
	if s == nil || s.store == nil || s.cars == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%w: location required", ErrInvalidInput)
	}
	if err := validRange(pickup, ret); err != nil {
		return nil, err
	}

	candidates, err := s.cars.ListAvailableByLocation(ctx, location)
	if err != nil {
		return nil, err
	}

	free := make([]bool, len(candidates))
	errs := make([]error, len(candidates))
	var wg sync.WaitGroup
	for i := range candidates {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			overlap, err := s.store.HasOverlap(ctx, candidates[i].ID, pickup, ret)
			errs[i] = err
			free[i] = err == nil && !overlap
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	out := make([]car.Car, 0, len(candidates))
	for i, ok := range free {
		if ok {
			out = append(out, candidates[i])
		}
	}
	return out, nil
}

// CreateBooking books a car for the renter. The overlap check and the insert
// are atomic in the store, so two racing requests for the same car and dates
// cannot both succeed.
func (s *Service) CreateBooking(ctx context.Context, renterID, carID string, pickup, ret time.Time) (*Booking, error) {
	if s == nil || s.store == nil || s.cars == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	renterID = strings.TrimSpace(renterID)
	carID = strings.TrimSpace(carID)
	if renterID == "" || carID == "" {
		return nil, fmt.Errorf("%w: renter and car id required", ErrInvalidInput)
	}
	if err := validRange(pickup, ret); err != nil {
		return nil, err
	}

	c, err := s.cars.FindByID(ctx, carID)
	if errors.Is(err, car.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	b := &Booking{
		ID:         uuid.NewString(),
		CarID:      c.ID,
		OwnerID:    c.OwnerID,
		UserID:     renterID,
		PickupDate: pickup,
		ReturnDate: ret,
		Price:      PriceFor(c.PricePerDay, pickup, ret),
		Status:     StatusPending,
	}
	if err := s.store.CreateIfFree(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// UserBookings lists the renter's bookings, newest first.
func (s *Service) UserBookings(ctx context.Context, renterID string) ([]Booking, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	renterID = strings.TrimSpace(renterID)
	if renterID == "" {
		return nil, fmt.Errorf("%w: renter id required", ErrInvalidInput)
	}
	return s.store.ListByUser(ctx, renterID)
}

// OwnerBookings lists the bookings against the owner's cars, newest first.
func (s *Service) OwnerBookings(ctx context.Context, ownerID string) ([]Booking, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id required", ErrInvalidInput)
	}
	return s.store.ListByOwner(ctx, ownerID)
}

// ChangeStatus moves a booking through the status state machine. Only the
// booking's owner of record may change it; the target status must be a legal
// transition.
func (s *Service) ChangeStatus(ctx context.Context, ownerID, bookingID string, to Status) (*Booking, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	ownerID = strings.TrimSpace(ownerID)
	bookingID = strings.TrimSpace(bookingID)
	if ownerID == "" || bookingID == "" {
		return nil, fmt.Errorf("%w: owner and booking id required", ErrInvalidInput)
	}
	if !ValidStatus(to) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, to)
	}

	b, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.OwnerID == "" || b.OwnerID != ownerID {
		return nil, ErrAccessDenied
	}

	if err := ApplyTransition(b, to, time.Now()); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func validRange(pickup, ret time.Time) error {
	if pickup.IsZero() || ret.IsZero() {
		return fmt.Errorf("%w: pickup and return dates required", ErrInvalidInput)
	}
	if !ret.After(pickup) {
		return fmt.Errorf("%w: return date must be after pickup date", ErrInvalidInput)
	}
	return nil
}

package car

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/CarNest/CarNest/internal/common/middleware"
	"github.com/CarNest/CarNest/internal/storage"
	"github.com/google/uuid"
)

// Service implements fleet management for owners plus the public catalogue.
type Service struct {
	store   Store
	images  storage.ImageStore
	breaker *middleware.CircuitBreaker
}

// NewService wires the car use cases. breaker may be nil (uploads then run
// unguarded).
func NewService(store Store, images storage.ImageStore, breaker *middleware.CircuitBreaker) *Service {
	return &Service{store: store, images: images, breaker: breaker}
}

// AddCarInput carries the listing metadata from the add-car form.
type AddCarInput struct {
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
}

// AddCar uploads the listing image, derives the delivery URL, and creates a
// car owned by the requester.
func (s *Service) AddCar(ctx context.Context, ownerID string, in AddCarInput, imageName string, image io.Reader) (*Car, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Brand) == "" || strings.TrimSpace(in.Model) == "" {
		return nil, fmt.Errorf("%w: brand and model are required", ErrInvalidInput)
	}
	if in.PricePerDay <= 0 {
		return nil, fmt.Errorf("%w: price per day must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Location) == "" {
		return nil, fmt.Errorf("%w: location required", ErrInvalidInput)
	}

	imageURL := ""
	if image != nil && s.images != nil {
		upload := func() error {
			url, err := s.images.Save(ctx, imageName, image)
			if err != nil {
				return err
			}
			imageURL = url
			return nil
		}
		var err error
		if s.breaker != nil {
			err = s.breaker.Call(ctx, upload)
		} else {
			err = upload()
		}
		if err != nil {
			return nil, fmt.Errorf("upload image: %w", err)
		}
	}

	c := &Car{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		Brand:           strings.TrimSpace(in.Brand),
		Model:           strings.TrimSpace(in.Model),
		Year:            in.Year,
		Category:        strings.TrimSpace(in.Category),
		SeatingCapacity: in.SeatingCapacity,
		FuelType:        strings.TrimSpace(in.FuelType),
		Transmission:    strings.TrimSpace(in.Transmission),
		PricePerDay:     in.PricePerDay,
		Location:        strings.TrimSpace(in.Location),
		Description:     strings.TrimSpace(in.Description),
		Image:           storage.DeliveryURL(imageURL),
		IsAvailable:     true,
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// OwnerCars lists the requester's fleet.
func (s *Service) OwnerCars(ctx context.Context, ownerID string) ([]Car, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id required", ErrInvalidInput)
	}
	return s.store.ListByOwner(ctx, ownerID)
}

// ToggleAvailability flips the availability flag of the requester's own car.
func (s *Service) ToggleAvailability(ctx context.Context, ownerID, carID string) (*Car, error) {
	c, err := s.ownCar(ctx, ownerID, carID)
	if err != nil {
		return nil, err
	}
	c.IsAvailable = !c.IsAvailable
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCar soft-deletes a listing: the owner reference is cleared and
// availability forced off. The row is retained so historical bookings keep a
// valid car reference.
func (s *Service) DeleteCar(ctx context.Context, ownerID, carID string) error {
	c, err := s.ownCar(ctx, ownerID, carID)
	if err != nil {
		return err
	}
	c.OwnerID = ""
	c.IsAvailable = false
	return s.store.Save(ctx, c)
}

// PublicCars lists every available car for the landing catalogue.
func (s *Service) PublicCars(ctx context.Context) ([]Car, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return s.store.ListAvailable(ctx)
}

func (s *Service) ownCar(ctx context.Context, ownerID, carID string) (*Car, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	ownerID = strings.TrimSpace(ownerID)
	carID = strings.TrimSpace(carID)
	if ownerID == "" || carID == "" {
		return nil, fmt.Errorf("%w: owner and car id required", ErrInvalidInput)
	}
	c, err := s.store.FindByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if !c.OwnedBy(ownerID) {
		return nil, ErrAccessDenied
	}
	return c, nil
}

package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/CarNest/CarNest/internal/car"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence contract the service depends on.
type Store interface {
	// CreateIfFree inserts the booking only when no active booking of the
	// same car overlaps its date range. The check and the insert are atomic;
	// a conflict returns ErrDateConflict.
	CreateIfFree(ctx context.Context, b *Booking) error
	HasOverlap(ctx context.Context, carID string, pickup, ret time.Time) (bool, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	Update(ctx context.Context, b *Booking) error
	ListByUser(ctx context.Context, userID string) ([]Booking, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Booking, error)
}

// Repo is the GORM-backed Store.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) withCtx(ctx context.Context) *gorm.DB {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.WithContext(ctx)
}

// CreateIfFree runs the overlap check and the insert in one transaction,
// holding a row lock on the car so two racing requests for the same car
// serialize instead of both passing the check.
func (r *Repo) CreateIfFree(ctx context.Context, b *Booking) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var locked car.Car
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", b.CarID).First(&locked).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		var n int64
		if err := tx.Model(&Booking{}).
			Where("car_id = ? AND status IN ? AND pickup_date <= ? AND return_date >= ?",
				b.CarID, ActiveStatuses, b.ReturnDate, b.PickupDate).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDateConflict
		}

		return tx.Create(b).Error
	})
}

func (r *Repo) HasOverlap(ctx context.Context, carID string, pickup, ret time.Time) (bool, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	var n int64
	err := db.Model(&Booking{}).
		Where("car_id = ? AND status IN ? AND pickup_date <= ? AND return_date >= ?",
			carID, ActiveStatuses, ret, pickup).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Booking, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var b Booking
	err := db.Where("id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *Repo) Update(ctx context.Context, b *Booking) error {
	db := r.withCtx(ctx)
	if db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return db.Save(b).Error
}

// ListByUser returns the renter's bookings, newest first, with car details
// joined in.
func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var bookings []Booking
	err := db.Preload("Car").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListByOwner returns the bookings against the owner's cars, newest first,
// with car and renter details joined in.
func (r *Repo) ListByOwner(ctx context.Context, ownerID string) ([]Booking, error) {
	db := r.withCtx(ctx)
	if db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var bookings []Booking
	err := db.Preload("Car").Preload("User").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

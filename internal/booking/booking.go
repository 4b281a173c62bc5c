package booking

import (
	"errors"
	"time"

	"github.com/CarNest/CarNest/internal/car"
	"github.com/CarNest/CarNest/internal/user"
)

// Status is the booking lifecycle state, persisted as a string. The set is
// closed; transitions run through the state machine.
type Status string

const (
	StatusPending   Status = "pending"   // created, awaiting the owner's decision
	StatusConfirmed Status = "confirmed" // accepted by the owner
	StatusCancelled Status = "cancelled" // cancelled by the owner
	StatusCompleted Status = "completed" // rental finished
)

// ActiveStatuses are the states that block a car's dates.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

// ValidStatus reports whether s belongs to the closed status set.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Domain errors surfaced to the transport layer.
var (
	ErrNotFound          = errors.New("booking not found")
	ErrAccessDenied      = errors.New("access denied")
	ErrDateConflict      = errors.New("car is not available for the selected dates")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrInvalidTransition = errors.New("invalid booking status transition")
)

// Booking is the GORM model for the bookings table. OwnerID is a denormalized
// copy of the car's owner at creation time, so owner listings survive a later
// soft delete of the car.
type Booking struct {
	ID      string     `gorm:"primaryKey;size:36" json:"id"`
	CarID   string     `gorm:"index;size:36;not null" json:"carId"`
	Car     *car.Car   `gorm:"foreignKey:CarID;references:ID" json:"car,omitempty"`
	OwnerID string     `gorm:"index;size:36;not null" json:"owner"`
	UserID  string     `gorm:"index;size:36;not null" json:"userId"`
	User    *user.User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`

	PickupDate time.Time `gorm:"index;not null" json:"pickupDate"`
	ReturnDate time.Time `gorm:"index;not null" json:"returnDate"`
	Price      int64     `gorm:"not null;default:0" json:"price"` // minor currency units
	Status     Status    `gorm:"type:varchar(16);index;not null;default:'pending'" json:"status"`

	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
}

// Overlaps applies the interval-overlap test against another date range.
// Ranges are inclusive on both ends.
func (b Booking) Overlaps(pickup, ret time.Time) bool {
	return !b.PickupDate.After(ret) && !b.ReturnDate.Before(pickup)
}

// Active reports whether the booking blocks its car's dates.
func (b Booking) Active() bool {
	for _, s := range ActiveStatuses {
		if b.Status == s {
			return true
		}
	}
	return false
}

package car

import (
	"errors"
	"time"
)

// Domain errors surfaced to the transport layer.
var (
	ErrNotFound     = errors.New("car not found")
	ErrAccessDenied = errors.New("access denied")
	ErrInvalidInput = errors.New("invalid input")
)

// Car is the GORM model for the cars table. OwnerID is cleared when a
// listing is removed; the row stays behind for historical bookings.
type Car struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	OwnerID         string    `gorm:"index;size:36" json:"owner"`
	Brand           string    `gorm:"size:64;not null" json:"brand"`
	Model           string    `gorm:"size:64;not null" json:"model"`
	Year            int       `gorm:"not null" json:"year"`
	Category        string    `gorm:"size:32" json:"category"`
	SeatingCapacity int       `gorm:"not null;default:0" json:"seatingCapacity"`
	FuelType        string    `gorm:"size:32" json:"fuelType"`
	Transmission    string    `gorm:"size:32" json:"transmission"`
	PricePerDay     int64     `gorm:"not null" json:"pricePerDay"` // minor currency units
	Location        string    `gorm:"index;size:64;not null" json:"location"`
	Description     string    `gorm:"size:1024" json:"description"`
	Image           string    `gorm:"size:512" json:"image"`
	IsAvailable     bool      `gorm:"not null;default:true" json:"isAvailable"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// OwnedBy reports whether userID is the owner of record.
func (c Car) OwnedBy(userID string) bool {
	return c.OwnerID != "" && c.OwnerID == userID
}

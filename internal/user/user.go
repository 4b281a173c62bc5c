package user

import (
	"errors"
	"time"
)

// Marketplace roles. Every account starts as a renter; listing cars requires
// promotion to owner.
const (
	RoleRenter = "renter"
	RoleOwner  = "owner"
)

// Domain errors surfaced to the transport layer.
var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
)

// User is the GORM model for the users table.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"size:64;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:128;not null" json:"email"`
	PasswordHash string    `gorm:"size:128;not null" json:"-"`
	PasswordSalt string    `gorm:"size:64;not null" json:"-"`
	Role         string    `gorm:"size:16;not null;default:'renter'" json:"role"`
	Image        string    `gorm:"size:255" json:"image"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// IsOwner reports whether the account may manage a fleet.
func (u User) IsOwner() bool {
	return u.Role == RoleOwner
}

// ValidRole reports whether r is a known marketplace role.
func ValidRole(r string) bool {
	return r == RoleRenter || r == RoleOwner
}

package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CarNest/CarNest/internal/common/auth"
	"github.com/CarNest/CarNest/internal/common/config"
	"github.com/google/uuid"
)

// Service implements the account use cases without any transport coupling.
type Service struct {
	store   Store
	authCfg config.AuthConfig
}

func NewService(store Store, authCfg config.AuthConfig) *Service {
	return &Service{store: store, authCfg: authCfg}
}

// RegisterInput carries the register request fields.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a renter account and logs it in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, string, error) {
	if s == nil || s.store == nil {
		return nil, "", fmt.Errorf("service not initialized")
	}
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" || len(in.Password) < 8 {
		return nil, "", fmt.Errorf("%w: name, email and a password of at least 8 characters are required", ErrInvalidInput)
	}

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, "", err
	}

	salt, err := GenerateSaltHex()
	if err != nil {
		return nil, "", err
	}
	hash, err := HashPassword(in.Password, salt)
	if err != nil {
		return nil, "", err
	}

	u := &User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: salt,
		Role:         RoleRenter,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	if s == nil || s.store == nil {
		return nil, "", fmt.Errorf("service not initialized")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	u, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !VerifyPassword(password, u.PasswordSalt, u.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Profile loads the current user.
func (s *Service) Profile(ctx context.Context, userID string) (*User, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidInput)
	}
	return s.store.FindByID(ctx, userID)
}

// PromoteToOwner flips the requester's role to owner so they can list cars.
// Promoting an owner again is a no-op. A fresh token is issued so the role
// claim matches immediately.
func (s *Service) PromoteToOwner(ctx context.Context, userID string) (*User, string, error) {
	if s == nil || s.store == nil {
		return nil, "", fmt.Errorf("service not initialized")
	}
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	if !u.IsOwner() {
		if err := s.store.UpdateRole(ctx, u.ID, RoleOwner); err != nil {
			return nil, "", err
		}
		u.Role = RoleOwner
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *Service) issueToken(u *User) (string, error) {
	// Tokens only ever carry a known role; anything else in the row is
	// corruption, not a credential.
	if !ValidRole(u.Role) {
		return "", fmt.Errorf("unknown role %q for user %s", u.Role, u.ID)
	}
	ttl := time.Duration(s.authCfg.TokenTTLHours) * time.Hour
	token, _, err := auth.GenerateAccessToken(s.authCfg, u.ID, u.Role, ttl)
	return token, err
}

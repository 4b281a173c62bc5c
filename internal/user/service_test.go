package user

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/CarNest/CarNest/internal/common/auth"
	"github.com/CarNest/CarNest/internal/common/config"
)

type memStore struct {
	mu    sync.Mutex
	users map[string]*User // by ID
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*User{}}
}

func (m *memStore) Create(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) FindByID(ctx context.Context, id string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) UpdateRole(ctx context.Context, id, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Role = role
	return nil
}

func testAuthCfg() config.AuthConfig {
	return config.AuthConfig{
		Enabled:       true,
		JWTSecret:     "test-secret",
		Issuer:        "carnest",
		Audience:      "carnest",
		TokenTTLHours: 1,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(newMemStore(), testAuthCfg())
	ctx := context.Background()

	u, token, err := svc.Register(ctx, RegisterInput{
		Name:     "Alex",
		Email:    "Alex@Example.com",
		Password: "longenough",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Role != RoleRenter {
		t.Fatalf("expected default role renter, got %s", u.Role)
	}
	if u.Email != "alex@example.com" {
		t.Fatalf("expected normalized email, got %s", u.Email)
	}
	if token == "" {
		t.Fatalf("expected token")
	}

	if _, _, err := svc.Register(ctx, RegisterInput{Name: "Dup", Email: "alex@example.com", Password: "longenough"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	if _, _, err := svc.Login(ctx, "alex@example.com", "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	got, token, err := svc.Login(ctx, "alex@example.com", "longenough")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != u.ID || token == "" {
		t.Fatalf("login mismatch")
	}
}

func TestLoginRejectsCorruptedRole(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, testAuthCfg())
	ctx := context.Background()

	u, _, err := svc.Register(ctx, RegisterInput{Name: "Alex", Email: "a@b.c", Password: "longenough"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := store.UpdateRole(ctx, u.ID, "superadmin"); err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}

	// A row carrying a role outside the known set must never become a token.
	if _, _, err := svc.Login(ctx, "a@b.c", "longenough"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	svc := NewService(newMemStore(), testAuthCfg())
	_, _, err := svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@b.c", Password: "short"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short password, got %v", err)
	}
}

func TestPromoteToOwner(t *testing.T) {
	cfg := testAuthCfg()
	svc := NewService(newMemStore(), cfg)
	ctx := context.Background()

	u, _, err := svc.Register(ctx, RegisterInput{Name: "Alex", Email: "a@b.c", Password: "longenough"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	promoted, token, err := svc.PromoteToOwner(ctx, u.ID)
	if err != nil {
		t.Fatalf("PromoteToOwner: %v", err)
	}
	if promoted.Role != RoleOwner {
		t.Fatalf("expected owner role, got %s", promoted.Role)
	}

	// The fresh token must carry the owner role.
	claims, err := auth.ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	if claims.Role != RoleOwner {
		t.Fatalf("expected owner role claim, got %s", claims.Role)
	}

	// Idempotent.
	again, _, err := svc.PromoteToOwner(ctx, u.ID)
	if err != nil {
		t.Fatalf("second PromoteToOwner: %v", err)
	}
	if again.Role != RoleOwner {
		t.Fatalf("expected owner role on repeat, got %s", again.Role)
	}

	if _, _, err := svc.PromoteToOwner(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

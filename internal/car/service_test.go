package car

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
)

type memStore struct {
	mu   sync.Mutex
	cars map[string]*Car
}

func newMemStore() *memStore {
	return &memStore{cars: map[string]*Car{}}
}

func (m *memStore) Create(ctx context.Context, c *Car) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.cars[c.ID] = &cp
	return nil
}

func (m *memStore) Save(ctx context.Context, c *Car) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cars[c.ID]; !ok {
		return ErrNotFound
	}
	cp := *c
	m.cars[c.ID] = &cp
	return nil
}

func (m *memStore) FindByID(ctx context.Context, id string) (*Car, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cars[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) ListByOwner(ctx context.Context, ownerID string) ([]Car, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Car
	for _, c := range m.cars {
		if c.OwnerID == ownerID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memStore) ListAvailableByLocation(ctx context.Context, location string) ([]Car, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Car
	for _, c := range m.cars {
		if c.Location == location && c.IsAvailable {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memStore) ListAvailable(ctx context.Context) ([]Car, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Car
	for _, c := range m.cars {
		if c.IsAvailable {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeImages struct {
	saved int
}

func (f *fakeImages) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	f.saved++
	_, _ = io.Copy(io.Discard, r)
	return "http://cdn.test/img/" + filename, nil
}

func validInput() AddCarInput {
	return AddCarInput{
		Brand:       "BMW",
		Model:       "X5",
		Year:        2022,
		PricePerDay: 30000,
		Location:    "Berlin",
	}
}

func TestAddCarUploadsImageAndAppliesDeliveryTransform(t *testing.T) {
	images := &fakeImages{}
	svc := NewService(newMemStore(), images, nil)

	c, err := svc.AddCar(context.Background(), "owner-1", validInput(), "x5.png", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("AddCar: %v", err)
	}
	if images.saved != 1 {
		t.Fatalf("expected one upload, got %d", images.saved)
	}
	if c.Image != "http://cdn.test/img/x5.png?tr=w-1280,q-auto,f-webp" {
		t.Fatalf("unexpected image url: %s", c.Image)
	}
	if !c.IsAvailable {
		t.Fatalf("expected new car available")
	}
	if c.OwnerID != "owner-1" {
		t.Fatalf("expected requester as owner, got %q", c.OwnerID)
	}
}

func TestAddCarValidatesInput(t *testing.T) {
	svc := NewService(newMemStore(), nil, nil)

	in := validInput()
	in.PricePerDay = 0
	if _, err := svc.AddCar(context.Background(), "owner-1", in, "", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero price, got %v", err)
	}

	in = validInput()
	in.Brand = " "
	if _, err := svc.AddCar(context.Background(), "owner-1", in, "", nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank brand, got %v", err)
	}
}

func TestToggleAvailabilityChecksOwnership(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	c, err := svc.AddCar(ctx, "owner-1", validInput(), "", nil)
	if err != nil {
		t.Fatalf("AddCar: %v", err)
	}

	if _, err := svc.ToggleAvailability(ctx, "intruder", c.ID); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	// Denied toggles must not change stored state.
	stored, _ := store.FindByID(ctx, c.ID)
	if !stored.IsAvailable {
		t.Fatalf("expected availability untouched after denied toggle")
	}

	toggled, err := svc.ToggleAvailability(ctx, "owner-1", c.ID)
	if err != nil {
		t.Fatalf("ToggleAvailability: %v", err)
	}
	if toggled.IsAvailable {
		t.Fatalf("expected availability flipped off")
	}

	if _, err := svc.ToggleAvailability(ctx, "owner-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCarIsSoftDelete(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	c, err := svc.AddCar(ctx, "owner-1", validInput(), "", nil)
	if err != nil {
		t.Fatalf("AddCar: %v", err)
	}

	if err := svc.DeleteCar(ctx, "intruder", c.ID); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	if err := svc.DeleteCar(ctx, "owner-1", c.ID); err != nil {
		t.Fatalf("DeleteCar: %v", err)
	}

	stored, err := store.FindByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("expected row retained after delete, got %v", err)
	}
	if stored.OwnerID != "" {
		t.Fatalf("expected owner cleared, got %q", stored.OwnerID)
	}
	if stored.IsAvailable {
		t.Fatalf("expected availability forced off")
	}

	// Gone from the owner's fleet and from the catalogue.
	fleet, _ := store.ListByOwner(ctx, "owner-1")
	if len(fleet) != 0 {
		t.Fatalf("expected empty fleet, got %d", len(fleet))
	}
	catalogue, _ := store.ListAvailable(ctx)
	if len(catalogue) != 0 {
		t.Fatalf("expected empty catalogue, got %d", len(catalogue))
	}
}

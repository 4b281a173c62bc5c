package booking

import (
	"errors"
	"testing"
	"time"
)

func TestCanTransitionAndApply(t *testing.T) {
	if !CanTransition(StatusPending, StatusConfirmed) {
		t.Fatalf("expected pending -> confirmed allowed")
	}
	if !CanTransition(StatusPending, StatusCancelled) {
		t.Fatalf("expected pending -> cancelled allowed")
	}
	if CanTransition(StatusPending, StatusCompleted) {
		t.Fatalf("expected pending -> completed not allowed")
	}
	if CanTransition(StatusCompleted, StatusPending) {
		t.Fatalf("expected completed -> pending not allowed")
	}
	if CanTransition(StatusCancelled, StatusConfirmed) {
		t.Fatalf("expected cancelled -> confirmed not allowed")
	}

	b := &Booking{Status: StatusPending}
	now := time.Now()
	if err := ApplyTransition(b, StatusConfirmed, now); err != nil {
		t.Fatalf("ApplyTransition: %v", err)
	}
	if b.Status != StatusConfirmed {
		t.Fatalf("expected status confirmed, got %s", b.Status)
	}
	if b.ConfirmedAt == nil {
		t.Fatalf("expected confirmed timestamp set")
	}

	if err := ApplyTransition(b, StatusCompleted, now); err != nil {
		t.Fatalf("ApplyTransition to completed: %v", err)
	}
	if err := ApplyTransition(b, StatusConfirmed, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition out of terminal state, got %v", err)
	}
}

func TestApplyTransitionRejectsUnknownStatus(t *testing.T) {
	b := &Booking{Status: StatusPending}
	if err := ApplyTransition(b, Status("shipped"), time.Now()); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if b.Status != StatusPending {
		t.Fatalf("expected status untouched, got %s", b.Status)
	}
}

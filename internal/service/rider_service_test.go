package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/freshfold/laundryapi/internal/domain"
	"github.com/freshfold/laundryapi/internal/repository"
	"github.com/freshfold/laundryapi/pkg/errors"
)

func testRider(t *testing.T, repos *repository.Repositories) *domain.Account {
	t.Helper()
	rider := &domain.Account{
		Name:     "Test Rider",
		Role:     domain.RoleRider,
		IsActive: true,
	}
	if err := repos.Account.Create(context.Background(), rider); err != nil {
		t.Fatalf("failed to create test rider: %v", err)
	}
	return rider
}

func testPendingBooking(t *testing.T, repos *repository.Repositories, customer *domain.Account) *domain.Booking {
	t.Helper()
	booking := &domain.Booking{
		CustomerID: customer.ID,
		Status:     domain.StatusPending,
		PickupDate: "2026-09-01",
		PickupTime: "10:00",
		Address:    "12 Rainbow St, Amman",
	}
	if err := repos.Booking.Create(context.Background(), booking); err != nil {
		t.Fatalf("failed to create test booking: %v", err)
	}
	return booking
}

func TestAssignRider(t *testing.T) {
	repos := newFakeRepos()
	customer := testCustomer(t, repos)
	rider := testRider(t, repos)
	booking := testPendingBooking(t, repos, customer)
	svc := NewRiderService(repos, zap.NewNop())

	assigned, err := svc.AssignRider(context.Background(), booking.ID, rider.ID)
	if err != nil {
		t.Fatalf("AssignRider failed: %v", err)
	}
	if assigned.RiderID == nil || *assigned.RiderID != rider.ID {
		t.Errorf("rider not attached: %v", assigned.RiderID)
	}

	// Assigning the same rider again is a no-op success
	if _, err := svc.AssignRider(context.Background(), booking.ID, rider.ID); err != nil {
		t.Errorf("re-assigning same rider should succeed, got: %v", err)
	}
}

func TestAssignRiderRejectsNonRider(t *testing.T) {
	repos := newFakeRepos()
	customer := testCustomer(t, repos)
	booking := testPendingBooking(t, repos, customer)
	svc := NewRiderService(repos, zap.NewNop())

	_, err := svc.AssignRider(context.Background(), booking.ID, customer.ID)
	if err == nil {
		t.Fatal("expected assigning a customer as rider to fail")
	}
	if _, ok := err.(*errors.ErrValidation); !ok {
		t.Errorf("expected ErrValidation, got %T: %v", err, err)
	}
}

func TestUpdateStatusWalksFulfillmentChain(t *testing.T) {
	repos := newFakeRepos()
	customer := testCustomer(t, repos)
	booking := testPendingBooking(t, repos, customer)
	svc := NewRiderService(repos, zap.NewNop())

	chain := []domain.FulfillmentStatus{
		domain.StatusPickedUp,
		domain.StatusProcessing,
		domain.StatusReturning,
		domain.StatusDelivered,
		domain.StatusCompleted,
	}
	for _, next := range chain {
		updated, err := svc.UpdateStatus(context.Background(), booking.ID, next)
		if err != nil {
			t.Fatalf("UpdateStatus to %q failed: %v", next, err)
		}
		if updated.Status != next {
			t.Fatalf("status = %q, want %q", updated.Status, next)
		}
	}

	final, err := repos.Booking.GetByID(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if final.PickedUpAt == nil || final.DeliveredAt == nil || final.CompletedAt == nil {
		t.Error("lifecycle timestamps not all stamped")
	}
}

func TestUpdateStatusRejectsSkippedStep(t *testing.T) {
	repos := newFakeRepos()
	customer := testCustomer(t, repos)
	booking := testPendingBooking(t, repos, customer)
	svc := NewRiderService(repos, zap.NewNop())

	_, err := svc.UpdateStatus(context.Background(), booking.ID, domain.StatusDelivered)
	if err == nil {
		t.Fatal("expected pending -> delivered to be rejected")
	}
	if _, ok := err.(*errors.ErrInvalidStateTransition); !ok {
		t.Errorf("expected ErrInvalidStateTransition, got %T: %v", err, err)
	}

	// The booking is untouched after a rejected transition
	stored, err := repos.Booking.GetByID(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.Status != domain.StatusPending {
		t.Errorf("status = %q, want pending", stored.Status)
	}
}

func TestUpdateStatusIdempotent(t *testing.T) {
	repos := newFakeRepos()
	customer := testCustomer(t, repos)
	booking := testPendingBooking(t, repos, customer)
	svc := NewRiderService(repos, zap.NewNop())

	if _, err := svc.UpdateStatus(context.Background(), booking.ID, domain.StatusPickedUp); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	updated, err := svc.UpdateStatus(context.Background(), booking.ID, domain.StatusPickedUp)
	if err != nil {
		t.Fatalf("repeating current status should succeed, got: %v", err)
	}
	if updated.Status != domain.StatusPickedUp {
		t.Errorf("status = %q, want picked_up", updated.Status)
	}
}

func TestAutoCompleteSweep(t *testing.T) {
	repos := newFakeRepos()
	customer := testCustomer(t, repos)
	logger := zap.NewNop()

	// Delivered two days ago: should complete
	old := testPendingBooking(t, repos, customer)
	oldDelivered := time.Now().Add(-48 * time.Hour)
	old.Status = domain.StatusDelivered
	old.DeliveredAt = &oldDelivered
	if err := repos.Booking.Update(context.Background(), old); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	// Delivered just now: still inside the grace period
	fresh := testPendingBooking(t, repos, customer)
	freshDelivered := time.Now()
	fresh.Status = domain.StatusDelivered
	fresh.DeliveredAt = &freshDelivered
	if err := repos.Booking.Update(context.Background(), fresh); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	RunAutoCompleteOnce(context.Background(), repos, logger)

	got, _ := repos.Booking.GetByID(context.Background(), old.ID)
	if got.Status != domain.StatusCompleted {
		t.Errorf("old delivered booking status = %q, want completed", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("CompletedAt not stamped by sweep")
	}

	got, _ = repos.Booking.GetByID(context.Background(), fresh.ID)
	if got.Status != domain.StatusDelivered {
		t.Errorf("fresh delivered booking status = %q, want delivered", got.Status)
	}
}

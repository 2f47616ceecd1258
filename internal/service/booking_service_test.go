package service

import (
	"context"
	errstd "errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/freshfold/laundryapi/internal/domain"
	"github.com/freshfold/laundryapi/internal/repository"
	"github.com/freshfold/laundryapi/pkg/errors"
)

func testCustomer(t *testing.T, repos *repository.Repositories) *domain.Account {
	t.Helper()
	account := &domain.Account{
		Name:     "Test Customer",
		Role:     domain.RoleCustomer,
		IsActive: true,
	}
	if err := repos.Account.Create(context.Background(), account); err != nil {
		t.Fatalf("failed to create test customer: %v", err)
	}
	return account
}

func TestCreateBookingDerivesTotalFromItems(t *testing.T) {
	repos := newFakeRepos()
	customer := testCustomer(t, repos)
	svc := NewBookingService(repos, nil, zap.NewNop())

	booking, items, err := svc.CreateBooking(context.Background(), customer, CreateBookingRequest{
		PickupDate: "2026-09-01",
		PickupTime: "10:00",
		Address:    "12 Rainbow St, Amman",
		Items: []BookingItemRequest{
			{Name: "Shirt", Quantity: 2, Price: 1500},
			{Name: "Trousers", Quantity: 1, Price: 500},
		},
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	if booking.Status != domain.StatusPending {
		t.Errorf("new booking status = %q, want %q", booking.Status, domain.StatusPending)
	}
	if booking.TotalAmount == nil || *booking.TotalAmount != 3500 {
		t.Errorf("stored total = %v, want 3500", booking.TotalAmount)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	stored, err := repos.ClothingItem.GetByBookingID(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("GetByBookingID failed: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("stored %d items, want 2", len(stored))
	}
}

func TestCreateBookingPrefersClientTotal(t *testing.T) {
	repos := newFakeRepos()
	customer := testCustomer(t, repos)
	svc := NewBookingService(repos, nil, zap.NewNop())

	clientTotal := 2750.0
	booking, _, err := svc.CreateBooking(context.Background(), customer, CreateBookingRequest{
		PickupDate:  "2026-09-01",
		PickupTime:  "10:00",
		Address:     "12 Rainbow St, Amman",
		TotalAmount: &clientTotal,
		Items: []BookingItemRequest{
			{Name: "Shirt", Quantity: 2, Price: 1500},
		},
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if booking.TotalAmount == nil || *booking.TotalAmount != 2750 {
		t.Errorf("stored total = %v, want client total 2750", booking.TotalAmount)
	}
}

func TestCreateBookingRejectsBadClientTotal(t *testing.T) {
	repos := newFakeRepos()
	customer := testCustomer(t, repos)
	svc := NewBookingService(repos, nil, zap.NewNop())

	badTotal := -50.0
	booking, _, err := svc.CreateBooking(context.Background(), customer, CreateBookingRequest{
		PickupDate:  "2026-09-01",
		PickupTime:  "10:00",
		Address:     "12 Rainbow St, Amman",
		TotalAmount: &badTotal,
		Items: []BookingItemRequest{
			{Name: "Shirt", Quantity: 3, Price: 1000},
		},
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}
	if booking.TotalAmount == nil || *booking.TotalAmount != 3000 {
		t.Errorf("stored total = %v, want derived 3000 when client total is negative", booking.TotalAmount)
	}
}

func TestCreateBookingRecordsFailureEventOnItemInsertError(t *testing.T) {
	repos := newFakeRepos()
	customer := testCustomer(t, repos)
	repos.ClothingItem.(*fakeItemRepo).createBatchErr = errstd.New("insert failed")
	svc := NewBookingService(repos, nil, zap.NewNop())

	booking, _, err := svc.CreateBooking(context.Background(), customer, CreateBookingRequest{
		PickupDate: "2026-09-01",
		PickupTime: "10:00",
		Address:    "12 Rainbow St, Amman",
		Items:      []BookingItemRequest{{Name: "Shirt", Quantity: 1, Price: 1500}},
	})
	if err == nil {
		t.Fatal("expected CreateBooking to fail when items cannot be stored")
	}
	if booking != nil {
		t.Error("failed create should not return a booking")
	}

	// The orphaned booking row gets a reconciliation trace
	events := repos.BookingEvent.(*fakeEventRepo).events
	found := false
	for _, e := range events {
		if e.EventType == "booking_create_failed" {
			found = true
		}
		if e.EventType == "booking_created" {
			t.Error("booking_created must not be logged when item insert fails")
		}
	}
	if !found {
		t.Error("expected a booking_create_failed event")
	}
}

func TestCancelBookingFromPending(t *testing.T) {
	repos := newFakeRepos()
	customer := testCustomer(t, repos)
	svc := NewBookingService(repos, nil, zap.NewNop())

	booking, _, err := svc.CreateBooking(context.Background(), customer, CreateBookingRequest{
		PickupDate: "2026-09-01",
		PickupTime: "10:00",
		Address:    "12 Rainbow St, Amman",
		Items:      []BookingItemRequest{{Name: "Shirt", Quantity: 1, Price: 1500}},
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	cancelled, err := svc.CancelBooking(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("CancelBooking failed: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Errorf("status = %q, want cancelled", cancelled.Status)
	}
	if cancelled.CancelledAt == nil {
		t.Error("CancelledAt not stamped")
	}
}

func TestCancelBookingIdempotent(t *testing.T) {
	repos := newFakeRepos()
	customer := testCustomer(t, repos)
	svc := NewBookingService(repos, nil, zap.NewNop())

	booking, _, err := svc.CreateBooking(context.Background(), customer, CreateBookingRequest{
		PickupDate: "2026-09-01",
		PickupTime: "10:00",
		Address:    "12 Rainbow St, Amman",
		Items:      []BookingItemRequest{{Name: "Shirt", Quantity: 1, Price: 1500}},
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	if _, err := svc.CancelBooking(context.Background(), booking.ID); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}
	again, err := svc.CancelBooking(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("second cancel should be idempotent, got: %v", err)
	}
	if again.Status != domain.StatusCancelled {
		t.Errorf("status = %q, want cancelled", again.Status)
	}
}

func TestCancelBookingRejectedAfterPickup(t *testing.T) {
	repos := newFakeRepos()
	customer := testCustomer(t, repos)
	svc := NewBookingService(repos, nil, zap.NewNop())

	booking, _, err := svc.CreateBooking(context.Background(), customer, CreateBookingRequest{
		PickupDate: "2026-09-01",
		PickupTime: "10:00",
		Address:    "12 Rainbow St, Amman",
		Items:      []BookingItemRequest{{Name: "Shirt", Quantity: 1, Price: 1500}},
	})
	if err != nil {
		t.Fatalf("CreateBooking failed: %v", err)
	}

	if !domain.ApplyTransition(booking, domain.StatusPickedUp, time.Now()) {
		t.Fatal("failed to move booking to picked_up")
	}
	if err := repos.Booking.Update(context.Background(), booking); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	_, err = svc.CancelBooking(context.Background(), booking.ID)
	if err == nil {
		t.Fatal("expected cancel of picked_up booking to fail")
	}
	if _, ok := err.(*errors.ErrNotCancellable); !ok {
		t.Errorf("expected ErrNotCancellable, got %T: %v", err, err)
	}
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/freshfold/laundryapi/internal/domain"
	"github.com/freshfold/laundryapi/internal/repository"
	"github.com/freshfold/laundryapi/pkg/errors"
)

// In-memory repositories for service tests. Not safe for concurrent use.

type fakeAccountRepo struct {
	accounts map[uuid.UUID]*domain.Account
}

func (f *fakeAccountRepo) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Account, error) {
	return nil, &errors.ErrUnauthorized{Message: "invalid API key"}
}

func (f *fakeAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "account", ID: id.String()}
	}
	return a, nil
}

func (f *fakeAccountRepo) List(ctx context.Context, role domain.Role) ([]*domain.Account, error) {
	var out []*domain.Account
	for _, a := range f.accounts {
		if a.Role == role {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAccountRepo) Create(ctx context.Context, account *domain.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	f.accounts[account.ID] = account
	return nil
}

func (f *fakeAccountRepo) Update(ctx context.Context, account *domain.Account) error {
	if _, ok := f.accounts[account.ID]; !ok {
		return &errors.ErrNotFound{Resource: "account", ID: account.ID.String()}
	}
	f.accounts[account.ID] = account
	return nil
}

type fakeBookingRepo struct {
	bookings map[uuid.UUID]*domain.Booking
}

func (f *fakeBookingRepo) Create(ctx context.Context, booking *domain.Booking) error {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	booking.UpdatedAt = time.Now()
	clone := *booking
	f.bookings[booking.ID] = &clone
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "booking", ID: id.String()}
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBookingRepo) Update(ctx context.Context, booking *domain.Booking) error {
	if _, ok := f.bookings[booking.ID]; !ok {
		return &errors.ErrNotFound{Resource: "booking", ID: booking.ID.String()}
	}
	booking.UpdatedAt = time.Now()
	clone := *booking
	f.bookings[booking.ID] = &clone
	return nil
}

func (f *fakeBookingRepo) UpdateRider(ctx context.Context, id uuid.UUID, riderID uuid.UUID) error {
	b, ok := f.bookings[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "booking", ID: id.String()}
	}
	b.RiderID = &riderID
	b.UpdatedAt = time.Now()
	return nil
}

func (f *fakeBookingRepo) UpdatePayment(ctx context.Context, id uuid.UUID, paymentStatus string, paymentMethod, paymentLink *string) error {
	b, ok := f.bookings[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "booking", ID: id.String()}
	}
	b.PaymentStatus = paymentStatus
	if paymentMethod != nil {
		b.PaymentMethod = paymentMethod
	}
	if paymentLink != nil {
		b.PaymentLink = paymentLink
	}
	b.UpdatedAt = time.Now()
	return nil
}

func (f *fakeBookingRepo) ListByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range f.bookings {
		if b.CustomerID == customerID {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListByCustomerIDInStatus(ctx context.Context, customerID uuid.UUID, statuses []domain.FulfillmentStatus, limit, offset int) ([]*domain.Booking, error) {
	allowed := make(map[domain.FulfillmentStatus]bool, len(statuses))
	for _, s := range statuses {
		allowed[s] = true
	}
	var out []*domain.Booking
	for _, b := range f.bookings {
		if b.CustomerID == customerID && allowed[b.Status] {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListByRiderID(ctx context.Context, riderID uuid.UUID, limit, offset int) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range f.bookings {
		if b.RiderID != nil && *b.RiderID == riderID {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListByStatus(ctx context.Context, status domain.FulfillmentStatus, limit, offset int) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range f.bookings {
		if b.Status == status {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) List(ctx context.Context, limit, offset int) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range f.bookings {
		clone := *b
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeBookingRepo) ListDeliveredBefore(ctx context.Context, cutoff time.Time) ([]*domain.Booking, error) {
	var out []*domain.Booking
	for _, b := range f.bookings {
		if b.Status == domain.StatusDelivered && b.DeliveredAt != nil && b.DeliveredAt.Before(cutoff) {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

type fakeItemRepo struct {
	items          map[uuid.UUID][]*domain.ClothingItem
	createBatchErr error
}

func (f *fakeItemRepo) CreateBatch(ctx context.Context, items []*domain.ClothingItem) error {
	if f.createBatchErr != nil {
		return f.createBatchErr
	}
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		f.items[item.BookingID] = append(f.items[item.BookingID], item)
	}
	return nil
}

func (f *fakeItemRepo) GetByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*domain.ClothingItem, error) {
	return f.items[bookingID], nil
}

type fakeEventRepo struct {
	events []*domain.BookingEvent
}

func (f *fakeEventRepo) Create(ctx context.Context, event *domain.BookingEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventRepo) GetByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*domain.BookingEvent, error) {
	var out []*domain.BookingEvent
	for _, e := range f.events {
		if e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeIdempotencyRepo struct {
	keys map[string]*domain.IdempotencyKey
}

func (f *fakeIdempotencyRepo) GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error) {
	return f.keys[key], nil
}

func (f *fakeIdempotencyRepo) Create(ctx context.Context, key *domain.IdempotencyKey) error {
	if _, exists := f.keys[key.Key]; !exists {
		f.keys[key.Key] = key
	}
	return nil
}

func newFakeRepos() *repository.Repositories {
	return &repository.Repositories{
		Account:        &fakeAccountRepo{accounts: make(map[uuid.UUID]*domain.Account)},
		Booking:        &fakeBookingRepo{bookings: make(map[uuid.UUID]*domain.Booking)},
		ClothingItem:   &fakeItemRepo{items: make(map[uuid.UUID][]*domain.ClothingItem)},
		BookingEvent:   &fakeEventRepo{},
		IdempotencyKey: &fakeIdempotencyRepo{keys: make(map[string]*domain.IdempotencyKey)},
	}
}

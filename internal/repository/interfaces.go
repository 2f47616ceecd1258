package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/freshfold/laundryapi/internal/domain"
)

// AccountRepository defines account data access methods
type AccountRepository interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*domain.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	List(ctx context.Context, role domain.Role) ([]*domain.Account, error)
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
}

// BookingRepository defines booking data access methods
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
	UpdateRider(ctx context.Context, id uuid.UUID, riderID uuid.UUID) error
	UpdatePayment(ctx context.Context, id uuid.UUID, paymentStatus string, paymentMethod, paymentLink *string) error
	ListByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*domain.Booking, error)
	ListByCustomerIDInStatus(ctx context.Context, customerID uuid.UUID, statuses []domain.FulfillmentStatus, limit, offset int) ([]*domain.Booking, error)
	ListByRiderID(ctx context.Context, riderID uuid.UUID, limit, offset int) ([]*domain.Booking, error)
	ListByStatus(ctx context.Context, status domain.FulfillmentStatus, limit, offset int) ([]*domain.Booking, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Booking, error)
	ListDeliveredBefore(ctx context.Context, cutoff time.Time) ([]*domain.Booking, error)
}

// ClothingItemRepository defines line item data access methods
type ClothingItemRepository interface {
	CreateBatch(ctx context.Context, items []*domain.ClothingItem) error
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*domain.ClothingItem, error)
}

// BookingEventRepository defines audit event data access methods
type BookingEventRepository interface {
	Create(ctx context.Context, event *domain.BookingEvent) error
	GetByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*domain.BookingEvent, error)
}

// IdempotencyKeyRepository defines idempotency key data access methods
type IdempotencyKeyRepository interface {
	GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error)
	Create(ctx context.Context, key *domain.IdempotencyKey) error
}

// Repositories aggregates all repositories
type Repositories struct {
	Account        AccountRepository
	Booking        BookingRepository
	ClothingItem   ClothingItemRepository
	BookingEvent   BookingEventRepository
	IdempotencyKey IdempotencyKeyRepository
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies what an account is allowed to do
type Role string

const (
	RoleCustomer Role = "customer"
	RoleRider    Role = "rider"
	RoleAdmin    Role = "admin"
)

// IsValid checks if the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleRider, RoleAdmin:
		return true
	default:
		return false
	}
}

// Account represents a customer, rider or admin account
type Account struct {
	ID           uuid.UUID
	Name         string
	Phone        string
	Role         Role
	APIKeyHash   string
	APIKeyLookup string  // SHA256(apiKey) hex for fast lookup; optional, set on create
	NotifyURL    *string // push-relay webhook; status updates are posted here
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Booking represents a laundry pickup-to-delivery request
type Booking struct {
	ID                  uuid.UUID
	CustomerID          uuid.UUID
	RiderID             *uuid.UUID
	Status              FulfillmentStatus
	PickupDate          string // ISO date from the booking form, display-only
	PickupTime          string
	Address             string
	Latitude            *float64
	Longitude           *float64
	SpecialInstructions *string
	TotalAmount         *float64 // precomputed total; nil means derive from items
	PaymentStatus       string
	PaymentMethod       *string
	PaymentLink         *string
	PickedUpAt          *time.Time
	DeliveredAt         *time.Time
	CompletedAt         *time.Time
	CancelledAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ClothingItem represents one line item on a booking
type ClothingItem struct {
	ID        uuid.UUID
	BookingID uuid.UUID
	Name      string
	Quantity  int
	Price     float64
	CreatedAt time.Time
}

// BookingEvent represents an audit event for a booking
type BookingEvent struct {
	ID        uuid.UUID
	BookingID uuid.UUID
	EventType string
	EventData map[string]interface{} // JSONB
	CreatedAt time.Time
}

// IdempotencyKey stores idempotency information for booking creation
type IdempotencyKey struct {
	Key         string
	AccountID   uuid.UUID
	BookingID   uuid.UUID
	RequestHash string
	CreatedAt   time.Time
}

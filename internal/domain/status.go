package domain

import (
	"strings"
	"time"
)

// FulfillmentStatus represents the status of a booking in the rider/fulfillment flow
type FulfillmentStatus string

const (
	// StatusPending - booking placed, waiting for pickup
	StatusPending FulfillmentStatus = "pending"
	// StatusPickedUp - rider collected the laundry
	StatusPickedUp FulfillmentStatus = "picked_up"
	// StatusProcessing - laundry is being washed at the facility
	StatusProcessing FulfillmentStatus = "processing"
	// StatusReturning - rider is on the way back to the customer
	StatusReturning FulfillmentStatus = "returning"
	// StatusDelivered - laundry handed back to the customer
	StatusDelivered FulfillmentStatus = "delivered"
	// StatusCompleted - booking closed out (payment settled)
	StatusCompleted FulfillmentStatus = "completed"
	// StatusCancelled - booking cancelled
	StatusCancelled FulfillmentStatus = "cancelled"
)

// IsValid checks if the fulfillment status is valid
func (s FulfillmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusPickedUp, StatusProcessing, StatusReturning,
		StatusDelivered, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are allowed
func (s FulfillmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo checks if a status transition is valid.
// Fulfillment moves strictly forward; cancellation is only possible
// before pickup, which keeps it consistent with IsCancellable.
func (s FulfillmentStatus) CanTransitionTo(newStatus FulfillmentStatus) bool {
	switch s {
	case StatusPending:
		return newStatus == StatusPickedUp || newStatus == StatusCancelled
	case StatusPickedUp:
		return newStatus == StatusProcessing
	case StatusProcessing:
		return newStatus == StatusReturning
	case StatusReturning:
		return newStatus == StatusDelivered
	case StatusDelivered:
		return newStatus == StatusCompleted
	case StatusCompleted, StatusCancelled:
		return false // terminal states
	default:
		return false
	}
}

// ApplyTransition moves a booking to a new status and stamps the matching
// timestamp once. Returns false (and leaves the booking untouched) when the
// transition is not allowed.
func ApplyTransition(b *Booking, to FulfillmentStatus, now time.Time) bool {
	if b == nil || !b.Status.CanTransitionTo(to) {
		return false
	}
	b.Status = to
	switch to {
	case StatusPickedUp:
		if b.PickedUpAt == nil {
			t := now
			b.PickedUpAt = &t
		}
	case StatusDelivered:
		if b.DeliveredAt == nil {
			t := now
			b.DeliveredAt = &t
		}
	case StatusCompleted:
		if b.CompletedAt == nil {
			t := now
			b.CompletedAt = &t
		}
	case StatusCancelled:
		if b.CancelledAt == nil {
			t := now
			b.CancelledAt = &t
		}
	}
	return true
}

// TimelineStages are the narrative steps shown on the tracking screen, in order.
var TimelineStages = [7]string{
	"Order Confirmed",
	"Driver Assigned",
	"Picked Up",
	"In Process",
	"Quality Check",
	"Out for Delivery",
	"Delivered",
}

// TimelineCancelled is the index value meaning "no step highlighted, render
// the cancelled state". It is its own case, not a fallthrough of index 0.
const TimelineCancelled = -1

// TimelineIndex maps a raw fulfillment-flow status string to its position on
// the 7-step tracking timeline. Unknown, empty or missing values map to 0
// (booking exists, nothing happened yet). Comparison is case-insensitive:
// the same status can arrive from different endpoints with different casing.
//
// Note this is keyed on the fulfillment vocabulary only. The order-history
// endpoints use a different (smaller) status vocabulary; those values go
// through FilterBucket/IsCancellable, never through here.
func TimelineIndex(raw string) int {
	switch FulfillmentStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusPending:
		return 1
	case StatusPickedUp:
		return 2
	case StatusProcessing:
		return 3
	case StatusReturning:
		return 4
	case StatusDelivered:
		return 5
	case StatusCompleted:
		return 6
	case StatusCancelled:
		return TimelineCancelled
	default:
		return 0
	}
}

// StepsReached returns the timeline step indices that should render as
// reached for the given timeline index. Cancelled (or any negative index)
// yields an empty set: a cancelled booking highlights no progress at all.
func StepsReached(index int) []int {
	steps := make([]int, 0, len(TimelineStages))
	if index < 0 {
		return steps
	}
	if index >= len(TimelineStages) {
		index = len(TimelineStages) - 1
	}
	for i := 0; i <= index; i++ {
		steps = append(steps, i)
	}
	return steps
}

// Bucket is the coarse grouping used by the order-history list filter
type Bucket string

const (
	BucketNew       Bucket = "new"
	BucketCompleted Bucket = "completed"
	BucketCancelled Bucket = "cancelled"
)

// FilterBucket maps a raw order-history status string to its filter bucket.
// The history endpoints only ever emit pending/completed/cancelled; anything
// else (including empty) is treated as pending and lands in the new bucket.
// Membership is always computed from the raw backend status, never from a
// display label, so the label text can change without breaking filters.
func FilterBucket(raw string) Bucket {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "completed":
		return BucketCompleted
	case "cancelled":
		return BucketCancelled
	default:
		return BucketNew
	}
}

// BucketStatuses returns the fulfillment statuses whose bookings land in the
// given bucket, for queries that filter at the database. The new bucket holds
// everything still in flight. Inverse of FilterBucket over the known statuses.
func BucketStatuses(b Bucket) []FulfillmentStatus {
	switch b {
	case BucketCompleted:
		return []FulfillmentStatus{StatusCompleted}
	case BucketCancelled:
		return []FulfillmentStatus{StatusCancelled}
	default:
		return []FulfillmentStatus{
			StatusPending, StatusPickedUp, StatusProcessing,
			StatusReturning, StatusDelivered,
		}
	}
}

// IsCancellable reports whether a booking with the given raw status can still
// be cancelled by the customer. Only pending (or missing/unknown, which
// degrades to pending) bookings are cancellable.
func IsCancellable(raw string) bool {
	return FilterBucket(raw) == BucketNew
}

// DisplayLabel returns the label shown next to a booking in the history list.
func DisplayLabel(raw string) string {
	switch FilterBucket(raw) {
	case BucketCompleted:
		return "Completed"
	case BucketCancelled:
		return "cancelled"
	default:
		return "New Order"
	}
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/freshfold/laundryapi/internal/domain"
	"github.com/freshfold/laundryapi/internal/repository"
	"github.com/freshfold/laundryapi/pkg/errors"
)

type riderService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewRiderService creates a new rider service
func NewRiderService(repos *repository.Repositories, logger *zap.Logger) *riderService {
	return &riderService{
		repos:  repos,
		logger: logger,
	}
}

// AssignRider attaches a rider to a pending booking (idempotent: assigning
// the same rider again returns success)
func (s *riderService) AssignRider(ctx context.Context, bookingID, riderID uuid.UUID) (*domain.Booking, error) {
	booking, err := s.repos.Booking.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	rider, err := s.repos.Account.GetByID(ctx, riderID)
	if err != nil {
		return nil, err
	}
	if rider.Role != domain.RoleRider {
		return nil, &errors.ErrValidation{Message: "account is not a rider"}
	}
	if !rider.IsActive {
		return nil, &errors.ErrValidation{Message: "rider account is inactive"}
	}

	// Already assigned to this rider - idempotent success
	if booking.RiderID != nil && *booking.RiderID == riderID {
		return booking, nil
	}

	if booking.Status.IsTerminal() {
		return nil, &errors.ErrValidation{Message: "booking is closed"}
	}

	if err := s.repos.Booking.UpdateRider(ctx, bookingID, riderID); err != nil {
		return nil, err
	}
	booking.RiderID = &riderID

	// Log event
	event := &domain.BookingEvent{
		BookingID: booking.ID,
		EventType: "rider_assigned",
		EventData: map[string]interface{}{
			"rider_id":   riderID.String(),
			"rider_name": rider.Name,
		},
	}
	s.repos.BookingEvent.Create(ctx, event)

	// Tell the rider about the new job (fire-and-forget)
	if rider.NotifyURL != nil && *rider.NotifyURL != "" {
		payload := map[string]interface{}{
			"event":       "job_assigned",
			"booking_id":  booking.ID.String(),
			"address":     booking.Address,
			"pickup_date": booking.PickupDate,
			"pickup_time": booking.PickupTime,
		}
		go NotifyStatusUpdate(*rider.NotifyURL, payload, s.logger)
	}

	return booking, nil
}

// UpdateStatus moves a booking through the fulfillment chain. The transition
// is validated against the state machine; the server never records a status
// jump a rider could not have performed. Idempotent: setting the current
// status again returns success.
func (s *riderService) UpdateStatus(ctx context.Context, bookingID uuid.UUID, to domain.FulfillmentStatus) (*domain.Booking, error) {
	booking, err := s.repos.Booking.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Already there - idempotent success
	if booking.Status == to {
		return booking, nil
	}

	from := booking.Status
	if !domain.ApplyTransition(booking, to, time.Now()) {
		return nil, &errors.ErrInvalidStateTransition{From: from, To: to}
	}

	if err := s.repos.Booking.Update(ctx, booking); err != nil {
		return nil, err
	}

	// Log event
	event := &domain.BookingEvent{
		BookingID: booking.ID,
		EventType: "status_change",
		EventData: map[string]interface{}{
			"from": from,
			"to":   to,
		},
	}
	s.repos.BookingEvent.Create(ctx, event)

	// Push the new timeline position to the customer (fire-and-forget)
	customer, err := s.repos.Account.GetByID(ctx, booking.CustomerID)
	if err != nil {
		s.logger.Warn("Status update: customer lookup failed", zap.String("booking_id", booking.ID.String()), zap.Error(err))
	} else if customer.NotifyURL != nil && *customer.NotifyURL != "" {
		payload := map[string]interface{}{
			"event":          "status_change",
			"booking_id":     booking.ID.String(),
			"status":         string(booking.Status),
			"timeline_index": domain.TimelineIndex(string(booking.Status)),
		}
		go NotifyStatusUpdate(*customer.NotifyURL, payload, s.logger)
	}

	return booking, nil
}

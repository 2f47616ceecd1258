package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/freshfold/laundryapi/internal/domain"
	"github.com/freshfold/laundryapi/internal/payments"
	"github.com/freshfold/laundryapi/internal/repository"
	"github.com/freshfold/laundryapi/pkg/errors"
)

type bookingService struct {
	repos    *repository.Repositories
	payments *payments.Client
	logger   *zap.Logger
}

// NewBookingService creates a new booking service
func NewBookingService(repos *repository.Repositories, paymentsClient *payments.Client, logger *zap.Logger) *bookingService {
	return &bookingService{
		repos:    repos,
		payments: paymentsClient,
		logger:   logger,
	}
}

// CreateBooking creates a booking with its clothing items. When the client did
// not send a precomputed total, the stored total is derived from the items so
// the two never disagree at rest.
func (s *bookingService) CreateBooking(
	ctx context.Context,
	customer *domain.Account,
	req CreateBookingRequest,
) (*domain.Booking, []*domain.ClothingItem, error) {
	booking := &domain.Booking{
		CustomerID:          customer.ID,
		Status:              domain.StatusPending,
		PickupDate:          req.PickupDate,
		PickupTime:          req.PickupTime,
		Address:             req.Address,
		Latitude:            req.Latitude,
		Longitude:           req.Longitude,
		SpecialInstructions: req.SpecialInstructions,
		PaymentStatus:       "Payment pending",
		PaymentMethod:       req.PaymentMethod,
	}

	items := make([]*domain.ClothingItem, 0, len(req.Items))
	plain := make([]domain.ClothingItem, 0, len(req.Items))
	for _, itemReq := range req.Items {
		item := &domain.ClothingItem{
			Name:     itemReq.Name,
			Quantity: itemReq.Quantity,
			Price:    itemReq.Price,
		}
		items = append(items, item)
		plain = append(plain, *item)
	}

	// Store the resolved display amount: client total when sane, derived otherwise
	total := domain.ResolveDisplayTotal(req.TotalAmount, plain)
	booking.TotalAmount = &total

	s.logger.Info("Creating booking in database", zap.String("customer_id", customer.ID.String()))
	if err := s.repos.Booking.Create(ctx, booking); err != nil {
		s.logger.Error("Failed to create booking in database", zap.Error(err))
		return nil, nil, err
	}

	for _, item := range items {
		item.BookingID = booking.ID
	}
	if err := s.repos.ClothingItem.CreateBatch(ctx, items); err != nil {
		s.logger.Error("Failed to create clothing items in database",
			zap.String("booking_id", booking.ID.String()), zap.Error(err))
		// The booking row already exists without its items; leave a trace so
		// the orphan can be found and reconciled
		s.repos.BookingEvent.Create(ctx, &domain.BookingEvent{
			BookingID: booking.ID,
			EventType: "booking_create_failed",
			EventData: map[string]interface{}{
				"reason": "clothing_items_insert_failed",
				"error":  err.Error(),
			},
		})
		return nil, nil, err
	}

	// Log booking creation event
	event := &domain.BookingEvent{
		BookingID: booking.ID,
		EventType: "booking_created",
		EventData: map[string]interface{}{
			"customer_id": customer.ID.String(),
			"status":      booking.Status,
			"total":       total,
			"item_count":  len(items),
		},
	}
	s.repos.BookingEvent.Create(ctx, event)

	// Payment link is best-effort; the booking stands without one
	if s.payments != nil && s.payments.Configured() && total > 0 {
		link, err := s.payments.CreatePaymentLink(ctx, booking.ID.String(), total, customer.Phone)
		if err != nil {
			s.logger.Warn("Failed to create payment link", zap.String("booking_id", booking.ID.String()), zap.Error(err))
		} else {
			if err := s.repos.Booking.UpdatePayment(ctx, booking.ID, booking.PaymentStatus, nil, &link); err != nil {
				s.logger.Warn("Failed to store payment link", zap.Error(err))
			} else {
				booking.PaymentLink = &link
			}
		}
	}

	return booking, items, nil
}

// CancelBooking cancels a booking on the customer's behalf. Only bookings the
// customer could still see a cancel button for (pending) may be cancelled;
// everything else gets ErrNotCancellable. Idempotent: cancelling an already
// cancelled booking returns success.
func (s *bookingService) CancelBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Booking, error) {
	booking, err := s.repos.Booking.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Already cancelled - idempotent success
	if booking.Status == domain.StatusCancelled {
		return booking, nil
	}

	if !domain.IsCancellable(string(booking.Status)) {
		return nil, &errors.ErrNotCancellable{Status: booking.Status}
	}

	from := booking.Status
	if !domain.ApplyTransition(booking, domain.StatusCancelled, time.Now()) {
		return nil, &errors.ErrInvalidStateTransition{From: from, To: domain.StatusCancelled}
	}

	if err := s.repos.Booking.Update(ctx, booking); err != nil {
		return nil, err
	}

	// Log event
	event := &domain.BookingEvent{
		BookingID: booking.ID,
		EventType: "status_change",
		EventData: map[string]interface{}{
			"from":   from,
			"to":     domain.StatusCancelled,
			"source": "customer_cancel",
		},
	}
	s.repos.BookingEvent.Create(ctx, event)

	return booking, nil
}

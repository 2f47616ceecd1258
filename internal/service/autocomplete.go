package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/freshfold/laundryapi/internal/domain"
	"github.com/freshfold/laundryapi/internal/repository"
)

const (
	autoCompleteInterval = 10 * time.Minute
	// Delivered bookings settle into completed after this grace period,
	// leaving a window for the customer to report a problem first.
	autoCompleteGrace = 24 * time.Hour
)

var autoCompleteMu sync.Mutex

// RunAutoCompleteOnce closes out delivered bookings whose grace period has
// passed. Each booking goes through the normal transition rules; failures are
// logged per booking and do not stop the sweep.
func RunAutoCompleteOnce(ctx context.Context, repos *repository.Repositories, logger *zap.Logger) {
	cutoff := time.Now().Add(-autoCompleteGrace)
	bookings, err := repos.Booking.ListDeliveredBefore(ctx, cutoff)
	if err != nil {
		logger.Error("Auto-complete: failed to list delivered bookings", zap.Error(err))
		return
	}
	if len(bookings) == 0 {
		return
	}

	completed := 0
	for _, booking := range bookings {
		from := booking.Status
		if !domain.ApplyTransition(booking, domain.StatusCompleted, time.Now()) {
			logger.Warn("Auto-complete: transition rejected",
				zap.String("booking_id", booking.ID.String()),
				zap.String("status", string(from)))
			continue
		}
		if err := repos.Booking.Update(ctx, booking); err != nil {
			logger.Warn("Auto-complete: failed to update booking",
				zap.String("booking_id", booking.ID.String()), zap.Error(err))
			continue
		}
		event := &domain.BookingEvent{
			BookingID: booking.ID,
			EventType: "status_change",
			EventData: map[string]interface{}{
				"from":   from,
				"to":     domain.StatusCompleted,
				"source": "auto_complete",
			},
		}
		repos.BookingEvent.Create(ctx, event)
		completed++
	}

	logger.Info("Auto-complete: sweep finished",
		zap.Int("candidates", len(bookings)), zap.Int("completed", completed))
}

// RunAutoCompleteLoop runs the sweep once, then every autoCompleteInterval.
// Call from a goroutine.
func RunAutoCompleteLoop(ctx context.Context, repos *repository.Repositories, logger *zap.Logger) {
	autoCompleteMu.Lock()
	RunAutoCompleteOnce(ctx, repos, logger)
	autoCompleteMu.Unlock()

	ticker := time.NewTicker(autoCompleteInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			autoCompleteMu.Lock()
			RunAutoCompleteOnce(ctx, repos, logger)
			autoCompleteMu.Unlock()
		}
	}
}

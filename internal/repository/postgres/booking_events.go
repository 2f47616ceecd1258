package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/freshfold/laundryapi/internal/domain"
)

type bookingEventRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBookingEventRepository creates a new booking event repository
func NewBookingEventRepository(db *sql.DB, logger *zap.Logger) *bookingEventRepository {
	return &bookingEventRepository{
		db:     db,
		logger: logger,
	}
}

func (r *bookingEventRepository) Create(ctx context.Context, event *domain.BookingEvent) error {
	query := `
		INSERT INTO booking_events (id, booking_id, event_type, event_data, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	now := time.Now()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}

	var eventDataJSON []byte
	var err error
	if event.EventData != nil {
		eventDataJSON, err = json.Marshal(event.EventData)
		if err != nil {
			return err
		}
	}

	_, err = r.db.ExecContext(ctx, query,
		event.ID,
		event.BookingID,
		event.EventType,
		eventDataJSON,
		event.CreatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create booking event", zap.Error(err))
		return err
	}

	return nil
}

func (r *bookingEventRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*domain.BookingEvent, error) {
	query := `
		SELECT id, booking_id, event_type, event_data, created_at
		FROM booking_events
		WHERE booking_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		r.logger.Error("Failed to get booking events by booking ID", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var events []*domain.BookingEvent
	for rows.Next() {
		var event domain.BookingEvent
		var eventDataJSON []byte

		err := rows.Scan(
			&event.ID,
			&event.BookingID,
			&event.EventType,
			&eventDataJSON,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if len(eventDataJSON) > 0 {
			if err := json.Unmarshal(eventDataJSON, &event.EventData); err != nil {
				return nil, err
			}
		}

		events = append(events, &event)
	}

	return events, rows.Err()
}

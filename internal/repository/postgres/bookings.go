package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/freshfold/laundryapi/internal/domain"
	"github.com/freshfold/laundryapi/pkg/errors"
)

const bookingColumns = `
	id, customer_id, rider_id, status, pickup_date, pickup_time, address,
	latitude, longitude, special_instructions, total_amount,
	payment_status, payment_method, payment_link,
	picked_up_at, delivered_at, completed_at, cancelled_at,
	created_at, updated_at`

type bookingRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *sql.DB, logger *zap.Logger) *bookingRepository {
	return &bookingRepository{
		db:     db,
		logger: logger,
	}
}

func (r *bookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	now := time.Now()
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	if booking.UpdatedAt.IsZero() {
		booking.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		booking.ID,
		booking.CustomerID,
		booking.RiderID,
		booking.Status,
		booking.PickupDate,
		booking.PickupTime,
		booking.Address,
		booking.Latitude,
		booking.Longitude,
		booking.SpecialInstructions,
		booking.TotalAmount,
		booking.PaymentStatus,
		booking.PaymentMethod,
		booking.PaymentLink,
		booking.PickedUpAt,
		booking.DeliveredAt,
		booking.CompletedAt,
		booking.CancelledAt,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create booking", zap.Error(err))
		return err
	}

	return nil
}

// scanBooking scans one booking row from either *sql.Row or *sql.Rows
func scanBooking(scan func(dest ...interface{}) error) (*domain.Booking, error) {
	var booking domain.Booking
	var riderID sql.NullString
	var latitude, longitude, totalAmount sql.NullFloat64
	var specialInstructions, paymentStatus, paymentMethod, paymentLink sql.NullString
	var pickedUpAt, deliveredAt, completedAt, cancelledAt sql.NullTime

	err := scan(
		&booking.ID,
		&booking.CustomerID,
		&riderID,
		&booking.Status,
		&booking.PickupDate,
		&booking.PickupTime,
		&booking.Address,
		&latitude,
		&longitude,
		&specialInstructions,
		&totalAmount,
		&paymentStatus,
		&paymentMethod,
		&paymentLink,
		&pickedUpAt,
		&deliveredAt,
		&completedAt,
		&cancelledAt,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if riderID.Valid {
		id, err := uuid.Parse(riderID.String)
		if err == nil {
			booking.RiderID = &id
		}
	}
	if latitude.Valid {
		booking.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		booking.Longitude = &longitude.Float64
	}
	if specialInstructions.Valid {
		booking.SpecialInstructions = &specialInstructions.String
	}
	if totalAmount.Valid {
		booking.TotalAmount = &totalAmount.Float64
	}
	if paymentStatus.Valid {
		booking.PaymentStatus = paymentStatus.String
	}
	if paymentMethod.Valid {
		booking.PaymentMethod = &paymentMethod.String
	}
	if paymentLink.Valid {
		booking.PaymentLink = &paymentLink.String
	}
	if pickedUpAt.Valid {
		booking.PickedUpAt = &pickedUpAt.Time
	}
	if deliveredAt.Valid {
		booking.DeliveredAt = &deliveredAt.Time
	}
	if completedAt.Valid {
		booking.CompletedAt = &completedAt.Time
	}
	if cancelledAt.Valid {
		booking.CancelledAt = &cancelledAt.Time
	}

	return &booking, nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	booking, err := scanBooking(row.Scan)
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "booking", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get booking by ID", zap.Error(err))
		return nil, err
	}

	return booking, nil
}

func (r *bookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	query := `
		UPDATE bookings
		SET rider_id = $2, status = $3, pickup_date = $4, pickup_time = $5, address = $6,
			latitude = $7, longitude = $8, special_instructions = $9, total_amount = $10,
			payment_status = $11, payment_method = $12, payment_link = $13,
			picked_up_at = $14, delivered_at = $15, completed_at = $16, cancelled_at = $17,
			updated_at = $18
		WHERE id = $1
	`

	booking.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		booking.ID,
		booking.RiderID,
		booking.Status,
		booking.PickupDate,
		booking.PickupTime,
		booking.Address,
		booking.Latitude,
		booking.Longitude,
		booking.SpecialInstructions,
		booking.TotalAmount,
		booking.PaymentStatus,
		booking.PaymentMethod,
		booking.PaymentLink,
		booking.PickedUpAt,
		booking.DeliveredAt,
		booking.CompletedAt,
		booking.CancelledAt,
		booking.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to update booking", zap.Error(err))
		return err
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return &errors.ErrNotFound{Resource: "booking", ID: booking.ID.String()}
	}

	return nil
}

func (r *bookingRepository) UpdateRider(ctx context.Context, id uuid.UUID, riderID uuid.UUID) error {
	query := `UPDATE bookings SET rider_id = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, riderID, time.Now())
	if err != nil {
		r.logger.Error("Failed to assign rider to booking", zap.Error(err))
		return err
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return &errors.ErrNotFound{Resource: "booking", ID: id.String()}
	}

	return nil
}

func (r *bookingRepository) UpdatePayment(ctx context.Context, id uuid.UUID, paymentStatus string, paymentMethod, paymentLink *string) error {
	query := `
		UPDATE bookings
		SET payment_status = $2,
			payment_method = COALESCE($3, payment_method),
			payment_link = COALESCE($4, payment_link),
			updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, paymentStatus, paymentMethod, paymentLink, time.Now())
	if err != nil {
		r.logger.Error("Failed to update booking payment", zap.Error(err))
		return err
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return &errors.ErrNotFound{Resource: "booking", ID: id.String()}
	}

	return nil
}

func (r *bookingRepository) listQuery(ctx context.Context, query string, args ...interface{}) ([]*domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list bookings", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

func (r *bookingRepository) ListByCustomerID(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	return r.listQuery(ctx, query, customerID, limit, offset)
}

// ListByCustomerIDInStatus filters at the database so LIMIT/OFFSET paginate
// the filtered set, not the full history.
func (r *bookingRepository) ListByCustomerIDInStatus(ctx context.Context, customerID uuid.UUID, statuses []domain.FulfillmentStatus, limit, offset int) ([]*domain.Booking, error) {
	vals := make([]string, len(statuses))
	for i, s := range statuses {
		vals[i] = string(s)
	}
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE customer_id = $1 AND status = ANY($2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	return r.listQuery(ctx, query, customerID, pq.Array(vals), limit, offset)
}

func (r *bookingRepository) ListByRiderID(ctx context.Context, riderID uuid.UUID, limit, offset int) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE rider_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	return r.listQuery(ctx, query, riderID, limit, offset)
}

func (r *bookingRepository) ListByStatus(ctx context.Context, status domain.FulfillmentStatus, limit, offset int) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	return r.listQuery(ctx, query, status, limit, offset)
}

func (r *bookingRepository) List(ctx context.Context, limit, offset int) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	return r.listQuery(ctx, query, limit, offset)
}

func (r *bookingRepository) ListDeliveredBefore(ctx context.Context, cutoff time.Time) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status = $1 AND delivered_at IS NOT NULL AND delivered_at < $2
		ORDER BY delivered_at ASC`
	return r.listQuery(ctx, query, domain.StatusDelivered, cutoff)
}

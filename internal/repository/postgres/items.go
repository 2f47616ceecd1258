package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/freshfold/laundryapi/internal/domain"
)

type clothingItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClothingItemRepository creates a new clothing item repository
func NewClothingItemRepository(db *sql.DB, logger *zap.Logger) *clothingItemRepository {
	return &clothingItemRepository{
		db:     db,
		logger: logger,
	}
}

func (r *clothingItemRepository) CreateBatch(ctx context.Context, items []*domain.ClothingItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO clothing_items (id, booking_id, name, quantity, price, created_at)
		VALUES `

	args := make([]interface{}, 0, len(items)*6)
	now := time.Now()

	for i, item := range items {
		if i > 0 {
			query += ", "
		}
		query += fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)",
			i*6+1, i*6+2, i*6+3, i*6+4, i*6+5, i*6+6)

		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}

		args = append(args,
			item.ID,
			item.BookingID,
			item.Name,
			item.Quantity,
			item.Price,
			item.CreatedAt,
		)
	}

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to create clothing items batch", zap.Error(err))
		return err
	}

	return nil
}

func (r *clothingItemRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) ([]*domain.ClothingItem, error) {
	query := `
		SELECT id, booking_id, name, quantity, price, created_at
		FROM clothing_items
		WHERE booking_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		r.logger.Error("Failed to get clothing items by booking ID", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var items []*domain.ClothingItem
	for rows.Next() {
		var item domain.ClothingItem

		err := rows.Scan(
			&item.ID,
			&item.BookingID,
			&item.Name,
			&item.Quantity,
			&item.Price,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		items = append(items, &item)
	}

	return items, rows.Err()
}

package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/freshfold/laundryapi/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		Account:        NewAccountRepository(db, logger),
		Booking:        NewBookingRepository(db, logger),
		ClothingItem:   NewClothingItemRepository(db, logger),
		BookingEvent:   NewBookingEventRepository(db, logger),
		IdempotencyKey: NewIdempotencyKeyRepository(db, logger),
	}
}

package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/freshfold/laundryapi/internal/api/middleware"
	"github.com/freshfold/laundryapi/internal/cache"
	"github.com/freshfold/laundryapi/internal/config"
	"github.com/freshfold/laundryapi/internal/domain"
	"github.com/freshfold/laundryapi/internal/payments"
	"github.com/freshfold/laundryapi/internal/repository"
	"github.com/freshfold/laundryapi/internal/service"
	"github.com/freshfold/laundryapi/pkg/errors"
)

const timeFormat = "2006-01-02T15:04:05Z07:00"

// BookingResponse represents the booking response
type BookingResponse struct {
	ID                  string         `json:"id"`
	Status              string         `json:"status"`
	DisplayLabel        string         `json:"display_label"`
	Bucket              domain.Bucket  `json:"bucket"`
	Cancellable         bool           `json:"cancellable"`
	RiderID             *string        `json:"rider_id,omitempty"`
	PickupDate          string         `json:"pickup_date"`
	PickupTime          string         `json:"pickup_time"`
	Address             string         `json:"address"`
	Latitude            *float64       `json:"latitude,omitempty"`
	Longitude           *float64       `json:"longitude,omitempty"`
	SpecialInstructions *string        `json:"special_instructions,omitempty"`
	TotalAmount         float64        `json:"total_amount"`
	PaymentStatus       string         `json:"payment_status,omitempty"`
	PaymentMethod       *string        `json:"payment_method,omitempty"`
	PaymentLink         *string        `json:"payment_link,omitempty"`
	Items               []ItemResponse `json:"clothing_items,omitempty"`
	CreatedAt           string         `json:"created_at"`
	UpdatedAt           string         `json:"updated_at"`
}

type ItemResponse struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// buildBookingResponse converts a booking (and optionally its items) to the
// wire shape. The displayed total always goes through ResolveDisplayTotal so
// every screen shows the same number.
func buildBookingResponse(booking *domain.Booking, items []*domain.ClothingItem) BookingResponse {
	raw := string(booking.Status)

	plain := make([]domain.ClothingItem, 0, len(items))
	itemResponses := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		plain = append(plain, *item)
		itemResponses = append(itemResponses, ItemResponse{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	resp := BookingResponse{
		ID:                  booking.ID.String(),
		Status:              raw,
		DisplayLabel:        domain.DisplayLabel(raw),
		Bucket:              domain.FilterBucket(raw),
		Cancellable:         domain.IsCancellable(raw),
		PickupDate:          booking.PickupDate,
		PickupTime:          booking.PickupTime,
		Address:             booking.Address,
		Latitude:            booking.Latitude,
		Longitude:           booking.Longitude,
		SpecialInstructions: booking.SpecialInstructions,
		TotalAmount:         domain.ResolveDisplayTotal(booking.TotalAmount, plain),
		PaymentMethod:       booking.PaymentMethod,
		PaymentLink:         booking.PaymentLink,
		Items:               itemResponses,
		CreatedAt:           booking.CreatedAt.Format(timeFormat),
		UpdatedAt:           booking.UpdatedAt.Format(timeFormat),
	}

	if booking.RiderID != nil {
		id := booking.RiderID.String()
		resp.RiderID = &id
	}
	if booking.PaymentStatus != "" {
		resp.PaymentStatus = booking.PaymentStatus
	}

	return resp
}

// getOwnedBooking fetches a booking and verifies the account may see it:
// the customer who placed it, the rider carrying it, or an admin.
func getOwnedBooking(ctx context.Context, repos *repository.Repositories, account *domain.Account, idParam string) (*domain.Booking, error) {
	bookingID, err := uuid.Parse(idParam)
	if err != nil {
		return nil, &errors.ErrValidation{Message: "invalid booking ID"}
	}

	booking, err := repos.Booking.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch account.Role {
	case domain.RoleAdmin:
		return booking, nil
	case domain.RoleRider:
		if booking.RiderID != nil && *booking.RiderID == account.ID {
			return booking, nil
		}
	default:
		if booking.CustomerID == account.ID {
			return booking, nil
		}
	}
	return nil, &errors.ErrUnauthorized{Message: "access denied"}
}

// HandleCreateBooking handles POST /v1/bookings
func HandleCreateBooking(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := middleware.GetAccountFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		// Check if this is an idempotent request
		_, _, existingBookingID, isExisting := middleware.GetIdempotencyInfo(c)
		if isExisting {
			bookingID, err := uuid.Parse(existingBookingID)
			if err != nil {
				logger.Error("Invalid existing booking ID from idempotency", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}

			booking, err := repos.Booking.GetByID(c.Request.Context(), bookingID)
			if err != nil {
				logger.Error("Failed to get existing booking", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}

			items, _ := repos.ClothingItem.GetByBookingID(c.Request.Context(), booking.ID)
			c.JSON(http.StatusOK, buildBookingResponse(booking, items))
			return
		}

		// Parse request - use service types
		var req service.CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		bookingService := service.NewBookingService(repos, payments.NewClient(cfg.Payments, logger), logger)
		booking, items, err := bookingService.CreateBooking(c.Request.Context(), account, req)
		if err != nil {
			logger.Error("Failed to create booking", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "failed to create booking",
				"details": err.Error(),
			})
			return
		}

		logger.Info("Booking created", zap.String("booking_id", booking.ID.String()))

		// Store idempotency key if provided
		idempotencyKey, requestHash, _, _ := middleware.GetIdempotencyInfo(c)
		if idempotencyKey != "" {
			idempotency := &domain.IdempotencyKey{
				Key:         idempotencyKey,
				AccountID:   account.ID,
				BookingID:   booking.ID,
				RequestHash: requestHash,
			}
			if err := repos.IdempotencyKey.Create(c.Request.Context(), idempotency); err != nil {
				logger.Warn("Failed to store idempotency key", zap.Error(err))
			}
		}

		c.JSON(http.StatusCreated, buildBookingResponse(booking, items))
	}
}

// HandleListBookings handles GET /v1/bookings
// The filter query parameter selects a bucket: all | new | completed | cancelled.
// Bucket membership is always computed from the stored status, not from the
// label the client displays.
func HandleListBookings(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := middleware.GetAccountFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		filter := c.DefaultQuery("filter", "all")
		switch filter {
		case "all", string(domain.BucketNew), string(domain.BucketCompleted), string(domain.BucketCancelled):
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter"})
			return
		}

		limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if err != nil || limit < 1 || limit > 100 {
			limit = 50
		}
		offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if err != nil || offset < 0 {
			offset = 0
		}

		var bookings []*domain.Booking
		if filter == "all" {
			bookings, err = repos.Booking.ListByCustomerID(c.Request.Context(), account.ID, limit, offset)
		} else {
			// Filter at the database so pagination applies to the bucket
			statuses := domain.BucketStatuses(domain.Bucket(filter))
			bookings, err = repos.Booking.ListByCustomerIDInStatus(c.Request.Context(), account.ID, statuses, limit, offset)
		}
		if err != nil {
			logger.Error("Failed to list bookings", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		responses := make([]BookingResponse, 0, len(bookings))
		for _, booking := range bookings {
			responses = append(responses, buildBookingResponse(booking, nil))
		}

		c.JSON(http.StatusOK, gin.H{
			"bookings": responses,
			"filter":   filter,
			"limit":    limit,
			"offset":   offset,
		})
	}
}

// HandleGetBooking handles GET /v1/bookings/:id
func HandleGetBooking(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := middleware.GetAccountFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		booking, err := getOwnedBooking(c.Request.Context(), repos, account, c.Param("id"))
		if err != nil {
			respondBookingError(c, err, logger)
			return
		}

		items, err := repos.ClothingItem.GetByBookingID(c.Request.Context(), booking.ID)
		if err != nil {
			logger.Error("Failed to get clothing items", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusOK, buildBookingResponse(booking, items))
	}
}

// HandleCancelBooking handles POST /v1/bookings/:id/cancel
func HandleCancelBooking(repos *repository.Repositories, trackingCache cache.Cache, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := middleware.GetAccountFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		booking, err := getOwnedBooking(c.Request.Context(), repos, account, c.Param("id"))
		if err != nil {
			respondBookingError(c, err, logger)
			return
		}

		bookingService := service.NewBookingService(repos, nil, logger)
		booking, err = bookingService.CancelBooking(c.Request.Context(), booking.ID)
		if err != nil {
			if _, ok := err.(*errors.ErrNotCancellable); ok {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			if _, ok := err.(*errors.ErrInvalidStateTransition); ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			logger.Error("Failed to cancel booking", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel booking"})
			return
		}

		// Drop the cached tracking view so the cancelled state shows immediately
		key := trackingCache.GenerateKey("track", booking.ID.String())
		if err := trackingCache.Delete(c.Request.Context(), key); err != nil {
			logger.Debug("Failed to invalidate tracking cache", zap.Error(err))
		}

		c.JSON(http.StatusOK, buildBookingResponse(booking, nil))
	}
}

// respondBookingError maps repository/ownership errors to HTTP responses
func respondBookingError(c *gin.Context, err error, logger *zap.Logger) {
	switch err.(type) {
	case *errors.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	case *errors.ErrValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case *errors.ErrUnauthorized:
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	default:
		logger.Error("Failed to get booking", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

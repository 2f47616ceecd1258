package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/freshfold/laundryapi/internal/cache"
	"github.com/freshfold/laundryapi/internal/domain"
	"github.com/freshfold/laundryapi/internal/repository"
	"github.com/freshfold/laundryapi/internal/service"
	"github.com/freshfold/laundryapi/pkg/errors"
)

// AssignRiderRequest is the body for POST /v1/admin/bookings/:id/assign
type AssignRiderRequest struct {
	RiderID string `json:"rider_id" binding:"required"`
}

// HandleAdminListBookings handles GET /v1/admin/bookings
func HandleAdminListBookings(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if err != nil || limit < 1 || limit > 200 {
			limit = 50
		}
		offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
		if err != nil || offset < 0 {
			offset = 0
		}

		var bookings []*domain.Booking
		if statusParam := c.Query("status"); statusParam != "" {
			status := domain.FulfillmentStatus(statusParam)
			if !status.IsValid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status: " + statusParam})
				return
			}
			bookings, err = repos.Booking.ListByStatus(c.Request.Context(), status, limit, offset)
		} else {
			bookings, err = repos.Booking.List(c.Request.Context(), limit, offset)
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
			"count":    len(responses),
			"limit":    limit,
			"offset":   offset,
		})
	}
}

// HandleAssignRider handles POST /v1/admin/bookings/:id/assign
func HandleAssignRider(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking ID"})
			return
		}

		var req AssignRiderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		riderID, err := uuid.Parse(req.RiderID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rider ID"})
			return
		}

		riderService := service.NewRiderService(repos, logger)
		booking, err := riderService.AssignRider(c.Request.Context(), bookingID, riderID)
		if err != nil {
			switch err.(type) {
			case *errors.ErrNotFound:
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			case *errors.ErrValidation:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				logger.Error("Failed to assign rider", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign rider"})
			}
			return
		}

		logger.Info("Rider assigned",
			zap.String("booking_id", booking.ID.String()),
			zap.String("rider_id", riderID.String()))

		c.JSON(http.StatusOK, buildBookingResponse(booking, nil))
	}
}

// HandleAdminUpdateStatus handles POST /v1/admin/bookings/:id/status
// Admins use the same transition rules as riders; there is no override path
// that skips the state machine.
func HandleAdminUpdateStatus(repos *repository.Repositories, trackingCache cache.Cache, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking ID"})
			return
		}

		var req UpdateJobStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		newStatus := domain.FulfillmentStatus(req.Status)
		if !newStatus.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status: " + req.Status})
			return
		}

		riderService := service.NewRiderService(repos, logger)
		booking, err := riderService.UpdateStatus(c.Request.Context(), bookingID, newStatus)
		if err != nil {
			switch err.(type) {
			case *errors.ErrNotFound:
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			case *errors.ErrInvalidStateTransition:
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				logger.Error("Failed to update booking status", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status"})
			}
			return
		}

		key := trackingCache.GenerateKey("track", booking.ID.String())
		if err := trackingCache.Delete(c.Request.Context(), key); err != nil {
			logger.Debug("Failed to invalidate tracking cache", zap.Error(err))
		}

		c.JSON(http.StatusOK, buildBookingResponse(booking, nil))
	}
}

// HandleAdminListRiders handles GET /v1/admin/riders
func HandleAdminListRiders(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		riders, err := repos.Account.List(c.Request.Context(), domain.RoleRider)
		if err != nil {
			logger.Error("Failed to list riders", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		type riderRow struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Phone    string `json:"phone"`
			IsActive bool   `json:"is_active"`
		}
		rows := make([]riderRow, 0, len(riders))
		for _, r := range riders {
			rows = append(rows, riderRow{
				ID:       r.ID.String(),
				Name:     r.Name,
				Phone:    r.Phone,
				IsActive: r.IsActive,
			})
		}

		c.JSON(http.StatusOK, gin.H{"riders": rows, "count": len(rows)})
	}
}

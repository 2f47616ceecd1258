package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/freshfold/laundryapi/internal/api/middleware"
	"github.com/freshfold/laundryapi/internal/cache"
	"github.com/freshfold/laundryapi/internal/domain"
	"github.com/freshfold/laundryapi/internal/repository"
	"github.com/freshfold/laundryapi/internal/service"
	"github.com/freshfold/laundryapi/pkg/errors"
)

// JobResponse is the rider's view of a booking
type JobResponse struct {
	BookingID     string `json:"booking_id"`
	Status        string `json:"status"`
	TimelineIndex int    `json:"timeline_index"`
	PickupDate    string `json:"pickup_date"`
	PickupTime    string `json:"pickup_time"`
	Address       string `json:"address"`
	UpdatedAt     string `json:"updated_at"`
}

// UpdateJobStatusRequest is the body for POST /v1/rider/jobs/:id/status
type UpdateJobStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func buildJobResponse(booking *domain.Booking) JobResponse {
	return JobResponse{
		BookingID:     booking.ID.String(),
		Status:        string(booking.Status),
		TimelineIndex: domain.TimelineIndex(string(booking.Status)),
		PickupDate:    booking.PickupDate,
		PickupTime:    booking.PickupTime,
		Address:       booking.Address,
		UpdatedAt:     booking.UpdatedAt.Format(timeFormat),
	}
}

// HandleListJobs handles GET /v1/rider/jobs
func HandleListJobs(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := middleware.GetAccountFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
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

		bookings, err := repos.Booking.ListByRiderID(c.Request.Context(), account.ID, limit, offset)
		if err != nil {
			logger.Error("Failed to list rider jobs", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		jobs := make([]JobResponse, 0, len(bookings))
		for _, booking := range bookings {
			jobs = append(jobs, buildJobResponse(booking))
		}

		c.JSON(http.StatusOK, gin.H{
			"jobs":   jobs,
			"limit":  limit,
			"offset": offset,
		})
	}
}

// HandleUpdateJobStatus handles POST /v1/rider/jobs/:id/status
func HandleUpdateJobStatus(repos *repository.Repositories, trackingCache cache.Cache, logger *zap.Logger) gin.HandlerFunc {
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
		booking, err = riderService.UpdateStatus(c.Request.Context(), booking.ID, newStatus)
		if err != nil {
			if _, ok := err.(*errors.ErrInvalidStateTransition); ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			logger.Error("Failed to update job status", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update status"})
			return
		}

		key := trackingCache.GenerateKey("track", booking.ID.String())
		if err := trackingCache.Delete(c.Request.Context(), key); err != nil {
			logger.Debug("Failed to invalidate tracking cache", zap.Error(err))
		}

		logger.Info("Job status updated",
			zap.String("booking_id", booking.ID.String()),
			zap.String("status", string(booking.Status)))

		c.JSON(http.StatusOK, buildJobResponse(booking))
	}
}

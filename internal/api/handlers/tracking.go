package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/freshfold/laundryapi/internal/api/middleware"
	"github.com/freshfold/laundryapi/internal/cache"
	"github.com/freshfold/laundryapi/internal/domain"
	"github.com/freshfold/laundryapi/internal/repository"
)

const trackingCacheTTL = 15 * time.Second

// TimelineStep is one row of the tracking screen
type TimelineStep struct {
	Index   int    `json:"index"`
	Label   string `json:"label"`
	Reached bool   `json:"reached"`
	Current bool   `json:"current"`
}

// TrackResponse is the tracking view of a single booking
type TrackResponse struct {
	BookingID     string         `json:"booking_id"`
	Status        string         `json:"status"`
	TimelineIndex int            `json:"timeline_index"`
	Cancelled     bool           `json:"cancelled"`
	Steps         []TimelineStep `json:"steps"`
	RiderID       *string        `json:"rider_id,omitempty"`
	UpdatedAt     string         `json:"updated_at"`
}

// HandleTrackBooking handles GET /v1/bookings/:id/track
// The response is cached briefly; the cancel and status endpoints invalidate
// the entry so terminal states never show stale progress.
func HandleTrackBooking(repos *repository.Repositories, trackingCache cache.Cache, logger *zap.Logger) gin.HandlerFunc {
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

		cacheKey := trackingCache.GenerateKey("track", booking.ID.String())
		if cached, err := trackingCache.Get(c.Request.Context(), cacheKey); err == nil && cached != "" {
			c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
			return
		}

		resp := buildTrackResponse(booking)

		if body, err := json.Marshal(resp); err == nil {
			if err := trackingCache.Set(c.Request.Context(), cacheKey, string(body), trackingCacheTTL); err != nil {
				logger.Debug("Failed to cache tracking view", zap.Error(err))
			}
		}

		c.JSON(http.StatusOK, resp)
	}
}

func buildTrackResponse(booking *domain.Booking) TrackResponse {
	index := domain.TimelineIndex(string(booking.Status))
	reached := domain.StepsReached(index)

	reachedSet := make(map[int]bool, len(reached))
	for _, i := range reached {
		reachedSet[i] = true
	}

	steps := make([]TimelineStep, 0, len(domain.TimelineStages))
	current := len(reached) - 1
	for i, label := range domain.TimelineStages {
		steps = append(steps, TimelineStep{
			Index:   i,
			Label:   label,
			Reached: reachedSet[i],
			Current: i == current && reachedSet[i],
		})
	}

	resp := TrackResponse{
		BookingID:     booking.ID.String(),
		Status:        string(booking.Status),
		TimelineIndex: index,
		Cancelled:     index == domain.TimelineCancelled,
		Steps:         steps,
		UpdatedAt:     booking.UpdatedAt.Format(timeFormat),
	}
	if booking.RiderID != nil {
		id := booking.RiderID.String()
		resp.RiderID = &id
	}
	return resp
}

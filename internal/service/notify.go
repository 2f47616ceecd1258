package service

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const notifyTimeout = 10 * time.Second

// NotifyStatusUpdate posts a booking update to an account's notify URL
// (the push-relay endpoint registered for that account). It is intended to
// be called in a goroutine so the API response is not blocked.
func NotifyStatusUpdate(notifyURL string, payload map[string]interface{}, logger *zap.Logger) {
	if notifyURL == "" {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Warn("Notify: failed to marshal payload", zap.Error(err))
		return
	}
	client := &http.Client{Timeout: notifyTimeout}
	req, err := http.NewRequest(http.MethodPost, notifyURL, bytes.NewReader(body))
	if err != nil {
		logger.Warn("Notify: failed to create request", zap.String("url", notifyURL), zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		logger.Warn("Notify: request failed", zap.String("url", notifyURL), zap.Error(err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warn("Notify: non-2xx response",
			zap.String("url", notifyURL), zap.Int("status", resp.StatusCode))
		return
	}
	logger.Info("Notify: update sent", zap.String("url", notifyURL), zap.Int("status", resp.StatusCode))
}

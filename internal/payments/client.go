package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/freshfold/laundryapi/internal/config"
)

type Client struct {
	baseURL    string
	accessKey  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new payment provider client
func NewClient(cfg config.PaymentsConfig, logger *zap.Logger) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")

	return &Client{
		baseURL:   baseURL,
		accessKey: cfg.AccessKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// Configured reports whether a payment provider base URL is set
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// paymentLinkRequest is the payload sent to the provider
type paymentLinkRequest struct {
	ReferenceID string  `json:"reference_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
	Phone       string  `json:"phone,omitempty"`
}

// paymentLinkResponse is the provider's response
type paymentLinkResponse struct {
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

// CreatePaymentLink asks the provider for a checkout link for a booking.
// Reference ID is the booking ID so the payment webhook can find it again.
func (c *Client) CreatePaymentLink(ctx context.Context, referenceID string, amount float64, phone string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("payment provider is not configured")
	}

	reqBody := paymentLinkRequest{
		ReferenceID: referenceID,
		Amount:      amount,
		Description: "Laundry booking " + referenceID,
		Phone:       phone,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/links", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("payment provider error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var linkResp paymentLinkResponse
	if err := json.Unmarshal(body, &linkResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}

	if linkResp.Error != "" {
		return "", fmt.Errorf("payment provider error: %s", linkResp.Error)
	}
	if linkResp.URL == "" {
		return "", fmt.Errorf("payment provider returned no link")
	}

	c.logger.Debug("Payment link created", zap.String("reference_id", referenceID))
	return linkResp.URL, nil
}

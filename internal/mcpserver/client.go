package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Config holds the configuration for connecting to the Pressgate platform.
type Config struct {
	APIURL string // Base URL, e.g. "http://localhost:8080"
	APIKey string // Optional API key sent as a bearer token
}

// PressgateClient is a pure HTTP client for the Pressgate platform API.
type PressgateClient struct {
	cfg        Config
	httpClient *http.Client
}

// NewPressgateClient creates a new client for the Pressgate platform.
func NewPressgateClient(cfg Config) *PressgateClient {
	return &PressgateClient{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// apiError represents an error response from the platform.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// doRequest makes an HTTP request to the platform and returns the response body.
func (c *PressgateClient) doRequest(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	u, err := url.Parse(c.cfg.APIURL + path)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	return json.RawMessage(respBody), nil
}

// VerifyAccess checks whether a user may read a piece of content.
func (c *PressgateClient) VerifyAccess(ctx context.Context, userID, contentID, level, accessToken string) (json.RawMessage, error) {
	body := map[string]string{
		"userId":    userID,
		"contentId": contentID,
	}
	if level != "" {
		body["level"] = level
	}
	if accessToken != "" {
		body["accessToken"] = accessToken
	}
	return c.doRequest(ctx, http.MethodPost, "/v1/access/verify", nil, body)
}

// PurchaseGrant buys temporary pay-per-view access.
func (c *PressgateClient) PurchaseGrant(ctx context.Context, userID, contentID string, durationSeconds int, paymentToken string, amountPaid float64) (json.RawMessage, error) {
	body := map[string]any{
		"userId":          userID,
		"contentId":       contentID,
		"durationSeconds": durationSeconds,
		"paymentToken":    paymentToken,
		"amountPaid":      amountPaid,
	}
	return c.doRequest(ctx, http.MethodPost, "/v1/grants", nil, body)
}

// CreateSubscription subscribes a user to a plan.
func (c *PressgateClient) CreateSubscription(ctx context.Context, userID, planID, paymentMethod, billingPeriod string) (json.RawMessage, error) {
	body := map[string]string{
		"userId": userID,
		"planId": planID,
	}
	if paymentMethod != "" {
		body["paymentMethod"] = paymentMethod
	}
	if billingPeriod != "" {
		body["billingPeriod"] = billingPeriod
	}
	return c.doRequest(ctx, http.MethodPost, "/v1/subscriptions", nil, body)
}

// GetSubscription fetches a user's current subscription.
func (c *PressgateClient) GetSubscription(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/subscriptions/"+url.PathEscape(userID), nil, nil)
}

// CancelSubscription cancels a user's subscription.
func (c *PressgateClient) CancelSubscription(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodDelete, "/v1/subscriptions/"+url.PathEscape(userID), nil, nil)
}

// ListPlans fetches the available subscription plans.
func (c *PressgateClient) ListPlans(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/plans", nil, nil)
}

// ValidateToken checks an access token without consuming a use.
func (c *PressgateClient) ValidateToken(ctx context.Context, token string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/tokens/"+url.PathEscape(token), nil, nil)
}

// AssessContent submits content for valuation.
func (c *PressgateClient) AssessContent(ctx context.Context, content map[string]any, publisherTrust *float64) (json.RawMessage, error) {
	body := map[string]any{
		"content": content,
	}
	if publisherTrust != nil {
		body["publisherTrustScore"] = *publisherTrust
	}
	return c.doRequest(ctx, http.MethodPost, "/v1/assessments", nil, body)
}

// GetUserStats fetches access statistics for one user.
func (c *PressgateClient) GetUserStats(ctx context.Context, userID string) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/users/"+url.PathEscape(userID)+"/stats", nil, nil)
}

// GetGlobalStats fetches platform-wide access statistics.
func (c *PressgateClient) GetGlobalStats(ctx context.Context) (json.RawMessage, error) {
	return c.doRequest(ctx, http.MethodGet, "/v1/stats", nil, nil)
}

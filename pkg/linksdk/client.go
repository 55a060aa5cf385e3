package linksdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a typed client for the linkgate service. It covers the JSON
// endpoints; redemption itself is a plain GET of the issued one-time URL
// and is left to the caller's download machinery.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a linkgate client with a sensible default timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// IssueLink requests a one-time download link for href. The returned URL is
// relative to the service base.
func (c *Client) IssueLink(ctx context.Context, req IssueLinkRequest) (*IssueLinkResponse, error) {
	var resp IssueLinkResponse
	if err := c.postJSON(ctx, "/api/downloads/issue-link", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// MintGift creates a signed gift code.
func (c *Client) MintGift(ctx context.Context, req MintGiftRequest) (*MintGiftResponse, error) {
	var resp MintGiftResponse
	if err := c.postJSON(ctx, "/api/gifts/mint", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RedeemGift consumes a signed gift code.
func (c *Client) RedeemGift(ctx context.Context, req RedeemGiftRequest) (*RedeemGiftResponse, error) {
	var resp RedeemGiftResponse
	if err := c.postJSON(ctx, "/api/gifts/redeem", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ready reports whether the service and its backing stores are healthy.
func (c *Client) Ready(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/readyz", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &health, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return parseAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseAPIError decodes an error body, falling back to the raw status when
// the body is not the expected JSON shape.
func parseAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = ErrorCodeServerError
		apiErr.Description = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}
	return apiErr
}

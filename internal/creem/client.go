package creem

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client calls the Creem payments API: checkout creation at purchase
// time, checkout retrieval when the provider calls back.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Checkout struct {
	ID          string `json:"id"`
	RequestID   string `json:"request_id"`
	CheckoutURL string `json:"checkout_url"`
	Order     *struct {
		Status string `json:"status"`
	} `json:"order"`
	Customer *struct {
		Email string `json:"email"`
	} `json:"customer"`

	// Raw is the full response body, persisted with the order for audit.
	Raw json.RawMessage `json:"-"`
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// CreateCheckout opens a checkout session for the given product. The
// order number travels as request_id and comes back in the callback.
func (c *Client) CreateCheckout(ctx context.Context, productID, requestID, successURL string) (*Checkout, error) {
	payload, err := json.Marshal(map[string]string{
		"product_id":  productID,
		"request_id":  requestID,
		"success_url": successURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/checkouts", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("failed to create checkout: status %d, body: %s", resp.StatusCode, string(body))
	}

	var checkout Checkout
	if err := json.Unmarshal(body, &checkout); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	checkout.Raw = body

	return &checkout, nil
}

func (c *Client) RetrieveCheckout(ctx context.Context, checkoutID string) (*Checkout, error) {
	reqURL := fmt.Sprintf("%s/checkouts?checkout_id=%s", c.baseURL, url.QueryEscape(checkoutID))
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to retrieve checkout: status %d, body: %s", resp.StatusCode, string(body))
	}

	var checkout Checkout
	if err := json.Unmarshal(body, &checkout); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	checkout.Raw = body

	return &checkout, nil
}

package replicate

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

// Client calls the Replicate HTTP API. Predictions are created against a
// model's latest version and awaited synchronously; there is no queue on
// our side.
type Client struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

type Prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"` // "starting", "processing", "succeeded", "failed", "canceled"
	Output json.RawMessage `json:"output"`
	Error  *string         `json:"error"`
}

func NewClient(baseURL, apiToken string) *Client {
	return &Client{
		baseURL:  baseURL,
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Run creates a prediction for the given model and blocks until it
// reaches a terminal state or ctx is done.
func (c *Client) Run(ctx context.Context, model string, input map[string]interface{}) (*Prediction, error) {
	requestBody := map[string]interface{}{"input": input}
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + "/models/" + model + "/predictions"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")
	// Hold the connection open until the prediction finishes (up to the
	// provider-side limit); we poll if it comes back still running.
	req.Header.Set("Prefer", "wait=60")

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
		return nil, fmt.Errorf("failed to create prediction: status %d, body: %s", resp.StatusCode, string(body))
	}

	var prediction Prediction
	if err := json.Unmarshal(body, &prediction); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	return c.wait(ctx, &prediction)
}

func (c *Client) wait(ctx context.Context, prediction *Prediction) (*Prediction, error) {
	for {
		switch prediction.Status {
		case "succeeded":
			return prediction, nil
		case "failed", "canceled":
			msg := prediction.Status
			if prediction.Error != nil {
				msg = *prediction.Error
			}
			return nil, fmt.Errorf("prediction %s: %s", prediction.ID, msg)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}

		refreshed, err := c.getPrediction(ctx, prediction.ID)
		if err != nil {
			return nil, err
		}
		prediction = refreshed
	}
}

func (c *Client) getPrediction(ctx context.Context, id string) (*Prediction, error) {
	url := strings.TrimSuffix(c.baseURL, "/") + "/predictions/" + id
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to get prediction: status %d, body: %s", resp.StatusCode, string(body))
	}

	var prediction Prediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &prediction, nil
}

// OutputURLs normalizes the model output into a list of file URLs.
// Multi-output models return an array, single-output models a bare string.
func (p *Prediction) OutputURLs() ([]string, error) {
	if len(p.Output) == 0 {
		return nil, fmt.Errorf("no images generated")
	}

	var single string
	if err := json.Unmarshal(p.Output, &single); err == nil {
		if single == "" {
			return nil, fmt.Errorf("no images generated")
		}
		return []string{single}, nil
	}

	var many []string
	if err := json.Unmarshal(p.Output, &many); err != nil {
		return nil, fmt.Errorf("unexpected output format: %s", string(p.Output))
	}
	if len(many) == 0 {
		return nil, fmt.Errorf("no images generated")
	}
	return many, nil
}

// OutputText normalizes the output of text models, which stream an array
// of string chunks.
func (p *Prediction) OutputText() (string, error) {
	if len(p.Output) == 0 {
		return "", fmt.Errorf("no text generated")
	}

	var chunks []string
	if err := json.Unmarshal(p.Output, &chunks); err == nil {
		return strings.Join(chunks, ""), nil
	}

	var single string
	if err := json.Unmarshal(p.Output, &single); err == nil {
		return single, nil
	}

	return "", fmt.Errorf("unexpected output format: %s", string(p.Output))
}

// RetryWithBackoff executes fn with exponential backoff, giving up early
// when ctx is done.
func (c *Client) RetryWithBackoff(ctx context.Context, fn func() error, maxRetries int) error {
	backoffs := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if i == maxRetries-1 {
			break
		}
		backoff := backoffs[len(backoffs)-1]
		if i < len(backoffs) {
			backoff = backoffs[i]
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

package baiduocr

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"outfit-studio-backend/internal/models"
)

const (
	defaultBaseURL = "https://aip.baidubce.com"
	maxRetries     = 3
	retryDelay     = time.Second
)

// Client calls the Baidu OCR REST API. Access tokens are cached and
// refreshed five minutes before they expire.
type Client struct {
	baseURL    string
	apiKey     string
	secretKey  string
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(apiKey, secretKey string) *Client {
	return NewClientWithBaseURL(defaultBaseURL, apiKey, secretKey)
}

func NewClientWithBaseURL(baseURL, apiKey, secretKey string) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		apiKey:    apiKey,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	tokenURL := fmt.Sprintf(
		"%s/oauth/2.0/token?grant_type=client_credentials&client_id=%s&client_secret=%s",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(c.secretKey),
	)

	req, err := http.NewRequestWithContext(ctx, "POST", tokenURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("failed to get access token: status %d, body: %s", resp.StatusCode, string(body))
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("no access token in response")
	}

	c.accessToken = token.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(token.ExpiresIn-300) * time.Second)

	return c.accessToken, nil
}

type ocrResponse struct {
	ErrorCode   int    `json:"error_code"`
	ErrorMsg    string `json:"error_msg"`
	WordsResult []struct {
		Words    string `json:"words"`
		Location struct {
			Left   int `json:"left"`
			Top    int `json:"top"`
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"location"`
		Probability *struct {
			Average float64 `json:"average"`
		} `json:"probability"`
	} `json:"words_result"`
}

// RecognizeText runs high-accuracy OCR over a base64 image (without the
// data URL prefix). Transient failures are retried with a linear delay.
func (c *Client) RecognizeText(ctx context.Context, imageBase64 string) ([]models.OCRResult, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay * time.Duration(attempt)):
			}
		}

		results, err := c.recognizeOnce(ctx, imageBase64)
		if err == nil {
			return results, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("ocr failed after %d attempts: %w", maxRetries, lastErr)
}

func (c *Client) recognizeOnce(ctx context.Context, imageBase64 string) ([]models.OCRResult, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	ocrURL := fmt.Sprintf("%s/rest/2.0/ocr/v1/accurate?access_token=%s", c.baseURL, url.QueryEscape(accessToken))
	body := "image=" + url.QueryEscape(imageBase64)

	req, err := http.NewRequestWithContext(ctx, "POST", ocrURL, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ocr request failed: status %d", resp.StatusCode)
	}

	var parsed ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode ocr response: %w", err)
	}

	if parsed.ErrorCode != 0 {
		return nil, fmt.Errorf("ocr error %d: %s", parsed.ErrorCode, parsed.ErrorMsg)
	}

	results := make([]models.OCRResult, 0, len(parsed.WordsResult))
	for _, item := range parsed.WordsResult {
		result := models.OCRResult{
			Text:   item.Words,
			X:      item.Location.Left,
			Y:      item.Location.Top,
			Width:  item.Location.Width,
			Height: item.Location.Height,
		}
		if item.Probability != nil {
			result.Confidence = item.Probability.Average
		}
		results = append(results, result)
	}

	return results, nil
}

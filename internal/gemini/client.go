package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// Free-tier Gemini allows 15 requests per minute
	rateLimit = 0.25
	rateBurst = 3

	maxRetries   = 3
	initialDelay = 1 * time.Second
)

// Client generates book descriptions through the Gemini REST API with
// rate limiting and retry on transient failures.
type Client struct {
	apiURL      string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewClient creates a Gemini API client. An empty apiKey disables the
// client; callers get the fallback description instead.
func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiURL:      apiURL,
		apiKey:      apiKey,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), rateBurst),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Available reports whether the client has an API key configured.
func (c *Client) Available() bool {
	return c.apiKey != ""
}

// FallbackDescription is the deterministic text used when generation is
// unavailable or fails.
func FallbackDescription(title, author, category string) string {
	return fmt.Sprintf("A description for %q by %s (%s) is not available yet.", title, author, category)
}

type generateRequest struct {
	Contents []content `json:"contents"`
	Config   genConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type genConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GenerateBookDescription asks Gemini for a short spoiler-free description
// of the book. Returns an error on API failure; callers fall back to
// FallbackDescription.
func (c *Client) GenerateBookDescription(ctx context.Context, title, author, category string) (string, error) {
	if !c.Available() {
		return "", fmt.Errorf("gemini: no API key configured")
	}

	prompt := fmt.Sprintf(
		"Write a short, engaging description of the book %q by %s in the %s genre. "+
			"Three to four sentences, no spoilers. Return only the description text.",
		title, author, category)

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		Config:   genConfig{Temperature: 0.7, MaxOutputTokens: 200},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	var lastErr error
	delay := initialDelay
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("gemini: rate limiter: %w", err)
		}

		text, retryable, err := c.doGenerate(ctx, payload)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			break
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return "", lastErr
}

func (c *Client) doGenerate(ctx context.Context, payload []byte) (text string, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"?key="+c.apiKey, bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("gemini: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", true, fmt.Errorf("gemini: status %d", resp.StatusCode)
	default:
		return "", false, fmt.Errorf("gemini: status %d: %s", resp.StatusCode, body)
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", false, fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", false, fmt.Errorf("gemini: empty response")
	}

	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), false, nil
}

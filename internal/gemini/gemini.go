package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// --- Gemini API Configuration ---
const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// Retry policy for quota errors: 1 initial attempt + 3 retries, with
	// exponential backoff between attempts capped at maxBackoff.
	maxAttempts       = 4
	baseBackoff       = 2 * time.Second
	backoffMultiplier = 2
	maxBackoff        = 30 * time.Second

	requestTimeout = 30 * time.Second
)

// Classified upstream outcomes. Callers branch with errors.Is; anything that
// is neither ErrQuotaExceeded nor ErrNotConfigured is a generic upstream
// failure and must not be retried.
var (
	// ErrQuotaExceeded means the provider answered 429 / RESOURCE_EXHAUSTED.
	// This is the only retryable failure.
	ErrQuotaExceeded = errors.New("gemini: quota exceeded")

	// ErrNotConfigured means the client handle was never initialized with an
	// API key. Surfaced as a configuration fault, never retried.
	ErrNotConfigured = errors.New("gemini: client not configured")
)

// --- Structs for Gemini API Request/Response ---

type geminiPayload struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Client is an explicit handle to the generateContent endpoint. It is
// constructed once at process start and is safe for concurrent use; the only
// per-call state is local to GenerateContent.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client

	// backoffBase is baseBackoff in production; tests shrink it so retry
	// sequences run in microseconds.
	backoffBase time.Duration
}

// NewClient builds a client for the given API key and model identifier.
func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:      apiKey,
		model:       model,
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: requestTimeout},
		backoffBase: baseBackoff,
	}
}

// Model reports the model identifier this client calls.
func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// Configured reports whether the handle carries an API key.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != ""
}

// GenerateContent sends the prompt to the model and returns the generated
// text. Quota failures are retried up to the attempt budget with exponential
// backoff; every other failure propagates after a single attempt. An empty
// candidate list is not an error: the provider succeeded with no content and
// the caller decides what to substitute.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			delay := c.backoffDelay(attempt - 1)
			log.Warn().
				Int("attempt", attempt).
				Dur("backoff", delay).
				Msg("Gemini quota hit, backing off before retry")
			if err := sleepCtx(ctx, delay); err != nil {
				return "", err
			}
		}

		text, err := c.call(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, ErrQuotaExceeded) {
			// Network faults, malformed responses and non-429 API errors
			// are not retryable.
			return "", err
		}
		lastErr = err
	}

	return "", fmt.Errorf("gemini: still rate limited after %d attempts: %w", maxAttempts, lastErr)
}

// call performs one generateContent request and classifies the outcome.
func (c *Client) call(ctx context.Context, prompt string) (string, error) {
	payload := geminiPayload{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("API returned status %s: %w", resp.Status, ErrQuotaExceeded)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("API returned non-200 status: %s, Body: %s", resp.Status, string(body))
	}

	var geminiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		// Provider "succeeded" with no content.
		return "", nil
	}

	return geminiResp.Candidates[0].Content.Parts[0].Text, nil
}

// backoffDelay computes the wait before the nth retry (n starting at 1):
// min(maxBackoff, base * multiplier^(n-1)).
func (c *Client) backoffDelay(n int) time.Duration {
	delay := c.backoffBase
	for i := 1; i < n; i++ {
		delay *= backoffMultiplier
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	if delay > maxBackoff {
		delay = maxBackoff
	}
	return delay
}

// sleepCtx waits for d or until ctx is canceled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

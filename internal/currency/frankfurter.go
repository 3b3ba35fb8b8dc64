package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/service"
)

// DefaultFrankfurterURL is the public Frankfurter API endpoint.
const DefaultFrankfurterURL = "https://api.frankfurter.app"

// FrankfurterClient fetches rates from a Frankfurter-compatible API.
type FrankfurterClient struct {
	httpClient *http.Client
	baseURL    string
	retry      service.RetryOptions
}

type latestResponse struct {
	Rates map[string]float64 `json:"rates"`
	Base  string             `json:"base"`
	Date  string             `json:"date"`
}

// NewFrankfurterClient creates a client for baseURL. An empty baseURL uses
// DefaultFrankfurterURL; a zero timeout uses 10 seconds.
func NewFrankfurterClient(baseURL string, timeout time.Duration, retry service.RetryOptions) *FrankfurterClient {
	if baseURL == "" {
		baseURL = DefaultFrankfurterURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &FrankfurterClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		retry:      retry,
	}
}

// Rate returns the rate from base to target.
func (c *FrankfurterClient) Rate(ctx context.Context, base, target string) (float64, error) {
	u, err := url.Parse(c.baseURL + "/latest")
	if err != nil {
		return 0, fmt.Errorf("failed to parse URL: %w", err)
	}
	q := u.Query()
	q.Set("from", base)
	q.Set("to", target)
	u.RawQuery = q.Encode()

	var rate float64
	err = common.WithRetry(ctx, func() error {
		r, fetchErr := c.fetch(ctx, u.String(), target)
		if fetchErr != nil {
			return fetchErr
		}
		rate = r
		return nil
	}, c.retry)
	if err != nil {
		return 0, err
	}
	return rate, nil
}

func (c *FrankfurterClient) fetch(ctx context.Context, endpoint, target string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	slog.Debug("Requesting exchange rate", "url", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failures are worth another attempt unless we were canceled.
		return 0, &common.RetryableError{
			Err:       fmt.Errorf("failed to fetch rate: %w", err),
			Retryable: ctx.Err() == nil,
		}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return 0, fmt.Errorf("rate provider: %w", common.ErrRateLimit)
	case resp.StatusCode >= 500:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, &common.RetryableError{
			Err:       fmt.Errorf("rate provider error: %d - %s", resp.StatusCode, strings.TrimSpace(string(body))),
			Retryable: true,
		}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("%w: rate provider error: %d - %s",
			common.ErrConversionFailure, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("%w: failed to decode response: %w", common.ErrConversionFailure, err)
	}

	rate, ok := payload.Rates[target]
	if !ok {
		return 0, fmt.Errorf("%w: response has no rate for %s", common.ErrConversionFailure, target)
	}
	return rate, nil
}

package fleetdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/metrorail-ops/fleetsim-core/pkg/logger"
	"github.com/metrorail-ops/fleetsim-core/pkg/models"
)

// ErrUnavailable indicates the fleet-data service could not be reached or
// answered with a server error. Callers substitute the demo roster and tag
// the response accordingly; they never fail the whole page over it.
var ErrUnavailable = errors.New("fleet-data service unavailable")

const (
	defaultRatePerSec = 10
	defaultBurst      = 5
	maxRetries        = 2
	baseRetryWait     = 250 * time.Millisecond
)

// Client queries the external fleet-data service for the current trainset
// roster and fleet state. Requests are rate limited and retried with
// exponential backoff.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
}

// NewClient creates a client for the given base URL. Non-positive rate or
// burst fall back to conservative defaults.
func NewClient(baseURL string, timeout time.Duration, ratePerSec float64, burst int) *Client {
	if ratePerSec <= 0 {
		ratePerSec = defaultRatePerSec
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), burst),
	}
}

// Roster returns the current trainset roster.
func (c *Client) Roster(ctx context.Context) ([]models.Trainset, error) {
	var out struct {
		Trainsets []models.Trainset `json:"trainsets"`
	}
	if err := c.get(ctx, c.baseURL+"/v1/trainsets", &out); err != nil {
		return nil, err
	}
	return out.Trainsets, nil
}

// Baseline returns the live operational metrics snapshot.
func (c *Client) Baseline(ctx context.Context) (models.BaselineMetrics, error) {
	var out models.BaselineMetrics
	if err := c.get(ctx, c.baseURL+"/v1/fleet/metrics", &out); err != nil {
		return models.BaselineMetrics{}, err
	}
	return out, nil
}

// get performs a rate-limited GET with retries. Transport errors and 5xx
// responses collapse into ErrUnavailable after the retry budget runs out.
func (c *Client) get(ctx context.Context, url string, out any) error {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
			}
			logger.Warn("fleet-data server error, retrying", "status", resp.StatusCode, "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("fleet-data request failed: status %d", resp.StatusCode)
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return ErrUnavailable
}

func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := baseRetryWait << attempt
	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}
}

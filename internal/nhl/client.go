// Package nhl is the transport client for the public league stats API.
package nhl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/skateiq/fantasy-agent/internal/models"
)

// Config configures the client.
type Config struct {
	BaseURL            string
	Timeout            time.Duration
	MaxRetries         int
	BackoffBase        time.Duration
	BackoffMax         time.Duration
	RateLimitPerSecond float64
	MaxInFlight        int64
	HTTPClient         *http.Client
	Logger             *zap.Logger
}

// Client fetches and decodes league data. It is safe for concurrent use.
type Client struct {
	baseURL     string
	http        *http.Client
	limiter     *rate.Limiter
	inFlight    *semaphore.Weighted
	maxRetries  int
	backoffBase time.Duration
	backoffMax  time.Duration
	logger      *zap.SugaredLogger
	now         func() time.Time
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api-web.nhle.com/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = time.Second
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = 60 * time.Second
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 4
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	limit := rate.Inf
	if cfg.RateLimitPerSecond > 0 {
		limit = rate.Limit(cfg.RateLimitPerSecond)
	}

	return &Client{
		baseURL:     cfg.BaseURL,
		http:        cfg.HTTPClient,
		limiter:     rate.NewLimiter(limit, 1),
		inFlight:    semaphore.NewWeighted(cfg.MaxInFlight),
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
		backoffMax:  cfg.BackoffMax,
		logger:      cfg.Logger.Sugar(),
		now:         time.Now,
	}
}

// statusError is a non-2xx response.
type statusError struct {
	status int
	path   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.path, e.status)
}

func retryable(status int) bool {
	return status == http.StatusRequestTimeout ||
		status == http.StatusTooManyRequests ||
		status >= 500
}

// getJSON performs GET baseURL+path with bounded retries and decodes into
// dest. A 404 is reported as models.ErrDataUnavailable without retrying.
func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			c.logger.Debugw("Retrying request", "path", path, "attempt", attempt, "delay", delay, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := c.do(ctx, path, dest)
		if err == nil {
			return nil
		}
		lastErr = err

		var se *statusError
		if errors.As(err, &se) {
			if se.status == http.StatusNotFound {
				return fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
			}
			if !retryable(se.status) {
				return err
			}
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *Client) do(ctx context.Context, path string, dest any) error {
	if err := c.inFlight.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.inFlight.Release(1)

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return &statusError{status: resp.StatusCode, path: path}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) backoff(attempt int) time.Duration {
	d := time.Duration(float64(c.backoffBase) * math.Pow(2, float64(attempt-1)))
	if d > c.backoffMax {
		return c.backoffMax
	}
	return d
}

func playerPath(playerID int64, suffix string) string {
	return "/player/" + strconv.FormatInt(playerID, 10) + suffix
}

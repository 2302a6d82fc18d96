package fetch

import (
	"context"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/coverscan/coverscan/internal/config"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// maxBodyBytes bounds how much of a listing page we read. Comparison pages
// are a few hundred KB at most.
const maxBodyBytes = 4 << 20

// Client is the shared HTTP fetcher. All adapter traffic funnels through one
// client so the rate limit applies across sources, not per source.
type Client struct {
	http        *http.Client
	limiter     *rate.Limiter
	userAgent   string
	maxAttempts int
	baseBackoff time.Duration
}

// NewClient builds a Client from configuration. RequestsPerSecond caps the
// outbound request rate with burst 1.
func NewClient(cfg config.FetchConfig) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1.0
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		http:        &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		userAgent:   defaultUserAgent,
		maxAttempts: 3,
		baseBackoff: 500 * time.Millisecond,
	}
}

// Get fetches a URL and returns the body. Transient failures are retried with
// exponential backoff and jitter; blocks and other terminal failures return
// immediately. The rate limiter gates every attempt, including retries.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt - 1)
			zap.L().Warn("retrying fetch",
				zap.String("url", url),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", delay),
				zap.Error(lastErr))
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, lastErr
			case <-timer.C:
			}
		}

		body, err := c.get(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if ctx.Err() != nil || !IsTransient(err) {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetch: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: build request %s", url)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-IN,en;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: get %s", url)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "fetch: read body %s", url)
	}

	if blocked, kind := DetectBlock(resp, body); blocked {
		return nil, &BlockedError{URL: url, Kind: kind}
	}
	if isTransientStatus(resp.StatusCode) {
		return nil, NewTransientError(eris.Errorf("fetch: %s returned %d", url, resp.StatusCode), resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("fetch: %s returned %d", url, resp.StatusCode)
	}
	return body, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	delay := float64(c.baseBackoff) * math.Pow(2, float64(attempt))
	// ±25% jitter keeps concurrent retries from aligning.
	delay += (rand.Float64()*2 - 1) * delay * 0.25
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}

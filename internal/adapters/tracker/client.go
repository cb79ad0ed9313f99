// Package tracker provides a resilient client for the external time-tracking API
package tracker

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	perr "tally/internal/platform/errors"
	"tally/internal/platform/logger"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUA        = "tally"
	defaultMaxRetry  = 5
	defaultRetryBase = 500 * time.Millisecond
	defaultSpacing   = 1100 * time.Millisecond
)

// Options configures the Client
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Retry config for transient and rate limited responses
	MaxRetries int
	RetryBase  time.Duration

	// Spacing between request releases through the shared gate
	// used only when Gate is nil
	Spacing time.Duration

	// Gate overrides the default gate, handy for tests
	Gate *Gate
}

// Client is a minimal client for the tracking API read endpoints
// all requests pass through a shared serializing gate
type Client struct {
	http  *http.Client
	opts  Options
	gate  *Gate
	log   logger.Logger
	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if o.Spacing <= 0 {
		o.Spacing = defaultSpacing
	}
	gate := o.Gate
	if gate == nil {
		gate = NewGate(o.Spacing)
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		gate:  gate,
		log:   *logger.Named("tracker"),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// do issues a GET through the gate with retries and rate limit handling
func (c *Client) do(ctx context.Context, auth Auth, path string, q url.Values) (*http.Response, error) {
	u := c.opts.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	attempts := 0
	for {
		if err := c.gate.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "tracker new request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/json")
		if auth.APIToken != "" {
			req.SetBasicAuth(auth.APIToken, "api_token")
		}

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if !c.shouldRetry(attempts) {
				return nil, perr.ExternalSource(err, 0, "tracker request failed")
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("tracker transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		c.log.Debug().
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("tracker http response")

		switch resp.StatusCode {
		case http.StatusOK:
			return resp, nil
		case http.StatusTooManyRequests:
			wait := retryAfter(resp.Header, c.backoff(attempts))
			if !c.shouldRetry(attempts) {
				_ = drainAndClose(resp.Body)
				return nil, perr.Newf(perr.ErrorCodeTooManyRequests, "tracker rate limited")
			}
			c.log.Warn().Dur("sleep", wait).Msg("tracker rate limited backing off")
			_ = drainAndClose(resp.Body)
			c.sleep(wait)
			attempts++
			continue
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			if !c.shouldRetry(attempts) {
				_ = drainAndClose(resp.Body)
				return nil, perr.ExternalSourcef("tracker transient server error %d", resp.StatusCode)
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Msg("tracker transient error retrying")
			_ = drainAndClose(resp.Body)
			c.sleep(back)
			attempts++
			continue
		case http.StatusUnauthorized, http.StatusForbidden:
			_ = drainAndClose(resp.Body)
			return nil, perr.WithStatus(
				perr.Unauthorizedf("tracker rejected credentials"), resp.StatusCode)
		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return nil, perr.WithStatus(
				perr.ExternalSourcef("tracker unexpected status %d body %s", resp.StatusCode, string(body)),
				resp.StatusCode)
		}
	}
}

// backoff is exponential on RetryBase with a 30s cap and up to 25% jitter
func (c *Client) backoff(attempt int) time.Duration {
	ms := int64(c.opts.RetryBase / time.Millisecond)
	ms = ms << uint(attempt)
	if ceiling := int64(30 * time.Second / time.Millisecond); ms > ceiling {
		ms = ceiling
	}
	ms += rand.Int63n(ms/4 + 1)
	return time.Duration(ms) * time.Millisecond
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}

func retryAfter(h http.Header, fallback time.Duration) time.Duration {
	if s := h.Get("Retry-After"); s != "" {
		if d, err := time.ParseDuration(s + "s"); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}

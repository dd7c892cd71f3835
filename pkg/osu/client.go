package osu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://osu.ppy.sh/api/v2"
	DefaultTokenURL  = "https://osu.ppy.sh/oauth/token"
	DefaultLegacyURL = "https://osu.ppy.sh/api"
)

// RetryPolicy bounds retries of transport errors, 429 and 5xx.
// MaxAttempts <= 1 disables retrying.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// ResponseCache stores raw JSON for GET wrappers. Lookup reports a miss
// with ok == false and a nil error.
type ResponseCache interface {
	Key(parts ...string) string
	Lookup(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// Client talks to osu! API v2 (and the legacy v1 endpoint) on behalf of
// the application. Token state is owned by the injected TokenManager.
type Client struct {
	baseURL    string
	legacyURL  string
	legacyKey  string
	httpClient *http.Client
	tokens     *TokenManager
	limiter    *rate.Limiter
	retry      RetryPolicy
	cache      ResponseCache
	userTTL    time.Duration
	mapTTL     time.Duration
	bestCap    int
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithLegacyAPI(baseURL, key string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.legacyURL = baseURL
		}
		c.legacyKey = key
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithRateLimit caps outgoing requests per minute. perMinute <= 0 disables it.
func WithRateLimit(perMinute, burst int) Option {
	return func(c *Client) {
		if perMinute <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
	}
}

func WithRetry(p RetryPolicy) Option {
	return func(c *Client) { c.retry = p }
}

// WithCache enables read-through caching of user and beatmap lookups.
func WithCache(cache ResponseCache, userTTL, mapTTL time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.userTTL = userTTL
		c.mapTTL = mapTTL
	}
}

func WithBestScoreCap(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.bestCap = n
		}
	}
}

func NewClient(tokens *TokenManager, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		legacyURL:  DefaultLegacyURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		retry:      RetryPolicy{MaxAttempts: 1},
		bestCap:    MaxBestScores,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request performs one authenticated call and returns the raw JSON body.
// 204 and empty 2xx bodies come back as "{}". Failures are typed: ErrAuth
// when no token is available (no request is sent), *APIError for status
// >= 400, ErrTransport and ErrMalformed otherwise.
func (c *Client) Request(ctx context.Context, method, endpoint string, query url.Values, body any) (json.RawMessage, error) {
	token, err := c.tokens.Ensure(ctx)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	attempts := max(c.retry.MaxAttempts, 1)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := c.wait(ctx, attempt-1); err != nil {
				return nil, lastErr
			}
		}

		raw, err := c.do(ctx, token, method, endpoint, query, payload)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !retryable(ctx, err) || attempt == attempts {
			break
		}
		zap.S().Warnf("[Osu] %s %s attempt %d/%d failed, retrying: %v", method, endpoint, attempt, attempts, err)
	}
	return nil, lastErr
}

// RequestJSON is Request followed by decoding into out.
func (c *Client) RequestJSON(ctx context.Context, method, endpoint string, query url.Values, body, out any) error {
	raw, err := c.Request(ctx, method, endpoint, query, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrMalformed, method, endpoint, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, token, method, endpoint string, query url.Values, payload []byte) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %w", ErrTransport, err)
		}
	}

	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		zap.S().Errorf("[Osu] %s %s: %v", method, endpoint, err)
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	if resp.StatusCode >= 400 {
		zap.S().Errorf("[Osu] %s %s returned %d: %s", method, endpoint, resp.StatusCode, truncate(string(data), 300))
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(data)}
		if resp.StatusCode == http.StatusUnauthorized {
			c.tokens.Invalidate()
		}
		return nil, apiErr
	}

	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("{}"), nil
	}
	if !json.Valid(data) {
		zap.S().Errorf("[Osu] %s %s returned invalid JSON: %s", method, endpoint, truncate(string(data), 200))
		return nil, fmt.Errorf("%w: %s %s", ErrMalformed, method, endpoint)
	}
	return json.RawMessage(data), nil
}

func (c *Client) wait(ctx context.Context, retry int) error {
	delay := c.retry.BaseDelay << (retry - 1)
	if c.retry.MaxDelay > 0 && (delay > c.retry.MaxDelay || delay <= 0) {
		delay = c.retry.MaxDelay
	}
	if delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.retryable()
	}
	return errors.Is(err, ErrTransport)
}

// getCached is a GET through the response cache when one is configured.
func (c *Client) getCached(ctx context.Context, endpoint string, query url.Values, ttl time.Duration, out any) error {
	if c.cache == nil || ttl <= 0 {
		return c.RequestJSON(ctx, http.MethodGet, endpoint, query, nil, out)
	}

	key := c.cache.Key("osu", endpoint+"?"+query.Encode())
	if cached, ok, err := c.cache.Lookup(ctx, key); err != nil {
		zap.S().Warnf("[Osu] Cache lookup for %s failed: %v", key, err)
	} else if ok {
		if err := json.Unmarshal([]byte(cached), out); err == nil {
			return nil
		}
	}

	raw, err := c.Request(ctx, http.MethodGet, endpoint, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: GET %s: %w", ErrMalformed, endpoint, err)
	}
	if err := c.cache.Set(ctx, key, string(raw), ttl); err != nil {
		zap.S().Warnf("[Osu] Cache store for %s failed: %v", key, err)
	}
	return nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

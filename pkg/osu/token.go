package osu

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultTokenMargin is subtracted from every token's lifetime so we never
// present one that expires mid-request.
const DefaultTokenMargin = 60 * time.Second

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Token is the result of one credential exchange.
type Token struct {
	AccessToken string
	TTL         time.Duration
}

// TokenSource performs a credential exchange. It must not cache.
type TokenSource interface {
	FetchToken(ctx context.Context) (Token, error)
}

type TokenSourceFunc func(ctx context.Context) (Token, error)

func (f TokenSourceFunc) FetchToken(ctx context.Context) (Token, error) { return f(ctx) }

// ClientCredentials exchanges a client id/secret pair for an app token.
type ClientCredentials struct {
	conf       *clientcredentials.Config
	httpClient *http.Client
}

func NewClientCredentials(clientID, clientSecret, tokenURL string, httpClient *http.Client) *ClientCredentials {
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}
	return &ClientCredentials{
		conf: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       []string{"public"},
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: httpClient,
	}
}

func (c *ClientCredentials) FetchToken(ctx context.Context) (Token, error) {
	if c.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	}
	// Config.Token builds a fresh TokenSource per call, so nothing is reused here.
	tok, err := c.conf.Token(ctx)
	if err != nil {
		return Token{}, err
	}
	if tok.Expiry.IsZero() {
		return Token{}, errors.New("token response has no expires_in")
	}
	return Token{AccessToken: tok.AccessToken, TTL: time.Until(tok.Expiry)}, nil
}

// TokenManager caches one bearer token and refreshes it once it is within
// the safety margin of expiry. It is safe for concurrent use; concurrent
// callers that find the token expired share a single refresh.
type TokenManager struct {
	source TokenSource
	clock  Clock
	margin time.Duration

	mu     sync.Mutex
	token  string
	expiry time.Time
}

type TokenOption func(*TokenManager)

func WithClock(c Clock) TokenOption {
	return func(m *TokenManager) { m.clock = c }
}

func WithMargin(d time.Duration) TokenOption {
	return func(m *TokenManager) { m.margin = d }
}

func NewTokenManager(source TokenSource, opts ...TokenOption) *TokenManager {
	m := &TokenManager{
		source: source,
		clock:  systemClock{},
		margin: DefaultTokenMargin,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Ensure returns a usable bearer token, performing a credential exchange
// if none is cached or the cached one has expired. Any failure discards
// the cached token and is reported as ErrAuth.
func (m *TokenManager) Ensure(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuth, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if m.token != "" && now.Before(m.expiry) {
		return m.token, nil
	}
	if m.token != "" {
		zap.S().Debugf("[Osu] Token expired at %s, requesting a new one", m.expiry.Format(time.RFC3339))
	}

	tok, err := m.source.FetchToken(ctx)
	if err == nil && (tok.AccessToken == "" || tok.TTL <= 0) {
		err = errors.New("token response missing access_token or lifetime")
	}
	if err != nil {
		m.token = ""
		m.expiry = time.Time{}
		zap.S().Errorf("[Osu] Failed to obtain access token: %v", err)
		return "", fmt.Errorf("%w: %w", ErrAuth, err)
	}

	m.token = tok.AccessToken
	m.expiry = now.Add(tok.TTL - m.margin)
	zap.S().Debugf("[Osu] Obtained new access token, valid until %s", m.expiry.Format(time.RFC3339))
	return m.token, nil
}

// Invalidate drops the cached token, e.g. after the API rejected it.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	m.token = ""
	m.expiry = time.Time{}
	m.mu.Unlock()
}

// Expiry reports when the cached token stops being used; zero if none.
func (m *TokenManager) Expiry() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiry
}

package osu

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// newTokenServer answers the client-credentials grant with status and
// counts every exchange.
func newTokenServer(t *testing.T, status int, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(calls, 1)

		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "my-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "my-secret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "public", r.PostForm.Get("scope"))

		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"token_type":"Bearer","expires_in":3600,"access_token":"token-%d"}`, n)
	}))
}

func TestTokenManager_ReusesTokenWithinLifetime(t *testing.T) {
	var calls int32
	server := newTokenServer(t, http.StatusOK, &calls)
	defer server.Close()

	clock := newFakeClock()
	tm := NewTokenManager(NewClientCredentials("my-id", "my-secret", server.URL, server.Client()), WithClock(clock))

	first, err := tm.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", first)

	clock.Advance(30 * time.Minute)
	second, err := tm.Ensure(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "token endpoint should be hit once")
}

func TestTokenManager_RefreshesOnceAfterExpiry(t *testing.T) {
	var calls int32
	server := newTokenServer(t, http.StatusOK, &calls)
	defer server.Close()

	clock := newFakeClock()
	tm := NewTokenManager(NewClientCredentials("my-id", "my-secret", server.URL, server.Client()), WithClock(clock))

	_, err := tm.Ensure(context.Background())
	require.NoError(t, err)

	// 3600s lifetime minus the 60s margin has passed.
	clock.Advance(time.Hour)

	refreshed, err := tm.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-2", refreshed)

	again, err := tm.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-2", again)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTokenManager_ExpiryHonoursMargin(t *testing.T) {
	clock := newFakeClock()
	start := clock.Now()
	var calls int32
	source := TokenSourceFunc(func(ctx context.Context) (Token, error) {
		atomic.AddInt32(&calls, 1)
		return Token{AccessToken: "abc", TTL: 100 * time.Second}, nil
	})
	tm := NewTokenManager(source, WithClock(clock), WithMargin(10*time.Second))

	_, err := tm.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, start.Add(90*time.Second), tm.Expiry())

	clock.Advance(89 * time.Second)
	_, err = tm.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	clock.Advance(time.Second)
	_, err = tm.Ensure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestTokenManager_UnauthorizedFails(t *testing.T) {
	var calls int32
	server := newTokenServer(t, http.StatusUnauthorized, &calls)
	defer server.Close()

	tm := NewTokenManager(NewClientCredentials("my-id", "my-secret", server.URL, server.Client()))

	token, err := tm.Ensure(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuth))
	assert.Empty(t, token)
	assert.True(t, tm.Expiry().IsZero())
}

func TestTokenManager_FailureDiscardsPreviousToken(t *testing.T) {
	clock := newFakeClock()
	fail := false
	source := TokenSourceFunc(func(ctx context.Context) (Token, error) {
		if fail {
			return Token{}, errors.New("connection refused")
		}
		return Token{AccessToken: "first", TTL: time.Hour}, nil
	})
	tm := NewTokenManager(source, WithClock(clock))

	_, err := tm.Ensure(context.Background())
	require.NoError(t, err)

	fail = true
	clock.Advance(2 * time.Hour)

	_, err = tm.Ensure(context.Background())
	assert.ErrorIs(t, err, ErrAuth)
	assert.True(t, tm.Expiry().IsZero())
}

func TestTokenManager_RejectsEmptyToken(t *testing.T) {
	tm := NewTokenManager(TokenSourceFunc(func(ctx context.Context) (Token, error) {
		return Token{AccessToken: "", TTL: time.Hour}, nil
	}))

	_, err := tm.Ensure(context.Background())
	assert.ErrorIs(t, err, ErrAuth)
}

func TestTokenManager_ConcurrentCallersShareRefresh(t *testing.T) {
	var calls int32
	source := TokenSourceFunc(func(ctx context.Context) (Token, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(10 * time.Millisecond)
		return Token{AccessToken: "shared", TTL: time.Hour}, nil
	})
	tm := NewTokenManager(source)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := tm.Ensure(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "shared", token)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestTokenManager_CancelledContext(t *testing.T) {
	var calls int32
	tm := NewTokenManager(TokenSourceFunc(func(ctx context.Context) (Token, error) {
		atomic.AddInt32(&calls, 1)
		return Token{AccessToken: "x", TTL: time.Hour}, nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tm.Ensure(ctx)
	assert.ErrorIs(t, err, ErrAuth)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

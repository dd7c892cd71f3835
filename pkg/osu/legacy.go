package osu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

// ErrLegacyDisabled is returned when no API v1 key is configured.
var ErrLegacyDisabled = errors.New("osu: api v1 key not configured")

// GetScoreV1 fetches a player's top score on one beatmap from the legacy
// API. It only fills gaps in v2 data, so callers treat any error as
// "no fallback available".
func (c *Client) GetScoreV1(ctx context.Context, beatmapID int, user string, mode Mode) (*LegacyScore, error) {
	if c.legacyKey == "" {
		return nil, ErrLegacyDisabled
	}
	if !mode.Valid() {
		mode = ModeOsu
	}

	query := url.Values{}
	query.Set("k", c.legacyKey)
	query.Set("b", strconv.Itoa(beatmapID))
	query.Set("u", user)
	query.Set("m", strconv.Itoa(int(mode)))
	query.Set("limit", "1")

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %w", ErrTransport, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.legacyURL+"/get_scores?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: get_scores: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		zap.S().Errorf("[Osu] API v1 get_scores returned %d: %s", resp.StatusCode, truncate(string(body), 200))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var scores []LegacyScore
	if err := json.NewDecoder(resp.Body).Decode(&scores); err != nil {
		return nil, fmt.Errorf("%w: get_scores: %w", ErrMalformed, err)
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("get_scores for beatmap %d: %w", beatmapID, ErrNotFound)
	}
	return &scores[0], nil
}

// ScoreValue parses the v1 string-encoded score.
func (s *LegacyScore) ScoreValue() (int64, error) {
	return strconv.ParseInt(s.Score, 10, 64)
}

package osu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	// BestPageLimit is the largest page the best-scores endpoint serves.
	BestPageLimit = 100
	// MaxBestScores is how many best scores the API keeps per player.
	MaxBestScores = 200
	// BeatmapsetPageLimit is the page size used for mapper listings.
	BeatmapsetPageLimit = 50
)

// MapperSetTypes are the listings that count as a user's own sets.
var MapperSetTypes = []string{"ranked", "loved", "graveyard", "pending", "nominated"}

// GetUser looks a player up by id or name. With byUsername the API is
// told to treat a numeric identifier as a name.
func (c *Client) GetUser(ctx context.Context, ident string, mode Mode, byUsername bool) (*User, error) {
	ident = strings.TrimSpace(ident)
	if ident == "" {
		return nil, fmt.Errorf("get user: empty identifier")
	}
	endpoint := "/users/" + url.PathEscape(ident)
	if mode.Valid() {
		endpoint += "/" + mode.String()
	}
	query := url.Values{}
	if byUsername {
		query.Set("key", "username")
	}

	var user User
	if err := c.getCached(ctx, endpoint, query, c.userTTL, &user); err != nil {
		return nil, fmt.Errorf("get user %s: %w", ident, err)
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("get user %s: %w", ident, ErrNotFound)
	}
	return &user, nil
}

type RecentOptions struct {
	Mode         Mode
	Limit        int
	Offset       int
	IncludeFails bool
}

func (c *Client) GetUserRecent(ctx context.Context, userID int, opts RecentOptions) ([]Score, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 5
	}
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if opts.IncludeFails {
		query.Set("include_fails", "1")
	} else {
		query.Set("include_fails", "0")
	}
	if opts.Mode.Valid() {
		query.Set("mode", opts.Mode.String())
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}

	var scores []Score
	if err := c.RequestJSON(ctx, http.MethodGet, fmt.Sprintf("/users/%d/scores/recent", userID), query, nil, &scores); err != nil {
		return nil, fmt.Errorf("get recent scores for %d: %w", userID, err)
	}
	return scores, nil
}

// GetUserBest collects up to count best scores, paging BestPageLimit at a
// time. It stops early on a short or empty page. If a later page fails the
// scores gathered so far are returned without error.
func (c *Client) GetUserBest(ctx context.Context, userID int, mode Mode, count int) ([]Score, error) {
	if count > c.bestCap {
		count = c.bestCap
	}
	if count <= 0 {
		return nil, nil
	}

	endpoint := fmt.Sprintf("/users/%d/scores/best", userID)
	scores := make([]Score, 0, count)
	offset := 0
	for len(scores) < count {
		limit := min(BestPageLimit, count-len(scores))
		query := url.Values{}
		query.Set("limit", strconv.Itoa(limit))
		query.Set("offset", strconv.Itoa(offset))
		if mode.Valid() {
			query.Set("mode", mode.String())
		}

		var page []Score
		if err := c.RequestJSON(ctx, http.MethodGet, endpoint, query, nil, &page); err != nil {
			if len(scores) > 0 {
				zap.S().Warnf("[Osu] Best scores for %d stopped at offset %d: %v", userID, offset, err)
				return scores, nil
			}
			return nil, fmt.Errorf("get best scores for %d: %w", userID, err)
		}
		if len(page) == 0 {
			break
		}
		scores = append(scores, page...)
		offset += len(page)
		if len(page) < limit {
			break
		}
	}
	return scores, nil
}

// GetUserBeatmapsets fetches one page of a user's sets of the given type.
// The endpoint has answered with both a bare list and an object wrapping
// it, so both are accepted.
func (c *Client) GetUserBeatmapsets(ctx context.Context, userID int, setType string, limit, offset int) ([]Beatmapset, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	endpoint := fmt.Sprintf("/users/%d/beatmapsets/%s", userID, url.PathEscape(setType))
	raw, err := c.Request(ctx, http.MethodGet, endpoint, query, nil)
	if err != nil {
		return nil, fmt.Errorf("get %s beatmapsets for %d: %w", setType, userID, err)
	}

	var sets []Beatmapset
	if err := json.Unmarshal(raw, &sets); err == nil {
		return sets, nil
	}
	var wrapped struct {
		Beatmapsets []Beatmapset `json:"beatmapsets"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil || wrapped.Beatmapsets == nil {
		return nil, fmt.Errorf("get %s beatmapsets for %d: %w", setType, userID, ErrMalformed)
	}
	return wrapped.Beatmapsets, nil
}

// GetAllUserBeatmapsets walks every page of each type, stopping a type at
// maxPerType sets, and returns the union keyed by set id in first-seen order.
func (c *Client) GetAllUserBeatmapsets(ctx context.Context, userID int, types []string, maxPerType int) ([]Beatmapset, error) {
	seen := make(map[int]bool)
	var all []Beatmapset
	for _, setType := range types {
		fetched := 0
		offset := 0
		for fetched < maxPerType {
			page, err := c.GetUserBeatmapsets(ctx, userID, setType, BeatmapsetPageLimit, offset)
			if err != nil {
				if ctx.Err() != nil {
					return nil, err
				}
				zap.S().Warnf("[Osu] Stopping %s listing for %d: %v", setType, userID, err)
				break
			}
			if len(page) == 0 {
				break
			}
			for _, set := range page {
				if set.ID == 0 {
					continue
				}
				fetched++
				if !seen[set.ID] {
					seen[set.ID] = true
					all = append(all, set)
				}
			}
			if len(page) < BeatmapsetPageLimit {
				break
			}
			offset += len(page)
		}
	}
	return all, nil
}

func (c *Client) GetBeatmapset(ctx context.Context, id int) (*Beatmapset, error) {
	var set Beatmapset
	if err := c.getCached(ctx, fmt.Sprintf("/beatmapsets/%d", id), nil, c.mapTTL, &set); err != nil {
		return nil, fmt.Errorf("get beatmapset %d: %w", id, err)
	}
	return &set, nil
}

func (c *Client) GetBeatmap(ctx context.Context, id int) (*Beatmap, error) {
	var bm Beatmap
	if err := c.getCached(ctx, fmt.Sprintf("/beatmaps/%d", id), nil, c.mapTTL, &bm); err != nil {
		return nil, fmt.Errorf("get beatmap %d: %w", id, err)
	}
	return &bm, nil
}

type attributesRequest struct {
	Mods      []string `json:"mods,omitempty"`
	RulesetID *int     `json:"ruleset_id,omitempty"`
}

// GetBeatmapAttributes returns difficulty attributes for the beatmap with
// the given mods ("HDHR" style). mode may be ModeDefault for the map's own.
func (c *Client) GetBeatmapAttributes(ctx context.Context, id int, mods string, mode Mode) (*DifficultyAttributes, error) {
	body := attributesRequest{Mods: SplitMods(mods)}
	if mode.Valid() {
		ruleset := int(mode)
		body.RulesetID = &ruleset
	}

	var resp struct {
		Attributes *DifficultyAttributes `json:"attributes"`
	}
	if err := c.RequestJSON(ctx, http.MethodPost, fmt.Sprintf("/beatmaps/%d/attributes", id), nil, body, &resp); err != nil {
		return nil, fmt.Errorf("get attributes for %d: %w", id, err)
	}
	if resp.Attributes == nil {
		return nil, fmt.Errorf("get attributes for %d: %w", id, ErrMalformed)
	}
	return resp.Attributes, nil
}

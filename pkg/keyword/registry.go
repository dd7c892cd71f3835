package keyword

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"osubot/pkg/store"
)

const (
	// ListLimit is the most entries one embed can show.
	ListLimit      = 25
	PreviewLength  = 100
	MaxKeywordLen  = 100
	MaxResponseLen = 2000
)

var (
	ErrInvalid = errors.New("keyword: keyword and response must not be empty")
	ErrTooLong = errors.New("keyword: keyword or response too long")
)

// ExistsError is returned by Add when the keyword is already set.
type ExistsError struct {
	Keyword  string
	Response string
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("keyword %q already exists", e.Keyword)
}

type Entry struct {
	Keyword  string
	Response string
}

// Registry holds per-guild keyword → response pairs. A guild's map is
// never changed once stored; Add and Delete replace it with a copy, so
// Match and List can read it without holding the store lock.
type Registry struct {
	store *store.JSONFile[map[string]string]
}

func NewRegistry(s *store.JSONFile[map[string]string]) *Registry {
	return &Registry{store: s}
}

// Add stores a new pair. Both parts are trimmed; an existing keyword is
// never overwritten.
func (r *Registry) Add(guildID, keyword, response string) error {
	keyword = strings.TrimSpace(keyword)
	response = strings.TrimSpace(response)
	if keyword == "" || response == "" {
		return ErrInvalid
	}
	if utf8.RuneCountInString(keyword) > MaxKeywordLen || utf8.RuneCountInString(response) > MaxResponseLen {
		return ErrTooLong
	}

	err := r.store.Update(guildID, func(cur map[string]string, _ bool) (map[string]string, bool, error) {
		if existing, ok := cur[keyword]; ok {
			return nil, false, &ExistsError{Keyword: keyword, Response: existing}
		}
		next := maps.Clone(cur)
		if next == nil {
			next = make(map[string]string)
		}
		next[keyword] = response
		return next, true, nil
	})
	if err != nil {
		return err
	}
	zap.S().Infof("[Keyword] Guild %s added %q", guildID, keyword)
	return nil
}

// Delete removes keyword and reports whether it existed.
func (r *Registry) Delete(guildID, keyword string) (bool, error) {
	keyword = strings.TrimSpace(keyword)
	removed := false
	err := r.store.Update(guildID, func(cur map[string]string, exists bool) (map[string]string, bool, error) {
		if _, ok := cur[keyword]; !ok {
			return cur, exists, nil
		}
		next := maps.Clone(cur)
		delete(next, keyword)
		removed = true
		return next, len(next) > 0, nil
	})
	if err != nil {
		return false, err
	}
	if removed {
		zap.S().Infof("[Keyword] Guild %s removed %q", guildID, keyword)
	}
	return removed, nil
}

// List returns the guild's pairs sorted by keyword.
func (r *Registry) List(guildID string) []Entry {
	cur, _ := r.store.Get(guildID)
	entries := make([]Entry, 0, len(cur))
	for k, v := range cur {
		entries = append(entries, Entry{Keyword: k, Response: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Keyword < entries[j].Keyword })
	return entries
}

// Match returns the response for a message whose trimmed content equals
// a keyword exactly.
func (r *Registry) Match(guildID, content string) (string, bool) {
	cur, ok := r.store.Get(guildID)
	if !ok {
		return "", false
	}
	resp, ok := cur[strings.TrimSpace(content)]
	return resp, ok
}

// Preview shortens a response for list display.
func Preview(response string) string {
	if utf8.RuneCountInString(response) <= PreviewLength {
		return response
	}
	runes := []rune(response)
	return string(runes[:PreviewLength-3]) + "..."
}

// IsAdmin reports whether a member may manage keywords or delete other
// people's bot messages: the guild owner or anyone with Administrator.
func IsAdmin(guildOwnerID, userID string, permissions int64) bool {
	if userID != "" && userID == guildOwnerID {
		return true
	}
	return permissions&discordgo.PermissionAdministrator != 0
}

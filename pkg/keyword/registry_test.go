package keyword

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osubot/pkg/store"
)

func newRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server_keywords.json")
	s, err := store.Open[map[string]string](path)
	require.NoError(t, err)
	return NewRegistry(s), path
}

func TestAddMatchDelete(t *testing.T) {
	r, path := newRegistry(t)

	require.NoError(t, r.Add("g1", "  hello ", " world "))

	resp, ok := r.Match("g1", "hello")
	assert.True(t, ok)
	assert.Equal(t, "world", resp)

	resp, ok = r.Match("g1", "  hello\n")
	assert.True(t, ok)
	assert.Equal(t, "world", resp)

	_, ok = r.Match("g1", "hello there")
	assert.False(t, ok)
	_, ok = r.Match("g2", "hello")
	assert.False(t, ok)

	s, err := store.Open[map[string]string](path)
	require.NoError(t, err)
	_, ok = NewRegistry(s).Match("g1", "hello")
	assert.True(t, ok, "keywords should survive a reload")

	removed, err := r.Delete("g1", "hello")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = r.Delete("g1", "hello")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestAdd_Duplicate(t *testing.T) {
	r, _ := newRegistry(t)
	require.NoError(t, r.Add("g1", "ping", "pong"))

	err := r.Add("g1", "ping", "other")
	var exists *ExistsError
	require.True(t, errors.As(err, &exists))
	assert.Equal(t, "pong", exists.Response)

	resp, _ := r.Match("g1", "ping")
	assert.Equal(t, "pong", resp)
}

func TestAdd_Validation(t *testing.T) {
	r, _ := newRegistry(t)
	assert.ErrorIs(t, r.Add("g1", "   ", "x"), ErrInvalid)
	assert.ErrorIs(t, r.Add("g1", "x", ""), ErrInvalid)
	assert.ErrorIs(t, r.Add("g1", strings.Repeat("k", MaxKeywordLen+1), "x"), ErrTooLong)
}

func TestList_Sorted(t *testing.T) {
	r, _ := newRegistry(t)
	require.NoError(t, r.Add("g1", "b", "2"))
	require.NoError(t, r.Add("g1", "a", "1"))

	assert.Equal(t, []Entry{{"a", "1"}, {"b", "2"}}, r.List("g1"))
	assert.Empty(t, r.List("g2"))
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short"))
	long := strings.Repeat("字", 150)
	got := Preview(long)
	assert.Equal(t, 100, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, IsAdmin("owner", "owner", 0))
	assert.True(t, IsAdmin("owner", "u", discordgo.PermissionAdministrator|discordgo.PermissionSendMessages))
	assert.False(t, IsAdmin("owner", "u", discordgo.PermissionManageMessages))
	assert.False(t, IsAdmin("", "", 0))
}

// Readers on the message goroutines race with admins adding keywords.
func TestConcurrentAddAndMatch(t *testing.T) {
	r, _ := newRegistry(t)
	require.NoError(t, r.Add("g1", "hello", "world"))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for n := 0; n < 200; n++ {
			assert.NoError(t, r.Add("g1", fmt.Sprintf("kw%d", n), "reply"))
			if n%3 == 0 {
				_, err := r.Delete("g1", fmt.Sprintf("kw%d", n))
				assert.NoError(t, err)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for n := 0; n < 2000; n++ {
			resp, ok := r.Match("g1", "hello")
			assert.True(t, ok)
			assert.Equal(t, "world", resp)
			assert.NotEmpty(t, r.List("g1"))
		}
	}()
	wg.Wait()

	assert.Len(t, r.List("g1"), 1+200-67)
}

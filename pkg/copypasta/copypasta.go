package copypasta

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// DefaultLanguage is the collection used when the preferred one is empty.
const DefaultLanguage = "EN"

var (
	ErrNone  = errors.New("copypasta: no copypastas available")
	ErrEmpty = errors.New("copypasta: picked an empty entry")
)

// Collection is language → key → text, loaded from copypastas.json.
type Collection struct {
	path string

	mu     sync.RWMutex
	byLang map[string]map[string]string
}

// Load reads path. Problems with the file are logged and leave the
// collection empty; Pick retries the load in that case.
func Load(path string) *Collection {
	c := &Collection{path: path}
	if err := c.Reload(); err != nil {
		zap.S().Errorf("[Copypasta] %v", err)
	}
	return c
}

func (c *Collection) Reload() error {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		c.set(nil)
		return fmt.Errorf("failed to read %s: %w", c.path, err)
	}
	var data map[string]map[string]string
	if err := json.Unmarshal(raw, &data); err != nil {
		c.set(nil)
		return fmt.Errorf("%s is not a language → key → text object: %w", c.path, err)
	}
	c.set(data)

	langs := make([]string, 0, len(data))
	for lang, pastas := range data {
		langs = append(langs, fmt.Sprintf("%s=%d", lang, len(pastas)))
	}
	sort.Strings(langs)
	zap.S().Infof("[Copypasta] Loaded %d languages from %s (%s)", len(data), c.path, strings.Join(langs, ", "))
	return nil
}

func (c *Collection) set(data map[string]map[string]string) {
	c.mu.Lock()
	c.byLang = data
	c.mu.Unlock()
}

func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byLang)
}

// Pick chooses a random entry in lang, falling back to DefaultLanguage
// when lang has none.
func (c *Collection) Pick(lang string) (string, error) {
	if c.Len() == 0 {
		if err := c.Reload(); err != nil {
			zap.S().Warnf("[Copypasta] Reload failed: %v", err)
		}
	}

	c.mu.RLock()
	pool := values(c.byLang[lang])
	if len(pool) == 0 && lang != DefaultLanguage {
		pool = values(c.byLang[DefaultLanguage])
	}
	c.mu.RUnlock()

	if len(pool) == 0 {
		return "", ErrNone
	}
	text := pool[rand.IntN(len(pool))]
	if strings.TrimSpace(text) == "" {
		return "", ErrEmpty
	}
	return text, nil
}

func values(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

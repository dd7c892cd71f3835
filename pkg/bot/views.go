package bot

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"osubot/pkg/osu"
)

// ViewTTL is how long paging buttons keep working after the last use.
const ViewTTL = 5 * time.Minute

type ViewKind int

const (
	ViewRecent ViewKind = iota
	ViewBest
	ViewPP
)

// View is the server-side state behind a message with paging components.
// Component custom IDs carry only the view ID.
type View struct {
	ID      string
	Kind    ViewKind
	OwnerID string
	Player  *osu.User
	Mode    osu.Mode

	// Score views.
	Scores []osu.Score
	Index  int

	// PP views.
	Set      *osu.Beatmapset
	Maps     []osu.Beatmap
	MapIndex int
	Mods     []string
	// Bound is the caller's bound osu! id, used for the v1 score lookup.
	Bound string

	// mu serialises component clicks on the same message.
	mu      sync.Mutex
	expires time.Time
}

type ViewStore struct {
	mu    sync.Mutex
	views map[string]*View
	ttl   time.Duration
	now   func() time.Time
}

func NewViewStore(ttl time.Duration) *ViewStore {
	return &ViewStore{
		views: make(map[string]*View),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Put assigns v a fresh ID and stores it.
func (s *ViewStore) Put(v *View) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	v.ID = uuid.NewString()
	v.expires = s.now().Add(s.ttl)
	s.views[v.ID] = v
	return v.ID
}

// Get returns a live view and extends its lifetime.
func (s *ViewStore) Get(id string) (*View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.After(v.expires) {
		delete(s.views, id)
		return nil, false
	}
	v.expires = now.Add(s.ttl)
	return v, true
}

func (s *ViewStore) Delete(id string) {
	s.mu.Lock()
	delete(s.views, id)
	s.mu.Unlock()
}

// Sweep drops expired views and reports how many were removed.
func (s *ViewStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for id, v := range s.views {
		if now.After(v.expires) {
			delete(s.views, id)
			n++
		}
	}
	return n
}

func (s *ViewStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

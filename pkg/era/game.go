package era

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"osubot/pkg/cache"
)

var (
	ErrNoSave        = errors.New("era: no save for this player")
	ErrSameLocation  = errors.New("era: already at that location")
	ErrNotConnected  = errors.New("era: location is not reachable from here")
	ErrUnknownAction = errors.New("era: unknown action")
	ErrNobodyHere    = errors.New("era: nobody to interact with")
	ErrUnknownPlace  = errors.New("era: unknown location")
)

// SaveMirror persists saves outside the process. The Redis cache
// satisfies it.
type SaveMirror interface {
	Key(parts ...string) string
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
	Delete(ctx context.Context, key string) error
}

// Game owns every player's save. Saves are kept in memory and, when a
// mirror is configured, written through to it.
type Game struct {
	mu        sync.Mutex
	players   map[string]*Player
	mirror    SaveMirror
	mirrorTTL time.Duration
	rng       *rand.Rand
	commands  *CommandManager
}

type Option func(*Game)

func WithMirror(m SaveMirror, ttl time.Duration) Option {
	return func(g *Game) {
		g.mirror = m
		g.mirrorTTL = ttl
	}
}

// WithRand fixes the random source, for tests.
func WithRand(r *rand.Rand) Option {
	return func(g *Game) { g.rng = r }
}

func NewGame(opts ...Option) *Game {
	g := &Game{players: make(map[string]*Player)}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	g.commands = NewCommandManager(g.rng)
	return g
}

func (g *Game) Commands() *CommandManager { return g.commands }

// Start creates a fresh save, replacing any existing one.
func (g *Game) Start(ctx context.Context, userID string) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := NewPlayer(userID)
	g.encounterLocked(p)
	g.players[userID] = p
	g.persistLocked(ctx, p)
	zap.S().Infof("[Era] New game for %s", userID)
	return p.clone()
}

// Continue returns the player's save and rolls a new encounter at the
// current location.
func (g *Game) Continue(ctx context.Context, userID string) (*Player, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.loadLocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	g.encounterLocked(p)
	g.persistLocked(ctx, p)
	return p.clone(), nil
}

// Status returns a copy of the save without changing it.
func (g *Game) Status(ctx context.Context, userID string) (*Player, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.loadLocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p.clone(), nil
}

func (g *Game) Reset(ctx context.Context, userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, existed := g.players[userID]
	delete(g.players, userID)
	if g.mirror != nil {
		if err := g.mirror.Delete(ctx, g.mirror.Key("era", userID)); err != nil {
			zap.S().Warnf("[Era] Failed to delete mirrored save for %s: %v", userID, err)
		}
	}
	return existed
}

// Move walks to a connected location, spending MoveMinutes.
func (g *Game) Move(ctx context.Context, userID string, to Location) (*Player, error) {
	if !to.Valid() {
		return nil, ErrUnknownPlace
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.loadLocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.Location == to {
		return nil, ErrSameLocation
	}
	if !Connected(p.Location, to) {
		return nil, fmt.Errorf("%w: %s → %s", ErrNotConnected, p.Location.Key(), to.Key())
	}

	p.Location = to
	p.Advance(MoveMinutes)
	g.encounterLocked(p)
	g.persistLocked(ctx, p)
	return p.clone(), nil
}

// Act performs an action on the character the player is currently with.
func (g *Game) Act(ctx context.Context, userID string, a Action) (Result, *Player, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.loadLocked(ctx, userID)
	if err != nil {
		return Result{}, nil, err
	}
	c, ok := CharacterByID(p.Target)
	if !ok {
		return Result{}, nil, ErrNobodyHere
	}

	res, err := g.commands.Execute(p, c, a)
	if err != nil {
		return Result{}, nil, err
	}
	g.persistLocked(ctx, p)
	return res, p.clone(), nil
}

func (g *Game) encounterLocked(p *Player) {
	here := CharactersAt(p.Location)
	if len(here) == 0 {
		p.Target = 0
		return
	}
	p.Target = here[g.rng.IntN(len(here))].ID
}

func (g *Game) loadLocked(ctx context.Context, userID string) (*Player, error) {
	if p, ok := g.players[userID]; ok {
		return p, nil
	}
	if g.mirror == nil {
		return nil, ErrNoSave
	}

	var p Player
	err := g.mirror.GetJSON(ctx, g.mirror.Key("era", userID), &p)
	if errors.Is(err, cache.ErrMiss) {
		return nil, ErrNoSave
	}
	if err != nil {
		return nil, fmt.Errorf("load save for %s: %w", userID, err)
	}
	if p.Affection == nil {
		p.Affection = make(map[int]int)
	}
	g.players[userID] = &p
	zap.S().Debugf("[Era] Restored save for %s from mirror", userID)
	return &p, nil
}

func (g *Game) persistLocked(ctx context.Context, p *Player) {
	if g.mirror == nil {
		return
	}
	if err := g.mirror.SetJSON(ctx, g.mirror.Key("era", p.UserID), p, g.mirrorTTL); err != nil {
		zap.S().Warnf("[Era] Failed to mirror save for %s: %v", p.UserID, err)
	}
}

package era

import (
	"fmt"
	"math/rand/v2"
)

type Action string

const (
	ActionTalk    Action = "talk"
	ActionTea     Action = "tea"
	ActionHeadpat Action = "headpat"
	ActionGift    Action = "gift"
	ActionHug     Action = "hug"
	ActionConfess Action = "confess"
)

// Actions in button order.
var Actions = []Action{ActionTalk, ActionTea, ActionHeadpat, ActionGift, ActionHug, ActionConfess}

const GiftCost = 100

// Result describes what an action did. Key names a catalog message that
// may reference {{.Name}} and {{.Affection}}.
type Result struct {
	Success        bool
	Key            string
	AffectionDelta int
	Affection      int
	Minutes        int
	BecameLover    bool
}

type handler func(p *Player, c Character, rel Relationship) Result

// CommandManager maps actions to their effects.
type CommandManager struct {
	rng      *rand.Rand
	handlers map[Action]handler
}

func NewCommandManager(rng *rand.Rand) *CommandManager {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	m := &CommandManager{rng: rng}
	m.handlers = map[Action]handler{
		ActionTalk:    m.talk,
		ActionTea:     m.tea,
		ActionHeadpat: m.headpat,
		ActionGift:    m.gift,
		ActionHug:     m.hug,
		ActionConfess: m.confess,
	}
	return m
}

// Available reports whether an action is offered at a relationship level.
func (m *CommandManager) Available(a Action, rel Relationship) bool {
	if _, ok := m.handlers[a]; !ok {
		return false
	}
	if a == ActionConfess {
		return rel >= Close
	}
	return true
}

// Execute applies a to p's current target: affection changes and time
// passes according to the returned Result.
func (m *CommandManager) Execute(p *Player, c Character, a Action) (Result, error) {
	h, ok := m.handlers[a]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownAction, a)
	}
	rel := RelationshipFor(p.AffectionFor(c.ID))
	if !m.Available(a, rel) {
		return Result{Key: "era.action.locked", Affection: p.AffectionFor(c.ID)}, nil
	}

	res := h(p, c, rel)
	if res.AffectionDelta != 0 {
		res.Affection = p.AddAffection(c.ID, res.AffectionDelta)
	} else {
		res.Affection = p.AffectionFor(c.ID)
	}
	p.Advance(res.Minutes)
	if res.BecameLover && !p.IsLover(c.ID) {
		p.Lovers = append(p.Lovers, c.ID)
	}
	return res, nil
}

func (m *CommandManager) between(lo, hi int) int {
	return lo + m.rng.IntN(hi-lo+1)
}

func (m *CommandManager) variant(prefix string, n int) string {
	return fmt.Sprintf("%s.%d", prefix, m.rng.IntN(n)+1)
}

func (m *CommandManager) talk(p *Player, c Character, rel Relationship) Result {
	return Result{Success: true, Key: m.variant("era.talk", 3), AffectionDelta: m.between(1, 5), Minutes: 10}
}

func (m *CommandManager) tea(p *Player, c Character, rel Relationship) Result {
	return Result{Success: true, Key: "era.tea", AffectionDelta: m.between(2, 6), Minutes: 10}
}

func (m *CommandManager) headpat(p *Player, c Character, rel Relationship) Result {
	return Result{Success: true, Key: m.variant("era.headpat", 3), AffectionDelta: m.between(3, 8), Minutes: 5}
}

func (m *CommandManager) gift(p *Player, c Character, rel Relationship) Result {
	if p.Money < GiftCost {
		return Result{Key: "era.gift.no_money"}
	}
	p.Money -= GiftCost
	return Result{Success: true, Key: "era.gift.ok", AffectionDelta: m.between(10, 25), Minutes: 5}
}

func (m *CommandManager) hug(p *Player, c Character, rel Relationship) Result {
	if rel < Friend {
		return Result{Key: "era.hug.refused", AffectionDelta: -3, Minutes: 5}
	}
	return Result{Success: true, Key: "era.hug.ok", AffectionDelta: m.between(5, 12), Minutes: 10}
}

func (m *CommandManager) confess(p *Player, c Character, rel Relationship) Result {
	switch aff := p.AffectionFor(c.ID); {
	case p.IsLover(c.ID):
		return Result{Success: true, Key: "era.confess.already", Minutes: 5}
	case aff >= 800:
		return Result{Success: true, Key: "era.confess.accepted", AffectionDelta: 100, Minutes: 30, BecameLover: true}
	case aff >= 500:
		return Result{Key: "era.confess.later", AffectionDelta: 10, Minutes: 30}
	default:
		return Result{Key: "era.confess.sudden", AffectionDelta: -20, Minutes: 30}
	}
}

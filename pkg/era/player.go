package era

import "fmt"

const (
	StartDay      = 1
	StartMinute   = 6 * 60
	StartMoney    = 1000
	MinutesPerDay = 24 * 60
	MinAffection  = -100
	MaxAffection  = 1000
	MoveMinutes   = 30
)

// Player is one user's save.
type Player struct {
	UserID    string      `json:"user_id"`
	Location  Location    `json:"location"`
	Day       int         `json:"day"`
	Minute    int         `json:"minute"`
	Money     int         `json:"money"`
	Affection map[int]int `json:"affection"`
	// Target is the character met at the current location, 0 if nobody.
	Target int   `json:"target"`
	Lovers []int `json:"lovers,omitempty"`
}

func NewPlayer(userID string) *Player {
	return &Player{
		UserID:    userID,
		Location:  HakureiShrine,
		Day:       StartDay,
		Minute:    StartMinute,
		Money:     StartMoney,
		Affection: make(map[int]int),
	}
}

func (p *Player) AffectionFor(charID int) int {
	return p.Affection[charID]
}

// AddAffection applies delta clamped to [MinAffection, MaxAffection] and
// returns the new value.
func (p *Player) AddAffection(charID, delta int) int {
	if p.Affection == nil {
		p.Affection = make(map[int]int)
	}
	v := min(MaxAffection, max(MinAffection, p.Affection[charID]+delta))
	p.Affection[charID] = v
	return v
}

// Advance moves the clock forward, rolling over into following days.
func (p *Player) Advance(minutes int) {
	if minutes <= 0 {
		return
	}
	p.Minute += minutes
	for p.Minute >= MinutesPerDay {
		p.Minute -= MinutesPerDay
		p.Day++
	}
}

// Clock formats the time of day as HH:MM.
func (p *Player) Clock() string {
	return fmt.Sprintf("%02d:%02d", p.Minute/60, p.Minute%60)
}

type Period string

const (
	Morning   Period = "morning"
	Afternoon Period = "afternoon"
	Evening   Period = "evening"
	Night     Period = "night"
)

func (p *Player) Period() Period {
	switch h := p.Minute / 60; {
	case h >= 6 && h < 12:
		return Morning
	case h >= 12 && h < 18:
		return Afternoon
	case h >= 18 && h < 21:
		return Evening
	default:
		return Night
	}
}

func (p *Player) IsLover(charID int) bool {
	for _, id := range p.Lovers {
		if id == charID {
			return true
		}
	}
	return false
}

func (p *Player) clone() *Player {
	cp := *p
	cp.Affection = make(map[int]int, len(p.Affection))
	for k, v := range p.Affection {
		cp.Affection[k] = v
	}
	cp.Lovers = append([]int(nil), p.Lovers...)
	return &cp
}

// Relationship is derived from affection.
type Relationship int

const (
	Stranger Relationship = iota
	Acquaintance
	Friend
	GoodFriend
	Close
	Lover
)

var relationshipKeys = [...]string{"stranger", "acquaintance", "friend", "good_friend", "close", "lover"}
var relationshipEmoji = [...]string{"💔", "🧡", "❤️", "💖", "💗", "💕"}

func RelationshipFor(affection int) Relationship {
	switch {
	case affection >= 900:
		return Lover
	case affection >= 700:
		return Close
	case affection >= 500:
		return GoodFriend
	case affection >= 300:
		return Friend
	case affection >= 100:
		return Acquaintance
	default:
		return Stranger
	}
}

func (r Relationship) Key() string   { return relationshipKeys[r] }
func (r Relationship) Emoji() string { return relationshipEmoji[r] }

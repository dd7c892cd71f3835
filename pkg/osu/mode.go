package osu

import (
	"strconv"
	"strings"
)

// Mode is a ruleset. Its integer value is the API ruleset_id.
type Mode int

const (
	// ModeDefault asks the API for the player's own default ruleset.
	ModeDefault Mode = -1
	ModeOsu     Mode = 0
	ModeTaiko   Mode = 1
	ModeFruits  Mode = 2
	ModeMania   Mode = 3
)

var modeNames = [...]string{"osu", "taiko", "fruits", "mania"}
var modeDisplay = [...]string{"osu!", "Taiko", "Catch", "Mania"}

func (m Mode) Valid() bool { return m >= ModeOsu && m <= ModeMania }

// String is the API short name ("osu", "taiko", "fruits", "mania").
func (m Mode) String() string {
	if !m.Valid() {
		return ""
	}
	return modeNames[m]
}

func (m Mode) DisplayName() string {
	if !m.Valid() {
		return "osu!"
	}
	return modeDisplay[m]
}

// ParseMode accepts API names, common aliases and ruleset ids.
func ParseMode(s string) (Mode, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "osu", "std", "standard", "osu!":
		return ModeOsu, true
	case "taiko":
		return ModeTaiko, true
	case "fruits", "catch", "ctb", "fruit":
		return ModeFruits, true
	case "mania":
		return ModeMania, true
	}
	if n, err := strconv.Atoi(s); err == nil && Mode(n).Valid() {
		return Mode(n), true
	}
	return ModeDefault, false
}

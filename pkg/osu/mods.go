package osu

import (
	"strings"
	"unicode"
)

// Legacy (API v1) mod bits.
const (
	ModNoFail      = 1 << 0
	ModEasy        = 1 << 1
	ModTouchDevice = 1 << 2
	ModHidden      = 1 << 3
	ModHardRock    = 1 << 4
	ModSuddenDeath = 1 << 5
	ModDoubleTime  = 1 << 6
	ModRelax       = 1 << 7
	ModHalfTime    = 1 << 8
	ModNightcore   = 1 << 9
	ModFlashlight  = 1 << 10
	ModAutoplay    = 1 << 11
	ModSpunOut     = 1 << 12
	ModAutopilot   = 1 << 13
	ModPerfect     = 1 << 14
)

var modBits = []struct {
	bit     int
	acronym string
}{
	{ModNoFail, "NF"},
	{ModEasy, "EZ"},
	{ModTouchDevice, "TD"},
	{ModHidden, "HD"},
	{ModHardRock, "HR"},
	{ModSuddenDeath, "SD"},
	{ModDoubleTime, "DT"},
	{ModRelax, "RX"},
	{ModHalfTime, "HT"},
	{ModNightcore, "NC"},
	{ModFlashlight, "FL"},
	{ModAutoplay, "AU"},
	{ModSpunOut, "SO"},
	{ModAutopilot, "AP"},
	{ModPerfect, "PF"},
}

// DecodeMods renders a legacy bitmask as concatenated acronyms.
// NC implies DT and PF implies SD, so the implied mod is not repeated.
func DecodeMods(mask int) string {
	if mask == 0 {
		return "None"
	}
	var b strings.Builder
	for _, m := range modBits {
		if mask&m.bit == 0 {
			continue
		}
		if m.bit == ModDoubleTime && mask&ModNightcore != 0 {
			continue
		}
		if m.bit == ModSuddenDeath && mask&ModPerfect != 0 {
			continue
		}
		b.WriteString(m.acronym)
	}
	return b.String()
}

// JoinMods renders API v2 acronyms; an empty list is "None".
func JoinMods(mods []string) string {
	if len(mods) == 0 {
		return "None"
	}
	return strings.Join(mods, "")
}

// SplitMods turns "hdhr" or "+HD,DT" into ["HD", "HR"] / ["HD", "DT"].
// A trailing odd letter is dropped.
func SplitMods(s string) []string {
	var letters []rune
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			letters = append(letters, unicode.ToUpper(r))
		}
	}
	mods := make([]string, 0, len(letters)/2)
	for i := 0; i+1 < len(letters); i += 2 {
		mods = append(mods, string(letters[i:i+2]))
	}
	return mods
}

// ModsToBitmask is the inverse of DecodeMods for known acronyms.
// NC and PF also set the bits they imply.
func ModsToBitmask(mods []string) int {
	mask := 0
	for _, mod := range mods {
		for _, m := range modBits {
			if strings.EqualFold(mod, m.acronym) {
				mask |= m.bit
			}
		}
	}
	if mask&ModNightcore != 0 {
		mask |= ModDoubleTime
	}
	if mask&ModPerfect != 0 {
		mask |= ModSuddenDeath
	}
	return mask
}

func HasMod(mods []string, acronym string) bool {
	for _, m := range mods {
		if strings.EqualFold(m, acronym) {
			return true
		}
	}
	return false
}

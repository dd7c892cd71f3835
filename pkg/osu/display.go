package osu

import "strings"

var rankColors = map[string]int{
	"XH": 0xAAAAFF,
	"X":  0xFFD700,
	"SH": 0xC0C0C0,
	"S":  0xFFE4B5,
	"A":  0x7FFF00,
	"B":  0xFFC0CB,
	"C":  0xFF0000,
	"D":  0x808080,
	"F":  0x000000,
}

// RankColor is the embed colour for a score grade; unknown grades are grey.
func RankColor(rank string) int {
	if c, ok := rankColors[strings.ToUpper(rank)]; ok {
		return c
	}
	return 0x808080
}

// CountryFlag turns "TW" into the regional-indicator pair for its flag.
func CountryFlag(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 || code[0] < 'A' || code[0] > 'Z' || code[1] < 'A' || code[1] > 'Z' {
		return "🌍"
	}
	const regionalA = 0x1F1E6
	return string([]rune{regionalA + rune(code[0]-'A'), regionalA + rune(code[1]-'A')})
}

// Beatmap statuses after normalization.
const (
	StatusGraveyard = "graveyard"
	StatusWIP       = "wip"
	StatusPending   = "pending"
	StatusRanked    = "ranked"
	StatusApproved  = "approved"
	StatusQualified = "qualified"
	StatusLoved     = "loved"
	StatusUnknown   = "unknown"
)

var statusByInt = map[int]string{
	-2: StatusGraveyard,
	-1: StatusWIP,
	0:  StatusPending,
	1:  StatusRanked,
	2:  StatusApproved,
	3:  StatusQualified,
	4:  StatusLoved,
}

// NormalizeStatus accepts the API's integer or string form.
func NormalizeStatus(v any) string {
	switch s := v.(type) {
	case int:
		if name, ok := statusByInt[s]; ok {
			return name
		}
	case float64:
		return NormalizeStatus(int(s))
	case string:
		n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
		n = strings.ReplaceAll(n, " ", "-")
		switch n {
		case "work-in-progress":
			return StatusWIP
		case StatusGraveyard, StatusWIP, StatusPending, StatusRanked, StatusApproved, StatusQualified, StatusLoved:
			return n
		}
	}
	return StatusUnknown
}

// Leaderboarded reports whether a status counts as ranked or loved for
// mapper statistics.
func Leaderboarded(status string) bool {
	switch NormalizeStatus(status) {
	case StatusRanked, StatusApproved, StatusQualified, StatusLoved:
		return true
	}
	return false
}

package bot

import (
	"strings"

	"osubot/pkg/osu"
)

var rankEmojis = map[string]string{
	"XH":  "🥈",
	"SSH": "🥈",
	"X":   "🥇",
	"SS":  "🥇",
	"SH":  "⚪",
	"S":   "🟡",
	"A":   "🟢",
	"B":   "🔵",
	"C":   "🟣",
	"D":   "🔴",
	"F":   "❌",
}

// rankEmoji is case-insensitive; unknown grades get a question mark.
func rankEmoji(rank string) string {
	if e, ok := rankEmojis[strings.ToUpper(rank)]; ok {
		return e
	}
	return "❔"
}

// rankLabel turns the API's XH/X into the SSH/SS players know.
func rankLabel(rank string) string {
	switch strings.ToUpper(rank) {
	case "XH":
		return "SSH"
	case "X":
		return "SS"
	}
	return strings.ToUpper(rank)
}

var statusEmojis = map[string]string{
	osu.StatusRanked:    "✅",
	osu.StatusApproved:  "🔥",
	osu.StatusQualified: "☑️",
	osu.StatusLoved:     "💖",
	osu.StatusPending:   "⏳",
	osu.StatusWIP:       "🛠️",
	osu.StatusGraveyard: "🪦",
}

func statusEmoji(status string) string {
	if e, ok := statusEmojis[osu.NormalizeStatus(status)]; ok {
		return e
	}
	return "❔"
}

var modeEmojis = map[osu.Mode]string{
	osu.ModeOsu:    "⭕",
	osu.ModeTaiko:  "🥁",
	osu.ModeFruits: "🍎",
	osu.ModeMania:  "🎹",
}

func modeEmoji(m osu.Mode) string {
	if e, ok := modeEmojis[m]; ok {
		return e
	}
	return "🎮"
}

package beatmap

import (
	"errors"
	"regexp"
	"sort"
	"strconv"

	"osubot/pkg/osu"
)

var ErrInvalidURL = errors.New("beatmap: unrecognised beatmap url")

var (
	setDiffPattern  = regexp.MustCompile(`beatmapsets/(\d+)(?:#(osu|taiko|fruits|mania)/(\d+))?`)
	beatmapPattern  = regexp.MustCompile(`osu\.ppy\.sh/(?:b|beatmaps)/(\d+)`)
	setShortPattern = regexp.MustCompile(`osu\.ppy\.sh/s/(\d+)`)
)

// Ref identifies what a URL points at. SetID or BeatmapID may be zero
// when the URL does not carry it.
type Ref struct {
	SetID     int
	BeatmapID int
	Mode      osu.Mode
}

// ParseURL extracts set and difficulty ids from the URL forms the site
// has used over time.
func ParseURL(s string) (Ref, error) {
	if m := setDiffPattern.FindStringSubmatch(s); m != nil {
		ref := Ref{SetID: atoi(m[1]), Mode: osu.ModeDefault}
		if m[3] != "" {
			ref.BeatmapID = atoi(m[3])
			ref.Mode, _ = osu.ParseMode(m[2])
		}
		return ref, nil
	}
	if m := beatmapPattern.FindStringSubmatch(s); m != nil {
		return Ref{BeatmapID: atoi(m[1]), Mode: osu.ModeDefault}, nil
	}
	if m := setShortPattern.FindStringSubmatch(s); m != nil {
		return Ref{SetID: atoi(m[1]), Mode: osu.ModeDefault}, nil
	}
	return Ref{}, ErrInvalidURL
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

var modePriority = map[string]int{"osu": 0, "taiko": 1, "fruits": 2, "mania": 3}

// SortDifficulties orders a set's difficulties by ruleset, then by star
// rating ascending.
func SortDifficulties(maps []osu.Beatmap) {
	sort.SliceStable(maps, func(i, j int) bool {
		pi, pj := priority(maps[i].Mode), priority(maps[j].Mode)
		if pi != pj {
			return pi < pj
		}
		return maps[i].DifficultyRating < maps[j].DifficultyRating
	})
}

func priority(mode string) int {
	if p, ok := modePriority[mode]; ok {
		return p
	}
	return len(modePriority)
}

// IndexOf returns the position of beatmapID in maps, or 0 when absent.
func IndexOf(maps []osu.Beatmap, beatmapID int) int {
	for i, bm := range maps {
		if bm.ID == beatmapID {
			return i
		}
	}
	return 0
}

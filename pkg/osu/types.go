package osu

import (
	"encoding/json"
	"time"
)

type User struct {
	ID                    int             `json:"id"`
	Username              string          `json:"username"`
	AvatarURL             string          `json:"avatar_url"`
	CountryCode           string          `json:"country_code"`
	Playmode              string          `json:"playmode"`
	IsSupporter           bool            `json:"is_supporter"`
	JoinDate              *time.Time      `json:"join_date"`
	FollowerCount         *int            `json:"follower_count"`
	PreviousUsernames     []string        `json:"previous_usernames"`
	Playstyle             []string        `json:"playstyle"`
	Twitter               string          `json:"twitter"`
	Discord               string          `json:"discord"`
	Kudosu                *Kudosu         `json:"kudosu"`
	GuestBeatmapsetCount  *int            `json:"guest_beatmapset_count"`
	RankedBeatmapsetCount *int            `json:"ranked_beatmapset_count"`
	LovedBeatmapsetCount  *int            `json:"loved_beatmapset_count"`
	Statistics            *UserStatistics `json:"statistics"`
	RankHistory           *RankHistory    `json:"rank_history"`
	Achievements          []Achievement   `json:"user_achievements"`
	Page                  *UserPage       `json:"page"`
}

type Kudosu struct {
	Total     int `json:"total"`
	Available int `json:"available"`
}

type UserStatistics struct {
	Level struct {
		Current  int     `json:"current"`
		Progress float64 `json:"progress"`
	} `json:"level"`
	GlobalRank             *int    `json:"global_rank"`
	CountryRank            *int    `json:"country_rank"`
	PP                     float64 `json:"pp"`
	HitAccuracy            float64 `json:"hit_accuracy"`
	PlayCount              int64   `json:"play_count"`
	PlayTime               int64   `json:"play_time"`
	RankedScore            int64   `json:"ranked_score"`
	TotalScore             int64   `json:"total_score"`
	TotalHits              int64   `json:"total_hits"`
	MaximumCombo           int     `json:"maximum_combo"`
	ReplaysWatchedByOthers int64   `json:"replays_watched_by_others"`
	GradeCounts            struct {
		SSH int `json:"ssh"`
		SS  int `json:"ss"`
		SH  int `json:"sh"`
		S   int `json:"s"`
		A   int `json:"a"`
	} `json:"grade_counts"`
}

type RankHistory struct {
	Mode string `json:"mode"`
	Data []int  `json:"data"`
}

type Achievement struct {
	AchievementID int       `json:"achievement_id"`
	AchievedAt    time.Time `json:"achieved_at"`
}

type UserPage struct {
	HTML string `json:"html"`
	Raw  string `json:"raw"`
}

type Score struct {
	ID               int64           `json:"id"`
	UserID           int             `json:"user_id"`
	Score            int64           `json:"score"`
	TotalScore       int64           `json:"total_score"`
	LegacyTotalScore int64           `json:"legacy_total_score"`
	Accuracy         float64         `json:"accuracy"`
	MaxCombo         int             `json:"max_combo"`
	RawMods          json.RawMessage `json:"mods"`
	Rank             string          `json:"rank"`
	PP               *float64        `json:"pp"`
	Perfect          bool            `json:"perfect"`
	Passed           bool            `json:"passed"`
	CreatedAt        *time.Time      `json:"created_at"`
	EndedAt          *time.Time      `json:"ended_at"`
	ModeInt          int             `json:"mode_int"`
	Statistics       ScoreStatistics `json:"statistics"`
	Beatmap          *Beatmap        `json:"beatmap"`
	Beatmapset       *Beatmapset     `json:"beatmapset"`
	Weight           *ScoreWeight    `json:"weight"`
}

type ScoreStatistics struct {
	Count300  int `json:"count_300"`
	Count100  int `json:"count_100"`
	Count50   int `json:"count_50"`
	CountGeki int `json:"count_geki"`
	CountKatu int `json:"count_katu"`
	CountMiss int `json:"count_miss"`
}

type ScoreWeight struct {
	Percentage float64 `json:"percentage"`
	PP         float64 `json:"pp"`
}

// Mods returns the score's mod acronyms. The API sends either plain
// acronyms or objects with an "acronym" field depending on the format.
func (s *Score) Mods() []string {
	if len(s.RawMods) == 0 {
		return nil
	}
	var plain []string
	if err := json.Unmarshal(s.RawMods, &plain); err == nil {
		return plain
	}
	var objects []struct {
		Acronym string `json:"acronym"`
	}
	if err := json.Unmarshal(s.RawMods, &objects); err != nil {
		return nil
	}
	mods := make([]string, 0, len(objects))
	for _, o := range objects {
		if o.Acronym != "" {
			mods = append(mods, o.Acronym)
		}
	}
	return mods
}

// DisplayScore is the legacy score value, falling back to the
// standardised total when the legacy one is absent.
func (s *Score) DisplayScore() int64 {
	if s.Score > 0 {
		return s.Score
	}
	if s.LegacyTotalScore > 0 {
		return s.LegacyTotalScore
	}
	return s.TotalScore
}

func (s *Score) PlayedAt() *time.Time {
	if s.CreatedAt != nil {
		return s.CreatedAt
	}
	return s.EndedAt
}

type Beatmap struct {
	ID               int         `json:"id"`
	BeatmapsetID     int         `json:"beatmapset_id"`
	Version          string      `json:"version"`
	Mode             string      `json:"mode"`
	ModeInt          int         `json:"mode_int"`
	Status           string      `json:"status"`
	DifficultyRating float64     `json:"difficulty_rating"`
	CS               float64     `json:"cs"`
	AR               float64     `json:"ar"`
	Drain            float64     `json:"drain"`
	Accuracy         float64     `json:"accuracy"`
	BPM              float64     `json:"bpm"`
	TotalLength      int         `json:"total_length"`
	HitLength        int         `json:"hit_length"`
	MaxCombo         *int        `json:"max_combo"`
	CountCircles     int         `json:"count_circles"`
	CountSliders     int         `json:"count_sliders"`
	CountSpinners    int         `json:"count_spinners"`
	URL              string      `json:"url"`
	Beatmapset       *Beatmapset `json:"beatmapset"`
}

type Beatmapset struct {
	ID             int        `json:"id"`
	Title          string     `json:"title"`
	Artist         string     `json:"artist"`
	Creator        string     `json:"creator"`
	UserID         int        `json:"user_id"`
	Status         string     `json:"status"`
	FavouriteCount int        `json:"favourite_count"`
	PlayCount      int64      `json:"play_count"`
	BPM            float64    `json:"bpm"`
	SubmittedDate  *time.Time `json:"submitted_date"`
	LastUpdated    *time.Time `json:"last_updated"`
	RankedDate     *time.Time `json:"ranked_date"`
	Covers         struct {
		Cover string `json:"cover"`
		Card  string `json:"card"`
		List  string `json:"list"`
	} `json:"covers"`
	Beatmaps []Beatmap `json:"beatmaps"`
}

// SubmittedOrUpdated is the best available "first seen" date.
func (b *Beatmapset) SubmittedOrUpdated() *time.Time {
	if b.SubmittedDate != nil {
		return b.SubmittedDate
	}
	return b.LastUpdated
}

type DifficultyAttributes struct {
	StarRating           float64  `json:"star_rating"`
	MaxCombo             int      `json:"max_combo"`
	PP                   *float64 `json:"pp"`
	AimDifficulty        float64  `json:"aim_difficulty"`
	SpeedDifficulty      float64  `json:"speed_difficulty"`
	SpeedNoteCount       float64  `json:"speed_note_count"`
	FlashlightDifficulty float64  `json:"flashlight_difficulty"`
	SliderFactor         float64  `json:"slider_factor"`
	ApproachRate         *float64 `json:"approach_rate"`
	OverallDifficulty    *float64 `json:"overall_difficulty"`
	CircleSize           *float64 `json:"circle_size"`
	HPDrain              *float64 `json:"hp_drain"`
	GreatHitWindow       *float64 `json:"great_hit_window"`
}

// LegacyScore is one row of API v1 get_scores. v1 encodes numbers as strings.
type LegacyScore struct {
	ScoreID     string `json:"score_id"`
	Score       string `json:"score"`
	Username    string `json:"username"`
	MaxCombo    string `json:"maxcombo"`
	Count300    string `json:"count300"`
	Count100    string `json:"count100"`
	Count50     string `json:"count50"`
	CountMiss   string `json:"countmiss"`
	EnabledMods string `json:"enabled_mods"`
	Rank        string `json:"rank"`
	PP          string `json:"pp"`
	Date        string `json:"date"`
}

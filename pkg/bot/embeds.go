package bot

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"osubot/pkg/locale"
	"osubot/pkg/osu"
	"osubot/pkg/profile"
)

const (
	profileColor = 0xff66aa
	osuUserURL   = "https://osu.ppy.sh/users/"
	chartFile    = "rank_history.png"
)

func field(name, value string, inline bool) *discordgo.MessageEmbedField {
	if strings.TrimSpace(value) == "" {
		value = "-"
	}
	return &discordgo.MessageEmbedField{Name: name, Value: value, Inline: inline}
}

// scoreTitle is "Artist - Title [Version] +MODS".
func scoreTitle(sc *osu.Score) string {
	var b strings.Builder
	if set := sc.Beatmapset; set != nil {
		b.WriteString(set.Artist + " - " + set.Title)
	}
	if bm := sc.Beatmap; bm != nil {
		fmt.Fprintf(&b, " [%s]", bm.Version)
	}
	if mods := sc.Mods(); len(mods) > 0 {
		b.WriteString(" +" + strings.Join(mods, ""))
	}
	return strings.TrimSpace(b.String())
}

func hitCounts(mode osu.Mode, st osu.ScoreStatistics) string {
	switch mode {
	case osu.ModeMania:
		return fmt.Sprintf("%d / %d / %d / %d / %d / %d", st.CountGeki, st.Count300, st.CountKatu, st.Count100, st.Count50, st.CountMiss)
	case osu.ModeTaiko:
		return fmt.Sprintf("%d / %d / %d", st.Count300, st.Count100, st.CountMiss)
	case osu.ModeFruits:
		return fmt.Sprintf("%d / %d / %d / %d / %d", st.Count300, st.Count100, st.Count50, st.CountKatu, st.CountMiss)
	default:
		return fmt.Sprintf("%d / %d / %d / %d", st.Count300, st.Count100, st.Count50, st.CountMiss)
	}
}

func (h *Handler) scoreEmbed(lang string, v *View) *discordgo.MessageEmbed {
	sc := &v.Scores[v.Index]
	mode := v.Mode
	if !mode.Valid() {
		mode = osu.Mode(sc.ModeInt)
	}
	na := h.t(lang, "value.na", nil)

	rank := sc.Rank
	if !sc.Passed && v.Kind == ViewRecent {
		rank = "F"
	}

	e := &discordgo.MessageEmbed{
		Title: scoreTitle(sc),
		Color: osu.RankColor(rank),
	}
	if v.Player != nil {
		e.Author = &discordgo.MessageEmbedAuthor{
			Name:    v.Player.Username,
			URL:     osuUserURL + strconv.Itoa(v.Player.ID),
			IconURL: v.Player.AvatarURL,
		}
	}
	if sc.Beatmap != nil {
		e.URL = sc.Beatmap.URL
	}
	if sc.Beatmapset != nil && sc.Beatmapset.Covers.List != "" {
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: sc.Beatmapset.Covers.List}
	}

	combo := strconv.Itoa(sc.MaxCombo) + "x"
	stars := na
	status := na
	if bm := sc.Beatmap; bm != nil {
		if bm.MaxCombo != nil {
			combo += " / " + strconv.Itoa(*bm.MaxCombo) + "x"
		}
		stars = "★ " + formatFloat(bm.DifficultyRating, 2)
		st := osu.NormalizeStatus(bm.Status)
		status = statusEmoji(st) + " " + h.t(lang, "status."+st, nil)
	}
	pp := na
	if sc.PP != nil {
		pp = formatFloat(*sc.PP, 2) + "pp"
	}
	played := na
	if at := sc.PlayedAt(); at != nil {
		played = discordTime(*at, "R")
	}

	e.Fields = []*discordgo.MessageEmbedField{
		field(h.t(lang, "score.rank", nil), rankEmoji(rank)+" "+rankLabel(rank), true),
		field(h.t(lang, "score.score", nil), formatInt(sc.DisplayScore()), true),
		field(h.t(lang, "score.accuracy", nil), formatFloat(osu.Accuracy(mode, sc.Statistics, sc.Accuracy), 2)+"%", true),
		field(h.t(lang, "score.combo", nil), combo, true),
		field(h.t(lang, "score.pp", nil), pp, true),
		field(h.t(lang, "score.stars", nil), stars, true),
		field(h.t(lang, "score.hits", nil), hitCounts(mode, sc.Statistics), true),
		field(h.t(lang, "score.status", nil), status, true),
		field(h.t(lang, "score.mode", nil), modeEmoji(mode)+" "+mode.DisplayName(), true),
		field(h.t(lang, "score.played", nil), played, false),
	}

	footerKey := "score.footer_recent"
	if v.Kind == ViewBest {
		footerKey = "score.footer_best"
	}
	e.Footer = &discordgo.MessageEmbedFooter{
		Text: h.t(lang, footerKey, locale.Args{"Position": v.Index + 1, "Total": len(v.Scores)}),
	}
	return e
}

func (h *Handler) profileEmbed(lang string, u *osu.User, mode osu.Mode, detail bool) (*discordgo.MessageEmbed, []*discordgo.File) {
	na := h.t(lang, "value.na", nil)

	e := &discordgo.MessageEmbed{
		Title: h.t(lang, "profile.title", locale.Args{
			"Flag": osu.CountryFlag(u.CountryCode),
			"Name": u.Username,
			"Mode": mode.DisplayName(),
		}),
		URL:       osuUserURL + strconv.Itoa(u.ID) + "/" + mode.String(),
		Color:     profileColor,
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: u.AvatarURL},
	}

	st := u.Statistics
	if st == nil {
		e.Description = h.t(lang, "profile.no_stats", nil)
	} else {
		global, country := na, na
		if st.GlobalRank != nil {
			global = "#" + formatInt(int64(*st.GlobalRank))
		}
		if st.CountryRank != nil {
			country = osu.CountryFlag(u.CountryCode) + " #" + formatInt(int64(*st.CountryRank))
		}
		grades := fmt.Sprintf("SSH %d · SS %d · SH %d · S %d · A %d",
			st.GradeCounts.SSH, st.GradeCounts.SS, st.GradeCounts.SH, st.GradeCounts.S, st.GradeCounts.A)

		e.Fields = []*discordgo.MessageEmbedField{
			field(h.t(lang, "profile.global_rank", nil), global, true),
			field(h.t(lang, "profile.country_rank", nil), country, true),
			field(h.t(lang, "profile.pp", nil), formatFloat(st.PP, 2), true),
			field(h.t(lang, "profile.accuracy", nil), formatFloat(st.HitAccuracy, 2)+"%", true),
			field(h.t(lang, "profile.level", nil), fmt.Sprintf("%d (%.0f%%)", st.Level.Current, st.Level.Progress), true),
			field(h.t(lang, "profile.play_count", nil), formatInt(st.PlayCount), true),
			field(h.t(lang, "profile.play_time", nil), formatPlaytime(st.PlayTime), true),
			field(h.t(lang, "profile.max_combo", nil), formatInt(int64(st.MaximumCombo))+"x", true),
			field(h.t(lang, "profile.ranked_score", nil), formatInt(st.RankedScore), true),
			field(h.t(lang, "profile.grades", nil), grades, false),
		}
	}

	if !detail {
		return e, nil
	}

	e.Fields = append(e.Fields,
		field(h.t(lang, "profile.mapping", nil), h.mappingTree(lang, u), true),
		field(h.t(lang, "profile.other", nil), h.otherBlock(lang, u), true),
		field(h.t(lang, "profile.links", nil), profileLinks(u), false),
	)

	if u.Page != nil {
		excerpt, err := profile.Excerpt(u.Page.HTML, profile.DefaultExcerptLength)
		if err != nil {
			zap.S().Warnf("[Profile] Could not read userpage of %s: %v", u.Username, err)
		} else if excerpt != "" {
			e.Fields = append(e.Fields, field(h.t(lang, "profile.userpage", nil), excerpt, false))
		}
	}

	var files []*discordgo.File
	if u.RankHistory != nil {
		png, err := profile.RankChart(u.RankHistory.Data, profile.ChartWidth, profile.ChartHeight)
		switch {
		case errors.Is(err, profile.ErrNoHistory):
		case err != nil:
			zap.S().Warnf("[Profile] Could not draw rank chart for %s: %v", u.Username, err)
		default:
			files = append(files, &discordgo.File{Name: chartFile, ContentType: "image/png", Reader: bytes.NewReader(png)})
			e.Image = &discordgo.MessageEmbedImage{URL: "attachment://" + chartFile}
		}
	}
	return e, files
}

func (h *Handler) mappingTree(lang string, u *osu.User) string {
	kudosu := 0
	if u.Kudosu != nil {
		kudosu = u.Kudosu.Total
	}
	rows := []string{
		"├ " + h.t(lang, "profile.ranked_sets", locale.Args{"Count": derefInt(u.RankedBeatmapsetCount)}),
		"├ " + h.t(lang, "profile.loved_sets", locale.Args{"Count": derefInt(u.LovedBeatmapsetCount)}),
		"├ " + h.t(lang, "profile.guest_sets", locale.Args{"Count": derefInt(u.GuestBeatmapsetCount)}),
		"└ " + h.t(lang, "profile.kudosu", locale.Args{"Count": kudosu}),
	}
	return strings.Join(rows, "\n")
}

func (h *Handler) otherBlock(lang string, u *osu.User) string {
	var rows []string
	if u.JoinDate != nil {
		rows = append(rows, h.t(lang, "profile.joined", locale.Args{"Date": discordTime(*u.JoinDate, "D")}))
	}
	rows = append(rows, h.t(lang, "profile.followers", locale.Args{"Count": derefInt(u.FollowerCount)}))
	if len(u.PreviousUsernames) > 0 {
		rows = append(rows, h.t(lang, "profile.previous_names", locale.Args{"Names": strings.Join(u.PreviousUsernames, ", ")}))
	}
	if len(u.Playstyle) > 0 {
		rows = append(rows, h.t(lang, "profile.playstyle", locale.Args{"Styles": strings.Join(u.Playstyle, ", ")}))
	}
	if u.IsSupporter {
		rows = append(rows, "💖 "+h.t(lang, "profile.supporter", nil))
	}
	return strings.Join(rows, "\n")
}

func profileLinks(u *osu.User) string {
	links := []string{fmt.Sprintf("[osu!](%s%d)", osuUserURL, u.ID)}
	if u.Twitter != "" {
		links = append(links, fmt.Sprintf("[Twitter](https://twitter.com/%s)", u.Twitter))
	}
	if u.Discord != "" {
		links = append(links, "Discord: "+u.Discord)
	}
	return strings.Join(links, " · ")
}

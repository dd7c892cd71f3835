package bot

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"

	"osubot/pkg/locale"
	"osubot/pkg/osu"
)

// MaxMapperSetsPerType bounds the mapper listing loop per status.
const MaxMapperSetsPerType = 1000

// MapperStats summarises a user's uploaded beatmapsets.
type MapperStats struct {
	Total         int
	Leaderboarded int
	Favourites    int
	ByStatus      map[string]int
	FavByStatus   map[string]int
	First         *time.Time
	Latest        *time.Time
	LatestSet     *osu.Beatmapset
}

func computeMapperStats(sets []osu.Beatmapset) MapperStats {
	st := MapperStats{
		Total:       len(sets),
		ByStatus:    make(map[string]int),
		FavByStatus: make(map[string]int),
	}
	for idx := range sets {
		set := &sets[idx]
		status := osu.NormalizeStatus(set.Status)
		st.ByStatus[status]++
		st.FavByStatus[status] += set.FavouriteCount
		st.Favourites += set.FavouriteCount
		if osu.Leaderboarded(status) {
			st.Leaderboarded++
		}

		at := set.SubmittedOrUpdated()
		if at == nil {
			continue
		}
		if st.First == nil || at.Before(*st.First) {
			st.First = at
		}
		if st.Latest == nil || at.After(*st.Latest) {
			st.Latest = at
			st.LatestSet = set
		}
	}
	return st
}

// SpanDays is the number of whole days between the first and latest
// submission.
func (m MapperStats) SpanDays() int {
	if m.First == nil || m.Latest == nil {
		return 0
	}
	return int(m.Latest.Sub(*m.First).Hours() / 24)
}

var mapperStatusOrder = []string{
	osu.StatusRanked, osu.StatusApproved, osu.StatusQualified, osu.StatusLoved,
	osu.StatusPending, osu.StatusWIP, osu.StatusGraveyard, osu.StatusUnknown,
}

// breakdownTable renders per-status counts as a monospace table.
func (h *Handler) breakdownTable(lang string, st MapperStats) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{
		h.t(lang, "mapper.table.status", nil),
		h.t(lang, "mapper.table.sets", nil),
		h.t(lang, "mapper.table.favourites", nil),
	})
	for _, status := range mapperStatusOrder {
		n := st.ByStatus[status]
		if n == 0 {
			continue
		}
		t.AppendRow(table.Row{h.t(lang, "status."+status, nil), n, st.FavByStatus[status]})
	}
	t.SetStyle(table.StyleLight)
	return "```\n" + t.Render() + "\n```"
}

func handleMapperCommand(h *Handler, s Session, i *discordgo.InteractionCreate) {
	lang := h.lang(i)
	opts := optionsOf(i.ApplicationCommandData().Options)

	ident, byName, errKey := h.resolveTarget(opts, userID(i))
	if errKey != "" {
		respond(s, i, h.t(lang, errKey, nil), true)
		return
	}
	if !deferReply(s, i, false) {
		return
	}

	ctx, cancel := h.commandContext()
	defer cancel()

	u, err := h.osu.GetUser(ctx, ident, osu.ModeDefault, byName)
	if err != nil {
		h.editText(s, i, h.userError(lang, ident, err))
		return
	}

	sets, err := h.osu.GetAllUserBeatmapsets(ctx, u.ID, osu.MapperSetTypes, MaxMapperSetsPerType)
	if err != nil {
		zap.S().Errorf("[Mapper] Listing sets of %s failed: %v", u.Username, err)
		h.editText(s, i, h.t(lang, "error.api", nil))
		return
	}
	if len(sets) == 0 {
		h.editText(s, i, h.t(lang, "mapper.none", locale.Args{"Name": u.Username}))
		return
	}

	h.editEmbed(s, i, h.mapperEmbed(lang, u, computeMapperStats(sets)), nil, nil)
}

func (h *Handler) mapperEmbed(lang string, u *osu.User, st MapperStats) *discordgo.MessageEmbed {
	na := h.t(lang, "value.na", nil)
	kudosu := 0
	if u.Kudosu != nil {
		kudosu = u.Kudosu.Total
	}
	first, latest, latestSet := na, na, na
	if st.First != nil {
		first = discordTime(*st.First, "D")
	}
	if st.Latest != nil {
		latest = discordTime(*st.Latest, "D")
	}
	if ls := st.LatestSet; ls != nil {
		latestSet = fmt.Sprintf("[%s - %s](https://osu.ppy.sh/beatmapsets/%d)", ls.Artist, ls.Title, ls.ID)
	}

	e := &discordgo.MessageEmbed{
		Title:       h.t(lang, "mapper.title", locale.Args{"Name": u.Username}),
		URL:         osuUserURL + strconv.Itoa(u.ID),
		Color:       profileColor,
		Thumbnail:   &discordgo.MessageEmbedThumbnail{URL: u.AvatarURL},
		Description: h.breakdownTable(lang, st),
		Fields: []*discordgo.MessageEmbedField{
			field(h.t(lang, "mapper.total_sets", nil), formatInt(int64(st.Total)), true),
			field(h.t(lang, "mapper.leaderboarded", nil), formatInt(int64(st.Leaderboarded)), true),
			field(h.t(lang, "mapper.favourites", nil), formatInt(int64(st.Favourites)), true),
			field(h.t(lang, "mapper.kudosu", nil), formatInt(int64(kudosu)), true),
			field(h.t(lang, "mapper.followers", nil), formatInt(int64(derefInt(u.FollowerCount))), true),
			field(h.t(lang, "mapper.guest", nil), formatInt(int64(derefInt(u.GuestBeatmapsetCount))), true),
			field(h.t(lang, "mapper.first", nil), first, true),
			field(h.t(lang, "mapper.latest", nil), latest, true),
			field(h.t(lang, "mapper.span", nil), h.t(lang, "mapper.span_days", locale.Args{"Days": st.SpanDays()}), true),
			field(h.t(lang, "mapper.latest_set", nil), latestSet, false),
		},
	}
	return e
}

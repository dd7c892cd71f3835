package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"osubot/pkg/beatmap"
	"osubot/pkg/locale"
	"osubot/pkg/osu"
)

const ppColor = 0x66ccff

// ppMods are the mods offered in the /pp select menu.
var ppMods = []string{"HD", "HR", "DT", "FL", "EZ", "HT", "NF"}

func handlePPCommand(h *Handler, s Session, i *discordgo.InteractionCreate) {
	lang := h.lang(i)
	opts := optionsOf(i.ApplicationCommandData().Options)

	raw, _ := opts.String("url")
	ref, err := beatmap.ParseURL(raw)
	if err != nil {
		respond(s, i, h.t(lang, "error.invalid_url", nil), true)
		return
	}
	if !deferReply(s, i, false) {
		return
	}

	ctx, cancel := h.commandContext()
	defer cancel()

	setID := ref.SetID
	if setID == 0 {
		bm, err := h.osu.GetBeatmap(ctx, ref.BeatmapID)
		if err != nil {
			h.editText(s, i, h.beatmapError(lang, err))
			return
		}
		setID = bm.BeatmapsetID
	}
	set, err := h.osu.GetBeatmapset(ctx, setID)
	if err != nil {
		h.editText(s, i, h.beatmapError(lang, err))
		return
	}
	if len(set.Beatmaps) == 0 {
		h.editText(s, i, h.t(lang, "error.beatmap_not_found", nil))
		return
	}

	maps := append([]osu.Beatmap(nil), set.Beatmaps...)
	beatmap.SortDifficulties(maps)

	v := &View{
		Kind:     ViewPP,
		OwnerID:  userID(i),
		Set:      set,
		Maps:     maps,
		MapIndex: beatmap.IndexOf(maps, ref.BeatmapID),
		Mode:     ref.Mode,
	}
	if h.bindings != nil {
		v.Bound, _ = h.bindings.Get(v.OwnerID)
	}
	h.views.Put(v)

	h.editEmbed(s, i, h.ppEmbed(ctx, lang, v), h.ppComponents(lang, v), nil)
}

func (h *Handler) beatmapError(lang string, err error) string {
	switch {
	case errors.Is(err, osu.ErrNotFound):
		return h.t(lang, "error.beatmap_not_found", nil)
	case errors.Is(err, osu.ErrAuth):
		zap.S().Errorf("[PP] Not authorised: %v", err)
		return h.t(lang, "error.auth", nil)
	}
	zap.S().Errorf("[PP] Beatmap lookup failed: %v", err)
	return h.t(lang, "error.api", nil)
}

func beatmapMode(bm *osu.Beatmap) osu.Mode {
	if m, ok := osu.ParseMode(bm.Mode); ok {
		return m
	}
	if m := osu.Mode(bm.ModeInt); m.Valid() {
		return m
	}
	return osu.ModeOsu
}

func (h *Handler) ppEmbed(ctx context.Context, lang string, v *View) *discordgo.MessageEmbed {
	bm := &v.Maps[v.MapIndex]
	set := v.Set
	mode := beatmapMode(bm)
	na := h.t(lang, "value.na", nil)

	e := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s - %s [%s]", set.Artist, set.Title, bm.Version),
		URL:         bm.URL,
		Color:       ppColor,
		Description: h.t(lang, "pp.mapper", locale.Args{"Creator": set.Creator}),
	}
	if set.Covers.List != "" {
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: set.Covers.List}
	}

	stars := bm.DifficultyRating
	combo := derefInt(bm.MaxCombo)
	pp := na
	estimated := false

	attrs, err := h.osu.GetBeatmapAttributes(ctx, bm.ID, strings.Join(v.Mods, ""), mode)
	if err != nil {
		zap.S().Warnf("[PP] Attributes for %d failed: %v", bm.ID, err)
	} else {
		stars = attrs.StarRating
		if attrs.MaxCombo > 0 {
			combo = attrs.MaxCombo
		}
		if attrs.PP != nil {
			pp = formatFloat(*attrs.PP, 2) + "pp"
		} else if est, ok := h.estimate(ctx, mode, attrs, bm.ID, v.Mods); ok {
			pp = formatFloat(est.PP, 2) + "pp" + h.t(lang, "pp.estimated_suffix", nil)
			estimated = true
			if combo == 0 {
				combo = est.MaxCombo
			}
		}
	}

	st := osu.NormalizeStatus(bm.Status)
	e.Fields = []*discordgo.MessageEmbedField{
		field(h.t(lang, "pp.status", nil), statusEmoji(st)+" "+h.t(lang, "status."+st, nil), true),
		field(h.t(lang, "pp.mode", nil), modeEmoji(mode)+" "+mode.DisplayName(), true),
		field(h.t(lang, "pp.mods", nil), osu.JoinMods(v.Mods), true),
		field(h.t(lang, "pp.stars", nil), "★ "+formatFloat(stars, 2), true),
		field(h.t(lang, "pp.pp", nil), pp, true),
		field(h.t(lang, "pp.max_combo", nil), strconv.Itoa(combo)+"x", true),
		field(h.t(lang, "pp.length", nil), formatLength(bm.TotalLength), true),
		field(h.t(lang, "pp.bpm", nil), formatFloat(bm.BPM, 0), true),
		field(h.t(lang, "pp.stats", nil), fmt.Sprintf("CS %s · AR %s · OD %s · HP %s",
			formatFloat(bm.CS, 1), formatFloat(bm.AR, 1), formatFloat(bm.Accuracy, 1), formatFloat(bm.Drain, 1)), false),
	}
	if best := h.boundScore(ctx, lang, v.Bound, bm.ID, mode); best != "" {
		e.Fields = append(e.Fields, field(h.t(lang, "pp.your_score", nil), best, false))
	}

	footer := h.t(lang, "pp.difficulty", locale.Args{"Index": v.MapIndex + 1, "Total": len(v.Maps)})
	if estimated {
		footer += " · " + h.t(lang, "pp.footer_estimate", nil)
	}
	e.Footer = &discordgo.MessageEmbedFooter{Text: footer}
	return e
}

// estimate computes PP locally from the .osu file when the API has none.
func (h *Handler) estimate(ctx context.Context, mode osu.Mode, attrs *osu.DifficultyAttributes, beatmapID int, mods []string) (beatmap.Estimate, bool) {
	if h.files == nil {
		return beatmap.Estimate{}, false
	}
	f, err := h.files.Fetch(ctx, beatmapID)
	if err != nil {
		zap.S().Warnf("[PP] Could not fetch .osu for %d: %v", beatmapID, err)
		return beatmap.Estimate{}, false
	}
	est, err := beatmap.EstimatePerformance(mode, attrs, f, mods)
	if err != nil {
		zap.S().Debugf("[PP] No local estimate for %d: %v", beatmapID, err)
		return beatmap.Estimate{}, false
	}
	return est, true
}

// boundScore describes the caller's top score on the map from API v1, or
// returns "" when there is none to show.
func (h *Handler) boundScore(ctx context.Context, lang, bound string, beatmapID int, mode osu.Mode) string {
	if bound == "" {
		return ""
	}
	sc, err := h.osu.GetScoreV1(ctx, beatmapID, bound, mode)
	if err != nil {
		if !errors.Is(err, osu.ErrLegacyDisabled) && !errors.Is(err, osu.ErrNotFound) {
			zap.S().Debugf("[PP] v1 score lookup for %s on %d failed: %v", bound, beatmapID, err)
		}
		return ""
	}
	value, err := sc.ScoreValue()
	if err != nil {
		return ""
	}
	mask, _ := strconv.Atoi(sc.EnabledMods)
	args := locale.Args{
		"Rank":  rankEmoji(sc.Rank) + " " + rankLabel(sc.Rank),
		"Score": formatInt(value),
		"Combo": sc.MaxCombo,
		"Mods":  osu.DecodeMods(mask),
		"PP":    sc.PP,
	}
	return h.t(lang, "pp.your_score_value", args)
}

func (h *Handler) ppComponents(lang string, v *View) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(ppMods))
	for _, mod := range ppMods {
		options = append(options, discordgo.SelectMenuOption{
			Label:   mod,
			Value:   mod,
			Default: osu.HasMod(v.Mods, mod),
		})
	}
	zero := 0

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    h.t(lang, "button.previous_difficulty", nil),
				Style:    discordgo.SecondaryButton,
				CustomID: "pp:" + v.ID + ":prev",
				Disabled: v.MapIndex == 0,
			},
			discordgo.Button{
				Label:    h.t(lang, "button.next_difficulty", nil),
				Style:    discordgo.SecondaryButton,
				CustomID: "pp:" + v.ID + ":next",
				Disabled: v.MapIndex >= len(v.Maps)-1,
			},
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    "pp:" + v.ID + ":mods",
				Placeholder: h.t(lang, "pp.mods_placeholder", nil),
				MinValues:   &zero,
				MaxValues:   len(ppMods),
				Options:     options,
			},
		}},
	}
}

func (h *Handler) handlePPComponent(s Session, i *discordgo.InteractionCreate, id, action string) {
	v, ok := h.ownedView(s, i, id)
	if !ok {
		return
	}
	lang := h.lang(i)

	v.mu.Lock()
	defer v.mu.Unlock()

	switch action {
	case "prev":
		if v.MapIndex > 0 {
			v.MapIndex--
		}
	case "next":
		if v.MapIndex < len(v.Maps)-1 {
			v.MapIndex++
		}
	case "mods":
		var mods []string
		for _, mod := range ppMods {
			for _, picked := range i.MessageComponentData().Values {
				if picked == mod {
					mods = append(mods, mod)
				}
			}
		}
		v.Mods = mods
	default:
		zap.S().Warnf("[Views] Unknown pp action %q", action)
		return
	}

	// Rendering calls the API, so acknowledge first and edit afterwards.
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredMessageUpdate})
	if err != nil {
		zap.S().Errorf("[PP] Error acknowledging component: %v", err)
		return
	}

	ctx, cancel := h.commandContext()
	defer cancel()

	embeds := []*discordgo.MessageEmbed{h.ppEmbed(ctx, lang, v)}
	components := h.ppComponents(lang, v)
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Embeds: &embeds, Components: &components}); err != nil {
		zap.S().Errorf("[PP] Error updating pp view: %v", err)
	}
}

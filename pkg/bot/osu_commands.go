package bot

import (
	"errors"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"osubot/pkg/locale"
	"osubot/pkg/osu"
)

const recentLimit = 50

// resolveTarget works out which osu! player a command is about: an
// explicit name or id, else the caller's binding. errKey is set when
// neither is usable.
func (h *Handler) resolveTarget(opts commandOptions, uid string) (ident string, byName bool, errKey string) {
	name, hasName := opts.String("osu_user")
	id, hasID := opts.Int("osu_id")
	name = strings.TrimSpace(name)

	switch {
	case hasName && name != "" && hasID:
		return "", false, "error.one_identifier"
	case hasID:
		return strconv.FormatInt(id, 10), false, ""
	case hasName && name != "":
		return name, true, ""
	}

	if h.bindings != nil {
		if bound, ok := h.bindings.Get(uid); ok && bound != "" {
			return bound, false, ""
		}
	}
	return "", false, "error.not_bound"
}

func modeOption(opts commandOptions) osu.Mode {
	if v, ok := opts.Int("mode"); ok && osu.Mode(v).Valid() {
		return osu.Mode(v)
	}
	return osu.ModeDefault
}

// playerMode is the mode a command runs in once the player is known.
func (h *Handler) playerMode(requested osu.Mode, u *osu.User) osu.Mode {
	if requested.Valid() {
		return requested
	}
	if m, ok := osu.ParseMode(u.Playmode); ok {
		return m
	}
	return h.mode
}

// userError turns a lookup failure into a user-facing message.
func (h *Handler) userError(lang, ident string, err error) string {
	switch {
	case errors.Is(err, osu.ErrNotFound):
		return h.t(lang, "error.user_not_found", locale.Args{"User": ident})
	case errors.Is(err, osu.ErrAuth):
		zap.S().Errorf("[Osu] Not authorised for %s: %v", ident, err)
		return h.t(lang, "error.auth", nil)
	}
	zap.S().Errorf("[Osu] Lookup for %s failed: %v", ident, err)
	return h.t(lang, "error.api", nil)
}

func handleProfileCommand(h *Handler, s Session, i *discordgo.InteractionCreate) {
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

	requested := modeOption(opts)
	u, err := h.osu.GetUser(ctx, ident, requested, byName)
	if err != nil {
		h.editText(s, i, h.userError(lang, ident, err))
		return
	}

	embed, files := h.profileEmbed(lang, u, h.playerMode(requested, u), opts.Bool("detail"))
	h.editEmbed(s, i, embed, nil, files)
}

func handleRecentCommand(h *Handler, s Session, i *discordgo.InteractionCreate) {
	h.scoreCommand(s, i, ViewRecent)
}

func handleBestCommand(h *Handler, s Session, i *discordgo.InteractionCreate) {
	h.scoreCommand(s, i, ViewBest)
}

func (h *Handler) scoreCommand(s Session, i *discordgo.InteractionCreate, kind ViewKind) {
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

	requested := modeOption(opts)
	u, err := h.osu.GetUser(ctx, ident, requested, byName)
	if err != nil {
		h.editText(s, i, h.userError(lang, ident, err))
		return
	}
	mode := h.playerMode(requested, u)

	var scores []osu.Score
	if kind == ViewRecent {
		includeFails := true
		if _, ok := opts["include_fails"]; ok {
			includeFails = opts.Bool("include_fails")
		}
		scores, err = h.osu.GetUserRecent(ctx, u.ID, osu.RecentOptions{Mode: mode, Limit: recentLimit, IncludeFails: includeFails})
	} else {
		scores, err = h.osu.GetUserBest(ctx, u.ID, mode, h.bestCap)
	}
	if err != nil {
		zap.S().Errorf("[Osu] Score lookup for %s failed: %v", u.Username, err)
		h.editText(s, i, h.t(lang, "error.api", nil))
		return
	}

	args := locale.Args{"Name": u.Username, "Mode": mode.DisplayName()}
	if len(scores) == 0 {
		key := "recent.none"
		if kind == ViewBest {
			key = "best.none"
		}
		h.editText(s, i, h.t(lang, key, args))
		return
	}

	start := 0
	if rank, ok := opts.Int("bp_rank"); ok && kind == ViewBest {
		if rank < 1 || int(rank) > len(scores) {
			args["Total"] = len(scores)
			h.editText(s, i, h.t(lang, "best.rank_out_of_range", args))
			return
		}
		start = int(rank) - 1
	}

	v := &View{Kind: kind, OwnerID: userID(i), Player: u, Mode: mode, Scores: scores, Index: start}
	h.views.Put(v)
	h.editEmbed(s, i, h.scoreEmbed(lang, v), h.scoreComponents(lang, v), nil)
}

func (h *Handler) scoreComponents(lang string, v *View) []discordgo.MessageComponent {
	buttons := []discordgo.MessageComponent{
		discordgo.Button{
			Label:    h.t(lang, "button.previous", nil),
			Style:    discordgo.SecondaryButton,
			CustomID: "score:" + v.ID + ":prev",
			Disabled: v.Index == 0,
		},
		discordgo.Button{
			Label:    h.t(lang, "button.next", nil),
			Style:    discordgo.SecondaryButton,
			CustomID: "score:" + v.ID + ":next",
			Disabled: v.Index >= len(v.Scores)-1,
		},
	}
	if v.Kind == ViewBest {
		buttons = append(buttons, discordgo.Button{
			Label:    h.t(lang, "button.jump", nil),
			Style:    discordgo.PrimaryButton,
			CustomID: "score:" + v.ID + ":jump",
		})
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}

// ownedView loads a view for a component click, answering the click
// itself when the view is gone or belongs to someone else.
func (h *Handler) ownedView(s Session, i *discordgo.InteractionCreate, id string) (*View, bool) {
	lang := h.lang(i)
	v, ok := h.views.Get(id)
	if !ok {
		respond(s, i, h.t(lang, "error.view_expired", nil), true)
		return nil, false
	}
	if v.OwnerID != userID(i) {
		respond(s, i, h.t(lang, "error.not_your_view", nil), true)
		return nil, false
	}
	return v, true
}

func (h *Handler) handleScoreComponent(s Session, i *discordgo.InteractionCreate, id, action string) {
	v, ok := h.ownedView(s, i, id)
	if !ok {
		return
	}
	lang := h.lang(i)

	v.mu.Lock()
	defer v.mu.Unlock()

	switch action {
	case "prev":
		if v.Index > 0 {
			v.Index--
		}
	case "next":
		if v.Index < len(v.Scores)-1 {
			v.Index++
		}
	case "jump":
		h.openJumpModal(s, i, lang, v)
		return
	default:
		zap.S().Warnf("[Views] Unknown score action %q", action)
		return
	}

	updateMessage(s, i, &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{h.scoreEmbed(lang, v)},
		Components: h.scoreComponents(lang, v),
	})
}

func (h *Handler) openJumpModal(s Session, i *discordgo.InteractionCreate, lang string, v *View) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: "scorejump:" + v.ID,
			Title:    h.t(lang, "best.jump_title", nil),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "rank",
						Label:       h.t(lang, "best.jump_label", nil),
						Style:       discordgo.TextInputShort,
						Placeholder: h.t(lang, "best.jump_placeholder", locale.Args{"Total": len(v.Scores)}),
						Required:    true,
						MaxLength:   3,
					},
				}},
			},
		},
	})
	if err != nil {
		zap.S().Errorf("[Views] Error opening jump modal: %v", err)
	}
}

func (h *Handler) handleJumpModal(s Session, i *discordgo.InteractionCreate, id string) {
	v, ok := h.ownedView(s, i, id)
	if !ok {
		return
	}
	lang := h.lang(i)

	v.mu.Lock()
	defer v.mu.Unlock()

	raw := modalValue(i.ModalSubmitData(), "rank")
	rank, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || rank < 1 || rank > len(v.Scores) {
		respond(s, i, h.t(lang, "best.jump_invalid", locale.Args{"Total": len(v.Scores)}), true)
		return
	}
	v.Index = rank - 1

	updateMessage(s, i, &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{h.scoreEmbed(lang, v)},
		Components: h.scoreComponents(lang, v),
	})
}

// modalValue finds a text input's value in a submitted modal.
func modalValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, c := range data.Components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if in, ok := inner.(*discordgo.TextInput); ok && in.CustomID == customID {
				return in.Value
			}
		}
	}
	return ""
}

func handleSetUserCommand(h *Handler, s Session, i *discordgo.InteractionCreate) {
	lang := h.lang(i)
	uid := userID(i)
	opts := optionsOf(i.ApplicationCommandData().Options)

	if !deferReply(s, i, true) {
		return
	}
	ctx, cancel := h.commandContext()
	defer cancel()

	name, hasName := opts.String("osu_user")
	id, hasID := opts.Int("osu_id")
	name = strings.TrimSpace(name)

	var ident string
	byName := false
	switch {
	case hasName && name != "" && hasID:
		h.editText(s, i, h.t(lang, "error.one_identifier", nil))
		return
	case hasID:
		ident = strconv.FormatInt(id, 10)
	case hasName && name != "":
		ident, byName = name, true
	default:
		bound, ok := h.bindings.Get(uid)
		if !ok {
			h.editText(s, i, h.t(lang, "setuser.none", nil))
			return
		}
		display := bound
		if u, err := h.osu.GetUser(ctx, bound, osu.ModeDefault, false); err == nil {
			display = u.Username
		}
		h.editText(s, i, h.t(lang, "setuser.current", locale.Args{"Name": display}))
		return
	}

	u, err := h.osu.GetUser(ctx, ident, osu.ModeDefault, byName)
	if err != nil {
		h.editText(s, i, h.userError(lang, ident, err))
		return
	}
	if err := h.bindings.Set(uid, strconv.Itoa(u.ID)); err != nil {
		zap.S().Errorf("[Bindings] Failed to save binding for %s: %v", uid, err)
		h.editText(s, i, h.t(lang, "error.generic", nil))
		return
	}
	zap.S().Infof("[Bindings] %s bound to osu! user %d (%s)", uid, u.ID, u.Username)
	h.editText(s, i, h.t(lang, "setuser.success", locale.Args{"Name": u.Username}))
}

func handleUnsetUserCommand(h *Handler, s Session, i *discordgo.InteractionCreate) {
	lang := h.lang(i)
	uid := userID(i)

	removed, err := h.bindings.Delete(uid)
	switch {
	case err != nil:
		zap.S().Errorf("[Bindings] Failed to remove binding for %s: %v", uid, err)
		respond(s, i, h.t(lang, "error.generic", nil), true)
	case removed:
		respond(s, i, h.t(lang, "unsetuser.success", nil), true)
	default:
		respond(s, i, h.t(lang, "unsetuser.not_bound", nil), true)
	}
}

package bot

import (
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"osubot/pkg/copypasta"
	"osubot/pkg/locale"
)

func handleLangCommand(h *Handler, s Session, i *discordgo.InteractionCreate) {
	opts := optionsOf(i.ApplicationCommandData().Options)
	code, _ := opts.String("language")

	if err := h.l10n.SetUserLanguage(userID(i), code); err != nil {
		lang := h.lang(i)
		if errors.Is(err, locale.ErrUnsupportedLanguage) {
			respond(s, i, h.t(lang, "lang.unsupported", locale.Args{"Language": code}), true)
			return
		}
		respond(s, i, h.t(lang, "error.generic", nil), true)
		return
	}

	respond(s, i, h.t(code, "lang.set", locale.Args{"Language": h.l10n.DisplayName(code)}), true)
}

// copypastaLanguage maps a catalog language to the collection's upper
// case keys ("zh_TW" -> "ZH_TW").
func copypastaLanguage(lang string) string {
	return strings.ToUpper(lang)
}

func handleCopypastaCommand(h *Handler, s Session, i *discordgo.InteractionCreate) {
	lang := h.lang(i)
	if h.pastas == nil {
		respond(s, i, h.t(lang, "error.unavailable", nil), true)
		return
	}

	text, err := h.pastas.Pick(copypastaLanguage(lang))
	switch {
	case errors.Is(err, copypasta.ErrNone):
		respond(s, i, h.t(lang, "copypasta.none", nil), true)
		return
	case errors.Is(err, copypasta.ErrEmpty):
		respond(s, i, h.t(lang, "copypasta.empty", nil), true)
		return
	case err != nil:
		zap.S().Errorf("[Copypasta] Pick failed: %v", err)
		respond(s, i, h.t(lang, "error.generic", nil), true)
		return
	}

	if !deferReply(s, i, false) {
		return
	}
	h.editText(s, i, truncateRunes(text, 2000))
}

var helpSections = []struct {
	title    string
	commands []string
}{
	{"help.section.osu", []string{"profile", "recent", "best", "pp", "mapper", "setuser", "unsetuser"}},
	{"help.section.utility", []string{"lang", "copypasta", "keyword", "help"}},
	{"help.section.games", []string{"era"}},
}

func handleHelpCommand(h *Handler, s Session, i *discordgo.InteractionCreate) {
	lang := h.lang(i)

	e := &discordgo.MessageEmbed{
		Title:       h.t(lang, "help.title", nil),
		Description: h.t(lang, "help.description", nil),
		Color:       profileColor,
		Footer:      &discordgo.MessageEmbedFooter{Text: h.t(lang, "help.footer", nil)},
	}
	for _, sec := range helpSections {
		var lines []string
		for _, name := range sec.commands {
			lines = append(lines, "`/"+name+"` "+h.t(lang, "command."+name+".description", nil))
		}
		e.Fields = append(e.Fields, field(h.t(lang, sec.title, nil), strings.Join(lines, "\n"), false))
	}
	e.Fields = append(e.Fields, field(h.t(lang, "help.section.context", nil), h.t(lang, "help.delete_message", nil), false))

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{e},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		zap.S().Errorf("[Bot] Error responding to help: %v", err)
	}
}

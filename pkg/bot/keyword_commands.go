package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"osubot/pkg/keyword"
	"osubot/pkg/locale"
)

const keywordModalID = "keyword_add_modal"

func handleKeywordCommand(h *Handler, s Session, i *discordgo.InteractionCreate) {
	lang := h.lang(i)
	if h.keywords == nil {
		respond(s, i, h.t(lang, "error.unavailable", nil), true)
		return
	}
	if i.GuildID == "" {
		respond(s, i, h.t(lang, "keyword.guild_only", nil), true)
		return
	}
	if !h.isAdmin(s, i) {
		respond(s, i, h.t(lang, "keyword.admin_only", nil), true)
		return
	}

	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]

	switch sub.Name {
	case "add":
		h.openKeywordModal(s, i, lang)
	case "list":
		h.listKeywords(s, i, lang)
	case "delete":
		kw, _ := optionsOf(sub.Options).String("keyword")
		h.deleteKeyword(s, i, lang, kw)
	default:
		zap.S().Warnf("[Keyword] Unknown subcommand %q", sub.Name)
	}
}

func (h *Handler) openKeywordModal(s Session, i *discordgo.InteractionCreate, lang string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: keywordModalID,
			Title:    h.t(lang, "keyword.modal_title", nil),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:  "keyword",
						Label:     h.t(lang, "keyword.modal_keyword", nil),
						Style:     discordgo.TextInputShort,
						Required:  true,
						MaxLength: keyword.MaxKeywordLen,
					},
				}},
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:  "response",
						Label:     h.t(lang, "keyword.modal_response", nil),
						Style:     discordgo.TextInputParagraph,
						Required:  true,
						MaxLength: keyword.MaxResponseLen,
					},
				}},
			},
		},
	})
	if err != nil {
		zap.S().Errorf("[Keyword] Error opening modal: %v", err)
	}
}

func (h *Handler) handleKeywordModal(s Session, i *discordgo.InteractionCreate) {
	lang := h.lang(i)
	if h.keywords == nil || i.GuildID == "" || !h.isAdmin(s, i) {
		respond(s, i, h.t(lang, "keyword.admin_only", nil), true)
		return
	}

	data := i.ModalSubmitData()
	kw := strings.TrimSpace(modalValue(data, "keyword"))
	response := strings.TrimSpace(modalValue(data, "response"))

	err := h.keywords.Add(i.GuildID, kw, response)
	var exists *keyword.ExistsError
	switch {
	case err == nil:
		zap.S().Infof("[Keyword] %s added %q in guild %s", userID(i), kw, i.GuildID)
		respond(s, i, h.t(lang, "keyword.added", locale.Args{"Keyword": kw}), true)
	case errors.As(err, &exists):
		respond(s, i, h.t(lang, "keyword.exists", locale.Args{"Keyword": kw, "Response": keyword.Preview(exists.Response)}), true)
	case errors.Is(err, keyword.ErrInvalid):
		respond(s, i, h.t(lang, "keyword.invalid", nil), true)
	case errors.Is(err, keyword.ErrTooLong):
		respond(s, i, h.t(lang, "keyword.too_long", locale.Args{"Keyword": keyword.MaxKeywordLen, "Response": keyword.MaxResponseLen}), true)
	default:
		zap.S().Errorf("[Keyword] Failed to add %q: %v", kw, err)
		respond(s, i, h.t(lang, "error.generic", nil), true)
	}
}

func (h *Handler) listKeywords(s Session, i *discordgo.InteractionCreate, lang string) {
	entries := h.keywords.List(i.GuildID)
	if len(entries) == 0 {
		respond(s, i, h.t(lang, "keyword.list_empty", nil), true)
		return
	}

	e := &discordgo.MessageEmbed{
		Title: h.t(lang, "keyword.list_title", locale.Args{"Count": len(entries)}),
		Color: profileColor,
	}
	for idx, entry := range entries {
		if idx == keyword.ListLimit {
			e.Footer = &discordgo.MessageEmbedFooter{
				Text: h.t(lang, "keyword.list_more", locale.Args{"More": len(entries) - keyword.ListLimit}),
			}
			break
		}
		e.Fields = append(e.Fields, field(truncateRunes(entry.Keyword, 256), keyword.Preview(entry.Response), false))
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{e},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		zap.S().Errorf("[Keyword] Error listing keywords: %v", err)
	}
}

func (h *Handler) deleteKeyword(s Session, i *discordgo.InteractionCreate, lang, kw string) {
	removed, err := h.keywords.Delete(i.GuildID, kw)
	switch {
	case err != nil:
		zap.S().Errorf("[Keyword] Failed to delete %q: %v", kw, err)
		respond(s, i, h.t(lang, "error.generic", nil), true)
	case removed:
		zap.S().Infof("[Keyword] %s deleted %q in guild %s", userID(i), kw, i.GuildID)
		respond(s, i, h.t(lang, "keyword.deleted", locale.Args{"Keyword": strings.TrimSpace(kw)}), true)
	default:
		respond(s, i, h.t(lang, "keyword.not_found", locale.Args{"Keyword": strings.TrimSpace(kw)}), true)
	}
}

// DeleteMessageCommand is the message context menu entry.
const DeleteMessageCommand = "Delete this message"

func handleDeleteMessageCommand(h *Handler, s Session, i *discordgo.InteractionCreate) {
	lang := h.lang(i)
	requester := userID(i)
	data := i.ApplicationCommandData()

	var target *discordgo.Message
	if data.Resolved != nil {
		target = data.Resolved.Messages[data.TargetID]
	}
	if target == nil || target.Author == nil || target.Author.ID != h.botUserID() {
		respond(s, i, h.t(lang, "delete.not_bot", nil), true)
		return
	}

	trigger := h.triggerUser(s, target)
	if trigger != requester && !h.isAdmin(s, i) {
		respond(s, i, h.t(lang, "delete.no_permission", nil), true)
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: h.t(lang, "delete.confirm", nil),
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    h.t(lang, "delete.button_confirm", nil),
						Style:    discordgo.DangerButton,
						CustomID: fmt.Sprintf("del:confirm:%s:%s:%s", requester, target.ChannelID, target.ID),
					},
					discordgo.Button{
						Label:    h.t(lang, "delete.button_cancel", nil),
						Style:    discordgo.SecondaryButton,
						CustomID: fmt.Sprintf("del:cancel:%s", requester),
					},
				}},
			},
		},
	})
	if err != nil {
		zap.S().Errorf("[Delete] Error sending confirmation: %v", err)
	}
}

// triggerUser finds who caused a bot message: the author of the message
// it replies to, else whoever the tracker recorded.
func (h *Handler) triggerUser(s Session, msg *discordgo.Message) string {
	if ref := msg.MessageReference; ref != nil && ref.MessageID != "" {
		channelID := ref.ChannelID
		if channelID == "" {
			channelID = msg.ChannelID
		}
		if orig, err := s.ChannelMessage(channelID, ref.MessageID); err == nil && orig.Author != nil {
			return orig.Author.ID
		}
	}
	if uid, ok := h.tracker.TriggerUser(msg.ID); ok {
		return uid
	}
	return ""
}

// handleDeleteComponent handles "del:confirm:<requester>:<channel>:<message>"
// and "del:cancel:<requester>".
func (h *Handler) handleDeleteComponent(s Session, i *discordgo.InteractionCreate, parts []string) {
	lang := h.lang(i)
	if len(parts) < 3 {
		return
	}
	action, requester := parts[1], parts[2]
	if userID(i) != requester {
		respond(s, i, h.t(lang, "delete.not_yours", nil), true)
		return
	}

	done := func(key string) {
		updateMessage(s, i, &discordgo.InteractionResponseData{
			Content:    h.t(lang, key, nil),
			Components: []discordgo.MessageComponent{},
		})
	}

	if action == "cancel" || len(parts) < 5 {
		done("delete.cancelled")
		return
	}

	channelID, messageID := parts[3], parts[4]
	if err := s.ChannelMessageDelete(channelID, messageID); err != nil {
		zap.S().Errorf("[Delete] Failed to delete %s in %s: %v", messageID, channelID, err)
		done("delete.failed")
		return
	}
	h.tracker.Remove(messageID)
	zap.S().Infof("[Delete] %s deleted bot message %s", requester, messageID)
	done("delete.done")
}

package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"osubot/pkg/keyword"
	"osubot/pkg/locale"
)

// getUserFromInteraction extracts the user ID and name from an interaction
// It handles both guild (Member) and DM (User) contexts
// Returns userID, userName, and error if user cannot be determined
func getUserFromInteraction(i *discordgo.InteractionCreate) (string, string, error) {
	if i.Member != nil && i.Member.User != nil {
		userName := i.Member.User.Username
		if i.Member.User.GlobalName != "" {
			userName = i.Member.User.GlobalName
		}
		return i.Member.User.ID, userName, nil
	}

	if i.User != nil {
		userName := i.User.Username
		if i.User.GlobalName != "" {
			userName = i.User.GlobalName
		}
		return i.User.ID, userName, nil
	}

	return "", "", fmt.Errorf("could not determine user from interaction")
}

func userID(i *discordgo.InteractionCreate) string {
	id, _, _ := getUserFromInteraction(i)
	return id
}

type commandOptions map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionsOf(opts []*discordgo.ApplicationCommandInteractionDataOption) commandOptions {
	out := make(commandOptions, len(opts))
	for _, o := range opts {
		out[o.Name] = o
	}
	return out
}

func (o commandOptions) String(name string) (string, bool) {
	if opt, ok := o[name]; ok && opt.Type == discordgo.ApplicationCommandOptionString {
		return opt.StringValue(), true
	}
	return "", false
}

func (o commandOptions) Int(name string) (int64, bool) {
	if opt, ok := o[name]; ok && opt.Type == discordgo.ApplicationCommandOptionInteger {
		return opt.IntValue(), true
	}
	return 0, false
}

func (o commandOptions) Bool(name string) bool {
	if opt, ok := o[name]; ok && opt.Type == discordgo.ApplicationCommandOptionBoolean {
		return opt.BoolValue()
	}
	return false
}

// lang is the language to answer i in.
func (h *Handler) lang(i *discordgo.InteractionCreate) string {
	return h.l10n.Resolve(userID(i), string(i.Locale))
}

func (h *Handler) t(lang, key string, args locale.Args) string {
	return h.l10n.Get(lang, key, "", args)
}

func respond(s Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		zap.S().Errorf("[Bot] Error responding to interaction: %v", err)
	}
}

// deferReply acknowledges i so the answer can take longer than three
// seconds. The answer is then sent with editReply.
func deferReply(s Session, i *discordgo.InteractionCreate, ephemeral bool) bool {
	resp := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource}
	if ephemeral {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	if err := s.InteractionRespond(i.Interaction, resp); err != nil {
		zap.S().Errorf("[Bot] Error deferring interaction: %v", err)
		return false
	}
	return true
}

// editReply fills in a deferred answer and tracks the resulting message
// as triggered by the interaction's user.
func (h *Handler) editReply(s Session, i *discordgo.InteractionCreate, edit *discordgo.WebhookEdit) {
	msg, err := s.InteractionResponseEdit(i.Interaction, edit)
	if err != nil {
		zap.S().Errorf("[Bot] Error editing interaction response: %v", err)
		return
	}
	if msg != nil {
		h.tracker.Track(msg.ID, userID(i))
	}
}

func (h *Handler) editText(s Session, i *discordgo.InteractionCreate, content string) {
	h.editReply(s, i, &discordgo.WebhookEdit{Content: &content})
}

func (h *Handler) editEmbed(s Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent, files []*discordgo.File) {
	empty := ""
	embeds := []*discordgo.MessageEmbed{embed}
	edit := &discordgo.WebhookEdit{Content: &empty, Embeds: &embeds, Files: files}
	if components != nil {
		edit.Components = &components
	}
	h.editReply(s, i, edit)
}

// updateMessage replaces the message a component lives on.
func updateMessage(s Session, i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	})
	if err != nil {
		zap.S().Errorf("[Bot] Error updating component message: %v", err)
	}
}

// isAdmin reports whether the interaction user owns the guild or holds
// the Administrator permission there.
func (h *Handler) isAdmin(s Session, i *discordgo.InteractionCreate) bool {
	if i.GuildID == "" || i.Member == nil {
		return false
	}
	ownerID := ""
	if g, err := s.Guild(i.GuildID); err == nil && g != nil {
		ownerID = g.OwnerID
	} else if err != nil {
		zap.S().Warnf("[Bot] Could not load guild %s: %v", i.GuildID, err)
	}
	return keyword.IsAdmin(ownerID, userID(i), i.Member.Permissions)
}

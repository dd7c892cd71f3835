package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"osubot/pkg/era"
	"osubot/pkg/locale"
)

const eraColor = 0xc71585

func handleEraCommand(h *Handler, s Session, i *discordgo.InteractionCreate) {
	lang := h.lang(i)
	if h.game == nil {
		respond(s, i, h.t(lang, "error.unavailable", nil), true)
		return
	}
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}

	uid := userID(i)
	ctx, cancel := h.commandContext()
	defer cancel()

	switch sub := data.Options[0].Name; sub {
	case "start":
		p := h.game.Start(ctx, uid)
		h.sendEraPanel(s, i, lang, p, h.t(lang, "era.started", nil))
	case "continue":
		p, err := h.game.Continue(ctx, uid)
		if err != nil {
			h.eraError(s, i, lang, err)
			return
		}
		h.sendEraPanel(s, i, lang, p, h.t(lang, "era.continued", nil))
	case "status":
		p, err := h.game.Status(ctx, uid)
		if err != nil {
			h.eraError(s, i, lang, err)
			return
		}
		h.sendEraPanel(s, i, lang, p, "")
	case "characters":
		p, err := h.game.Status(ctx, uid)
		if err != nil {
			h.eraError(s, i, lang, err)
			return
		}
		label := func(key string) string { return h.t(lang, key, nil) }
		respond(s, i, "```\n"+era.CharacterTable(p, label)+"\n```", false)
	case "reset":
		if h.game.Reset(ctx, uid) {
			respond(s, i, h.t(lang, "era.reset_done", nil), true)
		} else {
			respond(s, i, h.t(lang, "era.no_save", nil), true)
		}
	case "help":
		respond(s, i, h.t(lang, "era.help", locale.Args{"GiftCost": era.GiftCost}), true)
	default:
		zap.S().Warnf("[Era] Unknown subcommand %q", sub)
	}
}

func (h *Handler) eraError(s Session, i *discordgo.InteractionCreate, lang string, err error) {
	respond(s, i, h.eraErrorText(lang, err), true)
}

func (h *Handler) eraErrorText(lang string, err error) string {
	switch {
	case errors.Is(err, era.ErrNoSave):
		return h.t(lang, "era.no_save", nil)
	case errors.Is(err, era.ErrSameLocation):
		return h.t(lang, "era.same_location", nil)
	case errors.Is(err, era.ErrNotConnected):
		return h.t(lang, "era.not_connected", nil)
	case errors.Is(err, era.ErrNobodyHere):
		return h.t(lang, "era.nobody_here", nil)
	case errors.Is(err, era.ErrUnknownPlace), errors.Is(err, era.ErrUnknownAction):
		return h.t(lang, "era.invalid_choice", nil)
	default:
		zap.S().Errorf("[Era] Unexpected error: %v", err)
		return h.t(lang, "error.generic", nil)
	}
}

func (h *Handler) sendEraPanel(s Session, i *discordgo.InteractionCreate, lang string, p *era.Player, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{h.eraEmbed(lang, p, message)},
			Components: h.eraComponents(lang, p),
		},
	})
	if err != nil {
		zap.S().Errorf("[Era] Error sending panel: %v", err)
	}
}

func (h *Handler) characterName(lang string, c era.Character) string {
	return h.t(lang, "era.character."+c.Key, nil)
}

func (h *Handler) locationName(lang string, l era.Location) string {
	return h.t(lang, "era.location."+l.Key()+".name", nil)
}

// eraEmbed renders the game panel. message is the outcome of the last
// action and may be empty.
func (h *Handler) eraEmbed(lang string, p *era.Player, message string) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       p.Location.Emoji() + " " + h.locationName(lang, p.Location),
		Description: h.t(lang, "era.location."+p.Location.Key()+".description", nil),
		Color:       eraColor,
		Fields: []*discordgo.MessageEmbedField{
			field(h.t(lang, "era.panel.time", nil), h.t(lang, "era.panel.time_value", locale.Args{
				"Day":    p.Day,
				"Clock":  p.Clock(),
				"Period": h.t(lang, "era.period."+string(p.Period()), nil),
			}), true),
			field(h.t(lang, "era.panel.money", nil), formatInt(int64(p.Money))+" 💰", true),
		},
	}

	if c, ok := era.CharacterByID(p.Target); ok {
		aff := p.AffectionFor(c.ID)
		rel := era.RelationshipFor(aff)
		e.Fields = append(e.Fields, field(
			h.t(lang, "era.panel.with", nil),
			fmt.Sprintf("%s %s\n%s %s (%d)", c.Emoji, h.characterName(lang, c), rel.Emoji(), h.t(lang, "era.relationship."+rel.Key(), nil), aff),
			false,
		))
	} else {
		e.Fields = append(e.Fields, field(h.t(lang, "era.panel.with", nil), h.t(lang, "era.panel.nobody", nil), false))
	}

	if message != "" {
		e.Fields = append(e.Fields, field(h.t(lang, "era.panel.result", nil), message, false))
	}
	e.Footer = &discordgo.MessageEmbedFooter{Text: h.t(lang, "era.panel.footer", nil)}
	return e
}

func (h *Handler) eraComponents(lang string, p *era.Player) []discordgo.MessageComponent {
	rel := era.RelationshipFor(p.AffectionFor(p.Target))
	_, withSomeone := era.CharacterByID(p.Target)

	var rows []discordgo.MessageComponent
	var buttons []discordgo.MessageComponent
	for idx, a := range era.Actions {
		buttons = append(buttons, discordgo.Button{
			Label:    h.t(lang, "era.action."+string(a), nil),
			Style:    discordgo.PrimaryButton,
			CustomID: fmt.Sprintf("era:act:%s:%s", a, p.UserID),
			Disabled: !withSomeone || !h.game.Commands().Available(a, rel),
		})
		if len(buttons) == 3 || idx == len(era.Actions)-1 {
			rows = append(rows, discordgo.ActionsRow{Components: buttons})
			buttons = nil
		}
	}

	var options []discordgo.SelectMenuOption
	for _, l := range era.Connections[p.Location] {
		options = append(options, discordgo.SelectMenuOption{
			Label: h.locationName(lang, l),
			Value: l.Key(),
			Emoji: &discordgo.ComponentEmoji{Name: l.Emoji()},
		})
	}
	if len(options) > 0 {
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    "era:move:" + p.UserID,
				Placeholder: h.t(lang, "era.panel.move_placeholder", nil),
				Options:     options,
			},
		}})
	}
	return rows
}

// handleEraComponent handles "era:act:<action>:<owner>" buttons and the
// "era:move:<owner>" select menu.
func (h *Handler) handleEraComponent(s Session, i *discordgo.InteractionCreate, parts []string) {
	lang := h.lang(i)
	if h.game == nil || len(parts) < 3 {
		return
	}
	owner := parts[len(parts)-1]
	if owner != userID(i) {
		respond(s, i, h.t(lang, "era.not_your_game", nil), true)
		return
	}

	ctx, cancel := h.commandContext()
	defer cancel()

	var (
		p       *era.Player
		message string
		err     error
	)
	switch parts[1] {
	case "act":
		if len(parts) < 4 {
			return
		}
		var res era.Result
		res, p, err = h.game.Act(ctx, owner, era.Action(parts[2]))
		if err == nil {
			c, _ := era.CharacterByID(p.Target)
			message = h.t(lang, res.Key, locale.Args{"Name": h.characterName(lang, c), "Affection": res.Affection})
			if res.BecameLover {
				message += "\n" + h.t(lang, "era.became_lover", locale.Args{"Name": h.characterName(lang, c)})
			}
		}
	case "move":
		values := i.MessageComponentData().Values
		if len(values) == 0 {
			return
		}
		to, ok := era.ParseLocation(values[0])
		if !ok {
			err = era.ErrUnknownPlace
			break
		}
		p, err = h.game.Move(ctx, owner, to)
		if err == nil {
			message = h.t(lang, "era.moved", locale.Args{"Location": h.locationName(lang, to)})
			if c, ok := era.CharacterByID(p.Target); ok {
				message += "\n" + h.t(lang, "era.met", locale.Args{"Name": h.characterName(lang, c)})
			}
		}
	default:
		zap.S().Warnf("[Era] Unknown component action %q", parts[1])
		return
	}

	if err != nil {
		respond(s, i, h.eraErrorText(lang, err), true)
		return
	}

	updateMessage(s, i, &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{h.eraEmbed(lang, p, strings.TrimSpace(message))},
		Components: h.eraComponents(lang, p),
	})
}

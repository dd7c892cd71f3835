package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"osubot/pkg/locale"
	"osubot/pkg/osu"
)

var (
	minOne      = 1.0
	noDM        = false
	adminPerms  = int64(discordgo.PermissionAdministrator)
	maxBestRank = float64(osu.MaxBestScores)
)

var modeChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "osu!", Value: int(osu.ModeOsu)},
	{Name: "osu!taiko", Value: int(osu.ModeTaiko)},
	{Name: "osu!catch", Value: int(osu.ModeFruits)},
	{Name: "osu!mania", Value: int(osu.ModeMania)},
}

// playerOptions are shared by every command that looks up an osu! player.
func playerOptions(withMode bool) []*discordgo.ApplicationCommandOption {
	opts := []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "osu_user",
			Description: "osu! username",
			MaxLength:   32,
		},
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "osu_id",
			Description: "osu! user id",
			MinValue:    &minOne,
		},
	}
	if withMode {
		opts = append(opts, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "mode",
			Description: "Game mode (defaults to the player's main mode)",
			Choices:     modeChoices,
		})
	}
	return opts
}

// SlashCommands defines all available application commands. The
// "language" choices of /lang are filled in at registration.
var SlashCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "profile",
		Description: "Show an osu! player's profile",
		Options: append(playerOptions(true), &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "detail",
			Description: "Include mapping stats, links, userpage and rank history",
		}),
	},
	{
		Name:        "recent",
		Description: "Show a player's recent plays",
		Options: append(playerOptions(true), &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "include_fails",
			Description: "Include failed plays (default: yes)",
		}),
	},
	{
		Name:        "best",
		Description: "Show a player's best performance scores",
		Options: append(playerOptions(true), &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "bp_rank",
			Description: "Start at this position of the best scores",
			MinValue:    &minOne,
			MaxValue:    maxBestRank,
		}),
	},
	{
		Name:        "pp",
		Description: "Show difficulty and PP of a beatmap",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "url",
				Description: "Beatmap or beatmapset URL",
				Required:    true,
			},
		},
	},
	{
		Name:        "mapper",
		Description: "Show a player's mapping statistics",
		Options:     playerOptions(false),
	},
	{
		Name:        "setuser",
		Description: "Bind your Discord account to an osu! player",
		Options:     playerOptions(false),
	},
	{
		Name:        "unsetuser",
		Description: "Remove your osu! binding",
	},
	{
		Name:        "lang",
		Description: "Choose the bot's language for you",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "language",
				Description: "Language",
				Required:    true,
			},
		},
	},
	{
		Name:        "copypasta",
		Description: "Post a random copypasta",
	},
	{
		Name:                     "keyword",
		Description:              "Manage keyword auto-replies for this server",
		DefaultMemberPermissions: &adminPerms,
		DMPermission:             &noDM,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "add",
				Description: "Add a keyword reply",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "List keyword replies",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "delete",
				Description: "Delete a keyword reply",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "keyword",
						Description: "The keyword to delete",
						Required:    true,
					},
				},
			},
		},
	},
	{
		Name:        "help",
		Description: "List the bot's commands",
	},
	{
		Name:        "era",
		Description: "Play the Gensokyo life simulation",
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "start", Description: "Start a new game"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "continue", Description: "Continue your game"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "status", Description: "Show your game panel"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "characters", Description: "Show everyone you have met"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "reset", Description: "Delete your save"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "help", Description: "How to play"},
		},
	},
	{
		Type: discordgo.MessageApplicationCommand,
		Name: DeleteMessageCommand,
	},
}

// SlashCommandHandlers maps command names to their handler functions
var SlashCommandHandlers = map[string]func(h *Handler, s Session, i *discordgo.InteractionCreate){
	"profile":            handleProfileCommand,
	"recent":             handleRecentCommand,
	"best":               handleBestCommand,
	"pp":                 handlePPCommand,
	"mapper":             handleMapperCommand,
	"setuser":            handleSetUserCommand,
	"unsetuser":          handleUnsetUserCommand,
	"lang":               handleLangCommand,
	"copypasta":          handleCopypastaCommand,
	"keyword":            handleKeywordCommand,
	"help":               handleHelpCommand,
	"era":                handleEraCommand,
	DeleteMessageCommand: handleDeleteMessageCommand,
}

// InteractionCreate is the discordgo handler for all interactions.
func (h *Handler) InteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.HandleInteraction(&DiscordSession{s}, i)
}

// HandleInteraction routes commands, component clicks and modal submits.
func (h *Handler) HandleInteraction(s Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		handler, ok := SlashCommandHandlers[name]
		if !ok {
			zap.S().Warnf("[Bot] Unknown command: %s", name)
			return
		}
		zap.S().Debugf("[Bot] /%s from %s", name, userID(i))
		handler(h, s, i)

	case discordgo.InteractionMessageComponent:
		parts := strings.Split(i.MessageComponentData().CustomID, ":")
		switch parts[0] {
		case "score":
			if len(parts) == 3 {
				h.handleScoreComponent(s, i, parts[1], parts[2])
			}
		case "pp":
			if len(parts) == 3 {
				h.handlePPComponent(s, i, parts[1], parts[2])
			}
		case "era":
			h.handleEraComponent(s, i, parts)
		case "del":
			h.handleDeleteComponent(s, i, parts)
		default:
			zap.S().Warnf("[Bot] Unknown component %q", i.MessageComponentData().CustomID)
		}

	case discordgo.InteractionModalSubmit:
		id := i.ModalSubmitData().CustomID
		switch {
		case id == keywordModalID:
			h.handleKeywordModal(s, i)
		case strings.HasPrefix(id, "scorejump:"):
			h.handleJumpModal(s, i, strings.TrimPrefix(id, "scorejump:"))
		default:
			zap.S().Warnf("[Bot] Unknown modal %q", id)
		}
	}
}

// discordLocales maps catalog codes to Discord client locales.
var discordLocales = map[string]discordgo.Locale{
	"en":    discordgo.EnglishUS,
	"zh_TW": discordgo.ChineseTW,
}

// LocalizedCommands returns copies of SlashCommands with descriptions
// translated from the catalogs and the /lang choices filled in.
func LocalizedCommands(l10n *locale.Localizer) []*discordgo.ApplicationCommand {
	def := l10n.DefaultLanguage()
	out := make([]*discordgo.ApplicationCommand, 0, len(SlashCommands))

	for _, src := range SlashCommands {
		cmd := *src

		if cmd.Type == discordgo.MessageApplicationCommand {
			names := make(map[discordgo.Locale]string)
			for _, code := range l10n.Languages() {
				if loc, ok := discordLocales[code]; ok && code != def {
					names[loc] = l10n.Get(code, "command.delete_message.name", cmd.Name, nil)
				}
			}
			cmd.NameLocalizations = &names
			out = append(out, &cmd)
			continue
		}

		cmd.Description = l10n.Get(def, "command."+cmd.Name+".description", cmd.Description, nil)
		descriptions := make(map[discordgo.Locale]string)
		for _, code := range l10n.Languages() {
			if loc, ok := discordLocales[code]; ok && code != def {
				descriptions[loc] = l10n.Get(code, "command."+cmd.Name+".description", cmd.Description, nil)
			}
		}
		cmd.DescriptionLocalizations = &descriptions

		if cmd.Name == "lang" {
			cmd.Options = []*discordgo.ApplicationCommandOption{languageOption(l10n, src.Options[0])}
		}
		out = append(out, &cmd)
	}
	return out
}

func languageOption(l10n *locale.Localizer, src *discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	opt := *src
	opt.Choices = nil
	for _, code := range l10n.Languages() {
		opt.Choices = append(opt.Choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  l10n.DisplayName(code),
			Value: code,
		})
	}
	return &opt
}

// RegisterSlashCommands registers all application commands with Discord
func RegisterSlashCommands(s *discordgo.Session, guildID string, l10n *locale.Localizer) ([]*discordgo.ApplicationCommand, error) {
	zap.S().Info("[Bot] Registering application commands...")

	commands := LocalizedCommands(l10n)
	registered := make([]*discordgo.ApplicationCommand, 0, len(commands))

	for _, cmd := range commands {
		// Register globally (guildID = "") or for a specific guild
		created, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, cmd)
		if err != nil {
			zap.S().Errorf("[Bot] Cannot create '%s' command: %v", cmd.Name, err)
			return registered, err
		}
		registered = append(registered, created)
		zap.S().Debugf("[Bot] Registered command: %s", cmd.Name)
	}

	zap.S().Infof("[Bot] Registered %d commands", len(registered))
	return registered, nil
}

// UnregisterSlashCommands removes the registered commands
func UnregisterSlashCommands(s *discordgo.Session, guildID string, commands []*discordgo.ApplicationCommand) error {
	zap.S().Info("[Bot] Unregistering application commands...")

	for _, cmd := range commands {
		if err := s.ApplicationCommandDelete(s.State.User.ID, guildID, cmd.ID); err != nil {
			zap.S().Errorf("[Bot] Cannot delete '%s' command: %v", cmd.Name, err)
			return err
		}
		zap.S().Debugf("[Bot] Unregistered command: %s", cmd.Name)
	}

	return nil
}

package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"osubot/pkg/beatmap"
	"osubot/pkg/osu"
)

// Session interface abstracts discordgo.Session for testing
type Session interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
}

// DiscordSession adapts discordgo.Session to the Session interface
type DiscordSession struct {
	*discordgo.Session
}

// Guild prefers the gateway state cache over a REST call.
func (s *DiscordSession) Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error) {
	if s.State != nil {
		if g, err := s.State.Guild(guildID); err == nil {
			return g, nil
		}
	}
	return s.Session.Guild(guildID, options...)
}

func (s *DiscordSession) UpdateStatusComplex(usd discordgo.UpdateStatusData) error {
	return s.Session.UpdateStatusComplex(usd)
}

// OsuAPI is the part of osu.Client the commands use.
type OsuAPI interface {
	GetUser(ctx context.Context, ident string, mode osu.Mode, byUsername bool) (*osu.User, error)
	GetUserRecent(ctx context.Context, userID int, opts osu.RecentOptions) ([]osu.Score, error)
	GetUserBest(ctx context.Context, userID int, mode osu.Mode, count int) ([]osu.Score, error)
	GetAllUserBeatmapsets(ctx context.Context, userID int, types []string, maxPerType int) ([]osu.Beatmapset, error)
	GetBeatmapset(ctx context.Context, id int) (*osu.Beatmapset, error)
	GetBeatmap(ctx context.Context, id int) (*osu.Beatmap, error)
	GetBeatmapAttributes(ctx context.Context, id int, mods string, mode osu.Mode) (*osu.DifficultyAttributes, error)
	GetScoreV1(ctx context.Context, beatmapID int, user string, mode osu.Mode) (*osu.LegacyScore, error)
}

// BeatmapFiles fetches parsed .osu files for the local PP estimate.
type BeatmapFiles interface {
	Fetch(ctx context.Context, beatmapID int) (*beatmap.File, error)
}

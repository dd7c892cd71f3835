package bot

import (
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osubot/pkg/locale"
	"osubot/pkg/osu"
)

func intPtr(v int) *int { return &v }

func peppy() *osu.User {
	return &osu.User{
		ID:          2,
		Username:    "peppy",
		CountryCode: "AU",
		Playmode:    "osu",
		Statistics: &osu.UserStatistics{
			GlobalRank: intPtr(12345),
			PP:         1234.5,
			PlayCount:  9001,
		},
	}
}

func scores(n int) []osu.Score {
	out := make([]osu.Score, n)
	for i := range out {
		pp := float64(300 - i)
		out[i] = osu.Score{
			ID:       int64(i + 1),
			Rank:     "S",
			Passed:   true,
			Accuracy: 0.98,
			MaxCombo: 500,
			PP:       &pp,
			Beatmap:  &osu.Beatmap{ID: 100 + i, Version: fmt.Sprintf("Diff %d", i+1), Status: "ranked"},
			Beatmapset: &osu.Beatmapset{
				Artist: "Artist",
				Title:  "Song",
			},
		}
	}
	return out
}

func TestResolveTarget(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.bindings.Set("bound-user", "124493"))

	cases := []struct {
		name   string
		opts   []*discordgo.ApplicationCommandInteractionDataOption
		uid    string
		ident  string
		byName bool
		errKey string
	}{
		{"by name", []*discordgo.ApplicationCommandInteractionDataOption{strOpt("osu_user", " Cookiezi ")}, "u1", "Cookiezi", true, ""},
		{"by id", []*discordgo.ApplicationCommandInteractionDataOption{intOpt("osu_id", 124493)}, "u1", "124493", false, ""},
		{"both", []*discordgo.ApplicationCommandInteractionDataOption{strOpt("osu_user", "x"), intOpt("osu_id", 1)}, "u1", "", false, "error.one_identifier"},
		{"blank name falls back to binding", []*discordgo.ApplicationCommandInteractionDataOption{strOpt("osu_user", "  ")}, "bound-user", "124493", false, ""},
		{"binding", nil, "bound-user", "124493", false, ""},
		{"nothing", nil, "u1", "", false, "error.not_bound"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ident, byName, errKey := env.h.resolveTarget(optionsOf(tc.opts), tc.uid)
			assert.Equal(t, tc.ident, ident)
			assert.Equal(t, tc.byName, byName)
			assert.Equal(t, tc.errKey, errKey)
		})
	}
}

func TestProfileCommand(t *testing.T) {
	env := newTestEnv(t)
	env.api.users["peppy"] = peppy()

	env.h.HandleInteraction(env.s, commandInteraction("profile", "u1", strOpt("osu_user", "peppy")))

	require.Len(t, env.s.Responses, 1)
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, env.s.Responses[0].Type)

	edit := env.s.lastEdit(t)
	require.NotNil(t, edit.Embeds)
	embed := (*edit.Embeds)[0]
	assert.Contains(t, embed.Title, "peppy")
	assert.Contains(t, embed.Title, "osu!")
	assert.Equal(t, "https://osu.ppy.sh/users/2/osu", embed.URL)
	assert.Equal(t, "#12,345", embed.Fields[0].Value)
	assert.Empty(t, edit.Files)

	// The answer is attributed to the caller for the delete menu.
	uid, ok := env.h.tracker.TriggerUser("edit-1")
	require.True(t, ok)
	assert.Equal(t, "u1", uid)
}

func TestProfileCommand_Detail(t *testing.T) {
	env := newTestEnv(t)
	u := peppy()
	u.Page = &osu.UserPage{HTML: "<p>Hello <b>world</b></p>"}
	u.RankHistory = &osu.RankHistory{Mode: "osu", Data: []int{500, 400, 300, 350, 200}}
	u.IsSupporter = true
	env.api.users["2"] = u

	env.h.HandleInteraction(env.s, commandInteraction("profile", "u1", intOpt("osu_id", 2), boolOpt("detail", true)))

	edit := env.s.lastEdit(t)
	embed := (*edit.Embeds)[0]
	require.Len(t, edit.Files, 1)
	assert.Equal(t, chartFile, edit.Files[0].Name)
	assert.Equal(t, "attachment://"+chartFile, embed.Image.URL)

	var names []string
	for _, f := range embed.Fields {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, env.en("profile.mapping", nil))
	assert.Contains(t, names, env.en("profile.userpage", nil))
	assert.Equal(t, "Hello world", embed.Fields[len(embed.Fields)-1].Value)
}

func TestProfileCommand_Errors(t *testing.T) {
	env := newTestEnv(t)

	env.h.HandleInteraction(env.s, commandInteraction("profile", "u1"))
	resp := env.s.lastResponse(t)
	assert.Equal(t, env.en("error.not_bound", nil), resp.Data.Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)

	env.h.HandleInteraction(env.s, commandInteraction("profile", "u1", strOpt("osu_user", "ghost")))
	assert.Equal(t, env.en("error.user_not_found", locale.Args{"User": "ghost"}), *env.s.lastEdit(t).Content)

	env.api.err = osu.ErrTransport
	env.h.HandleInteraction(env.s, commandInteraction("profile", "u1", strOpt("osu_user", "peppy")))
	assert.Equal(t, env.en("error.api", nil), *env.s.lastEdit(t).Content)

	env.api.err = fmt.Errorf("get user peppy: %w", osu.ErrAuth)
	env.h.HandleInteraction(env.s, commandInteraction("profile", "u1", strOpt("osu_user", "peppy")))
	assert.Equal(t, env.en("error.auth", nil), *env.s.lastEdit(t).Content)
}

func TestRecentCommand_IncludeFails(t *testing.T) {
	env := newTestEnv(t)
	env.api.users["peppy"] = peppy()
	env.api.recent = scores(2)
	env.api.recent[0].Passed = false

	env.h.HandleInteraction(env.s, commandInteraction("recent", "u1", strOpt("osu_user", "peppy")))
	assert.True(t, env.api.lastRecent.IncludeFails)
	assert.Equal(t, recentLimit, env.api.lastRecent.Limit)
	assert.Equal(t, osu.ModeOsu, env.api.lastRecent.Mode)

	embed := (*env.s.lastEdit(t).Embeds)[0]
	assert.Equal(t, rankEmoji("F")+" F", embed.Fields[0].Value)
	assert.Equal(t, "Recent play 1 of 2", embed.Footer.Text)

	env.h.HandleInteraction(env.s, commandInteraction("recent", "u1", strOpt("osu_user", "peppy"), boolOpt("include_fails", false), intOpt("mode", 3)))
	assert.False(t, env.api.lastRecent.IncludeFails)
	assert.Equal(t, osu.ModeMania, env.api.lastRecent.Mode)
}

func TestRecentCommand_NoScores(t *testing.T) {
	env := newTestEnv(t)
	env.api.users["peppy"] = peppy()

	env.h.HandleInteraction(env.s, commandInteraction("recent", "u1", strOpt("osu_user", "peppy")))
	assert.Equal(t, env.en("recent.none", locale.Args{"Name": "peppy", "Mode": "osu!"}), *env.s.lastEdit(t).Content)
	assert.Equal(t, 0, env.h.views.Len())
}

func TestBestCommand_PagingAndJump(t *testing.T) {
	env := newTestEnv(t)
	env.api.users["peppy"] = peppy()
	env.api.best = scores(3)

	env.h.HandleInteraction(env.s, commandInteraction("best", "u1", strOpt("osu_user", "peppy"), intOpt("bp_rank", 2)))
	assert.Equal(t, osu.MaxBestScores, env.api.lastBest)

	edit := env.s.lastEdit(t)
	assert.Equal(t, "Best performance #2 of 3", (*edit.Embeds)[0].Footer.Text)
	ids := customIDs(*edit.Components)
	require.Len(t, ids, 3)
	viewID := strings.Split(ids[0], ":")[1]
	assert.Equal(t, []string{"score:" + viewID + ":prev", "score:" + viewID + ":next", "score:" + viewID + ":jump"}, ids)

	env.h.HandleInteraction(env.s, componentInteraction("score:"+viewID+":next", "u1"))
	resp := env.s.lastResponse(t)
	assert.Equal(t, discordgo.InteractionResponseUpdateMessage, resp.Type)
	assert.Equal(t, "Best performance #3 of 3", resp.Data.Embeds[0].Footer.Text)
	assert.True(t, findButton(t, resp.Data.Components, "score:"+viewID+":next").Disabled)

	// Past the end stays on the last score.
	env.h.HandleInteraction(env.s, componentInteraction("score:"+viewID+":next", "u1"))
	assert.Equal(t, "Best performance #3 of 3", env.s.lastResponse(t).Data.Embeds[0].Footer.Text)

	env.h.HandleInteraction(env.s, componentInteraction("score:"+viewID+":jump", "u1"))
	resp = env.s.lastResponse(t)
	assert.Equal(t, discordgo.InteractionResponseModal, resp.Type)
	assert.Equal(t, "scorejump:"+viewID, resp.Data.CustomID)

	env.h.HandleInteraction(env.s, modalInteraction("scorejump:"+viewID, "u1", map[string]string{"rank": " 1 "}))
	resp = env.s.lastResponse(t)
	assert.Equal(t, "Best performance #1 of 3", resp.Data.Embeds[0].Footer.Text)
	assert.True(t, findButton(t, resp.Data.Components, "score:"+viewID+":prev").Disabled)

	env.h.HandleInteraction(env.s, modalInteraction("scorejump:"+viewID, "u1", map[string]string{"rank": "9"}))
	assert.Equal(t, env.en("best.jump_invalid", locale.Args{"Total": 3}), env.s.lastResponse(t).Data.Content)

	env.h.HandleInteraction(env.s, componentInteraction("score:"+viewID+":prev", "someone-else"))
	assert.Equal(t, env.en("error.not_your_view", nil), env.s.lastResponse(t).Data.Content)
}

func TestBestCommand_RankOutOfRange(t *testing.T) {
	env := newTestEnv(t)
	env.api.users["peppy"] = peppy()
	env.api.best = scores(2)

	env.h.HandleInteraction(env.s, commandInteraction("best", "u1", strOpt("osu_user", "peppy"), intOpt("bp_rank", 5)))
	want := env.en("best.rank_out_of_range", locale.Args{"Name": "peppy", "Mode": "osu!", "Total": 2})
	assert.Equal(t, want, *env.s.lastEdit(t).Content)
}

func TestScoreComponent_ExpiredView(t *testing.T) {
	env := newTestEnv(t)

	env.h.HandleInteraction(env.s, componentInteraction("score:gone:next", "u1"))
	assert.Equal(t, env.en("error.view_expired", nil), env.s.lastResponse(t).Data.Content)
}

func TestSetAndUnsetUser(t *testing.T) {
	env := newTestEnv(t)
	env.api.users["peppy"] = peppy()
	env.api.users["2"] = peppy()

	env.h.HandleInteraction(env.s, commandInteraction("setuser", "u1"))
	assert.Equal(t, env.en("setuser.none", nil), *env.s.lastEdit(t).Content)

	env.h.HandleInteraction(env.s, commandInteraction("setuser", "u1", strOpt("osu_user", "peppy")))
	assert.Equal(t, env.en("setuser.success", locale.Args{"Name": "peppy"}), *env.s.lastEdit(t).Content)
	bound, ok := env.bindings.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "2", bound)

	env.h.HandleInteraction(env.s, commandInteraction("setuser", "u1"))
	assert.Equal(t, env.en("setuser.current", locale.Args{"Name": "peppy"}), *env.s.lastEdit(t).Content)

	env.h.HandleInteraction(env.s, commandInteraction("setuser", "u1", strOpt("osu_user", "ghost")))
	assert.Equal(t, env.en("error.user_not_found", locale.Args{"User": "ghost"}), *env.s.lastEdit(t).Content)
	bound, _ = env.bindings.Get("u1")
	assert.Equal(t, "2", bound)

	env.h.HandleInteraction(env.s, commandInteraction("unsetuser", "u1"))
	assert.Equal(t, env.en("unsetuser.success", nil), env.s.lastResponse(t).Data.Content)
	env.h.HandleInteraction(env.s, commandInteraction("unsetuser", "u1"))
	assert.Equal(t, env.en("unsetuser.not_bound", nil), env.s.lastResponse(t).Data.Content)
}

func TestPPCommand(t *testing.T) {
	env := newTestEnv(t)
	pp := 321.5
	set := &osu.Beatmapset{
		ID: 1, Artist: "Artist", Title: "Song", Creator: "Mapper",
		Beatmaps: []osu.Beatmap{
			{ID: 12, Version: "Insane", Mode: "osu", DifficultyRating: 5.1, Status: "ranked", TotalLength: 125},
			{ID: 11, Version: "Normal", Mode: "osu", DifficultyRating: 2.3, Status: "ranked", TotalLength: 125},
		},
	}
	env.api.sets = map[int]*osu.Beatmapset{1: set}
	env.api.attrs = &osu.DifficultyAttributes{StarRating: 5.5, MaxCombo: 900, PP: &pp}

	env.h.HandleInteraction(env.s, commandInteraction("pp", "u1", strOpt("url", "https://osu.ppy.sh/beatmapsets/1#osu/12")))

	edit := env.s.lastEdit(t)
	embed := (*edit.Embeds)[0]
	assert.Equal(t, "Artist - Song [Insane]", embed.Title)
	assert.Equal(t, "Difficulty 2 of 2", embed.Footer.Text)
	assert.Contains(t, fieldValues(embed), "321.50pp")
	assert.Contains(t, fieldValues(embed), "2:05")

	ids := customIDs(*edit.Components)
	require.Len(t, ids, 3)
	viewID := strings.Split(ids[0], ":")[1]

	env.h.HandleInteraction(env.s, componentInteraction("pp:"+viewID+":mods", "u1", "DT", "HD"))
	assert.Equal(t, discordgo.InteractionResponseDeferredMessageUpdate, env.s.lastResponse(t).Type)
	assert.Equal(t, []string{"HD", "DT"}, env.api.lastMods)
	assert.Contains(t, fieldValues((*env.s.lastEdit(t).Embeds)[0]), "HDDT")

	env.h.HandleInteraction(env.s, componentInteraction("pp:"+viewID+":prev", "u1"))
	assert.Equal(t, "Artist - Song [Normal]", (*env.s.lastEdit(t).Embeds)[0].Title)
}

func TestPPCommand_InvalidURL(t *testing.T) {
	env := newTestEnv(t)

	env.h.HandleInteraction(env.s, commandInteraction("pp", "u1", strOpt("url", "https://example.com")))
	assert.Equal(t, env.en("error.invalid_url", nil), env.s.lastResponse(t).Data.Content)

	env.h.HandleInteraction(env.s, commandInteraction("pp", "u1", strOpt("url", "https://osu.ppy.sh/b/999")))
	assert.Equal(t, env.en("error.beatmap_not_found", nil), *env.s.lastEdit(t).Content)
}

func TestMapperCommand(t *testing.T) {
	env := newTestEnv(t)
	env.api.users["peppy"] = peppy()

	env.h.HandleInteraction(env.s, commandInteraction("mapper", "u1", strOpt("osu_user", "peppy")))
	assert.Equal(t, env.en("mapper.none", locale.Args{"Name": "peppy"}), *env.s.lastEdit(t).Content)

	env.api.mapperSet = []osu.Beatmapset{
		{ID: 1, Artist: "A", Title: "One", Status: "ranked", FavouriteCount: 3},
		{ID: 2, Artist: "B", Title: "Two", Status: "graveyard"},
	}
	env.h.HandleInteraction(env.s, commandInteraction("mapper", "u1", strOpt("osu_user", "peppy")))
	embed := (*env.s.lastEdit(t).Embeds)[0]
	assert.Equal(t, env.en("mapper.title", locale.Args{"Name": "peppy"}), embed.Title)
	assert.Contains(t, embed.Description, "Ranked")
	assert.Contains(t, embed.Description, "Graveyard")
	assert.NotContains(t, embed.Description, "Loved")
}

func fieldValues(e *discordgo.MessageEmbed) []string {
	out := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		out = append(out, f.Value)
	}
	return out
}

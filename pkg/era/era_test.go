package era

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osubot/pkg/cache"
)

func seeded() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

func TestLocationKeys(t *testing.T) {
	for _, l := range AllLocations {
		got, ok := ParseLocation(l.Key())
		require.True(t, ok, l.Key())
		assert.Equal(t, l, got)
	}
	_, ok := ParseLocation("moon")
	assert.False(t, ok)
	assert.Equal(t, "unknown", Location(99).Key())
}

func TestConnections(t *testing.T) {
	assert.True(t, Connected(HakureiShrine, HumanVillage))
	assert.False(t, Connected(HakureiShrine, ScarletManor))
	assert.True(t, Connected(Underground, MoriyaShrine))
	assert.False(t, Connected(MoriyaShrine, Underground))
}

func TestCharactersAt(t *testing.T) {
	var keys []string
	for _, c := range CharactersAt(HakureiShrine) {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"reimu", "marisa", "yukari"}, keys)
	assert.Empty(t, CharactersAt(Eientei))
}

func TestPlayerClock(t *testing.T) {
	p := NewPlayer("u1")
	assert.Equal(t, "06:00", p.Clock())
	assert.Equal(t, Morning, p.Period())

	p.Advance(17*60 + 30)
	assert.Equal(t, "23:30", p.Clock())
	assert.Equal(t, Night, p.Period())
	assert.Equal(t, 1, p.Day)

	p.Advance(45)
	assert.Equal(t, "00:15", p.Clock())
	assert.Equal(t, 2, p.Day)
}

func TestAffectionClamped(t *testing.T) {
	p := NewPlayer("u1")
	assert.Equal(t, MaxAffection, p.AddAffection(1, 5000))
	assert.Equal(t, MinAffection, p.AddAffection(1, -5000))
}

func TestRelationshipFor(t *testing.T) {
	cases := map[int]Relationship{
		-50: Stranger,
		99:  Stranger,
		100: Acquaintance,
		300: Friend,
		500: GoodFriend,
		700: Close,
		900: Lover,
	}
	for aff, want := range cases {
		assert.Equal(t, want, RelationshipFor(aff), "affection %d", aff)
	}
}

func TestExecute_Talk(t *testing.T) {
	m := NewCommandManager(seeded())
	p := NewPlayer("u1")
	reimu, _ := CharacterByID(1)

	res, err := m.Execute(p, reimu, ActionTalk)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, strings.HasPrefix(res.Key, "era.talk."))
	assert.GreaterOrEqual(t, res.AffectionDelta, 1)
	assert.LessOrEqual(t, res.AffectionDelta, 5)
	assert.Equal(t, res.AffectionDelta, p.AffectionFor(1))
	assert.Equal(t, "06:10", p.Clock())
}

func TestExecute_Gift(t *testing.T) {
	m := NewCommandManager(seeded())
	p := NewPlayer("u1")
	reimu, _ := CharacterByID(1)

	res, err := m.Execute(p, reimu, ActionGift)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, StartMoney-GiftCost, p.Money)

	p.Money = 10
	res, err = m.Execute(p, reimu, ActionGift)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "era.gift.no_money", res.Key)
	assert.Equal(t, 10, p.Money)
}

func TestExecute_HugRefusedByStrangers(t *testing.T) {
	m := NewCommandManager(seeded())
	p := NewPlayer("u1")
	reimu, _ := CharacterByID(1)

	res, err := m.Execute(p, reimu, ActionHug)
	require.NoError(t, err)
	assert.Equal(t, "era.hug.refused", res.Key)
	assert.Equal(t, -3, p.AffectionFor(1))

	p.Affection[1] = 300
	res, err = m.Execute(p, reimu, ActionHug)
	require.NoError(t, err)
	assert.Equal(t, "era.hug.ok", res.Key)
	assert.Greater(t, p.AffectionFor(1), 300)
}

func TestExecute_Confess(t *testing.T) {
	m := NewCommandManager(seeded())
	p := NewPlayer("u1")
	reimu, _ := CharacterByID(1)

	res, err := m.Execute(p, reimu, ActionConfess)
	require.NoError(t, err)
	assert.Equal(t, "era.action.locked", res.Key)
	assert.Zero(t, p.AffectionFor(1))

	p.Affection[1] = 750
	res, err = m.Execute(p, reimu, ActionConfess)
	require.NoError(t, err)
	assert.Equal(t, "era.confess.later", res.Key)
	assert.Equal(t, 760, p.AffectionFor(1))

	p.Affection[1] = 850
	res, err = m.Execute(p, reimu, ActionConfess)
	require.NoError(t, err)
	assert.Equal(t, "era.confess.accepted", res.Key)
	assert.True(t, res.BecameLover)
	assert.True(t, p.IsLover(1))
	assert.Equal(t, 950, p.AffectionFor(1))

	res, err = m.Execute(p, reimu, ActionConfess)
	require.NoError(t, err)
	assert.Equal(t, "era.confess.already", res.Key)
	assert.Equal(t, []int{1}, p.Lovers)
}

func TestExecute_UnknownAction(t *testing.T) {
	m := NewCommandManager(seeded())
	reimu, _ := CharacterByID(1)
	_, err := m.Execute(NewPlayer("u1"), reimu, Action("dance"))
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestGame_Lifecycle(t *testing.T) {
	ctx := context.Background()
	g := NewGame(WithRand(seeded()))

	_, err := g.Status(ctx, "u1")
	assert.ErrorIs(t, err, ErrNoSave)

	p := g.Start(ctx, "u1")
	assert.Equal(t, HakureiShrine, p.Location)
	assert.Contains(t, []int{1, 11, 26}, p.Target)

	_, err = g.Move(ctx, "u1", HakureiShrine)
	assert.ErrorIs(t, err, ErrSameLocation)
	_, err = g.Move(ctx, "u1", ScarletManor)
	assert.ErrorIs(t, err, ErrNotConnected)
	_, err = g.Move(ctx, "u1", Location(42))
	assert.ErrorIs(t, err, ErrUnknownPlace)

	p, err = g.Move(ctx, "u1", MagicForest)
	require.NoError(t, err)
	assert.Equal(t, MagicForest, p.Location)
	assert.Equal(t, 11, p.Target)
	assert.Equal(t, "06:30", p.Clock())

	res, p, err := g.Act(ctx, "u1", ActionTea)
	require.NoError(t, err)
	assert.Equal(t, "era.tea", res.Key)
	assert.Equal(t, res.Affection, p.AffectionFor(11))

	// Returned saves are copies.
	p.Affection[11] = 999
	again, err := g.Status(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, res.Affection, again.AffectionFor(11))

	assert.True(t, g.Reset(ctx, "u1"))
	assert.False(t, g.Reset(ctx, "u1"))
	_, err = g.Status(ctx, "u1")
	assert.ErrorIs(t, err, ErrNoSave)
}

func TestGame_NobodyHere(t *testing.T) {
	ctx := context.Background()
	g := NewGame(WithRand(seeded()))
	g.Start(ctx, "u1")
	_, err := g.Move(ctx, "u1", HumanVillage)
	require.NoError(t, err)

	_, _, err = g.Act(ctx, "u1", ActionTalk)
	assert.ErrorIs(t, err, ErrNobodyHere)
}

func TestGame_RedisMirror(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisCache("redis://"+mr.Addr(), "osubot")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	g := NewGame(WithRand(seeded()), WithMirror(c, cache.GameSaveTTL))
	g.Start(ctx, "u1")
	_, err = g.Move(ctx, "u1", MagicForest)
	require.NoError(t, err)
	assert.True(t, mr.Exists("osubot:era:u1"))

	// A fresh process picks the save up from Redis.
	restored := NewGame(WithRand(seeded()), WithMirror(c, cache.GameSaveTTL))
	p, err := restored.Status(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, MagicForest, p.Location)
	assert.Equal(t, 11, p.Target)

	restored.Reset(ctx, "u1")
	assert.False(t, mr.Exists("osubot:era:u1"))

	mr.FastForward(time.Hour)
	_, err = restored.Status(ctx, "u1")
	assert.ErrorIs(t, err, ErrNoSave)
}

func TestGame_MirrorFailureIsNotMissingSave(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisCache("redis://"+mr.Addr(), "osubot")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	require.NoError(t, mr.Set("osubot:era:u1", "{not json"))
	g := NewGame(WithRand(seeded()), WithMirror(c, cache.GameSaveTTL))
	_, err = g.Status(ctx, "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSave)
	assert.Contains(t, err.Error(), "u1")

	mr.Close()
	_, err = g.Status(ctx, "u2")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSave)
}

func TestCharacterTable(t *testing.T) {
	label := func(key string) string { return key[strings.LastIndex(key, ".")+1:] }

	p := NewPlayer("u1")
	assert.Equal(t, "empty", CharacterTable(p, label))

	p.Affection[1] = 950
	p.Affection[15] = 120
	p.Lovers = []int{1}
	out := CharacterTable(p, label)
	assert.Contains(t, out, "reimu 💕")
	assert.Contains(t, out, "sakuya")
	assert.Contains(t, out, "acquaintance")
	assert.Contains(t, out, "┌")
	assert.NotContains(t, out, "marisa")
}

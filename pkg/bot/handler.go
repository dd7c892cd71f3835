package bot

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"osubot/pkg/copypasta"
	"osubot/pkg/era"
	"osubot/pkg/keyword"
	"osubot/pkg/locale"
	"osubot/pkg/osu"
	"osubot/pkg/store"
	"osubot/pkg/tracker"
)

// commandTimeout bounds the osu! API work behind one interaction.
const commandTimeout = 15 * time.Second

// Deps are the services the handler is built from. Files, Pastas,
// Keywords and Game may be nil; the commands using them then answer
// with an "unavailable" message.
type Deps struct {
	Osu          OsuAPI
	Files        BeatmapFiles
	Localizer    *locale.Localizer
	Bindings     *store.JSONFile[string]
	Tracker      *tracker.MessageTracker
	Pastas       *copypasta.Collection
	Keywords     *keyword.Registry
	Game         *era.Game
	BestScoreCap int
	// DefaultMode is used when neither the command nor the player's
	// profile names a valid mode.
	DefaultMode osu.Mode
}

type Handler struct {
	osu      OsuAPI
	files    BeatmapFiles
	l10n     *locale.Localizer
	bindings *store.JSONFile[string]
	tracker  *tracker.MessageTracker
	pastas   *copypasta.Collection
	keywords *keyword.Registry
	game     *era.Game
	views    *ViewStore
	bestCap  int
	mode     osu.Mode

	// mu guards botID and session, which Ready replaces on every reconnect.
	mu       sync.RWMutex
	botID    string
	session  Session
	rotation sync.Once

	wg   sync.WaitGroup
	stop chan struct{}
	once sync.Once
}

func NewHandler(d Deps) *Handler {
	h := &Handler{
		osu:      d.Osu,
		files:    d.Files,
		l10n:     d.Localizer,
		bindings: d.Bindings,
		tracker:  d.Tracker,
		pastas:   d.Pastas,
		keywords: d.Keywords,
		game:     d.Game,
		views:    NewViewStore(ViewTTL),
		bestCap:  d.BestScoreCap,
		mode:     d.DefaultMode,
		stop:     make(chan struct{}),
	}
	if h.tracker == nil {
		h.tracker = tracker.New(tracker.DefaultMaxSize)
	}
	if h.bestCap <= 0 || h.bestCap > osu.MaxBestScores {
		h.bestCap = osu.MaxBestScores
	}
	if !h.mode.Valid() {
		h.mode = osu.ModeOsu
	}

	h.wg.Add(1)
	go h.sweepViews()

	return h
}

func (h *Handler) SetBotID(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.botID = id
}

func (h *Handler) botUserID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.botID
}

func (h *Handler) currentSession() Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.session
}

// Ready is the discordgo ready handler. Discord sends it again after
// every reconnect, so only the first call starts the presence rotation.
func (h *Handler) Ready(s *discordgo.Session, r *discordgo.Ready) {
	h.ready(&DiscordSession{s}, r.User)
}

func (h *Handler) ready(s Session, user *discordgo.User) {
	h.mu.Lock()
	h.botID = user.ID
	h.session = s
	h.mu.Unlock()
	zap.S().Infof("[Bot] Logged in as %s#%s", user.Username, user.Discriminator)

	h.rotation.Do(func() {
		h.wg.Add(1)
		go h.runStatusRotation()
	})
}

func (h *Handler) MessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	h.HandleMessage(&DiscordSession{s}, m)
}

// HandleMessage answers keyword triggers in guild channels.
func (h *Handler) HandleMessage(s Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == h.botUserID() || m.Author.Bot {
		return
	}
	if m.GuildID == "" || h.keywords == nil {
		return
	}

	response, ok := h.keywords.Match(m.GuildID, m.Content)
	if !ok {
		return
	}

	sent, err := s.ChannelMessageSendReply(m.ChannelID, response, m.Reference())
	if err != nil {
		zap.S().Errorf("[Keyword] Failed to reply in %s: %v", m.ChannelID, err)
		return
	}
	h.tracker.Track(sent.ID, m.Author.ID)
	zap.S().Debugf("[Keyword] Triggered %q in guild %s", strings.TrimSpace(m.Content), m.GuildID)
}

func (h *Handler) sweepViews() {
	defer h.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			if n := h.views.Sweep(); n > 0 {
				zap.S().Debugf("[Views] Expired %d views", n)
			}
		}
	}
}

// Close stops the background goroutines and waits for them.
func (h *Handler) Close() {
	h.once.Do(func() { close(h.stop) })
	h.wg.Wait()
}

func (h *Handler) commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), commandTimeout)
}

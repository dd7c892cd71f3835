package bot

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const statusInterval = 15 * time.Minute

type presence struct {
	kind  discordgo.ActivityType
	text  string
	emoji string
}

var presences = []presence{
	{discordgo.ActivityTypeGame, "osu!", ""},
	{discordgo.ActivityTypeCustom, "Type /help to get started", "❔"},
	{discordgo.ActivityTypeWatching, "the ranked queue", ""},
	{discordgo.ActivityTypeListening, "/recent requests", ""},
	{discordgo.ActivityTypeCustom, "Clicking circles", "🎯"},
}

// presenceAt picks the activity for a point in time. The rotation is
// aligned to statusInterval so restarts keep the same schedule.
func presenceAt(t time.Time) presence {
	slot := t.Unix() / int64(statusInterval/time.Second)
	return presences[int(slot%int64(len(presences)))]
}

func (h *Handler) runStatusRotation() {
	defer h.wg.Done()

	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		h.updateStatus(time.Now())
		select {
		case <-h.stop:
			return
		case <-ticker.C:
		}
	}
}

func (h *Handler) updateStatus(now time.Time) {
	session := h.currentSession()
	if session == nil {
		return
	}
	p := presenceAt(now)

	activity := &discordgo.Activity{Name: p.text, Type: p.kind}
	if p.kind == discordgo.ActivityTypeCustom {
		activity.Name = "Custom Status"
		activity.State = p.text
		activity.Emoji = discordgo.Emoji{Name: p.emoji}
	}

	err := session.UpdateStatusComplex(discordgo.UpdateStatusData{
		Activities: []*discordgo.Activity{activity},
		Status:     "online",
		AFK:        false,
	})
	if err != nil {
		zap.S().Errorf("[Bot] Error updating status: %v", err)
	}
}

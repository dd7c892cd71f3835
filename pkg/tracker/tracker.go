package tracker

import (
	"container/list"
	"sync"

	"go.uber.org/zap"
)

const DefaultMaxSize = 10000

type entry struct {
	messageID string
	userID    string
}

// MessageTracker remembers which user triggered each bot message so the
// delete context menu can check permissions. It lives in memory only.
type MessageTracker struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List
	index   map[string]*list.Element
}

type Stats struct {
	Total        int
	MaxSize      int
	UsagePercent int
}

func New(maxSize int) *MessageTracker {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &MessageTracker{
		maxSize: maxSize,
		order:   list.New(),
		index:   make(map[string]*list.Element),
	}
}

// Track records messageID → userID. When full, the oldest tenth (at
// least one entry) is dropped first.
func (t *MessageTracker) Track(messageID, userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if el, ok := t.index[messageID]; ok {
		el.Value.(*entry).userID = userID
		return
	}
	if len(t.index) >= t.maxSize {
		t.evictLocked()
	}
	t.index[messageID] = t.order.PushBack(&entry{messageID: messageID, userID: userID})
	zap.S().Debugf("[Tracker] Tracking message %s for user %s", messageID, userID)
}

func (t *MessageTracker) evictLocked() {
	n := max(1, t.maxSize/10)
	for i := 0; i < n; i++ {
		front := t.order.Front()
		if front == nil {
			break
		}
		t.order.Remove(front)
		delete(t.index, front.Value.(*entry).messageID)
	}
	zap.S().Infof("[Tracker] Evicted %d old entries (%d remaining)", n, len(t.index))
}

// TriggerUser returns who triggered messageID.
func (t *MessageTracker) TriggerUser(messageID string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	el, ok := t.index[messageID]
	if !ok {
		return "", false
	}
	return el.Value.(*entry).userID, true
}

func (t *MessageTracker) Remove(messageID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if el, ok := t.index[messageID]; ok {
		t.order.Remove(el)
		delete(t.index, messageID)
	}
}

func (t *MessageTracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{
		Total:        len(t.index),
		MaxSize:      t.maxSize,
		UsagePercent: len(t.index) * 100 / t.maxSize,
	}
}

func (t *MessageTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(t.index)
	t.order.Init()
	t.index = make(map[string]*list.Element)
	zap.S().Infof("[Tracker] Cleared %d entries", n)
}

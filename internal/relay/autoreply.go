package relay

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// AutoReplier fires a single canned support reply into a room a fixed delay
// after each user message. Timers are tracked per room+message so shutdown
// can cancel anything still pending; a room that emptied before the timer
// fires simply gets a broadcast with no recipients.
type AutoReplier struct {
	hub   *Hub
	delay time.Duration
	text  string

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

func NewAutoReplier(hub *Hub, delay time.Duration, text string) *AutoReplier {
	return &AutoReplier{
		hub:    hub,
		delay:  delay,
		text:   text,
		timers: make(map[string]*time.Timer),
	}
}

// Schedule arms a one-shot reply to roomID keyed by the triggering message
// id. Scheduling after Stop is a no-op.
func (a *AutoReplier) Schedule(roomID, messageID string) {
	key := roomID + "/" + messageID
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	if _, ok := a.timers[key]; ok {
		return
	}
	a.timers[key] = time.AfterFunc(a.delay, func() {
		a.fire(key, roomID)
	})
}

func (a *AutoReplier) fire(key, roomID string) {
	a.mu.Lock()
	delete(a.timers, key)
	stopped := a.stopped
	a.mu.Unlock()
	if stopped {
		return
	}
	a.hub.BroadcastRoom(roomID, Event{
		Type:      EvReceiveMsg,
		ID:        uuid.NewString(),
		Text:      a.text,
		Sender:    RoleSupport,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Stop cancels every pending reply. Used on shutdown.
func (a *AutoReplier) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopped = true
	for key, t := range a.timers {
		t.Stop()
		delete(a.timers, key)
	}
}

// Pending reports how many replies are armed.
func (a *AutoReplier) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.timers)
}

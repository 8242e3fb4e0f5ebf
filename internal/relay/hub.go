package relay

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub owns all shared relay state: the set of live connections, the
// userID -> connection presence map and the room membership sets. Go runs
// handlers on many goroutines, so unlike a single-threaded event loop every
// access goes through the mutex.
type Hub struct {
	mu sync.Mutex

	clients  map[*Client]bool
	presence map[string]*Client            // userID -> last connection to announce itself
	rooms    map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		clients:  make(map[*Client]bool),
		presence: make(map[string]*Client),
		rooms:    make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	log.Printf("[hub] connection %s opened (total: %d)", c.ConnID, n)
}

// Unregister removes the connection from every room and, if it is still the
// live connection for its user, drops the presence entry and broadcasts
// offline. A connection that never announced presence, or whose presence
// entry was overwritten by a newer connection, leaves the registry untouched.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for _, members := range h.rooms {
		delete(members, c)
	}
	for id, members := range h.rooms {
		if len(members) == 0 {
			delete(h.rooms, id)
		}
	}

	var offline string
	if c.UserID != "" && h.presence[c.UserID] == c {
		delete(h.presence, c.UserID)
		offline = c.UserID
	}
	close(c.send)
	h.mu.Unlock()

	log.Printf("[hub] connection %s closed", c.ConnID)
	if offline != "" {
		h.BroadcastAll(Event{Type: EvUserStatus, UserID: offline, Status: "offline"})
	}
}

// SetOnline records c as the live connection for userID, overwriting any
// prior connection's entry (last-write-wins), and broadcasts online status
// to every connected party.
func (h *Hub) SetOnline(c *Client, userID string) {
	h.mu.Lock()
	c.UserID = userID
	h.presence[userID] = c
	h.mu.Unlock()

	h.BroadcastAll(Event{Type: EvUserStatus, UserID: userID, Status: "online"})
}

// Lookup returns the connection id currently registered for userID. Used by
// external collaborators (push dispatch) to target a live connection.
func (h *Hub) Lookup(userID string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.presence[userID]
	if !ok {
		return "", false
	}
	return c.ConnID, true
}

// Join adds c to the room, creating it on first join. Joining twice is a
// no-op.
func (h *Hub) Join(c *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][c] = true
}

// RoomHasAgent reports whether any current member of the room is an
// authenticated support agent.
func (h *Hub) RoomHasAgent(roomID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.rooms[roomID] {
		if c.Role == RoleSupport {
			return true
		}
	}
	return false
}

// BroadcastAll sends the event to every connected client.
func (h *Hub) BroadcastAll(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[hub] marshal %s: %v", ev.Type, err)
		return
	}
	h.mu.Lock()
	for c := range h.clients {
		h.push(c, payload)
	}
	h.mu.Unlock()
}

// BroadcastRoom sends the event to every member of the room, sender
// included. An unknown or empty room delivers to nobody.
func (h *Hub) BroadcastRoom(roomID string, ev Event) {
	h.broadcastRoom(roomID, nil, ev)
}

// BroadcastRoomExcept sends the event to every member of the room except
// skip. Used for typing signals, which the sender must not receive back.
func (h *Hub) BroadcastRoomExcept(roomID string, skip *Client, ev Event) {
	h.broadcastRoom(roomID, skip, ev)
}

func (h *Hub) broadcastRoom(roomID string, skip *Client, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[hub] marshal %s: %v", ev.Type, err)
		return
	}
	h.mu.Lock()
	for c := range h.rooms[roomID] {
		if c == skip {
			continue
		}
		h.push(c, payload)
	}
	h.mu.Unlock()
}

// push enqueues a payload on the client's send channel, dropping the client
// if its buffer is full. Callers must hold h.mu.
func (h *Hub) push(c *Client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		// slow/broken client; the write pump exits once the channel closes
		delete(h.clients, c)
		for _, members := range h.rooms {
			delete(members, c)
		}
		if c.UserID != "" && h.presence[c.UserID] == c {
			delete(h.presence, c.UserID)
		}
		close(c.send)
		log.Printf("[hub] dropped slow connection %s", c.ConnID)
	}
}

// OnlineCount reports how many users currently have a presence entry.
func (h *Hub) OnlineCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.presence)
}

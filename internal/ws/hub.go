// Package ws implements the real-time channel: the connection registry, the
// token handshake, admin command dispatch and targeted notification
// delivery. Admin connections receive periodic metrics snapshots and may
// issue commands; user connections receive only their own notifications.
package ws

import (
	"fmt"
	"sync"
	"time"

	"stride/internal/models"
	"stride/internal/telemetry"
	"stride/internal/utils"
)

// ConnectionInfo is the registry view of one open connection.
type ConnectionInfo struct {
	ID           string    `json:"id"`
	Role         string    `json:"role"`
	UserID       string    `json:"userId,omitempty"`
	RemoteAddr   string    `json:"remoteAddr"`
	ConnectedAt  time.Time `json:"connectedAt"`
	LastActivity time.Time `json:"lastActivity"`
}

// Hub is the connection registry. Entries exist only for connections that
// completed the auth handshake; one user may hold several concurrent entries.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	byUser  map[string]map[*Client]struct{}

	tele *telemetry.Telemetry
	log  *utils.Logger

	// onDisconnect triggers the out-of-cycle snapshot broadcast so a registry
	// size change is visible before the next timer tick.
	onDisconnect func()
}

// NewHub returns an empty registry.
func NewHub(tele *telemetry.Telemetry, log *utils.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		byUser:  make(map[string]map[*Client]struct{}),
		tele:    tele,
		log:     log,
	}
}

// OnDisconnect registers the hook run after a connection is removed.
func (h *Hub) OnDisconnect(fn func()) {
	h.mu.Lock()
	h.onDisconnect = fn
	h.mu.Unlock()
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	if c.UserID != "" {
		set := h.byUser[c.UserID]
		if set == nil {
			set = make(map[*Client]struct{})
			h.byUser[c.UserID] = set
		}
		set[c] = struct{}{}
	}
	h.mu.Unlock()

	h.tele.Activity.Add(models.ActivityRecord{
		Service: serviceForRole(c.Role),
		Message: fmt.Sprintf("Client %s connected", shortID(c.ID)),
		Type:    models.ActivitySuccess,
	})
	h.log.Writef("WebSocket client %s connected (%s, %s)", shortID(c.ID), c.Role, c.RemoteAddr)
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, present := h.clients[c]
	if present {
		delete(h.clients, c)
		if c.UserID != "" {
			if set := h.byUser[c.UserID]; set != nil {
				delete(set, c)
				if len(set) == 0 {
					delete(h.byUser, c.UserID)
				}
			}
		}
	}
	hook := h.onDisconnect
	h.mu.Unlock()

	if !present {
		return
	}

	h.tele.Activity.Add(models.ActivityRecord{
		Service: serviceForRole(c.Role),
		Message: fmt.Sprintf("Client %s disconnected", shortID(c.ID)),
		Type:    models.ActivityInfo,
	})
	h.log.Writef("WebSocket client %s disconnected", shortID(c.ID))

	if hook != nil {
		hook()
	}
}

// ClientCount reports the number of open connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// AdminCount reports the number of open admin connections.
func (h *Hub) AdminCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for c := range h.clients {
		if c.Role == models.RoleAdmin {
			n++
		}
	}
	return n
}

// EmitAdmin pushes an event to every open admin connection. Delivery is
// best-effort: a client whose send buffer is full misses this event rather
// than stalling the caller or other clients.
func (h *Hub) EmitAdmin(event string, data interface{}) {
	env := Envelope{Type: event, Data: data}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.Role != models.RoleAdmin {
			continue
		}
		c.trySend(env)
	}
}

// EmitUser pushes an event to every open connection belonging to the user
// and returns how many connections it was queued on.
func (h *Hub) EmitUser(userID, event string, data interface{}) int {
	env := Envelope{Type: event, Data: data}
	h.mu.RLock()
	defer h.mu.RUnlock()
	sent := 0
	for c := range h.byUser[userID] {
		if c.trySend(env) {
			sent++
		}
	}
	return sent
}

// Entries returns a snapshot of the registry for the system-info endpoint.
func (h *Hub) Entries() []ConnectionInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]ConnectionInfo, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c.info())
	}
	return out
}

// CloseAll disconnects every client. Used at process shutdown. Clients are
// removed from the registry before their send channels close, so an emit
// racing with shutdown sees an empty registry instead of a closed channel.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
		delete(h.clients, c)
	}
	for userID := range h.byUser {
		delete(h.byUser, userID)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func serviceForRole(role string) string {
	if role == models.RoleAdmin {
		return "ADMIN_WEBSOCKET"
	}
	return "WEBSOCKET"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

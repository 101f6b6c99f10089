package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096

	// sendBuffer bounds the per-client outbound queue; a client that falls
	// this far behind starts missing broadcasts instead of blocking the hub.
	sendBuffer = 32
)

// Envelope is the wire frame for every server-to-client message.
type Envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// inbound is the wire frame for client-to-server messages.
type inbound struct {
	Type           string `json:"type"`
	Command        string `json:"command,omitempty"`
	Payload        string `json:"payload,omitempty"`
	NotificationID string `json:"notificationId,omitempty"`
	Service        string `json:"service,omitempty"`
	Message        string `json:"message,omitempty"`
	Kind           string `json:"kind,omitempty"`
}

// Client is one registered connection. Fields other than lastActivity are
// immutable after the handshake.
type Client struct {
	ID          string
	Role        string
	UserID      string
	RemoteAddr  string
	ConnectedAt time.Time

	conn *websocket.Conn
	send chan Envelope

	mu           sync.Mutex
	lastActivity time.Time
	closed       bool
}

func newClient(id, role, userID, remoteAddr string, conn *websocket.Conn) *Client {
	now := time.Now()
	return &Client{
		ID:           id,
		Role:         role,
		UserID:       userID,
		RemoteAddr:   remoteAddr,
		ConnectedAt:  now,
		conn:         conn,
		send:         make(chan Envelope, sendBuffer),
		lastActivity: now,
	}
}

// trySend queues an envelope without blocking. Returns false when the
// client's buffer is full and the message was dropped.
func (c *Client) trySend(env Envelope) bool {
	select {
	case c.send <- env:
		return true
	default:
		return false
	}
}

// touch refreshes the activity timestamp, e.g. on a keep-alive ping.
func (c *Client) touch() {
	c.mu.Lock()
	c.lastActivity = time.Now()
	c.mu.Unlock()
}

func (c *Client) info() ConnectionInfo {
	c.mu.Lock()
	last := c.lastActivity
	c.mu.Unlock()
	return ConnectionInfo{
		ID:           c.ID,
		Role:         c.Role,
		UserID:       c.UserID,
		RemoteAddr:   c.RemoteAddr,
		ConnectedAt:  c.ConnectedAt,
		LastActivity: last,
	}
}

// close shuts the send loop down; safe to call more than once.
func (c *Client) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	close(c.send)
}

// writePump drains the send queue onto the wire and keeps the connection
// alive with protocol pings. One goroutine per client owns all writes.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case env, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"stride/internal/middleware"
	"stride/internal/models"
	"stride/internal/store"
	"stride/internal/telemetry"
	"stride/internal/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Configure properly for production
	},
}

// Backend is the slice of the store the real-time channel needs: aggregate
// stats for the admin command and the read-acknowledgement update.
type Backend interface {
	DatabaseStatistics(ctx context.Context) store.DatabaseStats
	MarkNotificationRead(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error)
}

// Server handles websocket upgrades and per-connection message dispatch.
type Server struct {
	hub     *Hub
	tele    *telemetry.Telemetry
	auth    *middleware.AuthService
	backend Backend
	log     *utils.Logger
}

// NewServer wires the websocket endpoint.
func NewServer(hub *Hub, tele *telemetry.Telemetry, auth *middleware.AuthService, backend Backend, log *utils.Logger) *Server {
	return &Server{hub: hub, tele: tele, auth: auth, backend: backend, log: log}
}

// Hub exposes the registry for snapshot wiring.
func (s *Server) Hub() *Hub { return s.hub }

// HandleWebSocket performs the connection handshake. The token travels as a
// query parameter because browser websocket clients cannot set headers; a
// missing, empty or invalid token rejects the attempt before the upgrade,
// so unauthenticated connections never reach the registry.
func (s *Server) HandleWebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed - no token"})
			return
		}
		claims, err := s.auth.ValidateToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed - invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			s.log.Writef("WebSocket upgrade error: %v", err)
			return
		}

		client := newClient(uuid.NewString(), claims.Role, claims.UserID, c.ClientIP(), conn)
		s.hub.register(client)
		go client.writePump()

		// Admins get an immediate snapshot instead of waiting for the first tick.
		if client.Role == models.RoleAdmin {
			client.trySend(Envelope{Type: "system-metrics", Data: s.tele.Snapshot(c.Request.Context())})
		}

		s.readPump(client)
	}
}

func (s *Server) readPump(c *Client) {
	defer func() {
		s.hub.unregister(c)
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg inbound
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.log.Writef("WebSocket read error for %s: %v", shortID(c.ID), err)
			}
			return
		}
		s.handleMessage(c, msg)
	}
}

func (s *Server) handleMessage(c *Client, msg inbound) {
	switch msg.Type {
	case "ping":
		c.touch()
		c.trySend(Envelope{Type: "pong"})

	case "request-update":
		c.touch()
		if c.Role == models.RoleAdmin {
			c.trySend(Envelope{Type: "system-metrics", Data: s.tele.Snapshot(context.Background())})
		}

	case "admin-command":
		c.touch()
		if c.Role != models.RoleAdmin {
			c.trySend(Envelope{Type: "command-response", Data: CommandResponse{
				Success: false, Error: "Admin connection required",
			}})
			return
		}
		resp := s.runCommand(context.Background(), msg.Command, msg.Payload)
		c.trySend(Envelope{Type: "command-response", Data: resp})

	case "mark_notification_read":
		c.touch()
		s.markNotificationRead(c, msg.NotificationID)

	case "log-activity":
		c.touch()
		service := msg.Service
		if service == "" {
			service = "CLIENT"
		}
		kind := msg.Kind
		if kind == "" {
			kind = models.ActivityInfo
		}
		s.tele.Activity.Add(models.ActivityRecord{
			Service: service,
			Message: msg.Message,
			Type:    kind,
		})
	}
}

// markNotificationRead flips the persisted flag and echoes the updated record
// back on the same connection, mirroring the REST update path.
func (s *Server) markNotificationRead(c *Client, notificationID string) {
	if s.backend == nil {
		return
	}
	id, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		s.log.Writef("Invalid notification id from %s: %q", shortID(c.ID), notificationID)
		return
	}
	userID, err := primitive.ObjectIDFromHex(c.UserID)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	updated, err := s.backend.MarkNotificationRead(ctx, id, userID)
	if err != nil {
		s.log.Writef("Error marking notification %s as read: %v", notificationID, err)
		return
	}
	c.trySend(Envelope{Type: "notification_read", Data: updated})
}

package ws

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"stride/internal/models"
	"stride/internal/utils"
)

// NotificationStore persists notification records.
type NotificationStore interface {
	InsertNotification(ctx context.Context, n *models.Notification) error
}

// UserEmitter delivers an event to every open connection of one user,
// returning how many connections received it.
type UserEmitter interface {
	EmitUser(userID, event string, data interface{}) int
}

// Notifier creates persisted per-user notifications and pushes them to the
// owner's active connections. Persistence always precedes delivery: a record
// that failed to persist is never pushed, and a record with no open
// connections stays persisted for the next REST fetch.
type Notifier struct {
	store   NotificationStore
	emitter UserEmitter
	log     *utils.Logger
}

// NewNotifier wires the dispatcher.
func NewNotifier(store NotificationStore, emitter UserEmitter, log *utils.Logger) *Notifier {
	return &Notifier{store: store, emitter: emitter, log: log}
}

// Send persists a notification and fans it out to the target user's open
// connections. On persistence failure no delivery happens and the error is
// returned; callers treat a failed dispatch as a non-fatal side effect.
func (n *Notifier) Send(ctx context.Context, userID primitive.ObjectID, title, message, kind string) (*models.Notification, error) {
	if kind == "" {
		kind = models.NotificationSystem
	}
	note := &models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    kind,
	}
	if err := n.store.InsertNotification(ctx, note); err != nil {
		n.log.Writef("Notification persist failed for user %s: %v", userID.Hex(), err)
		return nil, err
	}

	if n.emitter != nil {
		n.emitter.EmitUser(userID.Hex(), "new_notification", note)
	}
	return note, nil
}

// SendToMany runs the persist-then-push sequence independently per recipient.
// A failure for one recipient does not roll back or skip the others.
func (n *Notifier) SendToMany(ctx context.Context, userIDs []primitive.ObjectID, title, message, kind string) []*models.Notification {
	sent := make([]*models.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		note, err := n.Send(ctx, id, title, message, kind)
		if err != nil {
			continue
		}
		sent = append(sent, note)
	}
	return sent
}

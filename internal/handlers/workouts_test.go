package handlers

import (
	"context"
	"path/filepath"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"stride/internal/models"
	"stride/internal/utils"
	"stride/internal/ws"
)

type recordingNotificationStore struct {
	inserted []*models.Notification
}

func (s *recordingNotificationStore) InsertNotification(_ context.Context, n *models.Notification) error {
	s.inserted = append(s.inserted, n)
	return nil
}

type recordingEmitter struct {
	userIDs []string
	events  []string
}

func (e *recordingEmitter) EmitUser(userID, event string, _ interface{}) int {
	e.userIDs = append(e.userIDs, userID)
	e.events = append(e.events, event)
	return 1
}

func TestCompletionNotificationTargetsEntryOwner(t *testing.T) {
	store := &recordingNotificationStore{}
	emitter := &recordingEmitter{}
	log := utils.NewLogger(filepath.Join(t.TempDir(), "test.log"))
	t.Cleanup(log.Close)

	h := &WorkoutHandlers{
		notifier: ws.NewNotifier(store, emitter, log),
		log:      log,
	}

	owner := primitive.NewObjectID()
	entry := &models.UserWorkout{
		UserID:     owner,
		ExerciseID: primitive.NewObjectID(),
		Status:     models.WorkoutCompleted,
	}

	h.notifyCompletion(context.Background(), entry)

	if len(store.inserted) != 1 {
		t.Fatalf("expected 1 persisted notification, got %d", len(store.inserted))
	}
	note := store.inserted[0]
	if note.UserID != owner {
		t.Fatalf("notification persisted for %s, want entry owner %s", note.UserID.Hex(), owner.Hex())
	}
	if note.Type != models.NotificationAchievement {
		t.Fatalf("expected achievement notification, got %q", note.Type)
	}

	if len(emitter.userIDs) != 1 || emitter.userIDs[0] != owner.Hex() {
		t.Fatalf("push delivered to %v, want entry owner %s", emitter.userIDs, owner.Hex())
	}
	if emitter.events[0] != "new_notification" {
		t.Fatalf("expected new_notification event, got %q", emitter.events[0])
	}
}

package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stride/internal/models"
)

func (s *Store) notifications() *mongo.Collection { return s.db.Collection(colNotifications) }

// InsertNotification persists a notification record. The dispatcher calls
// this before any real-time delivery; an unpersisted record is never pushed.
func (s *Store) InsertNotification(ctx context.Context, n *models.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	res, err := s.notifications().InsertOne(ctx, n)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		n.ID = id
	}
	return nil
}

// NotificationsForUser returns the user's newest notifications, capped.
func (s *Store) NotificationsForUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Notification, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	cur, err := s.notifications().Find(ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var notes []models.Notification
	if err := cur.All(ctx, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// MarkNotificationRead flags a notification read and returns the updated
// record. Ownership is enforced by the userId filter.
func (s *Store) MarkNotificationRead(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error) {
	res := s.notifications().FindOneAndUpdate(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"isRead": true}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var n models.Notification
	if err := res.Decode(&n); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// MarkAllNotificationsRead flags every unread notification of the user.
func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.notifications().UpdateMany(ctx,
		bson.M{"userId": userID, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// DeleteNotification removes a notification owned by the user.
func (s *Store) DeleteNotification(ctx context.Context, id, userID primitive.ObjectID) (*models.Notification, error) {
	res := s.notifications().FindOneAndDelete(ctx, bson.M{"_id": id, "userId": userID})
	var n models.Notification
	if err := res.Decode(&n); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// CountNotifications returns the total number of notification records.
func (s *Store) CountNotifications(ctx context.Context) (int64, error) {
	return s.notifications().CountDocuments(ctx, bson.M{})
}

// CountNotificationsSince counts records created after the cutoff.
func (s *Store) CountNotificationsSince(ctx context.Context, since time.Time) (int64, error) {
	return s.notifications().CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": since}})
}

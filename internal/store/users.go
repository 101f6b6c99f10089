package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stride/internal/models"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("store: not found")

// ErrDuplicate is returned when a unique constraint (e.g. user email) is hit.
var ErrDuplicate = errors.New("store: duplicate entry")

func (s *Store) users() *mongo.Collection { return s.db.Collection(colUsers) }

// CreateUser inserts a new account, applying role/plan/target defaults.
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if existing, err := s.UserByEmail(ctx, u.Email); err == nil && existing != nil {
		return ErrDuplicate
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.Plan == "" {
		u.Plan = models.PlanFree
	}
	if u.Targets == (models.Targets{}) {
		u.Targets = models.DefaultTargets()
	}
	if u.Preferences.Language == "" {
		u.Preferences.Language = "English"
	}

	res, err := s.users().InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = id
	}
	return nil
}

// UserByEmail looks up an account by its lowercase email.
func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.users().FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UserByID fetches an account by object id.
func (s *Store) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := s.users().FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateTargets replaces the user's macro targets and returns the new value.
func (s *Store) UpdateTargets(ctx context.Context, userID primitive.ObjectID, t models.Targets) (models.Targets, error) {
	res := s.users().FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"targets": t, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var u models.User
	if err := res.Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Targets{}, ErrNotFound
		}
		return models.Targets{}, err
	}
	return u.Targets, nil
}

// TouchLogin records a successful login: timestamp, counter and client info.
func (s *Store) TouchLogin(ctx context.Context, userID primitive.ObjectID, ip, userAgent string) error {
	now := time.Now()
	_, err := s.users().UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{
			"lastLogin":  now,
			"lastActive": now,
			"ipAddress":  ip,
			"userAgent":  userAgent,
			"updatedAt":  now,
		},
		"$inc": bson.M{"loginCount": 1},
	})
	return err
}

// ListUsers returns accounts newest first with simple skip/limit paging.
func (s *Store) ListUsers(ctx context.Context, skip, limit int64) ([]models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	cur, err := s.users().Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"createdAt": -1}).SetSkip(skip).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// SetUserBanned flips the ban flag.
func (s *Store) SetUserBanned(ctx context.Context, userID primitive.ObjectID, banned bool) error {
	res, err := s.users().UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{"isBanned": banned, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetUserPlan changes the subscription plan.
func (s *Store) SetUserPlan(ctx context.Context, userID primitive.ObjectID, plan string) error {
	res, err := s.users().UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{"plan": plan, "updatedAt": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUsers returns the total number of accounts.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	return s.users().CountDocuments(ctx, bson.M{})
}

// CountLoginsSince counts accounts whose last login falls after the cutoff.
func (s *Store) CountLoginsSince(ctx context.Context, since time.Time) (int64, error) {
	return s.users().CountDocuments(ctx, bson.M{"lastLogin": bson.M{"$gte": since}})
}

// CountUsersCreatedSince counts accounts created after the cutoff.
func (s *Store) CountUsersCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return s.users().CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": since}})
}

// RecentLogins returns users who logged in after the cutoff, most recent
// first, for the dashboard's merged log view.
func (s *Store) RecentLogins(ctx context.Context, since time.Time, limit int64) ([]models.User, error) {
	cur, err := s.users().Find(ctx,
		bson.M{"lastLogin": bson.M{"$gte": since}},
		options.Find().
			SetSort(bson.M{"lastLogin": -1}).
			SetLimit(limit).
			SetProjection(bson.M{"email": 1, "lastLogin": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

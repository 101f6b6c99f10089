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

func (s *Store) meals() *mongo.Collection     { return s.db.Collection(colMeals) }
func (s *Store) userMeals() *mongo.Collection { return s.db.Collection(colUserMeals) }

// CreateMeal inserts a library meal.
func (s *Store) CreateMeal(ctx context.Context, m *models.Meal) error {
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	res, err := s.meals().InsertOne(ctx, m)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		m.ID = id
	}
	return nil
}

// UpdateMeal replaces the mutable fields of a library meal.
func (s *Store) UpdateMeal(ctx context.Context, id primitive.ObjectID, m *models.Meal) (*models.Meal, error) {
	res := s.meals().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"name":      m.Name,
			"type":      m.Type,
			"time":      m.Time,
			"foods":     m.Foods,
			"image":     m.Image,
			"updatedAt": time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var updated models.Meal
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// DeleteMeal removes a library meal.
func (s *Store) DeleteMeal(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.meals().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListMeals returns the meal library newest first.
func (s *Store) ListMeals(ctx context.Context) ([]models.Meal, error) {
	cur, err := s.meals().Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var meals []models.Meal
	if err := cur.All(ctx, &meals); err != nil {
		return nil, err
	}
	return meals, nil
}

// MealByID fetches a single library meal.
func (s *Store) MealByID(ctx context.Context, id primitive.ObjectID) (*models.Meal, error) {
	var m models.Meal
	err := s.meals().FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// mealsByIDs loads a batch of library meals keyed by id, used to populate
// user plan entries in one query.
func (s *Store) mealsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Meal, error) {
	out := make(map[primitive.ObjectID]*models.Meal, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.meals().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var meals []models.Meal
	if err := cur.All(ctx, &meals); err != nil {
		return nil, err
	}
	for i := range meals {
		out[meals[i].ID] = &meals[i]
	}
	return out, nil
}

// AddFoodToMeal appends a food item to a library meal.
func (s *Store) AddFoodToMeal(ctx context.Context, mealID primitive.ObjectID, food models.Food) (*models.Meal, error) {
	res := s.meals().FindOneAndUpdate(ctx,
		bson.M{"_id": mealID},
		bson.M{
			"$push": bson.M{"foods": food},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var updated models.Meal
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// CountMeals returns the library size.
func (s *Store) CountMeals(ctx context.Context) (int64, error) {
	return s.meals().CountDocuments(ctx, bson.M{})
}

// CountMealsUpdatedSince counts library meals touched after the cutoff.
func (s *Store) CountMealsUpdatedSince(ctx context.Context, since time.Time) (int64, error) {
	return s.meals().CountDocuments(ctx, bson.M{"updatedAt": bson.M{"$gte": since}})
}

// RecentMealUpdates returns library meals updated after the cutoff, for the
// dashboard's merged log view.
func (s *Store) RecentMealUpdates(ctx context.Context, since time.Time, limit int64) ([]models.Meal, error) {
	cur, err := s.meals().Find(ctx,
		bson.M{"updatedAt": bson.M{"$gte": since}},
		options.Find().
			SetSort(bson.M{"updatedAt": -1}).
			SetLimit(limit).
			SetProjection(bson.M{"name": 1, "updatedAt": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var meals []models.Meal
	if err := cur.All(ctx, &meals); err != nil {
		return nil, err
	}
	return meals, nil
}

// AddUserMeal places a library meal on the user's plan for the given day.
func (s *Store) AddUserMeal(ctx context.Context, um *models.UserMeal) error {
	now := time.Now()
	um.CreatedAt = now
	um.UpdatedAt = now
	res, err := s.userMeals().InsertOne(ctx, um)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		um.ID = id
	}
	return nil
}

// UserMealsForDate returns the user's plan for one day with the library meal
// populated on each entry.
func (s *Store) UserMealsForDate(ctx context.Context, userID primitive.ObjectID, date string) ([]models.UserMeal, error) {
	cur, err := s.userMeals().Find(ctx, bson.M{"userId": userID, "date": date})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []models.UserMeal
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.MealID)
	}
	byID, err := s.mealsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Meal = byID[entries[i].MealID]
	}
	return entries, nil
}

// SetUserMealDone marks a plan entry done or undone, stamping or clearing
// completedAt, and returns the populated entry.
func (s *Store) SetUserMealDone(ctx context.Context, id, userID primitive.ObjectID, isDone bool, completedAt *time.Time) (*models.UserMeal, error) {
	set := bson.M{"isDone": isDone, "updatedAt": time.Now()}
	if isDone {
		if completedAt == nil {
			now := time.Now()
			completedAt = &now
		}
		set["completedAt"] = completedAt
	} else {
		set["completedAt"] = nil
	}

	res := s.userMeals().FindOneAndUpdate(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var um models.UserMeal
	if err := res.Decode(&um); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if meal, err := s.MealByID(ctx, um.MealID); err == nil {
		um.Meal = meal
	}
	return &um, nil
}

// DeleteUserMeal removes a plan entry owned by the user.
func (s *Store) DeleteUserMeal(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.userMeals().DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountUserMeals returns the total number of plan entries.
func (s *Store) CountUserMeals(ctx context.Context) (int64, error) {
	return s.userMeals().CountDocuments(ctx, bson.M{})
}

// CountUserMealsSince counts plan entries created after the cutoff.
func (s *Store) CountUserMealsSince(ctx context.Context, since time.Time) (int64, error) {
	return s.userMeals().CountDocuments(ctx, bson.M{"createdAt": bson.M{"$gte": since}})
}

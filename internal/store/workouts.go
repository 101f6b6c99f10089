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

func (s *Store) workouts() *mongo.Collection     { return s.db.Collection(colWorkouts) }
func (s *Store) userWorkouts() *mongo.Collection { return s.db.Collection(colUserWorkouts) }

// CreateWorkout inserts an exercise-library entry. The EX-XXX id must be
// unique across the library.
func (s *Store) CreateWorkout(ctx context.Context, w *models.Workout) error {
	if existing, err := s.WorkoutByExerciseID(ctx, w.ExerciseID); err == nil && existing != nil {
		return ErrDuplicate
	}
	now := time.Now()
	w.CreatedAt = now
	w.UpdatedAt = now
	if w.Difficulty == "" {
		w.Difficulty = models.DifficultyIntermediate
	}
	if w.Sets == 0 {
		w.Sets = 3
	}
	res, err := s.workouts().InsertOne(ctx, w)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		w.ID = id
	}
	return nil
}

// UpdateWorkout replaces the mutable fields of a library exercise.
func (s *Store) UpdateWorkout(ctx context.Context, id primitive.ObjectID, w *models.Workout) (*models.Workout, error) {
	res := s.workouts().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"title":       w.Title,
			"tag":         w.Tag,
			"description": w.Description,
			"videoUrl":    w.VideoURL,
			"imageUrl":    w.ImageURL,
			"difficulty":  w.Difficulty,
			"sets":        w.Sets,
			"reps":        w.Reps,
			"calories":    w.Calories,
			"updatedAt":   time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var updated models.Workout
	if err := res.Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

// DeleteWorkout removes a library exercise.
func (s *Store) DeleteWorkout(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.workouts().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListWorkouts returns the exercise library newest first.
func (s *Store) ListWorkouts(ctx context.Context) ([]models.Workout, error) {
	cur, err := s.workouts().Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var workouts []models.Workout
	if err := cur.All(ctx, &workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

// WorkoutByID fetches a single library exercise.
func (s *Store) WorkoutByID(ctx context.Context, id primitive.ObjectID) (*models.Workout, error) {
	var w models.Workout
	err := s.workouts().FindOne(ctx, bson.M{"_id": id}).Decode(&w)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// WorkoutByExerciseID fetches a library exercise by its EX-XXX id.
func (s *Store) WorkoutByExerciseID(ctx context.Context, exerciseID string) (*models.Workout, error) {
	var w models.Workout
	err := s.workouts().FindOne(ctx, bson.M{"exerciseId": exerciseID}).Decode(&w)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Store) workoutsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Workout, error) {
	out := make(map[primitive.ObjectID]*models.Workout, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.workouts().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var workouts []models.Workout
	if err := cur.All(ctx, &workouts); err != nil {
		return nil, err
	}
	for i := range workouts {
		out[workouts[i].ID] = &workouts[i]
	}
	return out, nil
}

// AddUserWorkout places a library exercise on the user's plan.
func (s *Store) AddUserWorkout(ctx context.Context, uw *models.UserWorkout) error {
	now := time.Now()
	uw.Status = models.WorkoutPending
	uw.AddedAt = now
	uw.CreatedAt = now
	uw.UpdatedAt = now
	res, err := s.userWorkouts().InsertOne(ctx, uw)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		uw.ID = id
	}
	return nil
}

// UserWorkoutsForUser returns the user's plan with exercises populated.
func (s *Store) UserWorkoutsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserWorkout, error) {
	cur, err := s.userWorkouts().Find(ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(bson.M{"addedAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []models.UserWorkout
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return s.populateUserWorkouts(ctx, entries)
}

// ToggleUserWorkout flips a plan entry between pending and completed,
// stamping or clearing completedAt, and returns the populated entry.
func (s *Store) ToggleUserWorkout(ctx context.Context, id primitive.ObjectID) (*models.UserWorkout, error) {
	var current models.UserWorkout
	err := s.userWorkouts().FindOne(ctx, bson.M{"_id": id}).Decode(&current)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	newStatus := models.WorkoutCompleted
	var completedAt *time.Time
	if current.Status == models.WorkoutCompleted {
		newStatus = models.WorkoutPending
	} else {
		now := time.Now()
		completedAt = &now
	}

	res := s.userWorkouts().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"status":      newStatus,
			"completedAt": completedAt,
			"updatedAt":   time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	var updated models.UserWorkout
	if err := res.Decode(&updated); err != nil {
		return nil, err
	}
	if exercise, err := s.WorkoutByID(ctx, updated.ExerciseID); err == nil {
		updated.Exercise = exercise
	}
	return &updated, nil
}

// RemoveUserWorkout deletes a plan entry.
func (s *Store) RemoveUserWorkout(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.userWorkouts().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CompletedWorkouts returns the user's completed plan entries, most recent
// completion first, exercises populated. Feeds the progress analytics.
func (s *Store) CompletedWorkouts(ctx context.Context, userID primitive.ObjectID) ([]models.UserWorkout, error) {
	cur, err := s.userWorkouts().Find(ctx,
		bson.M{"userId": userID, "status": models.WorkoutCompleted},
		options.Find().SetSort(bson.M{"completedAt": -1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var entries []models.UserWorkout
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return s.populateUserWorkouts(ctx, entries)
}

func (s *Store) populateUserWorkouts(ctx context.Context, entries []models.UserWorkout) ([]models.UserWorkout, error) {
	ids := make([]primitive.ObjectID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ExerciseID)
	}
	byID, err := s.workoutsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Exercise = byID[entries[i].ExerciseID]
	}
	return entries, nil
}

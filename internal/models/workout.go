package models

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workout difficulty levels.
const (
	DifficultyBeginner     = "Beginner"
	DifficultyIntermediate = "Intermediate"
	DifficultyAdvanced     = "Advanced"
)

// User workout plan states.
const (
	WorkoutPending   = "pending"
	WorkoutCompleted = "completed"
)

var workoutTags = map[string]bool{
	"Chest": true, "Legs": true, "Back": true, "Shoulders": true,
	"Arms": true, "Full Body": true, "Core": true, "Cardio": true,
	"Other": true,
}

var exerciseIDPattern = regexp.MustCompile(`^EX-\d{3}$`)

// ValidWorkoutTag reports whether tag is one of the known muscle groups.
func ValidWorkoutTag(tag string) bool {
	return workoutTags[tag]
}

// ValidExerciseID reports whether id matches the EX-XXX form.
func ValidExerciseID(id string) bool {
	return exerciseIDPattern.MatchString(id)
}

// Workout is an exercise-library entry maintained by admins.
type Workout struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Tag         string             `bson:"tag" json:"tag"`
	ExerciseID  string             `bson:"exerciseId" json:"exerciseId"`
	Description string             `bson:"description" json:"description"`
	VideoURL    string             `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	ImageURL    string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Difficulty  string             `bson:"difficulty" json:"difficulty"`
	Sets        int                `bson:"sets" json:"sets"`
	Reps        int                `bson:"reps" json:"reps"`
	Calories    float64            `bson:"calories" json:"calories"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// UserWorkout is one exercise in a user's personal plan.
type UserWorkout struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	ExerciseID  primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Status      string             `bson:"status" json:"status"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	AddedAt     time.Time          `bson:"addedAt" json:"addedAt"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`

	// Exercise is the populated library entry; filled at read time.
	Exercise *Workout `bson:"-" json:"exercise,omitempty"`
}

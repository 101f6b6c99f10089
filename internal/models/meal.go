package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Meal slot types.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealSnacks    = "snacks"
)

// ValidMealType reports whether t names a known meal slot.
func ValidMealType(t string) bool {
	switch t {
	case MealBreakfast, MealLunch, MealDinner, MealSnacks:
		return true
	}
	return false
}

// Food is a single item inside a meal with its macro breakdown.
type Food struct {
	Name     string  `bson:"name" json:"name" binding:"required"`
	Calories float64 `bson:"calories" json:"calories"`
	Protein  float64 `bson:"protein" json:"protein"`
	Carbs    float64 `bson:"carbs" json:"carbs"`
	Fats     float64 `bson:"fats" json:"fats"`
}

// MacroTotals is the summed macro content of a meal.
type MacroTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// Meal is a library entry users add to their daily plan.
type Meal struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Type  string             `bson:"type" json:"type"`
	Time  string             `bson:"time,omitempty" json:"time,omitempty"`
	Foods []Food             `bson:"foods" json:"foods"`
	Image string             `bson:"image,omitempty" json:"image,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Totals sums the macro content of all foods in the meal.
func (m *Meal) Totals() MacroTotals {
	var t MacroTotals
	if m == nil {
		return t
	}
	for _, f := range m.Foods {
		t.Calories += f.Calories
		t.Protein += f.Protein
		t.Carbs += f.Carbs
		t.Fats += f.Fats
	}
	return t
}

// UserMeal links a library meal to a user's plan for one day.
// Date uses the YYYY-MM-DD form so a day boundary is a plain string compare.
type UserMeal struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	MealID      primitive.ObjectID `bson:"mealId" json:"mealId"`
	Date        string             `bson:"date" json:"date"`
	Type        string             `bson:"type" json:"type"`
	IsDone      bool               `bson:"isDone" json:"isDone"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`

	// Meal is the populated library entry; filled at read time, not stored.
	Meal *Meal `bson:"-" json:"meal,omitempty"`
}

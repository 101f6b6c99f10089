package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user account can hold.
const (
	RoleUser      = "user"
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// Subscription plans.
const (
	PlanFree  = "Free"
	PlanBasic = "Basic"
	PlanPro   = "Pro"
	PlanElite = "Elite"
)

// Targets holds a user's daily macro goals.
type Targets struct {
	Calories int `bson:"calories" json:"calories"`
	Protein  int `bson:"protein" json:"protein"`
	Carbs    int `bson:"carbs" json:"carbs"`
	Fats     int `bson:"fats" json:"fats"`
}

// DefaultTargets are applied to new accounts until the user adjusts them.
func DefaultTargets() Targets {
	return Targets{Calories: 2200, Protein: 150, Carbs: 220, Fats: 85}
}

// Preferences holds profile-level settings.
type Preferences struct {
	Language string `bson:"language" json:"language"`
}

// NotificationPrefs controls which notification categories a user receives.
type NotificationPrefs struct {
	DailyReminder bool `bson:"dailyReminder" json:"dailyReminder"`
	WeeklyReport  bool `bson:"weeklyReport" json:"weeklyReport"`
	SocialAlerts  bool `bson:"socialAlerts" json:"socialAlerts"`
}

// User is an account document. Password holds the bcrypt hash and is never
// serialized to JSON.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
	Phone    string             `bson:"phone" json:"phone"`

	Avatar   string  `bson:"avatar" json:"avatar"`
	Location string  `bson:"location" json:"location"`
	Age      int     `bson:"age" json:"age"`
	Weight   float64 `bson:"weight" json:"weight"`
	Height   float64 `bson:"height" json:"height"`

	Preferences   Preferences       `bson:"preferences" json:"preferences"`
	Notifications NotificationPrefs `bson:"notifications" json:"notifications"`
	Targets       Targets           `bson:"targets" json:"targets"`

	Role     string `bson:"role" json:"role"`
	IsBanned bool   `bson:"isBanned" json:"isBanned"`
	Plan     string `bson:"plan" json:"plan"`

	LastLogin  time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	LoginCount int       `bson:"loginCount" json:"loginCount"`
	LastActive time.Time `bson:"lastActive,omitempty" json:"lastActive,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsAdmin reports whether the account can access the admin surface.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"stride/internal/models"
)

// DatabaseStats are the aggregate counts served by the admin dashboard's
// database panel and the get-database-stats command.
type DatabaseStats struct {
	Users         int64 `json:"users"`
	Meals         int64 `json:"meals"`
	UserMeals     int64 `json:"userMeals"`
	Workouts      int64 `json:"workouts"`
	Notifications int64 `json:"notifications"`

	LastHour map[string]int64 `json:"lastHour"`
	Last24h  map[string]int64 `json:"last24h"`
}

// DatabaseStatistics gathers collection totals plus trailing-hour and
// trailing-day windows. Individual count failures zero that figure and are
// logged; the rest of the response is still produced.
func (s *Store) DatabaseStatistics(ctx context.Context) DatabaseStats {
	stats := DatabaseStats{
		LastHour: make(map[string]int64),
		Last24h:  make(map[string]int64),
	}
	oneHourAgo := time.Now().Add(-time.Hour)
	oneDayAgo := time.Now().Add(-24 * time.Hour)

	count := func(label string, fn func() (int64, error)) int64 {
		n, err := fn()
		if err != nil {
			s.log.Writef("Database stats: %s count failed: %v", label, err)
			return 0
		}
		return n
	}

	stats.Users = count("users", func() (int64, error) { return s.CountUsers(ctx) })
	stats.Meals = count("meals", func() (int64, error) { return s.CountMeals(ctx) })
	stats.UserMeals = count("userMeals", func() (int64, error) { return s.CountUserMeals(ctx) })
	stats.Workouts = count("workouts", func() (int64, error) { return s.workouts().CountDocuments(ctx, bson.M{}) })
	stats.Notifications = count("notifications", func() (int64, error) { return s.CountNotifications(ctx) })

	stats.LastHour["users"] = count("users/hour", func() (int64, error) { return s.CountLoginsSince(ctx, oneHourAgo) })
	stats.LastHour["meals"] = count("meals/hour", func() (int64, error) { return s.CountMealsUpdatedSince(ctx, oneHourAgo) })
	stats.LastHour["userMeals"] = count("userMeals/hour", func() (int64, error) { return s.CountUserMealsSince(ctx, oneHourAgo) })
	stats.LastHour["notifications"] = count("notifications/hour", func() (int64, error) { return s.CountNotificationsSince(ctx, oneHourAgo) })

	stats.Last24h["users"] = count("users/day", func() (int64, error) { return s.CountUsersCreatedSince(ctx, oneDayAgo) })
	stats.Last24h["userMeals"] = count("userMeals/day", func() (int64, error) { return s.CountUserMealsSince(ctx, oneDayAgo) })
	stats.Last24h["notifications"] = count("notifications/day", func() (int64, error) { return s.CountNotificationsSince(ctx, oneDayAgo) })

	return stats
}

// RecentEvents converts recent persisted activity (logins, meal library
// updates) into activity records for the dashboard's merged log view. Read
// failures degrade to whatever portion succeeded.
func (s *Store) RecentEvents(ctx context.Context, since time.Time) []models.ActivityRecord {
	var events []models.ActivityRecord

	logins, err := s.RecentLogins(ctx, since, 5)
	if err != nil {
		s.log.Writef("Recent events: login read failed: %v", err)
	} else {
		for _, u := range logins {
			if u.LastLogin.IsZero() {
				continue
			}
			email := u.Email
			if email == "" {
				email = "unknown"
			}
			events = append(events, models.ActivityRecord{
				Timestamp: u.LastLogin,
				Service:   "AUTH",
				Message:   fmt.Sprintf("User %s logged in", email),
				Type:      models.ActivitySuccess,
			})
		}
	}

	meals, err := s.RecentMealUpdates(ctx, since, 3)
	if err != nil {
		s.log.Writef("Recent events: meal read failed: %v", err)
	} else {
		for _, m := range meals {
			if m.UpdatedAt.IsZero() {
				continue
			}
			name := m.Name
			if name == "" {
				name = "Unnamed"
			}
			events = append(events, models.ActivityRecord{
				Timestamp: m.UpdatedAt,
				Service:   "MEAL",
				Message:   fmt.Sprintf("Meal %q updated", name),
				Type:      models.ActivityInfo,
			})
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	return events
}

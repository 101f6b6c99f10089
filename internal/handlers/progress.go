package handlers

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stride/internal/models"
	"stride/internal/store"
	"stride/internal/utils"
)

// ProgressHandlers computes workout analytics from a user's completed plan
// entries.
type ProgressHandlers struct {
	store *store.Store
	log   *utils.Logger
	now   func() time.Time
}

func NewProgressHandlers(st *store.Store, log *utils.Logger) *ProgressHandlers {
	return &ProgressHandlers{store: st, log: log, now: time.Now}
}

// ProgressStats summarizes a user's workout history.
type ProgressStats struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Streak         int     `json:"streak"`
	Calories       float64 `json:"calories"`
	WeeklyAvg      string  `json:"weeklyAvg"`
	CompletionRate string  `json:"completionRate"`
	LastWorkout    *string `json:"lastWorkout"`
}

// GetProgress returns analytics over the user's completed workouts.
func (h *ProgressHandlers) GetProgress(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	completed, err := h.store.CompletedWorkouts(c.Request.Context(), userID)
	if err != nil {
		h.log.Writef("Progress query failed for %s: %v", userID.Hex(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch progress data"})
		return
	}

	user, err := h.store.UserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch progress data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"stats":        computeStats(completed, user.CreatedAt, h.now()),
		"userWorkouts": completed,
		"lastUpdated":  h.now(),
	})
}

func computeStats(workouts []models.UserWorkout, joined, now time.Time) ProgressStats {
	if len(workouts) == 0 {
		return ProgressStats{WeeklyAvg: "0.0", CompletionRate: "0%"}
	}

	var calories float64
	dates := make([]time.Time, 0, len(workouts))
	for _, w := range workouts {
		if w.Exercise != nil {
			calories += w.Exercise.Calories
		}
		dates = append(dates, completionDate(w))
	}

	first, last := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}

	start := first
	if start.IsZero() {
		start = joined
	}
	days := math.Max(1, math.Ceil(now.Sub(start).Hours()/24))
	weeks := math.Max(1, math.Ceil(days/7))

	lastStr := last.Format(time.RFC3339)
	return ProgressStats{
		Total:          len(workouts),
		Completed:      len(workouts),
		Streak:         computeStreak(dates, now),
		Calories:       calories,
		WeeklyAvg:      fmt.Sprintf("%.1f", float64(len(workouts))/weeks),
		CompletionRate: "100%",
		LastWorkout:    &lastStr,
	}
}

// computeStreak counts consecutive calendar days ending today that each have
// at least one completed workout.
func computeStreak(dates []time.Time, now time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	seen := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		seen[truncateDay(d)] = struct{}{}
	}

	streak := 0
	day := truncateDay(now)
	for {
		if _, ok := seen[day]; !ok {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func completionDate(w models.UserWorkout) time.Time {
	if w.CompletedAt != nil {
		return *w.CompletedAt
	}
	if !w.AddedAt.IsZero() {
		return w.AddedAt
	}
	return w.CreatedAt
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

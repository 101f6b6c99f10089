package handlers

import (
	"testing"
	"time"

	"stride/internal/models"
)

func dayAgo(now time.Time, days int) *time.Time {
	d := now.AddDate(0, 0, -days)
	return &d
}

func TestComputeStatsEmpty(t *testing.T) {
	now := time.Now()
	stats := computeStats(nil, now.AddDate(0, -1, 0), now)
	if stats.Total != 0 || stats.Completed != 0 || stats.Streak != 0 {
		t.Fatalf("expected zeroed stats, got %+v", stats)
	}
	if stats.WeeklyAvg != "0.0" || stats.CompletionRate != "0%" {
		t.Fatalf("unexpected empty-state formatting: %+v", stats)
	}
	if stats.LastWorkout != nil {
		t.Fatalf("expected nil last workout")
	}
}

func TestComputeStatsTotalsAndCalories(t *testing.T) {
	now := time.Now()
	workouts := []models.UserWorkout{
		{CompletedAt: dayAgo(now, 0), Exercise: &models.Workout{Calories: 150}},
		{CompletedAt: dayAgo(now, 1), Exercise: &models.Workout{Calories: 200}},
		{CompletedAt: dayAgo(now, 2)},
	}

	stats := computeStats(workouts, now.AddDate(0, -1, 0), now)
	if stats.Total != 3 || stats.Completed != 3 {
		t.Fatalf("expected 3 completed workouts, got %+v", stats)
	}
	if stats.Calories != 350 {
		t.Fatalf("expected 350 calories, got %f", stats.Calories)
	}
	if stats.CompletionRate != "100%" {
		t.Fatalf("expected 100%% completion over completed set, got %q", stats.CompletionRate)
	}
	if stats.LastWorkout == nil {
		t.Fatalf("expected last workout timestamp")
	}
}

func TestComputeStreakConsecutiveDays(t *testing.T) {
	now := time.Now()
	dates := []time.Time{
		now,
		now.AddDate(0, 0, -1),
		now.AddDate(0, 0, -1), // two entries on the same day count once
		now.AddDate(0, 0, -2),
		now.AddDate(0, 0, -5), // gap at day 3 ends the streak
	}
	if got := computeStreak(dates, now); got != 3 {
		t.Fatalf("expected streak of 3, got %d", got)
	}
}

func TestComputeStreakBrokenToday(t *testing.T) {
	now := time.Now()
	dates := []time.Time{now.AddDate(0, 0, -1), now.AddDate(0, 0, -2)}
	// No workout today means no current streak.
	if got := computeStreak(dates, now); got != 0 {
		t.Fatalf("expected streak of 0 without a workout today, got %d", got)
	}
}

func TestComputeStreakEmpty(t *testing.T) {
	if got := computeStreak(nil, time.Now()); got != 0 {
		t.Fatalf("expected 0 for empty history, got %d", got)
	}
}

func TestCompletionDateFallbacks(t *testing.T) {
	now := time.Now()
	completed := now.AddDate(0, 0, -1)
	added := now.AddDate(0, 0, -2)
	created := now.AddDate(0, 0, -3)

	w := models.UserWorkout{CompletedAt: &completed, AddedAt: added, CreatedAt: created}
	if !completionDate(w).Equal(completed) {
		t.Fatalf("expected completedAt preferred")
	}
	w.CompletedAt = nil
	if !completionDate(w).Equal(added) {
		t.Fatalf("expected addedAt fallback")
	}
	w.AddedAt = time.Time{}
	if !completionDate(w).Equal(created) {
		t.Fatalf("expected createdAt fallback")
	}
}

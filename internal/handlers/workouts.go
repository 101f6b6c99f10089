package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"stride/internal/models"
	"stride/internal/store"
	"stride/internal/utils"
	"stride/internal/ws"
)

// WorkoutHandlers serves the exercise library and per-user workout plans.
type WorkoutHandlers struct {
	store    *store.Store
	notifier *ws.Notifier
	log      *utils.Logger
}

func NewWorkoutHandlers(st *store.Store, notifier *ws.Notifier, log *utils.Logger) *WorkoutHandlers {
	return &WorkoutHandlers{store: st, notifier: notifier, log: log}
}

type workoutRequest struct {
	Title       string  `json:"title" binding:"required"`
	Tag         string  `json:"tag" binding:"required"`
	ExerciseID  string  `json:"exerciseId" binding:"required"`
	Description string  `json:"description" binding:"required"`
	VideoURL    string  `json:"videoUrl"`
	ImageURL    string  `json:"imageUrl"`
	Difficulty  string  `json:"difficulty"`
	Sets        int     `json:"sets"`
	Reps        int     `json:"reps"`
	Calories    float64 `json:"calories"`
}

func (r *workoutRequest) validate() string {
	if !models.ValidWorkoutTag(r.Tag) {
		return "Invalid workout tag"
	}
	if !models.ValidExerciseID(r.ExerciseID) {
		return "Exercise ID must be in format EX-XXX"
	}
	switch r.Difficulty {
	case "", models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced:
	default:
		return "Invalid difficulty"
	}
	return ""
}

// ListWorkouts returns the exercise library.
func (h *WorkoutHandlers) ListWorkouts(c *gin.Context) {
	workouts, err := h.store.ListWorkouts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, workouts)
}

// CreateWorkout adds an exercise to the library (admin).
func (h *WorkoutHandlers) CreateWorkout(c *gin.Context) {
	var req workoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	workout := &models.Workout{
		Title:       req.Title,
		Tag:         req.Tag,
		ExerciseID:  req.ExerciseID,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		ImageURL:    req.ImageURL,
		Difficulty:  req.Difficulty,
		Sets:        req.Sets,
		Reps:        req.Reps,
		Calories:    req.Calories,
	}
	if err := h.store.CreateWorkout(c.Request.Context(), workout); err != nil {
		if err == store.ErrDuplicate {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Duplicate exercise ID"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, workout)
}

// UpdateWorkout replaces a library exercise (admin).
func (h *WorkoutHandlers) UpdateWorkout(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid workout ID"})
		return
	}
	var req workoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	updated, err := h.store.UpdateWorkout(c.Request.Context(), id, &models.Workout{
		Title:       req.Title,
		Tag:         req.Tag,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		ImageURL:    req.ImageURL,
		Difficulty:  req.Difficulty,
		Sets:        req.Sets,
		Reps:        req.Reps,
		Calories:    req.Calories,
	})
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Workout not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteWorkout removes a library exercise (admin).
func (h *WorkoutHandlers) DeleteWorkout(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid workout ID"})
		return
	}
	if err := h.store.DeleteWorkout(c.Request.Context(), id); err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Workout not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Workout deleted"})
}

// MyPlan lists the user's workout plan.
func (h *WorkoutHandlers) MyPlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	entries, err := h.store.UserWorkoutsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// AddToPlan places a library exercise on the user's plan.
func (h *WorkoutHandlers) AddToPlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	var req struct {
		ExerciseID string `json:"exerciseId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(req.ExerciseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid exercise ID"})
		return
	}
	if _, err := h.store.WorkoutByID(c.Request.Context(), exerciseID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Exercise not found"})
		return
	}

	entry := &models.UserWorkout{UserID: userID, ExerciseID: exerciseID}
	if err := h.store.AddUserWorkout(c.Request.Context(), entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// TogglePlanEntry flips a plan entry between pending and completed.
// Completion dispatches an achievement notification as a best-effort side
// effect.
func (h *WorkoutHandlers) TogglePlanEntry(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid workout ID"})
		return
	}

	entry, err := h.store.ToggleUserWorkout(c.Request.Context(), id)
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Workout not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if entry.Status == models.WorkoutCompleted {
		h.notifyCompletion(c.Request.Context(), entry)
	}

	c.JSON(http.StatusOK, entry)
}

// notifyCompletion congratulates the plan entry's owner, who is not
// necessarily the caller toggling the entry.
func (h *WorkoutHandlers) notifyCompletion(ctx context.Context, entry *models.UserWorkout) {
	if _, err := h.notifier.Send(ctx, entry.UserID,
		"Workout Complete!",
		"Great job - you completed your workout!",
		models.NotificationAchievement); err != nil {
		h.log.Writef("Workout notification dispatch failed: %v", err)
	}
}

// RemoveFromPlan deletes a plan entry.
func (h *WorkoutHandlers) RemoveFromPlan(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid workout ID"})
		return
	}
	if err := h.store.RemoveUserWorkout(c.Request.Context(), id); err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Workout not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from plan"})
}

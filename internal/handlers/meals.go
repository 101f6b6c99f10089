package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"stride/internal/middleware"
	"stride/internal/models"
	"stride/internal/store"
	"stride/internal/utils"
	"stride/internal/ws"
)

// MealHandlers serves the meal library and per-user daily plans.
type MealHandlers struct {
	store    *store.Store
	notifier *ws.Notifier
	log      *utils.Logger
}

func NewMealHandlers(st *store.Store, notifier *ws.Notifier, log *utils.Logger) *MealHandlers {
	return &MealHandlers{store: st, notifier: notifier, log: log}
}

type mealRequest struct {
	Name  string        `json:"name" binding:"required"`
	Type  string        `json:"type" binding:"required"`
	Time  string        `json:"time"`
	Foods []models.Food `json:"foods"`
	Image string        `json:"image"`
}

// ListMeals returns the library for users to choose from.
func (h *MealHandlers) ListMeals(c *gin.Context) {
	meals, err := h.store.ListMeals(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, meals)
}

// CreateMeal adds a library meal (admin).
func (h *MealHandlers) CreateMeal(c *gin.Context) {
	var req mealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidMealType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal type"})
		return
	}

	meal := &models.Meal{
		Name:  req.Name,
		Type:  req.Type,
		Time:  req.Time,
		Foods: req.Foods,
		Image: req.Image,
	}
	if err := h.store.CreateMeal(c.Request.Context(), meal); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, meal)
}

// UpdateMeal replaces a library meal (admin).
func (h *MealHandlers) UpdateMeal(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal ID"})
		return
	}
	var req mealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidMealType(req.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal type"})
		return
	}

	updated, err := h.store.UpdateMeal(c.Request.Context(), id, &models.Meal{
		Name:  req.Name,
		Type:  req.Type,
		Time:  req.Time,
		Foods: req.Foods,
		Image: req.Image,
	})
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteMeal removes a library meal (admin).
func (h *MealHandlers) DeleteMeal(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal ID"})
		return
	}
	if err := h.store.DeleteMeal(c.Request.Context(), id); err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meal deleted"})
}

// AddFood appends a food item to a library meal (admin).
func (h *MealHandlers) AddFood(c *gin.Context) {
	var req struct {
		MealID string      `json:"mealId" binding:"required"`
		Food   models.Food `json:"food" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := middleware.ValidateStruct(req.Food); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mealID, err := primitive.ObjectIDFromHex(req.MealID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal ID"})
		return
	}
	meal, err := h.store.AddFoodToMeal(c.Request.Context(), mealID, req.Food)
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, meal)
}

// TodayMeals returns the user's plan for the current day.
func (h *MealHandlers) TodayMeals(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	today := time.Now().Format("2006-01-02")
	entries, err := h.store.UserMealsForDate(c.Request.Context(), userID, today)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// AddUserMeal places a library meal on the user's plan for today.
func (h *MealHandlers) AddUserMeal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	var req struct {
		MealID string `json:"mealId" binding:"required"`
		Type   string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mealID, err := primitive.ObjectIDFromHex(req.MealID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal ID"})
		return
	}

	meal, err := h.store.MealByID(c.Request.Context(), mealID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Meal not found"})
		return
	}

	mealType := req.Type
	if mealType == "" {
		mealType = meal.Type
	}
	entry := &models.UserMeal{
		UserID: userID,
		MealID: mealID,
		Date:   time.Now().Format("2006-01-02"),
		Type:   mealType,
	}
	if err := h.store.AddUserMeal(c.Request.Context(), entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	entry.Meal = meal
	c.JSON(http.StatusOK, entry)
}

// UpdateUserMeal marks a plan entry done or undone. Completing a meal
// dispatches a notification as a best-effort side effect: a dispatch failure
// never fails this request.
func (h *MealHandlers) UpdateUserMeal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}
	var req struct {
		IsDone      bool       `json:"isDone"`
		CompletedAt *time.Time `json:"completedAt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.store.SetUserMealDone(c.Request.Context(), id, userID, req.IsDone, req.CompletedAt)
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User meal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.IsDone {
		mealName := "your meal"
		if entry.Meal != nil && entry.Meal.Name != "" {
			mealName = entry.Meal.Name
		}
		if _, err := h.notifier.Send(c.Request.Context(), userID,
			"Meal Completed!",
			"You finished "+mealName+". Keep up the good work!",
			models.NotificationMeal); err != nil {
			h.log.Writef("Meal notification dispatch failed: %v", err)
		}
	}

	c.JSON(http.StatusOK, entry)
}

// DeleteUserMeal removes a plan entry.
func (h *MealHandlers) DeleteUserMeal(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}
	if err := h.store.DeleteUserMeal(c.Request.Context(), id, userID); err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User meal not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Removed from plan"})
}

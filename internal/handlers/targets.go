package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stride/internal/models"
	"stride/internal/store"
	"stride/internal/utils"
)

// TargetHandlers serves the user's daily macro targets.
type TargetHandlers struct {
	store *store.Store
	log   *utils.Logger
}

func NewTargetHandlers(st *store.Store, log *utils.Logger) *TargetHandlers {
	return &TargetHandlers{store: st, log: log}
}

// GetTargets returns the authenticated user's macro targets.
func (h *TargetHandlers) GetTargets(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	user, err := h.store.UserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user.Targets)
}

// UpdateTargets replaces the user's macro targets.
func (h *TargetHandlers) UpdateTargets(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	var req models.Targets
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Calories < 0 || req.Protein < 0 || req.Carbs < 0 || req.Fats < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Targets must not be negative"})
		return
	}

	targets, err := h.store.UpdateTargets(c.Request.Context(), userID, req)
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, targets)
}

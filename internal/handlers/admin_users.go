package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"stride/internal/models"
	"stride/internal/store"
	"stride/internal/utils"
	"stride/internal/ws"
)

const adminUserPageSize = 25

// AdminUserHandlers covers the admin-only user management surface.
type AdminUserHandlers struct {
	store    *store.Store
	notifier *ws.Notifier
	log      *utils.Logger
}

func NewAdminUserHandlers(st *store.Store, notifier *ws.Notifier, log *utils.Logger) *AdminUserHandlers {
	return &AdminUserHandlers{store: st, notifier: notifier, log: log}
}

// ListUsers returns a page of registered users.
func (h *AdminUserHandlers) ListUsers(c *gin.Context) {
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if page < 1 {
		page = 1
	}

	users, err := h.store.ListUsers(c.Request.Context(), (page-1)*adminUserPageSize, adminUserPageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	total, err := h.store.CountUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Password hashes never leave the server.
	for i := range users {
		users[i].Password = ""
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": total,
		"page":  page,
	})
}

// SetBanned toggles a user's banned flag.
func (h *AdminUserHandlers) SetBanned(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	var req struct {
		Banned bool `json:"banned"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.SetUserBanned(c.Request.Context(), id, req.Banned); err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.log.Writef("User %s banned=%v", id.Hex(), req.Banned)
	c.JSON(http.StatusOK, gin.H{"banned": req.Banned})
}

// SetPlan changes a user's subscription plan and tells them about it.
func (h *AdminUserHandlers) SetPlan(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	var req struct {
		Plan string `json:"plan" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch req.Plan {
	case models.PlanFree, models.PlanBasic, models.PlanPro, models.PlanElite:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid plan"})
		return
	}

	if err := h.store.SetUserPlan(c.Request.Context(), id, req.Plan); err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.notifier.Send(c.Request.Context(), id,
		"Plan Updated",
		"Your subscription plan is now "+req.Plan,
		models.NotificationSystem); err != nil {
		h.log.Writef("Plan notification dispatch failed: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"plan": req.Plan})
}

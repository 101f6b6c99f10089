package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"stride/internal/models"
)

func TestGenerateAndValidateToken(t *testing.T) {
	a := NewAuthService("test-secret")

	token, err := a.GenerateToken("user-1", models.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := a.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != models.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestEmptyTokenIsInvalid(t *testing.T) {
	a := NewAuthService("test-secret")
	if _, err := a.ValidateToken(""); err == nil {
		t.Fatalf("empty token validated")
	}
}

func TestTokenFromDifferentSecretRejected(t *testing.T) {
	a := NewAuthService("secret-a")
	b := NewAuthService("secret-b")

	token, err := a.GenerateToken("user-1", models.RoleUser)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := b.ValidateToken(token); err == nil {
		t.Fatalf("token signed with another secret validated")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	a := NewAuthService("test-secret")
	hash, err := a.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !a.CheckPassword("hunter22", hash) {
		t.Fatalf("correct password rejected")
	}
	if a.CheckPassword("wrong", hash) {
		t.Fatalf("wrong password accepted")
	}
}

func TestRequireAPIAuthRejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := NewAuthService("test-secret")

	r := gin.New()
	r.Use(a.RequireAPIAuth())
	r.GET("/api/meals", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	req := httptest.NewRequest(http.MethodGet, "/api/meals", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}

func TestRequireAPIAuthAcceptsBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := NewAuthService("test-secret")
	token, err := a.GenerateToken("user-1", models.RoleUser)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	r := gin.New()
	r.Use(a.RequireAPIAuth())
	r.GET("/api/meals", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": c.GetString(CtxUserID)})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/meals", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", w.Code)
	}
}

func TestRequireAPIAuthCookieFallback(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := NewAuthService("test-secret")
	token, err := a.GenerateToken("user-1", models.RoleUser)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	r := gin.New()
	r.Use(a.RequireAPIAuth())
	r.GET("/api/meals", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	req := httptest.NewRequest(http.MethodGet, "/api/meals", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with cookie token, got %d", w.Code)
	}
}

func TestRequireAdminBlocksUsers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := NewAuthService("test-secret")

	r := gin.New()
	r.Use(a.RequireAPIAuth(), RequireAdmin())
	r.GET("/api/admin/users", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	userToken, _ := a.GenerateToken("user-1", models.RoleUser)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", w.Code)
	}

	adminToken, _ := a.GenerateToken("admin-1", models.RoleAdmin)
	req2 := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req2.Header.Set("Authorization", "Bearer "+adminToken)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req2)
	if w2.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", w2.Code)
	}
}

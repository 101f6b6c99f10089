package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"stride/internal/telemetry"
)

func TestRequestTelemetryCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tele := telemetry.New()

	r := gin.New()
	r.Use(RequestTelemetry(tele))
	r.GET("/api/meals", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.GET("/api/missing", func(c *gin.Context) { c.JSON(http.StatusNotFound, gin.H{"ok": false}) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/meals", nil))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/missing", nil))

	requests, errors := tele.Metrics.Counts()
	if requests != 4 {
		t.Fatalf("expected 4 requests, got %d", requests)
	}
	if errors != 1 {
		t.Fatalf("expected 1 error, got %d", errors)
	}
	if len(tele.Metrics.ResponseTimes()) != 4 {
		t.Fatalf("expected 4 buffered durations, got %d", len(tele.Metrics.ResponseTimes()))
	}
}

func TestRequestTelemetryFeedsActivity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tele := telemetry.New()

	r := gin.New()
	r.Use(RequestTelemetry(tele))
	r.GET("/api/meals", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/meals", nil))

	// Start and completion entries.
	if tele.Activity.Len() != 2 {
		t.Fatalf("expected 2 activity entries, got %d", tele.Activity.Len())
	}
}

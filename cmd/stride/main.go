package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"stride/internal/handlers"
	"stride/internal/middleware"
	"stride/internal/models"
	"stride/internal/store"
	"stride/internal/telemetry"
	"stride/internal/utils"
	"stride/internal/ws"
)

const (
	envPort      = "STRIDE_PORT"
	envMongoURI  = "STRIDE_MONGO_URI"
	envDBName    = "STRIDE_DB_NAME"
	envJWTSecret = "STRIDE_JWT_SECRET"
	envUseTLS    = "STRIDE_USE_TLS"
	envTLSCert   = "STRIDE_TLS_CERT"
	envTLSKey    = "STRIDE_TLS_KEY"
)

type Config struct {
	Port      int
	MongoURI  string
	DBName    string
	JWTSecret string

	TLSEnabled  bool
	TLSCertPath string
	TLSKeyPath  string
}

func loadConfig() (Config, error) {
	cfg := Config{
		Port:        5000,
		MongoURI:    "mongodb://localhost:27017",
		DBName:      "stride",
		TLSEnabled:  envBool(envUseTLS),
		TLSCertPath: os.Getenv(envTLSCert),
		TLSKeyPath:  os.Getenv(envTLSKey),
	}
	if v := os.Getenv(envPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return cfg, fmt.Errorf("invalid %s: %q", envPort, v)
		}
		cfg.Port = port
	}
	if v := os.Getenv(envMongoURI); v != "" {
		cfg.MongoURI = v
	}
	if v := os.Getenv(envDBName); v != "" {
		cfg.DBName = v
	}
	cfg.JWTSecret = os.Getenv(envJWTSecret)
	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("%s must be set", envJWTSecret)
	}
	if cfg.TLSEnabled && (cfg.TLSCertPath == "" || cfg.TLSKeyPath == "") {
		return cfg, fmt.Errorf("%s is enabled but %s or %s not provided", envUseTLS, envTLSCert, envTLSKey)
	}
	return cfg, nil
}

func envBool(key string) bool {
	val := os.Getenv(key)
	if val == "" {
		return false
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return false
	}
	return parsed
}

// App holds every long-lived component. It is constructed once in main and
// threaded through setupRouter rather than living in package state.
type App struct {
	cfg         Config
	logger      *utils.Logger
	store       *store.Store
	tele        *telemetry.Telemetry
	hub         *ws.Hub
	wsServer    *ws.Server
	broadcaster *telemetry.Broadcaster
	notifier    *ws.Notifier
	authService *middleware.AuthService
	rateLimiter *middleware.RateLimiter
}

func newApp(ctx context.Context, cfg Config) (*App, error) {
	logger := utils.NewLogger("")

	st, err := store.Connect(ctx, cfg.MongoURI, cfg.DBName, logger)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("connect store: %w", err)
	}

	tele := telemetry.New()
	hub := ws.NewHub(tele, logger)
	tele.Bind(hub, st)

	// Activity inserts push straight to admin dashboards, out of cycle.
	tele.Activity.OnAdd(func(rec models.ActivityRecord) {
		hub.EmitAdmin("new-activity", rec)
	})

	auth := middleware.NewAuthService(cfg.JWTSecret)
	broadcaster := telemetry.NewBroadcaster(tele, hub)
	hub.OnDisconnect(broadcaster.BroadcastNow)

	return &App{
		cfg:         cfg,
		logger:      logger,
		store:       st,
		tele:        tele,
		hub:         hub,
		wsServer:    ws.NewServer(hub, tele, auth, st, logger),
		broadcaster: broadcaster,
		notifier:    ws.NewNotifier(st, hub, logger),
		authService: auth,
		rateLimiter: middleware.NewRateLimiter(rate.Every(time.Minute/100), 10),
	}, nil
}

func main() {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	app, err := newApp(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("Startup failed: %v", err)
	}

	app.broadcaster.Start()
	app.tele.Activity.Add(models.ActivityRecord{
		Service: "API",
		Message: fmt.Sprintf("Server started on port %d", cfg.Port),
		Type:    models.ActivitySuccess,
	})
	app.logger.Writef("Server starting on port %d", cfg.Port)

	r := setupRouter(app)

	srv := &http.Server{
		Addr:           ":" + strconv.Itoa(cfg.Port),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	if cfg.TLSEnabled {
		go func() {
			log.Printf("Starting HTTPS server on port %d", cfg.Port)
			if err := srv.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath); err != nil && err != http.ErrServerClosed {
				log.Fatalf("HTTPS server failed to start: %v", err)
			}
		}()
	} else {
		go func() {
			log.Printf("Starting server on port %d", cfg.Port)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Server failed to start: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	app.broadcaster.Stop()
	app.hub.CloseAll()
	app.rateLimiter.Stop()
	if err := app.store.Close(shutdownCtx); err != nil {
		log.Printf("Store close: %v", err)
	}
	app.logger.Close()

	log.Println("Server exited")
}

func setupRouter(app *App) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))

	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())

	// Rate limiting - 100 requests per minute per IP
	r.Use(app.rateLimiter.Middleware())

	// Request telemetry runs after rate limiting so rejected floods do not
	// pollute the dashboard figures.
	r.Use(middleware.RequestTelemetry(app.tele))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authHandlers := handlers.NewAuthHandlers(app.authService, app.store, app.logger)
	mealHandlers := handlers.NewMealHandlers(app.store, app.notifier, app.logger)
	targetHandlers := handlers.NewTargetHandlers(app.store, app.logger)
	workoutHandlers := handlers.NewWorkoutHandlers(app.store, app.notifier, app.logger)
	progressHandlers := handlers.NewProgressHandlers(app.store, app.logger)
	notificationHandlers := handlers.NewNotificationHandlers(app.store)
	adminUserHandlers := handlers.NewAdminUserHandlers(app.store, app.notifier, app.logger)
	dashboardHandlers := handlers.NewDashboardHandlers(app.store, app.tele, app.hub, app.logger)

	// Public authentication routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandlers.Register)
		auth.POST("/login", authHandlers.Login)
	}

	// Authenticated API routes
	api := r.Group("/api")
	api.Use(app.authService.RequireAPIAuth())
	{
		api.GET("/auth/me", authHandlers.Me)

		api.GET("/meals", mealHandlers.ListMeals)

		api.GET("/user-meals/today", mealHandlers.TodayMeals)
		api.POST("/user-meals", mealHandlers.AddUserMeal)
		api.PUT("/user-meals/:id", mealHandlers.UpdateUserMeal)
		api.DELETE("/user-meals/:id", mealHandlers.DeleteUserMeal)

		api.GET("/targets", targetHandlers.GetTargets)
		api.PUT("/targets", targetHandlers.UpdateTargets)

		api.GET("/workouts", workoutHandlers.ListWorkouts)
		api.GET("/user-workouts", workoutHandlers.MyPlan)
		api.POST("/user-workouts", workoutHandlers.AddToPlan)
		api.PUT("/user-workouts/:id/toggle", workoutHandlers.TogglePlanEntry)
		api.DELETE("/user-workouts/:id", workoutHandlers.RemoveFromPlan)

		api.GET("/progress", progressHandlers.GetProgress)

		api.GET("/notifications", notificationHandlers.List)
		api.PUT("/notifications/:id/read", notificationHandlers.MarkRead)
		api.PUT("/notifications/read-all", notificationHandlers.MarkAllRead)
		api.DELETE("/notifications/:id", notificationHandlers.Delete)
	}

	// Admin routes
	admin := r.Group("/api/admin")
	admin.Use(app.authService.RequireAPIAuth(), middleware.RequireAdmin())
	{
		admin.POST("/meals", mealHandlers.CreateMeal)
		admin.PUT("/meals/:id", mealHandlers.UpdateMeal)
		admin.DELETE("/meals/:id", mealHandlers.DeleteMeal)
		admin.POST("/meals/:id/foods", mealHandlers.AddFood)

		admin.POST("/workouts", workoutHandlers.CreateWorkout)
		admin.PUT("/workouts/:id", workoutHandlers.UpdateWorkout)
		admin.DELETE("/workouts/:id", workoutHandlers.DeleteWorkout)

		admin.GET("/users", adminUserHandlers.ListUsers)
		admin.PUT("/users/:id/ban", adminUserHandlers.SetBanned)
		admin.PUT("/users/:id/plan", adminUserHandlers.SetPlan)

		admin.GET("/health", dashboardHandlers.Health)
		admin.GET("/metrics/realtime", dashboardHandlers.RealtimeMetrics)
		admin.GET("/metrics/database", dashboardHandlers.DatabaseMetrics)
		admin.GET("/logs/recent", dashboardHandlers.RecentLogs)
		admin.POST("/logs/clear", dashboardHandlers.ClearLogs)
		admin.GET("/system/info", dashboardHandlers.SystemInfo)
		admin.POST("/cpu/stress-test", dashboardHandlers.StressTest)
		admin.POST("/test/request", dashboardHandlers.TestRequest)
	}

	// WebSocket endpoint; token auth happens before the upgrade.
	r.GET("/ws", app.wsServer.HandleWebSocket())

	return r
}

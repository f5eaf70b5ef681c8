package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/itqanlabs/itqan-backend/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg *config.Config

	auth          *Auth
	authMW        *AuthMiddleware
	recitations   *Recitation
	srs           *Srs
	leaderboard   *Leaderboard
	settings      *Settings
	analytics     *Analytics
	notifications *Notification
	assignments   *Assignment
	retention     *Retention
}

// NewRouter creates a new router with all handlers
func NewRouter(
	cfg *config.Config,
	auth *Auth,
	authMW *AuthMiddleware,
	recitations *Recitation,
	srsHandler *Srs,
	leaderboardHandler *Leaderboard,
	settings *Settings,
	analyticsHandler *Analytics,
	notifications *Notification,
	assignments *Assignment,
	retentionHandler *Retention,
) *Router {
	return &Router{
		cfg:           cfg,
		auth:          auth,
		authMW:        authMW,
		recitations:   recitations,
		srs:           srsHandler,
		leaderboard:   leaderboardHandler,
		settings:      settings,
		analytics:     analyticsHandler,
		notifications: notifications,
		assignments:   assignments,
		retention:     retentionHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// Prometheus scrape endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Swagger UI
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupAuthRoutes(v1)
	rt.setupRecitationRoutes(v1)
	rt.setupSrsRoutes(v1)
	rt.setupLeaderboardRoutes(v1)
	rt.setupSettingsRoutes(v1)
	rt.setupAnalyticsRoutes(v1)
	rt.setupNotificationRoutes(v1)
	rt.setupAssignmentRoutes(v1)
	rt.setupAdminRoutes(v1)
}

// setupAuthRoutes configures authentication routes
func (rt *Router) setupAuthRoutes(g *echo.Group) {
	authGroup := g.Group("/auth")

	authGroup.GET("/google/login", rt.auth.GoogleLogin)
	authGroup.GET("/google/callback", rt.auth.GoogleCallback)
	authGroup.POST("/refresh", rt.auth.RefreshToken)
	authGroup.POST("/logout", rt.auth.Logout)
	authGroup.GET("/me", rt.auth.Me, rt.authMW.Authenticate)
}

// setupRecitationRoutes configures upload, submission, and job routes
func (rt *Router) setupRecitationRoutes(g *echo.Group) {
	recGroup := g.Group("/recitations", rt.authMW.Authenticate)
	recGroup.POST("/upload-url", rt.recitations.UploadURL)
	recGroup.POST("", rt.recitations.Submit)
	recGroup.GET("/:id/audio-url", rt.recitations.AudioURL)

	jobGroup := g.Group("/analysis", rt.authMW.Authenticate)
	jobGroup.GET("/jobs/:id", rt.recitations.GetJob)
	jobGroup.GET("/jobs/:id/events", rt.recitations.StreamProgress)
	jobGroup.POST("/jobs/:id/reprocess", rt.recitations.Reprocess, rt.authMW.RequireAdmin)
	jobGroup.GET("/history", rt.recitations.History)
}

// setupSrsRoutes configures memorization plan and review routes
func (rt *Router) setupSrsRoutes(g *echo.Group) {
	srsGroup := g.Group("/srs", rt.authMW.Authenticate)
	srsGroup.POST("/plans", rt.srs.CreatePlan)
	srsGroup.GET("/plans", rt.srs.ListPlans)
	srsGroup.GET("/plans/:id", rt.srs.GetPlan)
	srsGroup.DELETE("/plans/:id", rt.srs.DeactivatePlan)
	srsGroup.GET("/due", rt.srs.DueItems)
	srsGroup.POST("/items/:id/review", rt.srs.SubmitReview)
}

// setupLeaderboardRoutes configures ranking routes
func (rt *Router) setupLeaderboardRoutes(g *echo.Group) {
	lbGroup := g.Group("/leaderboard", rt.authMW.Authenticate)
	lbGroup.GET("/weekly", rt.leaderboard.Weekly)
	lbGroup.GET("/alltime", rt.leaderboard.AllTime)
	lbGroup.GET("/me", rt.leaderboard.Me)
}

// setupSettingsRoutes configures organization setting routes
func (rt *Router) setupSettingsRoutes(g *echo.Group) {
	settingsGroup := g.Group("/settings", rt.authMW.Authenticate)
	settingsGroup.GET("", rt.settings.Get, rt.authMW.RequireAdmin)
	settingsGroup.PUT("", rt.settings.Update, rt.authMW.RequireAdmin)
	settingsGroup.PUT("/users/:id/tajweed", rt.settings.SetTajweedOverride, rt.authMW.RequireAdmin)
}

// setupAnalyticsRoutes configures statistics routes
func (rt *Router) setupAnalyticsRoutes(g *echo.Group) {
	analyticsGroup := g.Group("/analytics", rt.authMW.Authenticate)
	analyticsGroup.GET("/stats", rt.analytics.Stats)
	analyticsGroup.GET("/history", rt.analytics.History)
}

// setupNotificationRoutes configures notification routes
func (rt *Router) setupNotificationRoutes(g *echo.Group) {
	notifGroup := g.Group("/notifications", rt.authMW.Authenticate)
	notifGroup.GET("", rt.notifications.List)
	notifGroup.POST("/:id/read", rt.notifications.MarkRead)
	notifGroup.POST("/read-all", rt.notifications.MarkAllRead)
}

// setupAssignmentRoutes configures assignment routes
func (rt *Router) setupAssignmentRoutes(g *echo.Group) {
	assignGroup := g.Group("/assignments", rt.authMW.Authenticate)
	assignGroup.POST("", rt.assignments.Create, rt.authMW.RequireTeacher)
	assignGroup.GET("", rt.assignments.List)
	assignGroup.POST("/:id/complete", rt.assignments.Complete)
}

// setupAdminRoutes configures admin-only operational routes
func (rt *Router) setupAdminRoutes(g *echo.Group) {
	adminGroup := g.Group("/admin", rt.authMW.Authenticate, rt.authMW.RequireAdmin)
	adminGroup.POST("/retention/sweep", rt.retention.Sweep)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"time":        time.Now().Format(time.RFC3339),
		"environment": rt.cfg.Server.Environment,
	})
}

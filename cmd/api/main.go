package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/itqanlabs/itqan-backend/pkg/validator"

	_ "github.com/itqanlabs/itqan-backend/docs"
	"github.com/itqanlabs/itqan-backend/internal/adapter/handler"
	"github.com/itqanlabs/itqan-backend/internal/adapter/repository"
	"github.com/itqanlabs/itqan-backend/internal/infrastructure/cache"
	"github.com/itqanlabs/itqan-backend/internal/infrastructure/database"
	"github.com/itqanlabs/itqan-backend/internal/infrastructure/external/oauth"
	"github.com/itqanlabs/itqan-backend/internal/infrastructure/notify"
	"github.com/itqanlabs/itqan-backend/internal/infrastructure/scheduler"
	"github.com/itqanlabs/itqan-backend/internal/infrastructure/storage"
	"github.com/itqanlabs/itqan-backend/internal/usecase/analysis"
	"github.com/itqanlabs/itqan-backend/internal/usecase/analytics"
	"github.com/itqanlabs/itqan-backend/internal/usecase/auth"
	"github.com/itqanlabs/itqan-backend/internal/usecase/leaderboard"
	"github.com/itqanlabs/itqan-backend/internal/usecase/notification"
	"github.com/itqanlabs/itqan-backend/internal/usecase/retention"
	"github.com/itqanlabs/itqan-backend/internal/usecase/srs"
	"github.com/itqanlabs/itqan-backend/pkg/config"
	"github.com/itqanlabs/itqan-backend/pkg/jwt"
	"github.com/itqanlabs/itqan-backend/pkg/stt"
)

// @title           Itqan API
// @version         1.0
// @description     Quran learning backend with recitation analysis, spaced repetition review, and teacher assignments.

// @contact.name   API Support
// @contact.email  support@itqan.app

// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Set-Cookie", "Cookie"},
		AllowCredentials: true,
	}))

	log.Println("🔧 Initializing dependencies...")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Schema is owned by sql-migrate; AutoMigrate is a development shortcut.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Running migrations...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping migrations; run sql-migrate in CI/CD/production")
	}

	// Redis
	log.Println("📦 Connecting to Redis...")
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Object storage
	log.Println("🗄️  Connecting to object storage...")
	storageClient, err := storage.NewMinIOClient(&cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to connect to object storage: %v", err)
	}

	// Repositories
	log.Println("⚙️  Initializing repositories...")
	userRepo := repository.NewUserRepository(db)
	recitationRepo := repository.NewRecitationRepository(db)
	jobRepo := repository.NewAnalysisJobRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	srsRepo := repository.NewSrsRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)

	// Speech-to-text provider
	log.Printf("🎙️  Initializing STT provider: %s", cfg.STT.Provider)
	transcriber, err := stt.New(&cfg.STT)
	if err != nil {
		log.Fatalf("Failed to initialize STT provider: %v", err)
	}

	// OAuth + JWT
	log.Println("🔐 Initializing OAuth provider...")
	googleProvider := oauth.NewGoogleProvider(
		cfg.OAuth.Google.ClientID,
		cfg.OAuth.Google.ClientSecret,
		cfg.OAuth.Google.RedirectURL,
	)
	stateManager := oauth.NewStateManager(oauth.NewRedisStore(redisClient))

	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Email
	var emailSender notify.EmailSender = notify.NoopSender{}
	if cfg.SMTP.Host != "" {
		log.Println("📧 Initializing SMTP sender...")
		emailSender = notify.NewSMTP(cfg.SMTP)
	}

	// Services
	log.Println("✨ Initializing services...")
	authService := auth.NewService(userRepo, googleProvider, stateManager, jwtManager, cfg, logger)
	notificationService := notification.NewService(notificationRepo, userRepo, emailSender, logger)
	leaderboardService := leaderboard.NewService(redisClient, logger)
	progress := analysis.NewProgressPublisher(redisClient, logger)
	analysisService := analysis.NewService(
		db, recitationRepo, jobRepo, settingRepo, userRepo, assignmentRepo,
		storageClient, progress, notificationService, leaderboardService,
		cfg, logger,
	)
	srsService := srs.NewService(srsRepo, leaderboardService, logger)
	analyticsService := analytics.NewService(db, snapshotRepo, userRepo, srsRepo, logger)
	cleaner := retention.NewCleaner(recitationRepo, jobRepo, settingRepo, storageClient, logger)

	// Analysis worker pool
	workerPool := analysis.NewWorkerPool(
		jobRepo, recitationRepo, storageClient, transcriber,
		progress, notificationService, leaderboardService,
		cfg, logger,
	)
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	if err := workerPool.Start(workerCtx); err != nil {
		log.Fatalf("Failed to start analysis workers: %v", err)
	}

	// Scheduled jobs
	log.Println("⏰ Starting scheduler...")
	cronRunner := scheduler.NewCron(time.Local)
	if _, err := cronRunner.Add(cfg.Retention.CronSchedule, cleaner); err != nil {
		log.Fatalf("Failed to schedule retention sweep: %v", err)
	}
	if _, err := cronRunner.Add(cfg.Retention.SnapshotCron, analyticsService); err != nil {
		log.Fatalf("Failed to schedule analytics snapshot: %v", err)
	}
	cronRunner.Start()

	// Handlers
	log.Println("🚀 Initializing handlers...")
	authMW := handler.NewAuthMiddleware(jwtManager, userRepo)
	router := handler.NewRouter(
		cfg,
		handler.NewAuth(authService, logger),
		authMW,
		handler.NewRecitation(analysisService, logger),
		handler.NewSrs(srsService, logger),
		handler.NewLeaderboard(leaderboardService, logger),
		handler.NewSettings(settingRepo, userRepo, logger),
		handler.NewAnalytics(analyticsService, logger),
		handler.NewNotification(notificationService, logger),
		handler.NewAssignment(assignmentRepo, userRepo, logger),
		handler.NewRetention(cleaner, logger),
	)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	cronRunner.Stop()
	stopWorkers()
	if err := workerPool.Stop(); err != nil {
		log.Printf("❌ Worker pool shutdown: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}

package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/titangym/gymdesk/internal/auth"
	"github.com/titangym/gymdesk/internal/config"
	"github.com/titangym/gymdesk/internal/database"
	"github.com/titangym/gymdesk/internal/database/analytics"
	"github.com/titangym/gymdesk/internal/database/clients"
	"github.com/titangym/gymdesk/internal/database/memberships"
	"github.com/titangym/gymdesk/internal/database/schedule"
	"github.com/titangym/gymdesk/internal/database/trainers"
	"github.com/titangym/gymdesk/internal/database/visits"
	http_controllers "github.com/titangym/gymdesk/internal/http"
	"github.com/titangym/gymdesk/internal/scheduler"
	"github.com/titangym/gymdesk/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown: wait for an interrupt signal, then drain within
	// the configured timeout.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting GymDesk v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Repositories
	clientRepo := clients.NewRepository(db.DB)
	trainerRepo := trainers.NewRepository(db.DB)
	membershipRepo := memberships.NewRepository(db.DB)
	scheduleRepo := schedule.NewRepository(db.DB)
	visitRepo := visits.NewRepository(db.DB)
	analyticsRepo := analytics.NewRepository(db.DB)

	// JWT secret: generate a throwaway one when not configured. Tokens
	// issued before a restart stop working in that case.
	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret, err = auth.GenerateSecret()
		if err != nil {
			log.Fatalf("Failed to generate JWT secret: %v", err)
		}
		log.Printf("Generated JWT secret (set JWT_SECRET to persist sessions across restarts)")
	}

	tokenMaker := auth.NewTokenMaker(jwtSecret, cfg.Auth.TokenExpiry)
	authService := auth.NewService(db.DB, tokenMaker, cfg.Auth)
	authMiddleware := auth.NewMiddleware(tokenMaker)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var maintenanceScheduler *scheduler.MaintenanceScheduler
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		// Register task queues
		taskClient.Register(
			tasks.NewCloseStaleVisitsQueue(visitRepo),
			tasks.NewExpireMembershipsQueue(clientRepo),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		// Nightly maintenance enqueues the housekeeping tasks
		maintenanceScheduler = scheduler.NewMaintenanceScheduler(taskClient, cfg.Maintenance)
		if err := maintenanceScheduler.Start(taskCtx); err != nil {
			log.Fatalf("Failed to start maintenance scheduler: %v", err)
		}
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
		Database:        db,
		AuthService:     authService,
		AuthMiddleware:  authMiddleware,
		ClientStore:     clientRepo,
		TrainerStore:    trainerRepo,
		MembershipStore: membershipRepo,
		ScheduleStore:   scheduleRepo,
		VisitStore:      visitRepo,
		AnalyticsStore:  analyticsRepo,
		TaskClient:      taskClient,
		Version:         version,
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if maintenanceScheduler != nil {
			maintenanceScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

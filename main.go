// Package main provides the main entry point for the FarmOps backend
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Zarcastral/farmops/app/handlers"
	"github.com/Zarcastral/farmops/app/middleware"
	"github.com/Zarcastral/farmops/app/router"
	"github.com/Zarcastral/farmops/app/services"
	businessflow "github.com/Zarcastral/farmops/business_flow"
	"github.com/Zarcastral/farmops/config"
	"github.com/Zarcastral/farmops/models"
	"github.com/Zarcastral/farmops/repository"
	"github.com/Zarcastral/farmops/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting FarmOps application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging directs the standard logger to a rotating file when configured
func setupLogging(cfg config.LoggingConfig) {
	if cfg.Output == "stdout" || cfg.FilePath == "" {
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	if cfg.Output == "both" {
		log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	} else {
		log.SetOutput(rotator)
	}
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if client == nil {
		return cancel
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	cancel := startCacheHealthMonitor(context.Background(), rc, 30*time.Second)
	stopFuncs = append(stopFuncs, cancel)

	// Initialize repositories
	seqRepo := repository.NewSequenceCounterRepository(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewUserRoleRepository(db)
	sessionRepo := repository.NewUserSessionRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	stockRepo := repository.NewResourceStockRepository(db)
	usageRepo := repository.NewInventoryUsageLogRepository(db)
	barangayRepo := repository.NewBarangayRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	harvestRepo := repository.NewHarvestRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	// Every named counter must exist before the first allocation
	if err := seqRepo.Initialize(context.Background(), utils.AllSequences); err != nil {
		return nil, fmt.Errorf("failed to initialize sequence counters: %w", err)
	}

	if err := ensureDefaultRoles(roleRepo); err != nil {
		return nil, fmt.Errorf("failed to ensure default roles: %w", err)
	}

	// Initialize token service
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// Initialize flows
	loginFlow := businessflow.NewLoginFlow(
		userRepo,
		sessionRepo,
		activityRepo,
		seqRepo,
		tokenService,
		db,
	)

	inventoryFlow := businessflow.NewInventoryFlow(
		stockRepo,
		usageRepo,
		seqRepo,
		activityRepo,
		projectRepo,
		rc,
		&cfg.Cache,
		db,
	)

	barangayFlow := businessflow.NewBarangayFlow(
		barangayRepo,
		seqRepo,
		activityRepo,
		db,
	)

	projectFlow := businessflow.NewProjectFlow(
		projectRepo,
		barangayRepo,
		userRepo,
		seqRepo,
		activityRepo,
		rc,
		&cfg.Cache,
		db,
	)

	teamFlow := businessflow.NewTeamFlow(
		teamRepo,
		barangayRepo,
		userRepo,
		seqRepo,
		activityRepo,
		db,
	)

	taskFlow := businessflow.NewTaskFlow(
		taskRepo,
		projectRepo,
		teamRepo,
		seqRepo,
		activityRepo,
		db,
	)

	attendanceFlow := businessflow.NewAttendanceFlow(
		attendanceRepo,
		taskRepo,
		userRepo,
		seqRepo,
		activityRepo,
		db,
	)

	harvestFlow := businessflow.NewHarvestFlow(
		harvestRepo,
		projectRepo,
		teamRepo,
		seqRepo,
		activityRepo,
		db,
	)

	feedbackFlow := businessflow.NewFeedbackFlow(
		feedbackRepo,
		taskRepo,
		seqRepo,
		activityRepo,
		db,
	)

	activityLogFlow := businessflow.NewActivityLogFlow(activityRepo)

	// Initialize handlers
	h := router.Handlers{
		Auth:        handlers.NewAuthHandler(loginFlow),
		Inventory:   handlers.NewInventoryHandler(inventoryFlow),
		Barangay:    handlers.NewBarangayHandler(barangayFlow),
		Project:     handlers.NewProjectHandler(projectFlow),
		Team:        handlers.NewTeamHandler(teamFlow),
		Task:        handlers.NewTaskHandler(taskFlow),
		Attendance:  handlers.NewAttendanceHandler(attendanceFlow),
		Harvest:     handlers.NewHarvestHandler(harvestFlow),
		Feedback:    handlers.NewFeedbackHandler(feedbackFlow),
		ActivityLog: handlers.NewActivityLogHandler(activityLogFlow),
	}

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService, userRepo)

	// Initialize router
	appRouter := router.NewFiberRouter(h, authMiddleware)

	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}

// ensureDefaultRoles creates the built-in access levels when they are missing
func ensureDefaultRoles(roleRepo repository.UserRoleRepository) error {
	defaults := []struct {
		name    string
		display string
	}{
		{models.RoleAdmin, "Administrator"},
		{models.RoleSupervisor, "Supervisor"},
		{models.RoleFarmPresident, "Farm President"},
		{models.RoleHeadFarmer, "Head Farmer"},
		{models.RoleFarmer, "Farmer"},
	}

	for _, d := range defaults {
		existing, err := roleRepo.ByRoleName(context.Background(), d.name)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}
		role := models.UserRole{
			RoleName:    d.name,
			DisplayName: d.display,
			CreatedAt:   utils.UTCNow(),
		}
		if err := roleRepo.Save(context.Background(), &role); err != nil {
			return err
		}
	}

	return nil
}

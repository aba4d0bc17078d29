// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/Zarcastral/farmops/app/dto"
	"github.com/Zarcastral/farmops/app/handlers"
	"github.com/Zarcastral/farmops/app/middleware"
	"github.com/Zarcastral/farmops/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// Handlers bundles every HTTP handler the router mounts
type Handlers struct {
	Auth        handlers.AuthHandlerInterface
	Inventory   handlers.InventoryHandlerInterface
	Barangay    handlers.BarangayHandlerInterface
	Project     handlers.ProjectHandlerInterface
	Team        handlers.TeamHandlerInterface
	Task        handlers.TaskHandlerInterface
	Attendance  handlers.AttendanceHandlerInterface
	Harvest     handlers.HarvestHandlerInterface
	Feedback    handlers.FeedbackHandlerInterface
	ActivityLog handlers.ActivityLogHandlerInterface
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app      *fiber.App
	handlers Handlers
	auth     *middleware.AuthMiddleware
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(h Handlers, auth *middleware.AuthMiddleware) Router {
	app := fiber.New(fiber.Config{
		AppName:      "FarmOps API",
		ServerHeader: "FarmOps",
		ErrorHandler: errorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:      app,
		handlers: h,
		auth:     auth,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	// Prometheus scrape endpoint, outside the API group
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	api.Use(limiter.New(limiter.Config{
		Max:        2000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	// Auth routes with stricter rate limiting
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:        20,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
	}))

	auth.Post("/login", r.handlers.Auth.Login)
	auth.Post("/refresh", r.handlers.Auth.Refresh)
	auth.Post("/logout", r.auth.Authenticate(), r.handlers.Auth.Logout)

	authenticated := r.auth.Authenticate()
	management := r.auth.RequireManagement()

	// Inventory: stock and usage logs
	inventory := api.Group("/inventory", authenticated)
	inventory.Post("/resources", management, r.handlers.Inventory.RegisterResource)
	inventory.Post("/replenish", management, r.handlers.Inventory.Replenish)
	inventory.Post("/consume", r.handlers.Inventory.Consume)
	inventory.Get("/stock/:kind", r.handlers.Inventory.ListByOwner)
	inventory.Get("/stock/:kind/:resource_id", r.handlers.Inventory.GetStock)
	inventory.Delete("/resources/:kind/:resource_id", management, r.handlers.Inventory.DeleteResource)
	inventory.Get("/usage-logs", r.handlers.Inventory.ListUsageLogs)
	inventory.Get("/usage-logs/export", management, r.handlers.Inventory.ExportUsageLogs)

	// Barangays
	barangays := api.Group("/barangays", authenticated)
	barangays.Post("/", management, r.handlers.Barangay.Create)
	barangays.Get("/", r.handlers.Barangay.List)
	barangays.Get("/:barangay_id", r.handlers.Barangay.Get)
	barangays.Put("/:barangay_id", management, r.handlers.Barangay.Update)
	barangays.Delete("/:barangay_id", management, r.handlers.Barangay.Delete)
	barangays.Get("/:barangay_id/projects", r.handlers.Project.ListByBarangay)
	barangays.Get("/:barangay_id/teams", r.handlers.Team.ListByBarangay)

	// Projects
	projects := api.Group("/projects", authenticated)
	projects.Post("/", management, r.handlers.Project.Create)
	projects.Get("/:project_id", r.handlers.Project.Get)
	projects.Patch("/:project_id/status", management, r.handlers.Project.UpdateStatus)
	projects.Get("/:project_id/tasks", r.handlers.Task.ListByProject)
	projects.Get("/:project_id/harvests", r.handlers.Harvest.ListByProject)
	projects.Get("/:project_id/harvests/export", management, r.handlers.Harvest.Export)

	// Teams
	teams := api.Group("/teams", authenticated)
	teams.Post("/", management, r.handlers.Team.Create)
	teams.Get("/:team_id", r.handlers.Team.Get)
	teams.Post("/:team_id/members", management, r.handlers.Team.AddMember)
	teams.Delete("/:team_id/members/:farmer_id", management, r.handlers.Team.RemoveMember)

	// Tasks
	tasks := api.Group("/tasks", authenticated)
	tasks.Post("/", management, r.handlers.Task.Create)
	tasks.Get("/:task_id", r.handlers.Task.Get)
	tasks.Patch("/:task_id/status", r.handlers.Task.UpdateStatus)
	tasks.Patch("/:task_id/subtasks/:subtask_id/status", r.handlers.Task.UpdateSubtaskStatus)
	tasks.Get("/:task_id/attendance", r.handlers.Attendance.ListByTask)
	tasks.Get("/:task_id/feedback", r.handlers.Feedback.ListByTask)

	// Attendance
	attendance := api.Group("/attendance", authenticated)
	attendance.Post("/", r.handlers.Attendance.Record)
	attendance.Get("/farmers/:farmer_id", r.handlers.Attendance.ListByFarmer)

	// Harvests
	harvests := api.Group("/harvests", authenticated)
	harvests.Post("/", r.handlers.Harvest.Record)
	harvests.Get("/summary", r.handlers.Harvest.Summary)

	// Feedback
	feedback := api.Group("/feedback", authenticated)
	feedback.Post("/", r.handlers.Feedback.Submit)
	feedback.Get("/pending", management, r.handlers.Feedback.ListPending)
	feedback.Patch("/:feedback_id/acknowledge", management, r.handlers.Feedback.Acknowledge)

	// Audit trail
	activity := api.Group("/activity-logs", authenticated, management)
	activity.Get("/", r.handlers.ActivityLog.List)
	activity.Get("/failed", r.handlers.ActivityLog.ListFailed)
	activity.Get("/users/:user_id", r.handlers.ActivityLog.ListByUser)

	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'; frame-ancestors 'none';",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"https://farmops.ph",
			"https://app.farmops.ph",
			"https://admin.farmops.ph",
		},
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
		},
		AllowCredentials: true,
		MaxAge:           utils.CORSMaxAge,
	}))

	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Structured request logging
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health" || c.Path() == "/metrics"
		},
	}))

	// Prometheus request metrics
	r.app.Use(middleware.Metrics())

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   "1.0.0",
			"service":   "farmops-api",
		},
	})
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error %d: %v", code, err)

	requestID := c.Locals("requestid")

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

package http

import (
	"github.com/gin-gonic/gin"

	"github.com/titangym/gymdesk/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// The scanner endpoints (health, login, check-in, uuid lookup) are
// public; everything else sits behind the bearer-token middleware.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// Create controllers with appropriate interfaces
	health := NewHealthController(cfg.Database, cfg.Version)
	authController := NewAuthController(cfg.AuthService)
	clientsController := NewClientsController(cfg.ClientStore)
	trainersController := NewTrainersController(cfg.TrainerStore)
	membershipsController := NewMembershipsController(cfg.MembershipStore)
	scheduleController := NewScheduleController(cfg.ScheduleStore)
	visitsController := NewVisitsController(cfg.VisitStore, cfg.ClientStore)
	analyticsController := NewAnalyticsController(cfg.AnalyticsStore)

	// Public endpoints: health, login, and the QR scanner pair
	router.GET("/api/health", health.Status)
	router.POST("/api/auth/login", authController.Login)
	router.POST("/api/visits/checkin", visitsController.CheckIn)
	router.GET("/api/clients/uuid/:uuid", clientsController.GetByUUID)

	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.Handler())

	api.POST("/auth/change-credentials", authController.ChangeCredentials)

	api.GET("/clients", clientsController.List)
	api.GET("/clients/:id", clientsController.Get)
	api.POST("/clients", clientsController.Create)
	api.PUT("/clients/:id", clientsController.Update)
	api.PUT("/clients/:id/membership", clientsController.UpdateMembership)
	api.DELETE("/clients/:id", clientsController.Delete)
	api.GET("/clients/:id/qrcode", clientsController.QRCode)

	api.GET("/trainers", trainersController.List)
	api.GET("/trainers/:id", trainersController.Get)
	api.POST("/trainers", trainersController.Create)
	api.PUT("/trainers/:id", trainersController.Update)
	api.DELETE("/trainers/:id", trainersController.Delete)

	api.GET("/memberships/types", membershipsController.ListTypes)
	api.POST("/memberships/types", membershipsController.CreateType)
	api.PUT("/memberships/types/:id", membershipsController.UpdateType)
	api.DELETE("/memberships/types/:id", membershipsController.DeleteType)
	api.GET("/memberships/client/:clientId", membershipsController.ListForClient)
	api.POST("/memberships/purchase", membershipsController.Purchase)
	api.GET("/memberships/active", membershipsController.ListActive)
	api.PUT("/memberships/:id/deactivate", membershipsController.Deactivate)

	api.GET("/schedule", scheduleController.List)
	api.POST("/schedule", scheduleController.Create)
	api.PUT("/schedule/:id/complete", scheduleController.Complete)
	api.PUT("/schedule/:id/cancel", scheduleController.Cancel)
	api.DELETE("/schedule/:id", scheduleController.Delete)
	api.GET("/schedule/history/:clientId", scheduleController.History)

	api.GET("/visits", visitsController.List)
	api.GET("/visits/client/:clientId", visitsController.ListForClient)
	api.DELETE("/visits/:id", visitsController.Delete)

	api.GET("/analytics/stats", analyticsController.Stats)
	api.GET("/analytics/top-clients", analyticsController.TopClients)
	api.GET("/analytics/trainer-stats", analyticsController.TrainerStats)
	api.GET("/analytics/visits-chart", analyticsController.VisitsChart)
	api.GET("/analytics/peak-hours", analyticsController.PeakHours)
	api.GET("/analytics/occupancy", analyticsController.Occupancy)
	api.GET("/analytics/current-visitors", analyticsController.CurrentVisitors)
	api.GET("/analytics/earnings", analyticsController.Earnings)

	// Task management endpoints
	if cfg.TaskClient != nil {
		tasksController := NewTasksController(cfg.TaskClient)
		api.POST("/admin/tasks/:type/run", tasksController.RunTask)
		api.GET("/admin/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}

package http

import (
	"github.com/titangym/gymdesk/internal/auth"
	"github.com/titangym/gymdesk/internal/database"
	"github.com/titangym/gymdesk/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed to
// create the HTTP router. This replaces a long parameter list in
// NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database

	// Authentication
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware

	// Resource stores
	ClientStore     ClientStore
	TrainerStore    TrainerStore
	MembershipStore MembershipStore
	ScheduleStore   ScheduleStore
	VisitStore      VisitStore
	AnalyticsStore  AnalyticsStore

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Application info
	Version string
}

package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteAuthLogin       = "/api/auth/login"
	RouteAuthLogout      = "/api/auth/logout"
	RouteAuthCurrentUser = "/api/auth/current-user"

	// Dashboard Routes
	RouteDashboardEmbedConfig = "/api/dashboard/embed-config"

	// System Routes
	RouteHealth      = "/api/health"
	RouteConfigCheck = "/api/config-check"
	RouteMetrics     = "/metrics"
)

package http

import (
	"net/http"

	"telecrm-backend/internal/config"
	"telecrm-backend/internal/handlers"
	"telecrm-backend/internal/middleware"
	"telecrm-backend/internal/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	leadHandler *handlers.LeadHandler,
	callHandler *handlers.CallHandler,
	goalHandler *handlers.GoalHandler,
	dashboardHandler *handlers.DashboardHandler,
	activityLogHandler *handlers.ActivityLogHandler,
	notificationHandler *handlers.NotificationHandler,
	enquiryHandler *handlers.WebsiteEnquiryHandler,
	reportHandler *handlers.ReportHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	manager := authMiddleware.RequireRole(models.RoleAdmin, models.RoleLeader)
	adminOnly := authMiddleware.RequireAdmin

	// Public API routes - Authentication
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")

	authAPI := r.PathPrefix("/api/auth").Subrouter()
	authAPI.Use(authMiddleware.Authenticate)
	authAPI.HandleFunc("/me", authHandler.Me).Methods("GET")

	// Public website enquiry capture (shared-token guarded)
	enquiryPublic := r.PathPrefix("/api/website-enquiries").Subrouter()
	enquiryPublic.Use(middleware.RequireSiteToken(cfg))
	enquiryPublic.HandleFunc("", enquiryHandler.Submit).Methods("POST")

	// Protected API routes - Users
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.HandleFunc("", manager(http.HandlerFunc(userHandler.List)).ServeHTTP).Methods("GET")
	usersAPI.HandleFunc("", manager(http.HandlerFunc(userHandler.Create)).ServeHTTP).Methods("POST")
	usersAPI.HandleFunc("/{id}", manager(http.HandlerFunc(userHandler.Get)).ServeHTTP).Methods("GET")
	usersAPI.HandleFunc("/{id}", adminOnly(http.HandlerFunc(userHandler.Update)).ServeHTTP).Methods("PUT")
	usersAPI.HandleFunc("/{id}", adminOnly(http.HandlerFunc(userHandler.Delete)).ServeHTTP).Methods("DELETE")

	// Telecaller drill-downs for managers
	usersAPI.HandleFunc("/{id}/leads", manager(http.HandlerFunc(userHandler.Leads)).ServeHTTP).Methods("GET")
	usersAPI.HandleFunc("/{id}/calls", manager(http.HandlerFunc(userHandler.Calls)).ServeHTTP).Methods("GET")
	usersAPI.HandleFunc("/{id}/goal", manager(http.HandlerFunc(userHandler.Goal)).ServeHTTP).Methods("GET")
	usersAPI.HandleFunc("/{id}/dashboard", manager(http.HandlerFunc(userHandler.Dashboard)).ServeHTTP).Methods("GET")

	// Protected API routes - Leads
	leadsAPI := r.PathPrefix("/api/leads").Subrouter()
	leadsAPI.Use(authMiddleware.Authenticate)
	leadsAPI.HandleFunc("", leadHandler.List).Methods("GET")
	leadsAPI.HandleFunc("", manager(http.HandlerFunc(leadHandler.Create)).ServeHTTP).Methods("POST")
	leadsAPI.HandleFunc("/export", leadHandler.Export).Methods("GET")
	leadsAPI.HandleFunc("/upload-csv", manager(http.HandlerFunc(leadHandler.Upload)).ServeHTTP).Methods("POST")
	leadsAPI.HandleFunc("/bulk/assign", adminOnly(http.HandlerFunc(leadHandler.BulkAssign)).ServeHTTP).Methods("PUT")
	leadsAPI.HandleFunc("/bulk", manager(http.HandlerFunc(leadHandler.BulkStatus)).ServeHTTP).Methods("PUT")
	leadsAPI.HandleFunc("/{id}", leadHandler.Get).Methods("GET")
	leadsAPI.HandleFunc("/{id}", leadHandler.Update).Methods("PUT")
	leadsAPI.HandleFunc("/{id}/status", leadHandler.SetStatus).Methods("PATCH")
	leadsAPI.HandleFunc("/{id}", manager(http.HandlerFunc(leadHandler.Delete)).ServeHTTP).Methods("DELETE")

	// Protected API routes - Teams
	teamsAPI := r.PathPrefix("/api/teams").Subrouter()
	teamsAPI.Use(authMiddleware.Authenticate)
	teamsAPI.HandleFunc("", userHandler.Team).Methods("GET")

	// Protected API routes - Calls
	callsAPI := r.PathPrefix("/api/calls").Subrouter()
	callsAPI.Use(authMiddleware.Authenticate)
	callsAPI.HandleFunc("", callHandler.List).Methods("GET")
	callsAPI.HandleFunc("", callHandler.Log).Methods("POST")

	// Protected API routes - Goals
	goalsAPI := r.PathPrefix("/api/goals").Subrouter()
	goalsAPI.Use(authMiddleware.Authenticate)
	goalsAPI.HandleFunc("", goalHandler.List).Methods("GET")
	goalsAPI.HandleFunc("", manager(http.HandlerFunc(goalHandler.Upsert)).ServeHTTP).Methods("POST")
	goalsAPI.HandleFunc("/me", goalHandler.Mine).Methods("GET")

	// Protected API routes - Dashboard
	dashboardAPI := r.PathPrefix("/api/dashboard").Subrouter()
	dashboardAPI.Use(authMiddleware.Authenticate)
	dashboardAPI.HandleFunc("/summary", dashboardHandler.Summary).Methods("GET")

	// Protected API routes - Reports
	reportsAPI := r.PathPrefix("/api/reports").Subrouter()
	reportsAPI.Use(authMiddleware.Authenticate)
	reportsAPI.HandleFunc("/team-performance", manager(http.HandlerFunc(reportHandler.TeamPDF)).ServeHTTP).Methods("GET")

	// Protected API routes - Website enquiries (staff view)
	enquiriesAPI := r.PathPrefix("/api/enquiries").Subrouter()
	enquiriesAPI.Use(authMiddleware.Authenticate)
	enquiriesAPI.HandleFunc("", manager(http.HandlerFunc(enquiryHandler.List)).ServeHTTP).Methods("GET")
	enquiriesAPI.HandleFunc("/{id}/status", manager(http.HandlerFunc(enquiryHandler.SetStatus)).ServeHTTP).Methods("PATCH")

	// Protected API routes - Notifications
	notificationsAPI := r.PathPrefix("/api/notifications").Subrouter()
	notificationsAPI.Use(authMiddleware.Authenticate)
	notificationsAPI.HandleFunc("", notificationHandler.List).Methods("GET")
	notificationsAPI.HandleFunc("/read-all", notificationHandler.MarkAllRead).Methods("POST")
	notificationsAPI.HandleFunc("/{id}/read", notificationHandler.MarkRead).Methods("POST")

	// Protected API routes - Activity log (admin only)
	activityAPI := r.PathPrefix("/api/activity").Subrouter()
	activityAPI.Use(authMiddleware.Authenticate)
	activityAPI.HandleFunc("", adminOnly(http.HandlerFunc(activityLogHandler.List)).ServeHTTP).Methods("GET")

	// Health endpoints (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

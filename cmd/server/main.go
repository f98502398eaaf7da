package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telecrm-backend/internal/auth"
	"telecrm-backend/internal/cache"
	"telecrm-backend/internal/config"
	"telecrm-backend/internal/database"
	"telecrm-backend/internal/db"
	"telecrm-backend/internal/handlers"
	"telecrm-backend/internal/health"
	h "telecrm-backend/internal/http"
	"telecrm-backend/internal/middleware"
	"telecrm-backend/internal/models"
	"telecrm-backend/internal/monitoring"
	"telecrm-backend/internal/repositories"
	"telecrm-backend/internal/services"

	"github.com/jackc/pgx/v5"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	monitorPort := flag.Int("monitor-port", 9090, "Monitoring server port")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	// Redis is optional, lookups degrade to misses without it
	cache.Init()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	migrator := database.NewMigrator(pool)
	if err := migrator.RunMigrations(ctx); err != nil {
		cancel()
		log.Fatalf("Failed to run migrations: %v", err)
	}
	cancel()

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	leadRepo := repositories.NewLeadRepository(pool)
	callRepo := repositories.NewCallLogRepository(pool)
	goalRepo := repositories.NewGoalRepository(pool)
	activityRepo := repositories.NewActivityLogRepository(pool)
	enquiryRepo := repositories.NewWebsiteEnquiryRepository(pool)
	notificationRepo := repositories.NewNotificationRepository(pool)

	seedAdmins(cfg, userRepo)

	// Services
	jwtManager := auth.NewJWTManager(cfg)
	scopeSvc := services.NewScopeService(userRepo)
	userSvc := services.NewUserService(userRepo, leadRepo, goalRepo, activityRepo, jwtManager)
	leadSvc := services.NewLeadService(leadRepo, userRepo, goalRepo, activityRepo, scopeSvc)
	callSvc := services.NewCallService(callRepo, leadRepo, goalRepo, activityRepo, scopeSvc, leadSvc)
	goalSvc := services.NewGoalService(goalRepo, callRepo, activityRepo, scopeSvc)
	dashboardSvc := services.NewDashboardService(leadRepo, callRepo, goalRepo, userRepo, scopeSvc)
	exportSvc := services.NewExportService(leadRepo, userRepo, activityRepo, scopeSvc)
	importSvc := services.NewImportService(leadRepo, userRepo, activityRepo)
	reportSvc := services.NewReportService(leadRepo, callRepo, goalRepo, scopeSvc)
	enquirySvc := services.NewEnquiryService(enquiryRepo, userRepo, notificationRepo, activityRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(userSvc)
	userHandler := handlers.NewUserHandler(userSvc, callSvc, goalSvc, leadSvc, dashboardSvc)
	leadHandler := handlers.NewLeadHandler(leadSvc, exportSvc, importSvc)
	callHandler := handlers.NewCallHandler(callSvc)
	goalHandler := handlers.NewGoalHandler(goalSvc)
	dashboardHandler := handlers.NewDashboardHandler(dashboardSvc)
	activityHandler := handlers.NewActivityLogHandler(activityRepo)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	enquiryHandler := handlers.NewWebsiteEnquiryHandler(enquirySvc, enquiryRepo)
	reportHandler := handlers.NewReportHandler(reportSvc)
	healthHandler := handlers.NewHealthHandler(health.NewHealthChecker(pool))

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)

	router := h.NewRouter(cfg, authHandler, userHandler, leadHandler, callHandler,
		goalHandler, dashboardHandler, activityHandler, notificationHandler,
		enquiryHandler, reportHandler, healthHandler, authMiddleware)

	var handler http.Handler = router
	handler = middleware.MetricsMiddleware(handler)
	handler = middleware.NewCORS(cfg)(handler)
	handler = middleware.PanicRecovery(handler)

	// Ops stats on a side port
	go monitoring.NewServer(pool, *monitorPort).Start()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // exports can stream for a while
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("[Server] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("[Server] shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Server] shutdown error: %v", err)
	}
}

// seedAdmins creates the configured admin accounts on first boot so a
// fresh deployment is immediately usable.
func seedAdmins(cfg *config.Config, users *repositories.UserRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	seed := func(email, password, firstName, lastName string) {
		if email == "" || password == "" {
			return
		}
		if _, err := users.GetByEmail(ctx, email); err == nil {
			return // already present
		} else if !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("[Seed] lookup %s failed: %v", email, err)
			return
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			log.Printf("[Seed] hash for %s failed: %v", email, err)
			return
		}
		admin := &models.User{
			FirstName:    firstName,
			LastName:     lastName,
			Email:        email,
			PasswordHash: hash,
			Role:         models.RoleAdmin,
			Active:       true,
		}
		if err := users.Create(ctx, admin); err != nil {
			log.Printf("[Seed] create %s failed: %v", email, err)
			return
		}
		log.Printf("[Seed] admin account %s created", email)
	}

	seed(cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.FirstName, cfg.Admin.LastName)
	seed(cfg.Admin.ProtectedEmail, cfg.Admin.ProtectedPassword, "System", "Admin")
}

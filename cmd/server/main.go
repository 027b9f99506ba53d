package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/joho/godotenv"

	"hostel-backend/internal/auth"
	"hostel-backend/internal/config"
	"hostel-backend/internal/database"
	"hostel-backend/internal/db"
	"hostel-backend/internal/handlers"
	"hostel-backend/internal/health"
	h "hostel-backend/internal/http"
	"hostel-backend/internal/middleware"
	"hostel-backend/internal/monitoring"
	"hostel-backend/internal/repositories"
	"hostel-backend/internal/services"
	"hostel-backend/internal/timeutil"
	"hostel-backend/migrations"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	skipMigrations := flag.Bool("skip-migrations", false, "Do not run database migrations on startup")
	flag.Parse()

	// .env is optional, real deployments set environment variables
	godotenv.Load()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	if !*skipMigrations {
		migrator := database.NewMigrator(pool, migrations.FS)
		if err := migrator.Run(context.Background()); err != nil {
			log.Fatalf("Migrations failed: %v", err)
		}
	}

	jwtManager := auth.NewJWTManager(cfg)
	clock := timeutil.SystemClock{}

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	gatePassRepo := repositories.NewGatePassRepository(pool)

	// Services
	userService := services.NewUserService(userRepo, gatePassRepo, jwtManager, clock)
	gatePassService := services.NewGatePassService(gatePassRepo, userRepo, clock)
	notificationService := services.NewNotificationService(gatePassRepo, clock)
	dashboardService := services.NewDashboardService(userRepo, gatePassRepo, gatePassService, cfg.Rooms, clock)

	// Observability
	metrics := monitoring.New()
	metrics.StartCollection()
	checker := health.NewChecker(pool)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	gatePassHandler := handlers.NewGatePassHandler(gatePassService)
	adminHandler := handlers.NewAdminHandler(userService, dashboardService)
	userHandler := handlers.NewUserHandler(userService, notificationService, dashboardService)
	healthHandler := handlers.NewHealthHandler(checker)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	router := h.NewRouter(authHandler, gatePassHandler, adminHandler, userHandler, healthHandler, authMiddleware, metrics)
	handler := middleware.HTTPSRedirect(corsMiddleware(router))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Hostel gate pass server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

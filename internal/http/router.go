// Package http wires the route tree and per-route middleware.
package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"hostel-backend/internal/handlers"
	"hostel-backend/internal/middleware"
	"hostel-backend/internal/models"
	"hostel-backend/internal/monitoring"
)

// NewRouter builds the full API route tree with auth and role checks.
func NewRouter(
	authHandler *handlers.AuthHandler,
	gatePassHandler *handlers.GatePassHandler,
	adminHandler *handlers.AdminHandler,
	userHandler *handlers.UserHandler,
	healthHandler *handlers.HealthHandler,
	authMW *middleware.AuthMiddleware,
	metrics *monitoring.Metrics,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.SecurityHeaders)
	router.Use(metrics.Middleware)
	router.Use(middleware.GzipCompression)

	// Unauthenticated surface
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")
	router.Handle("/api/auth/login",
		middleware.LoginRateLimiter.Middleware(http.HandlerFunc(authHandler.Login))).Methods("POST")

	// Everything under /api (except login) requires a valid token
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.APIRateLimiter.Middleware)
	api.Use(authMW.RequireAuth)

	api.HandleFunc("/auth/validate", authHandler.Validate).Methods("GET")

	student := authMW.RequireRole(models.RoleStudent)
	warden := authMW.RequireRole(models.RoleWarden)
	security := authMW.RequireRole(models.RoleSecurity)
	gateStaff := authMW.RequireRole(models.RoleWarden, models.RoleSecurity)

	// Gate pass lifecycle
	gp := api.PathPrefix("/gatepass").Subrouter()
	gp.Handle("/create", student(http.HandlerFunc(gatePassHandler.CreateGatePass))).Methods("POST")
	gp.Handle("/student", student(http.HandlerFunc(gatePassHandler.ListMyPasses))).Methods("GET")
	gp.Handle("/pending", warden(http.HandlerFunc(gatePassHandler.ListPendingPasses))).Methods("GET")
	gp.Handle("/approved", gateStaff(http.HandlerFunc(gatePassHandler.ListApprovedPasses))).Methods("GET")
	gp.Handle("/currently-out", gateStaff(http.HandlerFunc(gatePassHandler.ListCurrentlyOut))).Methods("GET")
	gp.Handle("/all", warden(http.HandlerFunc(gatePassHandler.ListAllPasses))).Methods("GET")
	gp.Handle("/approve/{id}", warden(http.HandlerFunc(gatePassHandler.ApproveGatePass))).Methods("POST")
	gp.Handle("/reject/{id}", warden(http.HandlerFunc(gatePassHandler.RejectGatePass))).Methods("POST")
	gp.Handle("/mark-exit/{id}", security(http.HandlerFunc(gatePassHandler.MarkExit))).Methods("POST")
	gp.Handle("/mark-return/{id}", security(http.HandlerFunc(gatePassHandler.MarkReturn))).Methods("POST")
	gp.HandleFunc("/{id}", gatePassHandler.GetGatePass).Methods("GET")

	// Student administration (warden only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(warden)
	admin.HandleFunc("/students", adminHandler.CreateStudent).Methods("POST")
	admin.HandleFunc("/students", adminHandler.ListStudents).Methods("GET")
	admin.HandleFunc("/students/{id}", adminHandler.UpdateStudent).Methods("PUT")
	admin.HandleFunc("/students/{id}", adminHandler.DeleteStudent).Methods("DELETE")
	admin.HandleFunc("/students/{id}/active", adminHandler.SetStudentActive).Methods("PATCH")
	admin.HandleFunc("/dashboard", adminHandler.GetDashboard).Methods("GET")
	admin.HandleFunc("/rooms/available", adminHandler.GetAvailableRooms).Methods("GET")

	// Shared account endpoints
	user := api.PathPrefix("/user").Subrouter()
	user.HandleFunc("/profile", userHandler.GetProfile).Methods("GET")
	user.HandleFunc("/profile", userHandler.UpdateProfile).Methods("PUT")
	user.HandleFunc("/change-password", userHandler.ChangePassword).Methods("POST")
	user.HandleFunc("/dashboard", userHandler.GetDashboard).Methods("GET")
	user.HandleFunc("/stats", userHandler.GetStats).Methods("GET")
	user.HandleFunc("/notifications", userHandler.GetNotifications).Methods("GET")
	user.HandleFunc("/search", userHandler.SearchUsers).Methods("GET")

	// Host snapshot for the warden dashboard
	api.Handle("/system/info", warden(http.HandlerFunc(healthHandler.SystemInfo))).Methods("GET")

	return router
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"hostel-backend/internal/middleware"
	"hostel-backend/internal/models"
	"hostel-backend/internal/services"
)

// UserHandler covers profile, password and notification endpoints shared
// by every role.
type UserHandler struct {
	Users         *services.UserService
	Notifications *services.NotificationService
	Dashboard     *services.DashboardService
}

func NewUserHandler(users *services.UserService, notifications *services.NotificationService, dashboard *services.DashboardService) *UserHandler {
	return &UserHandler{Users: users, Notifications: notifications, Dashboard: dashboard}
}

// GetDashboard returns the logged-in user's landing view: their record
// plus the summary matching their role
func (h *UserHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	dashboard, err := h.Dashboard.ForUser(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}

// GetStats returns role-specific statistics including current-month
// counts
func (h *UserHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	stats, err := h.Dashboard.StatsForUser(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// GetProfile returns the logged-in user's account and profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile edits the logged-in user's own details
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.Users.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// ChangePassword verifies the current password and sets a new one
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Users.ChangePassword(r.Context(), userID, &req); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Password changed successfully")
}

// GetNotifications derives the role-specific notification feed
func (h *UserHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	notifications, err := h.Notifications.ForUser(r.Context(), user)
	if err != nil {
		writeError(w, err)
		return
	}

	if notifications == nil {
		notifications = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

// SearchUsers looks up accounts by name, id or room
func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	users, err := h.Users.SearchUsers(r.Context(), q.Get("q"), models.Role(q.Get("role")), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	if users == nil {
		users = []*models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

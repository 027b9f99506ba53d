package handlers

import (
	"encoding/json"
	"net/http"

	"hostel-backend/internal/models"
	"hostel-backend/internal/services"

	"github.com/gorilla/mux"
)

// AdminHandler covers the warden's student management and overview
// endpoints.
type AdminHandler struct {
	Users     *services.UserService
	Dashboard *services.DashboardService
}

func NewAdminHandler(users *services.UserService, dashboard *services.DashboardService) *AdminHandler {
	return &AdminHandler{Users: users, Dashboard: dashboard}
}

// GetDashboard returns the hostel-wide overview: student population by
// year, pass counts by state and the newest pending requests
func (h *AdminHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.Dashboard.WardenDashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboard)
}

// GetAvailableRooms lists rooms that still have space under the
// occupancy limit
func (h *AdminHandler) GetAvailableRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Dashboard.AvailableRooms(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rooms)
}

// CreateStudent provisions a new student account
func (h *AdminHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	student, err := h.Users.AddStudent(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, student)
}

// ListStudents returns students, optionally filtered by year, course or
// a free-text search over name, id and room
func (h *AdminHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.StudentFilter{
		Year:   q.Get("year"),
		Course: q.Get("course"),
		Search: q.Get("search"),
	}

	students, err := h.Users.ListStudents(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	if students == nil {
		students = []*models.User{}
	}
	writeJSON(w, http.StatusOK, students)
}

// UpdateStudent edits a student's account and profile fields
func (h *AdminHandler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	student, err := h.Users.UpdateStudent(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, student)
}

// DeleteStudent removes a student account with no gate pass history
func (h *AdminHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.DeleteStudent(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Student deleted successfully")
}

// SetStudentActive enables or disables a student's login
func (h *AdminHandler) SetStudentActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IsActive *bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.IsActive == nil {
		http.Error(w, "is_active is required", http.StatusBadRequest)
		return
	}

	student, err := h.Users.SetStudentActive(r.Context(), mux.Vars(r)["id"], *req.IsActive)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, student)
}

package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"hostel-backend/internal/middleware"
	"hostel-backend/internal/models"
	"hostel-backend/internal/services"
	"hostel-backend/internal/timeutil"

	"github.com/gorilla/mux"
)

type GatePassHandler struct {
	Service *services.GatePassService
}

func NewGatePassHandler(service *services.GatePassService) *GatePassHandler {
	return &GatePassHandler{Service: service}
}

// CreateGatePass files a new leave request for the logged-in student
func (h *GatePassHandler) CreateGatePass(w http.ResponseWriter, r *http.Request) {
	var req models.CreateGatePassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	record, err := h.Service.RequestPass(r.Context(), user, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

// ListMyPasses returns the logged-in student's own passes, newest first
func (h *GatePassHandler) ListMyPasses(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	records, err := h.Service.StudentPasses(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(records))
}

// ListPendingPasses returns requests awaiting a warden decision
func (h *GatePassHandler) ListPendingPasses(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.PendingRequests(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(records))
}

// ListApprovedPasses returns approved passes for the security desk
func (h *GatePassHandler) ListApprovedPasses(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.ApprovedPasses(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(records))
}

// ListCurrentlyOut returns students who have exited and not yet returned
func (h *GatePassHandler) ListCurrentlyOut(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.CurrentlyOut(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(records))
}

// ListAllPasses returns the full ledger, optionally filtered by status,
// student or out-date range
func (h *GatePassHandler) ListAllPasses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := models.GatePassFilter{
		Status:    models.Status(q.Get("status")),
		StudentID: models.NormalizeUserID(q.Get("student_id")),
	}
	if v := q.Get("from_date"); v != "" {
		d, err := timeutil.ParseDate(v)
		if err != nil {
			http.Error(w, "Invalid from_date", http.StatusBadRequest)
			return
		}
		filter.FromDate = &d
	}
	if v := q.Get("to_date"); v != "" {
		d, err := timeutil.ParseDate(v)
		if err != nil {
			http.Error(w, "Invalid to_date", http.StatusBadRequest)
			return
		}
		filter.ToDate = &d
	}

	records, err := h.Service.AllPasses(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(records))
}

// GetGatePass returns a single pass. Students can only see their own.
func (h *GatePassHandler) GetGatePass(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	record, err := h.Service.PassDetails(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	if user.Role == models.RoleStudent && record.StudentID != user.ID {
		http.Error(w, "Gate pass not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// ApproveGatePass lets a warden approve a pending request
func (h *GatePassHandler) ApproveGatePass(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Approve)
}

// RejectGatePass lets a warden reject a pending request
func (h *GatePassHandler) RejectGatePass(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Reject)
}

func (h *GatePassHandler) decide(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, warden *models.User, passID string, remarks *string) (*models.PassRecord, error),
) {
	warden, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	remarks, ok := decodeRemarks(w, r)
	if !ok {
		return
	}

	record, err := apply(r.Context(), warden, mux.Vars(r)["id"], remarks)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// MarkExit records a student leaving through the gate
func (h *GatePassHandler) MarkExit(w http.ResponseWriter, r *http.Request) {
	remarks, ok := decodeRemarks(w, r)
	if !ok {
		return
	}

	record, err := h.Service.MarkExit(r.Context(), mux.Vars(r)["id"], remarks)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// MarkReturn records a student coming back through the gate
func (h *GatePassHandler) MarkReturn(w http.ResponseWriter, r *http.Request) {
	remarks, ok := decodeRemarks(w, r)
	if !ok {
		return
	}

	record, err := h.Service.MarkReturn(r.Context(), mux.Vars(r)["id"], remarks)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// decodeRemarks reads the optional remarks body. An empty body is fine.
func decodeRemarks(w http.ResponseWriter, r *http.Request) (*string, bool) {
	var req models.RemarksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return nil, false
	}
	return req.Remarks, true
}

// nonNil ensures listings encode as [] instead of null
func nonNil(records []*models.PassRecord) []*models.PassRecord {
	if records == nil {
		return []*models.PassRecord{}
	}
	return records
}

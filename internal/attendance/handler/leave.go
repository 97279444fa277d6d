package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/repository"
	"github.com/chronotrack/chronotrack-backend/internal/attendance/service"
	"github.com/chronotrack/chronotrack-backend/pkg/actor"
	"github.com/chronotrack/chronotrack-backend/pkg/errors"
	"github.com/chronotrack/chronotrack-backend/pkg/httputil"
	"github.com/chronotrack/chronotrack-backend/pkg/logger"
)

// LeaveHandler handles leave request endpoints
type LeaveHandler struct {
	leaves   *service.LeaveService
	location *time.Location
	logger   *logger.Logger
}

// NewLeaveHandler creates a new leave handler
func NewLeaveHandler(leaves *service.LeaveService, loc *time.Location, log *logger.Logger) *LeaveHandler {
	return &LeaveHandler{leaves: leaves, location: loc, logger: log}
}

type leaveSubmitRequest struct {
	EmployeeID string `json:"employee_id"`
	Type       string `json:"type" validate:"required,oneof=PAID UNPAID"`
	StartDate  string `json:"start_date" validate:"required"`
	EndDate    string `json:"end_date" validate:"required"`
	Reason     string `json:"reason"`
}

// Submit files a new leave request. Employees file for themselves; HR may
// file on behalf of an employee.
func (h *LeaveHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req leaveSubmitRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	a := actor.FromContext(r.Context())
	if req.EmployeeID == "" {
		req.EmployeeID = a.Recorder()
	}
	if req.EmployeeID != a.Recorder() && a.Role != RoleHR && a.Role != RoleAdmin {
		httputil.Error(w, errors.Forbidden("cannot file leave for another employee"))
		return
	}

	start, err := time.ParseInLocation("2006-01-02", req.StartDate, h.location)
	if err != nil {
		httputil.Error(w, errors.ValidationMessage("start_date must be YYYY-MM-DD"))
		return
	}
	end, err := time.ParseInLocation("2006-01-02", req.EndDate, h.location)
	if err != nil {
		httputil.Error(w, errors.ValidationMessage("end_date must be YYYY-MM-DD"))
		return
	}

	leave := repository.LeaveRequest{
		EmployeeID: req.EmployeeID,
		Type:       req.Type,
		StartDate:  start,
		EndDate:    end,
	}
	if req.Reason != "" {
		leave.Reason = &req.Reason
	}

	if err := h.leaves.Submit(r.Context(), &leave); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, leave)
}

// Mine lists the requesting employee's leave requests
func (h *LeaveHandler) Mine(w http.ResponseWriter, r *http.Request) {
	employeeID := actor.FromContext(r.Context()).Recorder()

	requests, err := h.leaves.ListForEmployee(r.Context(), employeeID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, requests)
}

// ListForEmployee lists a given employee's leave requests
func (h *LeaveHandler) ListForEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	requests, err := h.leaves.ListForEmployee(r.Context(), employeeID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, requests)
}

// Pending lists the review queue, oldest first
func (h *LeaveHandler) Pending(w http.ResponseWriter, r *http.Request) {
	requests, err := h.leaves.ListPending(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, requests)
}

// Decide approves or rejects a pending request
func (h *LeaveHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Decision string `json:"decision" validate:"required,oneof=approve reject"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	operator := actor.FromContext(r.Context()).Recorder()
	decided, err := h.leaves.Decide(r.Context(), id, req.Decision == "approve", operator)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, decided)
}

// MarkRead acknowledges a decided request
func (h *LeaveHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	employeeID := actor.FromContext(r.Context()).Recorder()
	if err := h.leaves.MarkRead(r.Context(), id, employeeID); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

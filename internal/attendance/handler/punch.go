package handler

import (
	"net/http"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/service"
	"github.com/chronotrack/chronotrack-backend/pkg/actor"
	"github.com/chronotrack/chronotrack-backend/pkg/errors"
	"github.com/chronotrack/chronotrack-backend/pkg/httputil"
	"github.com/chronotrack/chronotrack-backend/pkg/logger"
)

// PunchHandler handles clock-in and clock-out endpoints
type PunchHandler struct {
	ledger *service.LedgerService
	logger *logger.Logger
}

// NewPunchHandler creates a new punch handler
func NewPunchHandler(ledger *service.LedgerService, log *logger.Logger) *PunchHandler {
	return &PunchHandler{ledger: ledger, logger: log}
}

type punchRequest struct {
	// EmployeeID is required for terminal punches; employees punching for
	// themselves may omit it.
	EmployeeID string `json:"employee_id"`
}

// resolveTarget decides who the punch is for. Employees punch for
// themselves; terminals and admins punch on behalf of the given employee.
func resolveTarget(r *http.Request) (employeeID, recorder string, err error) {
	a := actor.FromContext(r.Context())

	var req punchRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			return "", "", err
		}
	}

	if req.EmployeeID == "" || req.EmployeeID == a.Recorder() {
		return a.Recorder(), a.Recorder(), nil
	}

	switch a.Role {
	case RoleTerminal, RoleAdmin, RoleHR:
		return req.EmployeeID, a.Recorder(), nil
	}
	return "", "", errors.Forbidden("cannot punch on behalf of another employee")
}

// ClockIn records a check-in for an employee
func (h *PunchHandler) ClockIn(w http.ResponseWriter, r *http.Request) {
	employeeID, recorder, err := resolveTarget(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	rec, err := h.ledger.PunchIn(r.Context(), employeeID, recorder)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, rec)
}

// ClockOut records a check-out for an employee
func (h *PunchHandler) ClockOut(w http.ResponseWriter, r *http.Request) {
	employeeID, recorder, err := resolveTarget(r)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	rec, err := h.ledger.PunchOut(r.Context(), employeeID, recorder)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, rec)
}

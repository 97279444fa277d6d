package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/domain"
	"github.com/chronotrack/chronotrack-backend/internal/attendance/repository"
	"github.com/chronotrack/chronotrack-backend/internal/attendance/service"
	"github.com/chronotrack/chronotrack-backend/pkg/actor"
	"github.com/chronotrack/chronotrack-backend/pkg/httputil"
	"github.com/chronotrack/chronotrack-backend/pkg/logger"
)

// EmployeeHandler handles employee management endpoints
type EmployeeHandler struct {
	employees *service.EmployeeService
	logger    *logger.Logger
}

// NewEmployeeHandler creates a new employee handler
func NewEmployeeHandler(employees *service.EmployeeService, log *logger.Logger) *EmployeeHandler {
	return &EmployeeHandler{employees: employees, logger: log}
}

// List lists employees
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	params := repository.EmployeeListParams{
		Lifecycle:       domain.Lifecycle(r.URL.Query().Get("lifecycle")),
		DepartmentID:    r.URL.Query().Get("department_id"),
		IncludeTerminal: r.URL.Query().Get("include_terminal") == "true",
	}

	employees, err := h.employees.List(r.Context(), params)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, employees)
}

// Get gets an employee by ID
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	emp, err := h.employees.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, emp)
}

// Create creates a new employee
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var emp repository.Employee
	if err := httputil.DecodeJSON(r, &emp); err != nil {
		httputil.Error(w, err)
		return
	}

	if emp.Lifecycle == "" {
		emp.Lifecycle = domain.LifecycleProspective
	}
	if emp.WorkLocation == "" {
		emp.WorkLocation = domain.LocationOffice
	}

	operator := actor.FromContext(r.Context()).Recorder()
	if err := h.employees.Create(r.Context(), &emp, operator); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, emp)
}

// Update updates an employee
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var emp repository.Employee
	if err := httputil.DecodeJSON(r, &emp); err != nil {
		httputil.Error(w, err)
		return
	}
	emp.ID = id

	operator := actor.FromContext(r.Context()).Recorder()
	if err := h.employees.Update(r.Context(), &emp, operator); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, emp)
}

// Delete soft-deletes an employee
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	operator := actor.FromContext(r.Context()).Recorder()
	if err := h.employees.Delete(r.Context(), id, operator); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

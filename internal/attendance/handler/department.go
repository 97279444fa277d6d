package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/repository"
	"github.com/chronotrack/chronotrack-backend/internal/attendance/service"
	"github.com/chronotrack/chronotrack-backend/pkg/actor"
	"github.com/chronotrack/chronotrack-backend/pkg/httputil"
	"github.com/chronotrack/chronotrack-backend/pkg/logger"
)

// DepartmentHandler handles department endpoints
type DepartmentHandler struct {
	departments *service.DepartmentService
	logger      *logger.Logger
}

// NewDepartmentHandler creates a new department handler
func NewDepartmentHandler(departments *service.DepartmentService, log *logger.Logger) *DepartmentHandler {
	return &DepartmentHandler{departments: departments, logger: log}
}

// List lists all departments
func (h *DepartmentHandler) List(w http.ResponseWriter, r *http.Request) {
	departments, err := h.departments.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, departments)
}

// Get gets a department by ID
func (h *DepartmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dept, err := h.departments.Get(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, dept)
}

// Create creates a new department
func (h *DepartmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var dept repository.Department
	if err := httputil.DecodeJSON(r, &dept); err != nil {
		httputil.Error(w, err)
		return
	}

	operator := actor.FromContext(r.Context()).Recorder()
	if err := h.departments.Create(r.Context(), &dept, operator); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, dept)
}

// Update updates a department
func (h *DepartmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var dept repository.Department
	if err := httputil.DecodeJSON(r, &dept); err != nil {
		httputil.Error(w, err)
		return
	}
	dept.ID = id

	operator := actor.FromContext(r.Context()).Recorder()
	if err := h.departments.Update(r.Context(), &dept, operator); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, dept)
}

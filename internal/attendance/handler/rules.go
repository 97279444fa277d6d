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

// RuleHandler handles attendance rule endpoints
type RuleHandler struct {
	rules  *service.RuleService
	logger *logger.Logger
}

// NewRuleHandler creates a new rule handler
func NewRuleHandler(rules *service.RuleService, log *logger.Logger) *RuleHandler {
	return &RuleHandler{rules: rules, logger: log}
}

type ruleRequest struct {
	Name            string `json:"name" validate:"required"`
	StandardCheckIn string `json:"standard_check_in" validate:"required"`
	GraceMinutes    int    `json:"grace_minutes" validate:"gte=0"`
	AbsentMinutes   int    `json:"absent_minutes" validate:"gte=0"`
	IsDefault       bool   `json:"is_default"`
}

// List lists all rules, default first
func (h *RuleHandler) List(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, rules)
}

// Get gets a rule by ID
func (h *RuleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rule, err := h.rules.GetByID(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, rule)
}

// Create creates a new rule
func (h *RuleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	rule := repository.Rule{
		Name:            req.Name,
		StandardCheckIn: req.StandardCheckIn,
		GraceMinutes:    req.GraceMinutes,
		AbsentMinutes:   req.AbsentMinutes,
		IsDefault:       req.IsDefault,
	}

	operator := actor.FromContext(r.Context()).Recorder()
	if err := h.rules.Create(r.Context(), &rule, operator); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, rule)
}

// Update updates a rule
func (h *RuleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ruleRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	rule := repository.Rule{
		ID:              id,
		Name:            req.Name,
		StandardCheckIn: req.StandardCheckIn,
		GraceMinutes:    req.GraceMinutes,
		AbsentMinutes:   req.AbsentMinutes,
		IsDefault:       req.IsDefault,
	}

	operator := actor.FromContext(r.Context()).Recorder()
	if err := h.rules.Update(r.Context(), &rule, operator); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, rule)
}

// Delete deletes a non-default rule
func (h *RuleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	operator := actor.FromContext(r.Context()).Recorder()
	if err := h.rules.Delete(r.Context(), id, operator); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// ResolveForEmployee returns the rule that applies to an employee after
// the personal, department, default cascade.
func (h *RuleHandler) ResolveForEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	rule, err := h.rules.Resolve(r.Context(), employeeID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, rule)
}

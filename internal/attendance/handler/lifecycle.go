package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/service"
	"github.com/chronotrack/chronotrack-backend/pkg/actor"
	"github.com/chronotrack/chronotrack-backend/pkg/httputil"
	"github.com/chronotrack/chronotrack-backend/pkg/logger"
)

// LifecycleHandler exposes the daily triggers for manual invocation and
// inspection. The scheduler calls the service directly; this surface
// exists for operators re-running a trigger after an outage.
type LifecycleHandler struct {
	lifecycle *service.LifecycleService
	logger    *logger.Logger
}

// NewLifecycleHandler creates a new lifecycle handler
func NewLifecycleHandler(lifecycle *service.LifecycleService, log *logger.Logger) *LifecycleHandler {
	return &LifecycleHandler{lifecycle: lifecycle, logger: log}
}

// Run executes a trigger by name
func (h *LifecycleHandler) Run(w http.ResponseWriter, r *http.Request) {
	trigger := chi.URLParam(r, "trigger")
	operator := actor.FromContext(r.Context()).Recorder()

	h.logger.Info().Str("trigger", trigger).Str("operator", operator).Msg("manual trigger run requested")

	result, err := h.lifecycle.Run(r.Context(), trigger)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// Status reports the last run of each trigger
func (h *LifecycleHandler) Status(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, h.lifecycle.LastRuns())
}

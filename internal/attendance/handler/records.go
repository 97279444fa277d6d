package handler

import (
	"encoding/csv"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/domain"
	"github.com/chronotrack/chronotrack-backend/internal/attendance/service"
	"github.com/chronotrack/chronotrack-backend/pkg/actor"
	"github.com/chronotrack/chronotrack-backend/pkg/errors"
	"github.com/chronotrack/chronotrack-backend/pkg/httputil"
	"github.com/chronotrack/chronotrack-backend/pkg/logger"
)

// RecordHandler handles ledger read and correction endpoints
type RecordHandler struct {
	ledger   *service.LedgerService
	location *time.Location
	logger   *logger.Logger
}

// NewRecordHandler creates a new record handler
func NewRecordHandler(ledger *service.LedgerService, loc *time.Location, log *logger.Logger) *RecordHandler {
	return &RecordHandler{ledger: ledger, location: loc, logger: log}
}

// DailySnapshot returns every employee's latest status for a date
func (h *RecordHandler) DailySnapshot(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date", h.location)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	filter, ok := domain.ParseFilter(r.URL.Query().Get("filter"))
	if !ok {
		httputil.Error(w, errors.ValidationMessage("unknown status filter"))
		return
	}

	includeTerminal := r.URL.Query().Get("include_terminal") == "true"

	views, err := h.ledger.DailySnapshot(r.Context(), date, filter, includeTerminal)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, views)
}

// Dashboard returns per-category counts for a date
func (h *RecordHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date", h.location)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	counts, err := h.ledger.DashboardCounts(r.Context(), date)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"date":   date.String(),
		"counts": counts,
	})
}

// History lists an employee's records in a date range, newest first
func (h *RecordHandler) History(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	from, to, err := rangeParams(r, h.location)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	records, err := h.ledger.History(r.Context(), employeeID, from, to)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, records)
}

// Latest returns an employee's newest record for a date, or null
func (h *RecordHandler) Latest(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	date, err := dateParam(r, "date", h.location)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	rec, err := h.ledger.Latest(r.Context(), employeeID, date)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, rec)
}

// Update corrects a record's status. A reason is mandatory.
func (h *RecordHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Status string `json:"status" validate:"required"`
		Reason string `json:"reason" validate:"required"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(&req); err != nil {
		httputil.Error(w, err)
		return
	}

	label := domain.Label(req.Status)
	if !domain.KnownLabel(label) {
		httputil.Error(w, errors.ValidationMessage("unknown status label: "+req.Status))
		return
	}

	operator := actor.FromContext(r.Context()).Recorder()
	if err := h.ledger.UpdateRecord(r.Context(), id, label, operator, req.Reason); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"id": id, "status": req.Status})
}

// Delete removes a ledger record
func (h *RecordHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	operator := actor.FromContext(r.Context()).Recorder()
	deleted, err := h.ledger.DeleteRecord(r.Context(), id, operator)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	if !deleted {
		httputil.Error(w, errors.NotFound("record"))
		return
	}

	httputil.NoContent(w)
}

// Export streams every record in a date range as CSV
func (h *RecordHandler) Export(w http.ResponseWriter, r *http.Request) {
	from, to, err := rangeParams(r, h.location)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	records, err := h.ledger.Export(r.Context(), from, to)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		`attachment; filename="attendance_`+from.String()+`_`+to.String()+`.csv"`)

	cw := csv.NewWriter(w)
	cw.Write([]string{"record_id", "employee_id", "status", "category", "record_time", "recorder", "reason"})
	for _, rec := range records {
		reason := ""
		if rec.Reason != nil {
			reason = *rec.Reason
		}
		cw.Write([]string{
			rec.ID,
			rec.EmployeeID,
			string(rec.Status),
			string(domain.CategoryOf(rec.Status)),
			rec.RecordTime.In(h.location).Format(time.RFC3339),
			rec.Recorder,
			reason,
		})
	}
	cw.Flush()

	if err := cw.Error(); err != nil {
		h.logger.Error().Err(err).Msg("csv export write failed")
	}
}

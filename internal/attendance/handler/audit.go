package handler

import (
	"net/http"
	"strconv"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/repository"
	"github.com/chronotrack/chronotrack-backend/internal/attendance/service"
	"github.com/chronotrack/chronotrack-backend/pkg/httputil"
	"github.com/chronotrack/chronotrack-backend/pkg/logger"
)

// AuditHandler exposes the audit trail for review
type AuditHandler struct {
	audit  *service.AuditTrail
	logger *logger.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(audit *service.AuditTrail, log *logger.Logger) *AuditHandler {
	return &AuditHandler{audit: audit, logger: log}
}

// List lists audit entries, newest first, with optional filters
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := &repository.AuditListFilter{
		TargetType: q.Get("target_type"),
		TargetID:   q.Get("target_id"),
		Action:     q.Get("action"),
		Operator:   q.Get("operator"),
	}

	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	entries, total, err := h.audit.List(r.Context(), filter, page, perPage)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))

	httputil.JSONWithMeta(w, http.StatusOK, entries, &httputil.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

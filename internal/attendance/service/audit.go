package service

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/repository"
	"github.com/chronotrack/chronotrack-backend/pkg/errors"
	"github.com/chronotrack/chronotrack-backend/pkg/logger"
)

// Audit target types
const (
	AuditTargetEmployee   = "employee"
	AuditTargetDepartment = "department"
	AuditTargetRule       = "rule"
	AuditTargetRecord     = "attendance_record"
	AuditTargetLeave      = "leave_request"
)

// AuditTrail records mutations with before/after snapshots.
//
// By default writes are best-effort: a failed audit write is logged as a
// warning and the primary mutation proceeds. With strict=true the failure
// is returned to the caller, trading availability for complete auditability.
type AuditTrail struct {
	store  AuditStore
	strict bool
	logger *logger.Logger
}

// NewAuditTrail creates a new audit trail
func NewAuditTrail(store AuditStore, strict bool, log *logger.Logger) *AuditTrail {
	return &AuditTrail{
		store:  store,
		strict: strict,
		logger: log.WithComponent("audit"),
	}
}

// Record writes one audit entry. Snapshots are marshalled to JSON; a nil
// snapshot is omitted.
func (a *AuditTrail) Record(ctx context.Context, targetType, targetID, action string, before, after interface{}, operator string, reason *string) error {
	entry := &repository.AuditLog{
		TargetType: targetType,
		TargetID:   targetID,
		Action:     action,
		Operator:   operator,
		Reason:     reason,
	}

	if before != nil {
		data, err := json.Marshal(before)
		if err == nil {
			entry.Before = data
		}
	}
	if after != nil {
		data, err := json.Marshal(after)
		if err == nil {
			entry.After = data
		}
	}

	if err := a.store.Create(ctx, entry); err != nil {
		if a.strict {
			return errors.Wrap(err, "AUDIT_WRITE_FAILED", "audit write failed", http.StatusInternalServerError)
		}
		a.logger.Warn().
			Err(err).
			Str("target_type", targetType).
			Str("target_id", targetID).
			Str("action", action).
			Str("operator", operator).
			Msg("audit write failed, continuing")
		return nil
	}

	return nil
}

// List lists audit entries
func (a *AuditTrail) List(ctx context.Context, filter *repository.AuditListFilter, page, perPage int) ([]*repository.AuditLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}
	return a.store.List(ctx, filter, page, perPage)
}

package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/chronotrack/chronotrack-backend/pkg/database"
)

// AuditLog is an immutable append-only audit entry with optional
// before/after snapshots of the mutated entity.
type AuditLog struct {
	ID         string          `db:"id" json:"id"`
	TargetType string          `db:"target_type" json:"target_type"`
	TargetID   string          `db:"target_id" json:"target_id"`
	Action     string          `db:"action" json:"action"`
	Before     json.RawMessage `db:"before_state" json:"before,omitempty"`
	After      json.RawMessage `db:"after_state" json:"after,omitempty"`
	Operator   string          `db:"operator" json:"operator"`
	Reason     *string         `db:"reason" json:"reason,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// AuditListFilter contains filter options for audit logs
type AuditListFilter struct {
	TargetType string
	TargetID   string
	Action     string
	Operator   string
}

// AuditRepository handles audit log persistence
type AuditRepository struct {
	db *database.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *database.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create creates a new audit log entry
func (r *AuditRepository) Create(ctx context.Context, log *AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}

	query := `
		INSERT INTO audit_logs (id, target_type, target_id, action, before_state, after_state, operator, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	return r.db.QueryRowxContext(ctx, query,
		log.ID, log.TargetType, log.TargetID, log.Action,
		log.Before, log.After, log.Operator, log.Reason,
	).Scan(&log.CreatedAt)
}

// List lists audit logs with pagination and filtering, newest first
func (r *AuditRepository) List(ctx context.Context, filter *AuditListFilter, page, perPage int) ([]*AuditLog, int64, error) {
	args := []interface{}{}

	where := ` WHERE 1=1`
	if filter != nil {
		if filter.TargetType != "" {
			args = append(args, filter.TargetType)
			where += ` AND target_type = $` + itoa(len(args))
		}
		if filter.TargetID != "" {
			args = append(args, filter.TargetID)
			where += ` AND target_id = $` + itoa(len(args))
		}
		if filter.Action != "" {
			args = append(args, filter.Action)
			where += ` AND action = $` + itoa(len(args))
		}
		if filter.Operator != "" {
			args = append(args, filter.Operator)
			where += ` AND operator = $` + itoa(len(args))
		}
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM audit_logs`+where, args...); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, target_type, target_id, action, before_state, after_state, operator, reason, created_at
		FROM audit_logs` + where + `
		ORDER BY created_at DESC
	`
	args = append(args, perPage)
	query += ` LIMIT $` + itoa(len(args))
	args = append(args, (page-1)*perPage)
	query += ` OFFSET $` + itoa(len(args))

	var logs []*AuditLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

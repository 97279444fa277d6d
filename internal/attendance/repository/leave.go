package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/chronotrack/chronotrack-backend/pkg/database"
	"github.com/chronotrack/chronotrack-backend/pkg/errors"
)

// Leave request type and status values
const (
	LeaveTypePaid   = "PAID"
	LeaveTypeUnpaid = "UNPAID"

	LeaveStatusPending  = "PENDING"
	LeaveStatusApproved = "APPROVED"
	LeaveStatusRejected = "REJECTED"
)

// LeaveRequest is an employee-submitted leave request
type LeaveRequest struct {
	ID               string     `db:"id" json:"id"`
	EmployeeID       string     `db:"employee_id" json:"employee_id"`
	Type             string     `db:"type" json:"type"`
	StartDate        time.Time  `db:"start_date" json:"start_date"`
	EndDate          time.Time  `db:"end_date" json:"end_date"`
	Status           string     `db:"status" json:"status"`
	Reason           *string    `db:"reason" json:"reason,omitempty"`
	DecidedBy        *string    `db:"decided_by" json:"decided_by,omitempty"`
	DecidedAt        *time.Time `db:"decided_at" json:"decided_at,omitempty"`
	IsReadByEmployee bool       `db:"is_read_by_employee" json:"is_read_by_employee"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// LeaveRepository handles leave request persistence
type LeaveRepository struct {
	db *database.DB
}

// NewLeaveRepository creates a new leave repository
func NewLeaveRepository(db *database.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

const leaveColumns = `
	id, employee_id, type, start_date, end_date, status, reason,
	decided_by, decided_at, is_read_by_employee, created_at, updated_at
`

// Create creates a new leave request
func (r *LeaveRepository) Create(ctx context.Context, req *LeaveRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Status == "" {
		req.Status = LeaveStatusPending
	}

	query := `
		INSERT INTO leave_requests (id, employee_id, type, start_date, end_date, status, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query,
		req.ID, req.EmployeeID, req.Type, req.StartDate, req.EndDate, req.Status, req.Reason,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
}

// GetByID gets a leave request by ID
func (r *LeaveRepository) GetByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var req LeaveRequest
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE id = $1`

	err := r.db.GetContext(ctx, &req, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("leave request")
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListForEmployee lists an employee's leave requests, newest first
func (r *LeaveRepository) ListForEmployee(ctx context.Context, employeeID string) ([]*LeaveRequest, error) {
	var reqs []*LeaveRequest
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE employee_id = $1 ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &reqs, query, employeeID); err != nil {
		return nil, err
	}
	return reqs, nil
}

// ListPending lists all pending leave requests, oldest first
func (r *LeaveRepository) ListPending(ctx context.Context) ([]*LeaveRequest, error) {
	var reqs []*LeaveRequest
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE status = $1 ORDER BY created_at ASC`

	if err := r.db.SelectContext(ctx, &reqs, query, LeaveStatusPending); err != nil {
		return nil, err
	}
	return reqs, nil
}

// Decide transitions a pending request to approved or rejected
func (r *LeaveRepository) Decide(ctx context.Context, id, status, decidedBy string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE leave_requests
		SET status = $2, decided_by = $3, decided_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $4
	`, id, status, decidedBy, LeaveStatusPending)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.BadRequest("leave request not found or already decided")
	}
	return nil
}

// MarkRead sets the employee notification flag
func (r *LeaveRepository) MarkRead(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE leave_requests SET is_read_by_employee = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("leave request")
	}
	return nil
}

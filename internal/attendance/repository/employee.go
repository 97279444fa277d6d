package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/domain"
	"github.com/chronotrack/chronotrack-backend/pkg/database"
	"github.com/chronotrack/chronotrack-backend/pkg/errors"
)

// Employee represents an employee record
type Employee struct {
	ID            string              `db:"id" json:"id"`
	Name          string              `db:"name" json:"name"`
	Lifecycle     domain.Lifecycle    `db:"lifecycle" json:"lifecycle"`
	WorkLocation  domain.WorkLocation `db:"work_location" json:"work_location"`
	LocationStart *time.Time          `db:"location_start" json:"location_start,omitempty"`
	LocationEnd   *time.Time          `db:"location_end" json:"location_end,omitempty"`
	LeaveStart    *time.Time          `db:"leave_start" json:"leave_start,omitempty"`
	LeaveEnd      *time.Time          `db:"leave_end" json:"leave_end,omitempty"`
	HireDate      *time.Time          `db:"hire_date" json:"hire_date,omitempty"`
	DepartmentID  *string             `db:"department_id" json:"department_id,omitempty"`
	RuleID        *string             `db:"rule_id" json:"rule_id,omitempty"`
	CreatedAt     time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `db:"updated_at" json:"updated_at"`
	DeletedAt     *time.Time          `db:"deleted_at" json:"-"`
}

// Snapshot extracts the state the status engine evaluates.
func (e *Employee) Snapshot() domain.EmployeeSnapshot {
	return domain.EmployeeSnapshot{
		Lifecycle:     e.Lifecycle,
		HireDate:      e.HireDate,
		WorkLocation:  e.WorkLocation,
		LocationStart: e.LocationStart,
		LocationEnd:   e.LocationEnd,
		LeaveStart:    e.LeaveStart,
		LeaveEnd:      e.LeaveEnd,
	}
}

// EmployeeListParams are filters for listing employees
type EmployeeListParams struct {
	Lifecycle       domain.Lifecycle
	DepartmentID    string
	IncludeDeleted  bool
	IncludeTerminal bool
}

// EmployeeRepository handles employee persistence
type EmployeeRepository struct {
	db *database.DB
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(db *database.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeColumns = `
	id, name, lifecycle, work_location, location_start, location_end,
	leave_start, leave_end, hire_date, department_id, rule_id,
	created_at, updated_at, deleted_at
`

// Create creates a new employee
func (r *EmployeeRepository) Create(ctx context.Context, emp *Employee) error {
	if emp.ID == "" {
		emp.ID = uuid.New().String()
	}

	query := `
		INSERT INTO employees (
			id, name, lifecycle, work_location, location_start, location_end,
			leave_start, leave_end, hire_date, department_id, rule_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query,
		emp.ID, emp.Name, emp.Lifecycle, emp.WorkLocation, emp.LocationStart, emp.LocationEnd,
		emp.LeaveStart, emp.LeaveEnd, emp.HireDate, emp.DepartmentID, emp.RuleID,
	).Scan(&emp.CreatedAt, &emp.UpdatedAt)
}

// GetByID gets a non-deleted employee by ID
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*Employee, error) {
	var emp Employee
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &emp, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("employee")
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// GetByIDAnyState gets an employee by ID including soft-deleted ones.
// Ledger history stays readable after an employee is tombstoned.
func (r *EmployeeRepository) GetByIDAnyState(ctx context.Context, id string) (*Employee, error) {
	var emp Employee
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	err := r.db.GetContext(ctx, &emp, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("employee")
	}
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

// Update updates an employee
func (r *EmployeeRepository) Update(ctx context.Context, emp *Employee) error {
	query := `
		UPDATE employees
		SET name = $2, lifecycle = $3, work_location = $4,
		    location_start = $5, location_end = $6,
		    leave_start = $7, leave_end = $8, hire_date = $9,
		    department_id = $10, rule_id = $11, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		emp.ID, emp.Name, emp.Lifecycle, emp.WorkLocation,
		emp.LocationStart, emp.LocationEnd,
		emp.LeaveStart, emp.LeaveEnd, emp.HireDate,
		emp.DepartmentID, emp.RuleID,
	).Scan(&emp.UpdatedAt)

	if err == sql.ErrNoRows {
		return errors.NotFound("employee")
	}
	return err
}

// SoftDelete tombstones an employee. Never hard-deleted: ledger rows keep
// referring to the id.
func (r *EmployeeRepository) SoftDelete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE employees SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("employee")
	}
	return nil
}

// List lists employees matching the given filters, ordered by id
func (r *EmployeeRepository) List(ctx context.Context, params EmployeeListParams) ([]*Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE 1=1`
	args := []interface{}{}

	if !params.IncludeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	if !params.IncludeTerminal {
		query += ` AND lifecycle NOT IN ('RESIGNED', 'TERMINATED')`
	}
	if params.Lifecycle != "" {
		args = append(args, params.Lifecycle)
		query += ` AND lifecycle = $` + itoa(len(args))
	}
	if params.DepartmentID != "" {
		args = append(args, params.DepartmentID)
		query += ` AND department_id = $` + itoa(len(args))
	}

	query += ` ORDER BY id ASC`

	var employees []*Employee
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, err
	}
	return employees, nil
}

// ListActive lists the non-deleted, non-terminal employees the daily
// lifecycle triggers and snapshots iterate, ordered by id.
func (r *EmployeeRepository) ListActive(ctx context.Context) ([]*Employee, error) {
	return r.List(ctx, EmployeeListParams{})
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/chronotrack/chronotrack-backend/pkg/database"
	"github.com/chronotrack/chronotrack-backend/pkg/errors"
)

// Department groups employees and optionally carries a rule override
type Department struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	RuleID      *string   `db:"rule_id" json:"rule_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// DepartmentRepository handles department persistence
type DepartmentRepository struct {
	db *database.DB
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *database.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// Create creates a new department
func (r *DepartmentRepository) Create(ctx context.Context, dept *Department) error {
	if dept.ID == "" {
		dept.ID = uuid.New().String()
	}

	query := `
		INSERT INTO departments (id, name, description, rule_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query,
		dept.ID, dept.Name, dept.Description, dept.RuleID,
	).Scan(&dept.CreatedAt, &dept.UpdatedAt)
}

// GetByID gets a department by ID
func (r *DepartmentRepository) GetByID(ctx context.Context, id string) (*Department, error) {
	var dept Department
	query := `SELECT id, name, description, rule_id, created_at, updated_at FROM departments WHERE id = $1`

	err := r.db.GetContext(ctx, &dept, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("department")
	}
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

// Update renames/describes a department or changes its rule override.
// Departments referenced by employees are otherwise immutable.
func (r *DepartmentRepository) Update(ctx context.Context, dept *Department) error {
	query := `
		UPDATE departments
		SET name = $2, description = $3, rule_id = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		dept.ID, dept.Name, dept.Description, dept.RuleID,
	).Scan(&dept.UpdatedAt)

	if err == sql.ErrNoRows {
		return errors.NotFound("department")
	}
	return err
}

// List lists all departments ordered by name
func (r *DepartmentRepository) List(ctx context.Context) ([]*Department, error) {
	var depts []*Department
	query := `SELECT id, name, description, rule_id, created_at, updated_at FROM departments ORDER BY name ASC`

	if err := r.db.SelectContext(ctx, &depts, query); err != nil {
		return nil, err
	}
	return depts, nil
}

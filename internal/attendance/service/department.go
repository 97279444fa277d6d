package service

import (
	"context"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/repository"
	"github.com/chronotrack/chronotrack-backend/pkg/errors"
	"github.com/chronotrack/chronotrack-backend/pkg/logger"
)

// DepartmentService manages departments and their rule assignments.
type DepartmentService struct {
	departments DepartmentStore
	rules       RuleStore
	audit       *AuditTrail
	logger      *logger.Logger
}

// NewDepartmentService creates a new department service
func NewDepartmentService(departments DepartmentStore, rules RuleStore, audit *AuditTrail, log *logger.Logger) *DepartmentService {
	return &DepartmentService{
		departments: departments,
		rules:       rules,
		audit:       audit,
		logger:      log.WithComponent("departments"),
	}
}

// Create creates a department
func (s *DepartmentService) Create(ctx context.Context, dept *repository.Department, operator string) error {
	if err := s.validateRuleRef(ctx, dept); err != nil {
		return err
	}

	if err := s.departments.Create(ctx, dept); err != nil {
		return err
	}

	if err := s.audit.Record(ctx, AuditTargetDepartment, dept.ID, "department.created", nil, dept, operator, nil); err != nil {
		return err
	}

	s.logger.Info().Str("department_id", dept.ID).Str("name", dept.Name).Msg("department created")
	return nil
}

// Get gets a department by ID
func (s *DepartmentService) Get(ctx context.Context, id string) (*repository.Department, error) {
	return s.departments.GetByID(ctx, id)
}

// List lists all departments
func (s *DepartmentService) List(ctx context.Context) ([]*repository.Department, error) {
	return s.departments.List(ctx)
}

// Update updates a department, auditing the transition.
func (s *DepartmentService) Update(ctx context.Context, dept *repository.Department, operator string) error {
	if err := s.validateRuleRef(ctx, dept); err != nil {
		return err
	}

	before, err := s.departments.GetByID(ctx, dept.ID)
	if err != nil {
		return err
	}

	if err := s.departments.Update(ctx, dept); err != nil {
		return err
	}

	return s.audit.Record(ctx, AuditTargetDepartment, dept.ID, "department.updated", before, dept, operator, nil)
}

func (s *DepartmentService) validateRuleRef(ctx context.Context, dept *repository.Department) error {
	if dept.RuleID == nil {
		return nil
	}
	if _, err := s.rules.GetByID(ctx, *dept.RuleID); err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return errors.BadRequest("attendance rule does not exist")
		}
		return err
	}
	return nil
}

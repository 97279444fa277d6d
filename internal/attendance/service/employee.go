package service

import (
	"context"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/domain"
	"github.com/chronotrack/chronotrack-backend/internal/attendance/repository"
	"github.com/chronotrack/chronotrack-backend/pkg/errors"
	"github.com/chronotrack/chronotrack-backend/pkg/logger"
	"github.com/chronotrack/chronotrack-backend/pkg/messaging"
)

// EmployeeService manages employee master data.
type EmployeeService struct {
	employees   EmployeeStore
	departments DepartmentStore
	rules       RuleStore
	audit       *AuditTrail
	publisher   EventPublisher
	logger      *logger.Logger
}

// NewEmployeeService creates a new employee service
func NewEmployeeService(
	employees EmployeeStore,
	departments DepartmentStore,
	rules RuleStore,
	audit *AuditTrail,
	publisher EventPublisher,
	log *logger.Logger,
) *EmployeeService {
	return &EmployeeService{
		employees:   employees,
		departments: departments,
		rules:       rules,
		audit:       audit,
		publisher:   publisher,
		logger:      log.WithComponent("employees"),
	}
}

// Create creates an employee after validating its references and windows.
func (s *EmployeeService) Create(ctx context.Context, emp *repository.Employee, operator string) error {
	if err := s.validate(ctx, emp); err != nil {
		return err
	}

	if err := s.employees.Create(ctx, emp); err != nil {
		return err
	}

	if err := s.audit.Record(ctx, AuditTargetEmployee, emp.ID, "employee.created", nil, emp, operator, nil); err != nil {
		return err
	}
	s.publisher.PublishEmployeeChanged(ctx, messaging.EventEmployeeCreated, emp)

	s.logger.Info().Str("employee_id", emp.ID).Str("name", emp.Name).Msg("employee created")
	return nil
}

// Get returns a non-deleted employee.
func (s *EmployeeService) Get(ctx context.Context, id string) (*repository.Employee, error) {
	return s.employees.GetByID(ctx, id)
}

// List lists employees matching the filters.
func (s *EmployeeService) List(ctx context.Context, params repository.EmployeeListParams) ([]*repository.Employee, error) {
	return s.employees.List(ctx, params)
}

// Update replaces an employee's mutable fields and audits the transition.
func (s *EmployeeService) Update(ctx context.Context, emp *repository.Employee, operator string) error {
	if err := s.validate(ctx, emp); err != nil {
		return err
	}

	before, err := s.employees.GetByID(ctx, emp.ID)
	if err != nil {
		return err
	}

	if err := s.employees.Update(ctx, emp); err != nil {
		return err
	}

	if err := s.audit.Record(ctx, AuditTargetEmployee, emp.ID, "employee.updated", before, emp, operator, nil); err != nil {
		return err
	}
	s.publisher.PublishEmployeeChanged(ctx, messaging.EventEmployeeUpdated, emp)
	return nil
}

// Delete tombstones an employee. History and audit entries stay behind.
func (s *EmployeeService) Delete(ctx context.Context, id, operator string) error {
	before, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.employees.SoftDelete(ctx, id); err != nil {
		return err
	}

	if err := s.audit.Record(ctx, AuditTargetEmployee, id, "employee.deleted", before, nil, operator, nil); err != nil {
		return err
	}
	s.publisher.PublishEmployeeChanged(ctx, messaging.EventEmployeeDeleted, before)

	s.logger.Info().Str("employee_id", id).Str("operator", operator).Msg("employee soft-deleted")
	return nil
}

func (s *EmployeeService) validate(ctx context.Context, emp *repository.Employee) error {
	if !validLifecycle(emp.Lifecycle) {
		return errors.ValidationMessage("unknown lifecycle state: " + string(emp.Lifecycle))
	}
	if !validLocation(emp.WorkLocation) {
		return errors.ValidationMessage("unknown work location: " + string(emp.WorkLocation))
	}
	if emp.LocationStart != nil && emp.LocationEnd != nil && emp.LocationEnd.Before(*emp.LocationStart) {
		return errors.ValidationMessage("location window end precedes its start")
	}
	if emp.LeaveStart != nil && emp.LeaveEnd != nil && emp.LeaveEnd.Before(*emp.LeaveStart) {
		return errors.ValidationMessage("leave window end precedes its start")
	}

	if emp.DepartmentID != nil {
		if _, err := s.departments.GetByID(ctx, *emp.DepartmentID); err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return errors.BadRequest("department does not exist")
			}
			return err
		}
	}
	if emp.RuleID != nil {
		if _, err := s.rules.GetByID(ctx, *emp.RuleID); err != nil {
			if errors.Is(err, errors.ErrNotFound) {
				return errors.BadRequest("attendance rule does not exist")
			}
			return err
		}
	}
	return nil
}

func validLifecycle(l domain.Lifecycle) bool {
	switch l {
	case domain.LifecycleProspective, domain.LifecycleActive, domain.LifecycleOnLeave,
		domain.LifecycleResigned, domain.LifecycleTerminated:
		return true
	}
	return false
}

func validLocation(l domain.WorkLocation) bool {
	switch l {
	case domain.LocationOffice, domain.LocationRemote, domain.LocationWorksite:
		return true
	}
	return false
}

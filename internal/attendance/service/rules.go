package service

import (
	"context"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/repository"
	"github.com/chronotrack/chronotrack-backend/pkg/errors"
	"github.com/chronotrack/chronotrack-backend/pkg/logger"
)

// RuleService manages attendance rules and resolves the applicable rule
// for an employee.
type RuleService struct {
	rules       RuleStore
	employees   EmployeeStore
	departments DepartmentStore
	audit       *AuditTrail
	logger      *logger.Logger
}

// NewRuleService creates a new rule service
func NewRuleService(rules RuleStore, employees EmployeeStore, departments DepartmentStore, audit *AuditTrail, log *logger.Logger) *RuleService {
	return &RuleService{
		rules:       rules,
		employees:   employees,
		departments: departments,
		audit:       audit,
		logger:      log.WithComponent("rules"),
	}
}

// Resolve finds the attendance rule applicable to an employee:
// personal override, then department override, then the global default.
// A personal or department assignment pointing at the default rule is not
// an override and falls through.
func (s *RuleService) Resolve(ctx context.Context, employeeID string) (*repository.Rule, error) {
	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return s.ResolveFor(ctx, emp)
}

// ResolveFor resolves the rule for an already-loaded employee. Bulk
// callers (the daily triggers) use this to avoid re-fetching.
func (s *RuleService) ResolveFor(ctx context.Context, emp *repository.Employee) (*repository.Rule, error) {
	if emp.RuleID != nil {
		rule, err := s.rules.GetByID(ctx, *emp.RuleID)
		if err == nil && !rule.IsDefault {
			return rule, nil
		}
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
		// Dangling or default assignment falls through to the next level.
	}

	if emp.DepartmentID != nil {
		dept, err := s.departments.GetByID(ctx, *emp.DepartmentID)
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
		if err == nil && dept.RuleID != nil {
			rule, err := s.rules.GetByID(ctx, *dept.RuleID)
			if err == nil && !rule.IsDefault {
				return rule, nil
			}
			if err != nil && !errors.Is(err, errors.ErrNotFound) {
				return nil, err
			}
		}
	}

	return s.rules.GetDefault(ctx)
}

// Create creates a rule after validating its windows
func (s *RuleService) Create(ctx context.Context, rule *repository.Rule, operator string) error {
	if err := validateRule(rule); err != nil {
		return err
	}

	if err := s.rules.Create(ctx, rule); err != nil {
		return err
	}

	if err := s.audit.Record(ctx, AuditTargetRule, rule.ID, "rule.created", nil, rule, operator, nil); err != nil {
		return err
	}

	s.logger.Info().Str("rule_id", rule.ID).Str("name", rule.Name).Msg("rule created")
	return nil
}

// Update updates a rule after validating its windows
func (s *RuleService) Update(ctx context.Context, rule *repository.Rule, operator string) error {
	if err := validateRule(rule); err != nil {
		return err
	}

	before, err := s.rules.GetByID(ctx, rule.ID)
	if err != nil {
		return err
	}

	if err := s.rules.Update(ctx, rule); err != nil {
		return err
	}

	return s.audit.Record(ctx, AuditTargetRule, rule.ID, "rule.updated", before, rule, operator, nil)
}

// Delete deletes a non-default rule
func (s *RuleService) Delete(ctx context.Context, id string, operator string) error {
	before, err := s.rules.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if before.IsDefault {
		return errors.BadRequest("the default rule cannot be deleted")
	}

	if err := s.rules.Delete(ctx, id); err != nil {
		return err
	}

	return s.audit.Record(ctx, AuditTargetRule, id, "rule.deleted", before, nil, operator, nil)
}

// GetByID gets a rule by ID
func (s *RuleService) GetByID(ctx context.Context, id string) (*repository.Rule, error) {
	return s.rules.GetByID(ctx, id)
}

// List lists all rules
func (s *RuleService) List(ctx context.Context) ([]*repository.Rule, error) {
	return s.rules.List(ctx)
}

func validateRule(rule *repository.Rule) error {
	if _, err := rule.Domain(); err != nil {
		return errors.ValidationMessage("standard check-in must be HH:MM")
	}
	if rule.GraceMinutes < 0 || rule.AbsentMinutes < 0 {
		return errors.ValidationMessage("thresholds must be non-negative")
	}
	if rule.AbsentMinutes <= rule.GraceMinutes {
		return errors.ValidationMessage("absent threshold must exceed the late grace period")
	}
	return nil
}

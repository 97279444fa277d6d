package service

import (
	"context"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/repository"
	"github.com/chronotrack/chronotrack-backend/pkg/errors"
	"github.com/chronotrack/chronotrack-backend/pkg/logger"
)

// LeaveService handles leave request submission and review. Approving a
// request does not flip the employee's lifecycle by itself; HR applies the
// ON_LEAVE state and windows through the employee update flow.
type LeaveService struct {
	leaves    LeaveStore
	employees EmployeeStore
	audit     *AuditTrail
	publisher EventPublisher
	logger    *logger.Logger
}

// NewLeaveService creates a new leave service
func NewLeaveService(leaves LeaveStore, employees EmployeeStore, audit *AuditTrail, publisher EventPublisher, log *logger.Logger) *LeaveService {
	return &LeaveService{
		leaves:    leaves,
		employees: employees,
		audit:     audit,
		publisher: publisher,
		logger:    log.WithComponent("leave"),
	}
}

// Submit files a new leave request for an employee.
func (s *LeaveService) Submit(ctx context.Context, req *repository.LeaveRequest) error {
	if req.Type != repository.LeaveTypePaid && req.Type != repository.LeaveTypeUnpaid {
		return errors.ValidationMessage("leave type must be PAID or UNPAID")
	}
	if req.EndDate.Before(req.StartDate) {
		return errors.ValidationMessage("leave end date precedes its start date")
	}

	if _, err := s.employees.GetByID(ctx, req.EmployeeID); err != nil {
		return err
	}

	req.Status = repository.LeaveStatusPending
	if err := s.leaves.Create(ctx, req); err != nil {
		return err
	}

	s.publisher.PublishLeaveSubmitted(ctx, req)

	s.logger.Info().
		Str("leave_id", req.ID).
		Str("employee_id", req.EmployeeID).
		Str("type", req.Type).
		Msg("leave request submitted")
	return nil
}

// Get gets a leave request by ID
func (s *LeaveService) Get(ctx context.Context, id string) (*repository.LeaveRequest, error) {
	return s.leaves.GetByID(ctx, id)
}

// ListForEmployee lists an employee's leave requests
func (s *LeaveService) ListForEmployee(ctx context.Context, employeeID string) ([]*repository.LeaveRequest, error) {
	return s.leaves.ListForEmployee(ctx, employeeID)
}

// ListPending lists the review queue
func (s *LeaveService) ListPending(ctx context.Context) ([]*repository.LeaveRequest, error) {
	return s.leaves.ListPending(ctx)
}

// Decide approves or rejects a pending request. Only pending requests can
// be decided; the transition is audited and announced.
func (s *LeaveService) Decide(ctx context.Context, id string, approve bool, operator string) (*repository.LeaveRequest, error) {
	before, err := s.leaves.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status := repository.LeaveStatusRejected
	action := "leave.rejected"
	if approve {
		status = repository.LeaveStatusApproved
		action = "leave.approved"
	}

	if err := s.leaves.Decide(ctx, id, status, operator); err != nil {
		return nil, err
	}

	after, err := s.leaves.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.audit.Record(ctx, AuditTargetLeave, id, action, before, after, operator, nil); err != nil {
		return nil, err
	}
	s.publisher.PublishLeaveDecided(ctx, after)

	s.logger.Info().
		Str("leave_id", id).
		Str("status", status).
		Str("operator", operator).
		Msg("leave request decided")
	return after, nil
}

// MarkRead acknowledges a decision on behalf of the requesting employee.
func (s *LeaveService) MarkRead(ctx context.Context, id, employeeID string) error {
	req, err := s.leaves.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if req.EmployeeID != employeeID {
		return errors.Forbidden("leave request belongs to another employee")
	}
	return s.leaves.MarkRead(ctx, id)
}

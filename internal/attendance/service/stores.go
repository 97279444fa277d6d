// Package service implements the attendance business logic: rule
// resolution, the attendance ledger, the daily lifecycle triggers, the
// audit trail and the surrounding employee/department/leave management.
package service

import (
	"context"
	"time"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/domain"
	"github.com/chronotrack/chronotrack-backend/internal/attendance/repository"
)

// Narrow store interfaces decouple the services from PostgreSQL wiring.
// The repository package satisfies all of them.

// EmployeeStore is the employee persistence surface the services need.
type EmployeeStore interface {
	Create(ctx context.Context, emp *repository.Employee) error
	GetByID(ctx context.Context, id string) (*repository.Employee, error)
	GetByIDAnyState(ctx context.Context, id string) (*repository.Employee, error)
	Update(ctx context.Context, emp *repository.Employee) error
	SoftDelete(ctx context.Context, id string) error
	List(ctx context.Context, params repository.EmployeeListParams) ([]*repository.Employee, error)
	ListActive(ctx context.Context) ([]*repository.Employee, error)
}

// DepartmentStore is the department persistence surface.
type DepartmentStore interface {
	Create(ctx context.Context, dept *repository.Department) error
	GetByID(ctx context.Context, id string) (*repository.Department, error)
	Update(ctx context.Context, dept *repository.Department) error
	List(ctx context.Context) ([]*repository.Department, error)
}

// RuleStore is the attendance rule persistence surface.
type RuleStore interface {
	Create(ctx context.Context, rule *repository.Rule) error
	GetByID(ctx context.Context, id string) (*repository.Rule, error)
	GetDefault(ctx context.Context) (*repository.Rule, error)
	Update(ctx context.Context, rule *repository.Rule) error
	List(ctx context.Context) ([]*repository.Rule, error)
	Delete(ctx context.Context, id string) error
}

// RecordStore is the attendance ledger persistence surface.
type RecordStore interface {
	Create(ctx context.Context, rec *repository.Record) error
	GetByID(ctx context.Context, id string) (*repository.Record, error)
	LatestInRange(ctx context.Context, employeeID string, from, to time.Time) (*repository.Record, error)
	LatestForAllInRange(ctx context.Context, from, to time.Time) (map[string]*repository.Record, error)
	ListForEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]*repository.Record, error)
	ListInRange(ctx context.Context, from, to time.Time) ([]*repository.Record, error)
	UpdateStatus(ctx context.Context, id string, status domain.Label, reason string) error
	Delete(ctx context.Context, id string) (bool, error)
}

// AuditStore is the audit log persistence surface.
type AuditStore interface {
	Create(ctx context.Context, log *repository.AuditLog) error
	List(ctx context.Context, filter *repository.AuditListFilter, page, perPage int) ([]*repository.AuditLog, int64, error)
}

// LeaveStore is the leave request persistence surface.
type LeaveStore interface {
	Create(ctx context.Context, req *repository.LeaveRequest) error
	GetByID(ctx context.Context, id string) (*repository.LeaveRequest, error)
	ListForEmployee(ctx context.Context, employeeID string) ([]*repository.LeaveRequest, error)
	ListPending(ctx context.Context) ([]*repository.LeaveRequest, error)
	Decide(ctx context.Context, id, status, decidedBy string) error
	MarkRead(ctx context.Context, id string) error
}

// EventPublisher is the outbound event surface. Publishing is
// fire-and-forget; implementations log failures and never block the
// triggering operation.
type EventPublisher interface {
	PublishPunch(ctx context.Context, eventType string, rec *repository.Record)
	PublishRecordChanged(ctx context.Context, eventType string, rec *repository.Record, oldStatus domain.Label, operator string)
	PublishLifecycleCompleted(ctx context.Context, trigger string, result *TriggerResult)
	PublishEmployeeChanged(ctx context.Context, eventType string, emp *repository.Employee)
	PublishLeaveSubmitted(ctx context.Context, req *repository.LeaveRequest)
	PublishLeaveDecided(ctx context.Context, req *repository.LeaveRequest)
}

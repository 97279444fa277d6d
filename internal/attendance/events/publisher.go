// Package events publishes attendance domain events to RabbitMQ.
package events

import (
	"context"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/domain"
	"github.com/chronotrack/chronotrack-backend/internal/attendance/repository"
	"github.com/chronotrack/chronotrack-backend/internal/attendance/service"
	"github.com/chronotrack/chronotrack-backend/pkg/logger"
	"github.com/chronotrack/chronotrack-backend/pkg/messaging"
)

// AttendanceEventPublisher publishes domain events fire-and-forget. A
// broker outage must never fail a punch or a daily trigger, so failures
// are logged and swallowed.
type AttendanceEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewAttendanceEventPublisher creates a new attendance event publisher
func NewAttendanceEventPublisher(publisher *messaging.Publisher, log *logger.Logger) *AttendanceEventPublisher {
	return &AttendanceEventPublisher{
		publisher: publisher,
		logger:    log.WithComponent("events"),
	}
}

func (p *AttendanceEventPublisher) publish(ctx context.Context, eventType string, data interface{}) {
	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to publish event")
	}
}

// PublishPunch announces a clock-in or clock-out.
func (p *AttendanceEventPublisher) PublishPunch(ctx context.Context, eventType string, rec *repository.Record) {
	p.publish(ctx, eventType, messaging.PunchEvent{
		RecordID:   rec.ID,
		EmployeeID: rec.EmployeeID,
		Status:     string(rec.Status),
		Recorder:   rec.Recorder,
		RecordTime: rec.RecordTime,
	})
}

// PublishRecordChanged announces a ledger correction or deletion.
func (p *AttendanceEventPublisher) PublishRecordChanged(ctx context.Context, eventType string, rec *repository.Record, oldStatus domain.Label, operator string) {
	p.publish(ctx, eventType, messaging.RecordChangedEvent{
		RecordID:   rec.ID,
		EmployeeID: rec.EmployeeID,
		OldStatus:  string(oldStatus),
		NewStatus:  string(rec.Status),
		Operator:   operator,
	})
}

// PublishLifecycleCompleted announces the result of a daily trigger run.
func (p *AttendanceEventPublisher) PublishLifecycleCompleted(ctx context.Context, trigger string, result *service.TriggerResult) {
	p.publish(ctx, messaging.EventLifecycleCompleted, messaging.LifecycleCompletedEvent{
		Trigger:    trigger,
		Considered: result.Considered,
		Processed:  result.Processed,
		Failed:     len(result.Errors),
		RanAt:      result.RanAt,
	})
}

// PublishEmployeeChanged announces an employee mutation.
func (p *AttendanceEventPublisher) PublishEmployeeChanged(ctx context.Context, eventType string, emp *repository.Employee) {
	p.publish(ctx, eventType, messaging.EmployeeChangedEvent{
		EmployeeID: emp.ID,
		Name:       emp.Name,
		Lifecycle:  string(emp.Lifecycle),
	})
}

// PublishLeaveSubmitted announces a new leave request.
func (p *AttendanceEventPublisher) PublishLeaveSubmitted(ctx context.Context, req *repository.LeaveRequest) {
	p.publish(ctx, messaging.EventLeaveSubmitted, messaging.LeaveDecidedEvent{
		RequestID:  req.ID,
		EmployeeID: req.EmployeeID,
		Status:     req.Status,
	})
}

// PublishLeaveDecided announces an approval or rejection.
func (p *AttendanceEventPublisher) PublishLeaveDecided(ctx context.Context, req *repository.LeaveRequest) {
	decidedBy := ""
	if req.DecidedBy != nil {
		decidedBy = *req.DecidedBy
	}
	p.publish(ctx, messaging.EventLeaveDecided, messaging.LeaveDecidedEvent{
		RequestID:  req.ID,
		EmployeeID: req.EmployeeID,
		Status:     req.Status,
		DecidedBy:  decidedBy,
	})
}

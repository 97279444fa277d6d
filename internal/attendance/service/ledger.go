package service

import (
	"context"
	"sort"
	"time"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/domain"
	"github.com/chronotrack/chronotrack-backend/internal/attendance/repository"
	"github.com/chronotrack/chronotrack-backend/pkg/actor"
	"github.com/chronotrack/chronotrack-backend/pkg/errors"
	"github.com/chronotrack/chronotrack-backend/pkg/logger"
	"github.com/chronotrack/chronotrack-backend/pkg/messaging"
)

// EmployeeRecordView is one row of a daily snapshot: an employee together
// with their newest ledger record for the day, or a synthetic "unattended"
// record when none exists.
type EmployeeRecordView struct {
	EmployeeID string          `json:"employee_id"`
	Name       string          `json:"name"`
	Status     domain.Label    `json:"status"`
	Category   domain.Category `json:"category"`
	RecordTime *time.Time      `json:"record_time,omitempty"`
	Recorder   string          `json:"recorder"`
	RecordID   string          `json:"record_id,omitempty"`
	Synthetic  bool            `json:"synthetic"`
}

// LedgerService owns the append-only attendance ledger and its read
// projections.
type LedgerService struct {
	records   RecordStore
	employees EmployeeStore
	rules     *RuleService
	audit     *AuditTrail
	publisher EventPublisher
	location  *time.Location
	now       func() time.Time
	logger    *logger.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	records RecordStore,
	employees EmployeeStore,
	rules *RuleService,
	audit *AuditTrail,
	publisher EventPublisher,
	loc *time.Location,
	log *logger.Logger,
) *LedgerService {
	return &LedgerService{
		records:   records,
		employees: employees,
		rules:     rules,
		audit:     audit,
		publisher: publisher,
		location:  loc,
		now:       time.Now,
		logger:    log.WithComponent("ledger"),
	}
}

// WithClock overrides the time source. Used by tests.
func (s *LedgerService) WithClock(now func() time.Time) *LedgerService {
	s.now = now
	return s
}

// PunchIn records an employee check-in. The applicable rule is resolved,
// the status engine classifies the punch and the resulting label is
// appended to the ledger.
func (s *LedgerService) PunchIn(ctx context.Context, employeeID, recorder string) (*repository.Record, error) {
	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	rule, err := s.rules.ResolveFor(ctx, emp)
	if err != nil {
		return nil, err
	}

	domainRule, err := rule.Domain()
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.location)
	label := domain.ComputeStatus(&now, domainRule, emp.Snapshot(), now)

	rec, err := s.Append(ctx, employeeID, label, recorder, now, nil)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishPunch(ctx, messaging.EventPunchClockIn, rec)
	return rec, nil
}

// PunchOut records an employee check-out.
func (s *LedgerService) PunchOut(ctx context.Context, employeeID, recorder string) (*repository.Record, error) {
	if _, err := s.employees.GetByID(ctx, employeeID); err != nil {
		return nil, err
	}

	now := s.now().In(s.location)
	rec, err := s.Append(ctx, employeeID, domain.LabelCheckedOut, recorder, now, nil)
	if err != nil {
		return nil, err
	}

	s.publisher.PublishPunch(ctx, messaging.EventPunchClockOut, rec)
	return rec, nil
}

// Append inserts a new ledger record. The ledger is append-only on this
// path; corrections go through UpdateRecord.
func (s *LedgerService) Append(ctx context.Context, employeeID string, status domain.Label, recorder string, recordTime time.Time, reason *string) (*repository.Record, error) {
	rec := &repository.Record{
		EmployeeID: employeeID,
		Status:     status,
		RecordTime: recordTime,
		Recorder:   recorder,
		Reason:     reason,
	}

	if err := s.records.Create(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("employee_id", employeeID).
		Str("status", string(status)).
		Str("recorder", recorder).
		Msg("ledger record appended")

	return rec, nil
}

// Latest returns the newest record for an employee on a date, or nil when
// the day has no records.
func (s *LedgerService) Latest(ctx context.Context, employeeID string, date domain.Date) (*repository.Record, error) {
	if _, err := s.employees.GetByIDAnyState(ctx, employeeID); err != nil {
		return nil, err
	}

	from, to := date.DayBounds(s.location)
	return s.records.LatestInRange(ctx, employeeID, from, to)
}

// DailySnapshot resolves the latest record of every active employee for a
// date. Employees without a record get a synthetic "unattended" row with
// recorder SYSTEM and no timestamp. Output is filtered by status category
// and sorted by employee id.
func (s *LedgerService) DailySnapshot(ctx context.Context, date domain.Date, filter domain.Filter, includeTerminal bool) ([]*EmployeeRecordView, error) {
	employees, err := s.employees.List(ctx, repository.EmployeeListParams{IncludeTerminal: includeTerminal})
	if err != nil {
		return nil, err
	}

	from, to := date.DayBounds(s.location)
	latest, err := s.records.LatestForAllInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	views := make([]*EmployeeRecordView, 0, len(employees))
	for _, emp := range employees {
		view := &EmployeeRecordView{
			EmployeeID: emp.ID,
			Name:       emp.Name,
		}

		if rec, ok := latest[emp.ID]; ok {
			view.Status = rec.Status
			view.RecordTime = &rec.RecordTime
			view.Recorder = rec.Recorder
			view.RecordID = rec.ID
		} else {
			view.Status = domain.LabelUnattended
			view.Recorder = actor.SystemID
			view.Synthetic = true
		}
		view.Category = domain.CategoryOf(view.Status)

		if filter.Matches(view.Status) {
			views = append(views, view)
		}
	}

	sort.Slice(views, func(i, j int) bool { return views[i].EmployeeID < views[j].EmployeeID })
	return views, nil
}

// DashboardCounts tallies a daily snapshot by status category.
func (s *LedgerService) DashboardCounts(ctx context.Context, date domain.Date) (map[domain.Category]int, error) {
	views, err := s.DailySnapshot(ctx, date, domain.FilterAll, false)
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.Category]int)
	for _, view := range views {
		counts[view.Category]++
	}
	return counts, nil
}

// History lists an employee's ledger records in a date range, newest
// first. Soft-deleted employees stay readable here: history is never
// purged.
func (s *LedgerService) History(ctx context.Context, employeeID string, from, to domain.Date) ([]*repository.Record, error) {
	if _, err := s.employees.GetByIDAnyState(ctx, employeeID); err != nil {
		return nil, err
	}

	start, _ := from.DayBounds(s.location)
	_, end := to.DayBounds(s.location)
	return s.records.ListForEmployee(ctx, employeeID, start, end)
}

// Export lists every record in a date range as a flat list for CSV export.
func (s *LedgerService) Export(ctx context.Context, from, to domain.Date) ([]*repository.Record, error) {
	start, _ := from.DayBounds(s.location)
	_, end := to.DayBounds(s.location)
	return s.records.ListInRange(ctx, start, end)
}

// UpdateRecord is a manual correction of a ledger record's status. A
// non-empty reason is required and the transition is audited with
// before/after snapshots.
func (s *LedgerService) UpdateRecord(ctx context.Context, recordID string, newStatus domain.Label, operator, reason string) error {
	if reason == "" {
		return errors.ValidationMessage("a reason is required for manual corrections")
	}

	before, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return err
	}

	if err := s.records.UpdateStatus(ctx, recordID, newStatus, reason); err != nil {
		return err
	}

	after := *before
	after.Status = newStatus
	after.Reason = &reason

	if err := s.audit.Record(ctx, AuditTargetRecord, recordID, "record.corrected", before, &after, operator, &reason); err != nil {
		return err
	}

	s.publisher.PublishRecordChanged(ctx, messaging.EventRecordCorrected, &after, before.Status, operator)

	s.logger.Info().
		Str("record_id", recordID).
		Str("old_status", string(before.Status)).
		Str("new_status", string(newStatus)).
		Str("operator", operator).
		Msg("ledger record corrected")

	return nil
}

// DeleteRecord hard-deletes a ledger record, auditing the deleted record
// as the before snapshot.
func (s *LedgerService) DeleteRecord(ctx context.Context, recordID, operator string) (bool, error) {
	before, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	deleted, err := s.records.Delete(ctx, recordID)
	if err != nil || !deleted {
		return deleted, err
	}

	if err := s.audit.Record(ctx, AuditTargetRecord, recordID, "record.deleted", before, nil, operator, nil); err != nil {
		return true, err
	}

	s.publisher.PublishRecordChanged(ctx, messaging.EventRecordDeleted, before, before.Status, operator)
	return true, nil
}

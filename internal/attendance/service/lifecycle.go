package service

import (
	"context"
	"sync"
	"time"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/domain"
	"github.com/chronotrack/chronotrack-backend/internal/attendance/repository"
	"github.com/chronotrack/chronotrack-backend/pkg/actor"
	"github.com/chronotrack/chronotrack-backend/pkg/errors"
	"github.com/chronotrack/chronotrack-backend/pkg/logger"
)

// Daily trigger names
const (
	TriggerMorningReset = "morning_reset"
	TriggerAbsenceCheck = "absence_check"
	TriggerAutoCheckout = "auto_checkout"
)

// EmployeeError is one employee's failure during a bulk trigger run.
type EmployeeError struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

// TriggerResult reports one trigger run. A run with per-employee failures
// still succeeds as a whole; the failures are surfaced for operators.
type TriggerResult struct {
	Trigger    string          `json:"trigger"`
	Considered int             `json:"considered"`
	Processed  int             `json:"processed"`
	Errors     []EmployeeError `json:"errors,omitempty"`
	RanAt      time.Time       `json:"ran_at"`
}

// LifecycleService runs the three daily organization-wide bulk
// transitions. It holds no mutable state beyond last-run metadata; the
// timer integration that fires the triggers is injected at the edge.
//
// Each trigger is idempotent by intent: re-running re-evaluates current
// state and only appends where the precondition still holds, so a second
// run right after the first appends nothing.
type LifecycleService struct {
	employees EmployeeStore
	records   RecordStore
	rules     *RuleService
	ledger    *LedgerService
	publisher EventPublisher
	location  *time.Location
	now       func() time.Time
	logger    *logger.Logger

	mu       sync.Mutex
	lastRuns map[string]*TriggerResult
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(
	employees EmployeeStore,
	records RecordStore,
	rules *RuleService,
	ledger *LedgerService,
	publisher EventPublisher,
	loc *time.Location,
	log *logger.Logger,
) *LifecycleService {
	return &LifecycleService{
		employees: employees,
		records:   records,
		rules:     rules,
		ledger:    ledger,
		publisher: publisher,
		location:  loc,
		now:       time.Now,
		logger:    log.WithComponent("lifecycle"),
		lastRuns:  make(map[string]*TriggerResult),
	}
}

// WithClock overrides the time source. Used by tests.
func (s *LifecycleService) WithClock(now func() time.Time) *LifecycleService {
	s.now = now
	return s
}

// LastRuns returns the most recent result per trigger.
func (s *LifecycleService) LastRuns() map[string]*TriggerResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*TriggerResult, len(s.lastRuns))
	for k, v := range s.lastRuns {
		out[k] = v
	}
	return out
}

func (s *LifecycleService) finish(ctx context.Context, result *TriggerResult) *TriggerResult {
	s.mu.Lock()
	s.lastRuns[result.Trigger] = result
	s.mu.Unlock()

	s.publisher.PublishLifecycleCompleted(ctx, result.Trigger, result)

	s.logger.Info().
		Str("trigger", result.Trigger).
		Int("considered", result.Considered).
		Int("processed", result.Processed).
		Int("failed", len(result.Errors)).
		Msg("daily trigger completed")

	return result
}

// RunMorningReset counts the active employees starting the day without a
// record. Nothing is written: the snapshot already synthesizes the
// "unattended" state, so the reset only marks the day boundary and keeps
// stale cross-day state from leaking into interpretation.
func (s *LifecycleService) RunMorningReset(ctx context.Context) (*TriggerResult, error) {
	now := s.now().In(s.location)
	result := &TriggerResult{Trigger: TriggerMorningReset, RanAt: now}

	employees, err := s.employees.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	from, to := domain.DateOf(now).DayBounds(s.location)
	latest, err := s.records.LatestForAllInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	for _, emp := range employees {
		result.Considered++
		if _, ok := latest[emp.ID]; !ok {
			result.Processed++
		}
	}

	return s.finish(ctx, result), nil
}

// RunAbsenceCheck appends a status record for every active employee still
// unattended at this point of the day. The status engine is evaluated with
// no check-in, which yields "absent" for plain active employees and the
// appropriate short-circuit label (leave, prospective) otherwise.
func (s *LifecycleService) RunAbsenceCheck(ctx context.Context) (*TriggerResult, error) {
	now := s.now().In(s.location)
	result := &TriggerResult{Trigger: TriggerAbsenceCheck, RanAt: now}

	employees, err := s.employees.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	from, to := domain.DateOf(now).DayBounds(s.location)
	latest, err := s.records.LatestForAllInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	for _, emp := range employees {
		result.Considered++

		if rec, ok := latest[emp.ID]; ok && domain.CategoryOf(rec.Status) != domain.CategoryUnattended {
			continue
		}

		if err := s.markAbsent(ctx, emp, now); err != nil {
			result.Errors = append(result.Errors, EmployeeError{EmployeeID: emp.ID, Error: err.Error()})
			s.logger.Error().Err(err).Str("employee_id", emp.ID).Msg("absence check failed for employee")
			continue
		}
		result.Processed++
	}

	return s.finish(ctx, result), nil
}

func (s *LifecycleService) markAbsent(ctx context.Context, emp *repository.Employee, now time.Time) error {
	rule, err := s.rules.ResolveFor(ctx, emp)
	if err != nil {
		return err
	}

	domainRule, err := rule.Domain()
	if err != nil {
		return err
	}

	label := domain.ComputeStatus(nil, domainRule, emp.Snapshot(), now)
	_, err = s.ledger.Append(ctx, emp.ID, label, actor.SystemID, now, nil)
	return err
}

// RunAutoCheckout appends an automatic checkout record for every active
// employee still in a checked-in status (present, late, wfh, worksite).
func (s *LifecycleService) RunAutoCheckout(ctx context.Context) (*TriggerResult, error) {
	now := s.now().In(s.location)
	result := &TriggerResult{Trigger: TriggerAutoCheckout, RanAt: now}

	employees, err := s.employees.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	from, to := domain.DateOf(now).DayBounds(s.location)
	latest, err := s.records.LatestForAllInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	for _, emp := range employees {
		result.Considered++

		rec, ok := latest[emp.ID]
		if !ok || !rec.Status.CheckedIn() {
			continue
		}

		if _, err := s.ledger.Append(ctx, emp.ID, domain.LabelCheckedOutAuto, actor.SystemID, now, nil); err != nil {
			result.Errors = append(result.Errors, EmployeeError{EmployeeID: emp.ID, Error: err.Error()})
			s.logger.Error().Err(err).Str("employee_id", emp.ID).Msg("auto checkout failed for employee")
			continue
		}
		result.Processed++
	}

	return s.finish(ctx, result), nil
}

// Run dispatches a trigger by name, for manual admin invocation.
func (s *LifecycleService) Run(ctx context.Context, trigger string) (*TriggerResult, error) {
	switch trigger {
	case TriggerMorningReset:
		return s.RunMorningReset(ctx)
	case TriggerAbsenceCheck:
		return s.RunAbsenceCheck(ctx)
	case TriggerAutoCheckout:
		return s.RunAutoCheckout(ctx)
	}
	return nil, errors.BadRequest("unknown trigger: " + trigger)
}

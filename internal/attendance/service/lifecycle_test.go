package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/domain"
	"github.com/chronotrack/chronotrack-backend/internal/attendance/repository"
	"github.com/chronotrack/chronotrack-backend/pkg/actor"
	"github.com/chronotrack/chronotrack-backend/pkg/errors"
)

type lifecycleFixture struct {
	employees *fakeEmployeeStore
	records   *fakeRecordStore
	publisher *fakePublisher
	ledger    *LedgerService
	lifecycle *LifecycleService
	now       time.Time
}

func newLifecycleFixture(t *testing.T, employees ...*repository.Employee) *lifecycleFixture {
	t.Helper()

	now := time.Date(2024, time.March, 12, 14, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	empStore := newFakeEmployeeStore(employees...)
	recStore := newFakeRecordStore()
	ruleStore := newFakeRuleStore(defaultRule())
	deptStore := newFakeDepartmentStore()
	publisher := newFakePublisher()
	audit := NewAuditTrail(&fakeAuditStore{}, false, nopLogger())

	rules := NewRuleService(ruleStore, empStore, deptStore, audit, nopLogger())
	ledger := NewLedgerService(recStore, empStore, rules, audit, publisher, time.UTC, nopLogger()).WithClock(clock)
	lifecycle := NewLifecycleService(empStore, recStore, rules, ledger, publisher, time.UTC, nopLogger()).WithClock(clock)

	return &lifecycleFixture{
		employees: empStore,
		records:   recStore,
		publisher: publisher,
		ledger:    ledger,
		lifecycle: lifecycle,
		now:       now,
	}
}

func activeEmp(id string) *repository.Employee {
	return &repository.Employee{ID: id, Name: "Employee " + id, Lifecycle: domain.LifecycleActive, WorkLocation: domain.LocationOffice}
}

func TestAbsenceCheckMarksUnattendedAbsent(t *testing.T) {
	f := newLifecycleFixture(t, activeEmp("emp-1"), activeEmp("emp-2"))

	// emp-1 punched in earlier today, emp-2 never showed up.
	punchTime := f.now.Add(-5 * time.Hour)
	_, err := f.ledger.Append(context.Background(), "emp-1", domain.LabelPresent, "emp-1", punchTime, nil)
	require.NoError(t, err)

	result, err := f.lifecycle.RunAbsenceCheck(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Considered)
	assert.Equal(t, 1, result.Processed)
	assert.Empty(t, result.Errors)

	rec, err := f.ledger.Latest(context.Background(), "emp-2", domain.DateOf(f.now))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, domain.LabelAbsent, rec.Status)
	assert.Equal(t, actor.SystemID, rec.Recorder)
}

func TestAbsenceCheckIsIdempotent(t *testing.T) {
	f := newLifecycleFixture(t, activeEmp("emp-1"))

	first, err := f.lifecycle.RunAbsenceCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Processed)

	countAfterFirst := f.records.count()

	second, err := f.lifecycle.RunAbsenceCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed)
	assert.Equal(t, countAfterFirst, f.records.count())
}

func TestAbsenceCheckUsesEngineForSpecialStates(t *testing.T) {
	onLeave := activeEmp("emp-leave")
	onLeave.Lifecycle = domain.LifecycleOnLeave

	f := newLifecycleFixture(t, onLeave)

	result, err := f.lifecycle.RunAbsenceCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)

	rec, err := f.ledger.Latest(context.Background(), "emp-leave", domain.DateOf(f.now))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, domain.LabelLeave, rec.Status)
}

func TestAbsenceCheckContinuesPastFailures(t *testing.T) {
	f := newLifecycleFixture(t, activeEmp("emp-1"), activeEmp("emp-2"), activeEmp("emp-3"))
	f.records.failFor["emp-2"] = errors.Internal(assert.AnError)

	result, err := f.lifecycle.RunAbsenceCheck(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Considered)
	assert.Equal(t, 2, result.Processed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "emp-2", result.Errors[0].EmployeeID)
}

func TestAutoCheckoutClosesCheckedInOnly(t *testing.T) {
	f := newLifecycleFixture(t, activeEmp("emp-in"), activeEmp("emp-out"), activeEmp("emp-none"))

	morning := f.now.Add(-5 * time.Hour)
	_, err := f.ledger.Append(context.Background(), "emp-in", domain.LabelLate, "emp-in", morning, nil)
	require.NoError(t, err)
	_, err = f.ledger.Append(context.Background(), "emp-out", domain.LabelCheckedOut, "emp-out", morning, nil)
	require.NoError(t, err)

	result, err := f.lifecycle.RunAutoCheckout(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Considered)
	assert.Equal(t, 1, result.Processed)

	rec, err := f.ledger.Latest(context.Background(), "emp-in", domain.DateOf(f.now))
	require.NoError(t, err)
	assert.Equal(t, domain.LabelCheckedOutAuto, rec.Status)
	assert.Equal(t, actor.SystemID, rec.Recorder)

	// The voluntary checkout and the no-show stay untouched.
	rec, err = f.ledger.Latest(context.Background(), "emp-out", domain.DateOf(f.now))
	require.NoError(t, err)
	assert.Equal(t, domain.LabelCheckedOut, rec.Status)

	rec, err = f.ledger.Latest(context.Background(), "emp-none", domain.DateOf(f.now))
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestAutoCheckoutIsIdempotent(t *testing.T) {
	f := newLifecycleFixture(t, activeEmp("emp-1"))

	_, err := f.ledger.Append(context.Background(), "emp-1", domain.LabelPresent, "emp-1", f.now.Add(-time.Hour), nil)
	require.NoError(t, err)

	first, err := f.lifecycle.RunAutoCheckout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Processed)

	second, err := f.lifecycle.RunAutoCheckout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed)
}

func TestMorningResetWritesNothing(t *testing.T) {
	f := newLifecycleFixture(t, activeEmp("emp-1"), activeEmp("emp-2"))

	_, err := f.ledger.Append(context.Background(), "emp-1", domain.LabelPresent, "emp-1", f.now.Add(-time.Hour), nil)
	require.NoError(t, err)
	before := f.records.count()

	result, err := f.lifecycle.RunMorningReset(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Considered)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, before, f.records.count())
}

func TestTriggersRecordLastRunAndPublish(t *testing.T) {
	f := newLifecycleFixture(t, activeEmp("emp-1"))

	_, err := f.lifecycle.RunAbsenceCheck(context.Background())
	require.NoError(t, err)

	runs := f.lifecycle.LastRuns()
	require.Contains(t, runs, TriggerAbsenceCheck)
	assert.Equal(t, f.now, runs[TriggerAbsenceCheck].RanAt)
	assert.Equal(t, 1, f.publisher.counts["lifecycle."+TriggerAbsenceCheck])
}

func TestRunDispatchRejectsUnknownTrigger(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.lifecycle.Run(context.Background(), "lunch_break")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

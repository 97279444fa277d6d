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

type ledgerFixture struct {
	employees *fakeEmployeeStore
	records   *fakeRecordStore
	audit     *fakeAuditStore
	publisher *fakePublisher
	ledger    *LedgerService
	now       time.Time
}

func newLedgerFixture(t *testing.T, employees ...*repository.Employee) *ledgerFixture {
	t.Helper()

	now := time.Date(2024, time.March, 12, 9, 10, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	empStore := newFakeEmployeeStore(employees...)
	recStore := newFakeRecordStore()
	auditStore := &fakeAuditStore{}
	publisher := newFakePublisher()
	audit := NewAuditTrail(auditStore, false, nopLogger())
	rules := NewRuleService(newFakeRuleStore(defaultRule()), empStore, newFakeDepartmentStore(), audit, nopLogger())
	ledger := NewLedgerService(recStore, empStore, rules, audit, publisher, time.UTC, nopLogger()).WithClock(clock)

	return &ledgerFixture{
		employees: empStore,
		records:   recStore,
		audit:     auditStore,
		publisher: publisher,
		ledger:    ledger,
		now:       now,
	}
}

func TestPunchInComputesStatus(t *testing.T) {
	// 09:10 is inside the default 15 minute grace window.
	f := newLedgerFixture(t, activeEmp("emp-1"))

	rec, err := f.ledger.PunchIn(context.Background(), "emp-1", "emp-1")
	require.NoError(t, err)
	assert.Equal(t, domain.LabelPresent, rec.Status)
	assert.Equal(t, "emp-1", rec.Recorder)
	assert.Equal(t, 1, f.publisher.counts["attendance.punch.clock_in"])
}

func TestPunchInUnknownEmployee(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.ledger.PunchIn(context.Background(), "ghost", "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestLatestPrefersNewestThenInsertionOrder(t *testing.T) {
	f := newLedgerFixture(t, activeEmp("emp-1"))

	// Two records sharing a record_time: the later append wins.
	at := f.now.Add(-time.Hour)
	_, err := f.ledger.Append(context.Background(), "emp-1", domain.LabelPresent, "emp-1", at, nil)
	require.NoError(t, err)
	_, err = f.ledger.Append(context.Background(), "emp-1", domain.LabelCheckedOut, "emp-1", at, nil)
	require.NoError(t, err)

	rec, err := f.ledger.Latest(context.Background(), "emp-1", domain.DateOf(f.now))
	require.NoError(t, err)
	assert.Equal(t, domain.LabelCheckedOut, rec.Status)
}

func TestDailySnapshotSynthesizesUnattended(t *testing.T) {
	f := newLedgerFixture(t, activeEmp("emp-b"), activeEmp("emp-a"))

	_, err := f.ledger.Append(context.Background(), "emp-b", domain.LabelPresent, "emp-b", f.now, nil)
	require.NoError(t, err)

	views, err := f.ledger.DailySnapshot(context.Background(), domain.DateOf(f.now), domain.FilterAll, false)
	require.NoError(t, err)
	require.Len(t, views, 2)

	// Sorted by employee id; emp-a has no record and gets the synthetic row.
	assert.Equal(t, "emp-a", views[0].EmployeeID)
	assert.Equal(t, domain.LabelUnattended, views[0].Status)
	assert.Equal(t, actor.SystemID, views[0].Recorder)
	assert.True(t, views[0].Synthetic)
	assert.Nil(t, views[0].RecordTime)

	assert.Equal(t, "emp-b", views[1].EmployeeID)
	assert.Equal(t, domain.LabelPresent, views[1].Status)
	assert.False(t, views[1].Synthetic)
}

func TestDailySnapshotFiltersByCategory(t *testing.T) {
	f := newLedgerFixture(t, activeEmp("emp-1"), activeEmp("emp-2"), activeEmp("emp-3"))

	_, err := f.ledger.Append(context.Background(), "emp-1", domain.LabelWFH, "emp-1", f.now, nil)
	require.NoError(t, err)
	_, err = f.ledger.Append(context.Background(), "emp-2", domain.LabelWorksite, "emp-2", f.now, nil)
	require.NoError(t, err)

	filter, ok := domain.ParseFilter("offsite")
	require.True(t, ok)

	views, err := f.ledger.DailySnapshot(context.Background(), domain.DateOf(f.now), filter, false)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "emp-1", views[0].EmployeeID)
	assert.Equal(t, "emp-2", views[1].EmployeeID)
}

func TestDailySnapshotExcludesSoftDeleted(t *testing.T) {
	f := newLedgerFixture(t, activeEmp("emp-1"), activeEmp("emp-2"))

	require.NoError(t, f.employees.SoftDelete(context.Background(), "emp-2"))

	views, err := f.ledger.DailySnapshot(context.Background(), domain.DateOf(f.now), domain.FilterAll, false)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "emp-1", views[0].EmployeeID)
}

func TestHistoryReadableForSoftDeletedEmployee(t *testing.T) {
	f := newLedgerFixture(t, activeEmp("emp-1"))

	_, err := f.ledger.Append(context.Background(), "emp-1", domain.LabelPresent, "emp-1", f.now, nil)
	require.NoError(t, err)
	require.NoError(t, f.employees.SoftDelete(context.Background(), "emp-1"))

	records, err := f.ledger.History(context.Background(), "emp-1", domain.DateOf(f.now), domain.DateOf(f.now))
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestDashboardCountsByCategory(t *testing.T) {
	f := newLedgerFixture(t, activeEmp("emp-1"), activeEmp("emp-2"), activeEmp("emp-3"))

	_, err := f.ledger.Append(context.Background(), "emp-1", domain.LabelPresent, "emp-1", f.now, nil)
	require.NoError(t, err)
	_, err = f.ledger.Append(context.Background(), "emp-2", domain.LabelLate, "emp-2", f.now, nil)
	require.NoError(t, err)

	counts, err := f.ledger.DashboardCounts(context.Background(), domain.DateOf(f.now))
	require.NoError(t, err)

	assert.Equal(t, 1, counts[domain.CategoryPresent])
	assert.Equal(t, 1, counts[domain.CategoryLate])
	assert.Equal(t, 1, counts[domain.CategoryUnattended])
}

func TestUpdateRecordRequiresReason(t *testing.T) {
	f := newLedgerFixture(t, activeEmp("emp-1"))

	rec, err := f.ledger.Append(context.Background(), "emp-1", domain.LabelAbsent, actor.SystemID, f.now, nil)
	require.NoError(t, err)

	err = f.ledger.UpdateRecord(context.Background(), rec.ID, domain.LabelLeave, "hr-1", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidation))
	assert.Empty(t, f.audit.entries)
}

func TestUpdateRecordAuditsExactlyOnce(t *testing.T) {
	f := newLedgerFixture(t, activeEmp("emp-1"))

	rec, err := f.ledger.Append(context.Background(), "emp-1", domain.LabelAbsent, actor.SystemID, f.now, nil)
	require.NoError(t, err)

	err = f.ledger.UpdateRecord(context.Background(), rec.ID, domain.LabelLeave, "hr-1", "approved leave filed late")
	require.NoError(t, err)

	updated, err := f.records.GetByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LabelLeave, updated.Status)

	require.Len(t, f.audit.entries, 1)
	entry := f.audit.entries[0]
	assert.Equal(t, AuditTargetRecord, entry.TargetType)
	assert.Equal(t, "record.corrected", entry.Action)
	assert.Equal(t, "hr-1", entry.Operator)
	assert.NotEmpty(t, entry.Before)
	assert.NotEmpty(t, entry.After)
	assert.Equal(t, 1, f.publisher.counts["attendance.record.corrected"])
}

func TestDeleteRecordAuditsAndReportsMissing(t *testing.T) {
	f := newLedgerFixture(t, activeEmp("emp-1"))

	rec, err := f.ledger.Append(context.Background(), "emp-1", domain.LabelAbsent, actor.SystemID, f.now, nil)
	require.NoError(t, err)

	deleted, err := f.ledger.DeleteRecord(context.Background(), rec.ID, "admin-1")
	require.NoError(t, err)
	assert.True(t, deleted)
	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, "record.deleted", f.audit.entries[0].Action)

	deleted, err = f.ledger.DeleteRecord(context.Background(), rec.ID, "admin-1")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Len(t, f.audit.entries, 1)
}

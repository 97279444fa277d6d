package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/domain"
)

var standardRule = domain.Rule{
	StandardCheckIn: domain.TimeOfDay{Hour: 9, Minute: 0},
	GraceMinutes:    15,
	AbsentMinutes:   120,
}

func day(hour, minute int) time.Time {
	return time.Date(2024, time.March, 12, hour, minute, 0, 0, time.UTC)
}

func tp(t time.Time) *time.Time { return &t }

func activeEmployee() domain.EmployeeSnapshot {
	return domain.EmployeeSnapshot{
		Lifecycle:    domain.LifecycleActive,
		WorkLocation: domain.LocationOffice,
	}
}

func TestComputeStatus_CheckInWindows(t *testing.T) {
	now := day(12, 0)

	tests := []struct {
		name    string
		checkIn *time.Time
		want    domain.Label
	}{
		{"before standard check-in", tp(day(8, 55)), domain.LabelPresent},
		{"within grace period", tp(day(9, 10)), domain.LabelPresent},
		{"exactly at grace deadline", tp(day(9, 15)), domain.LabelPresent},
		{"just past grace", tp(day(9, 20)), domain.LabelLate},
		{"exactly at absent threshold", tp(day(11, 0)), domain.LabelLate},
		{"past absent threshold", tp(day(11, 5)), domain.LabelAbsent},
		{"no check-in", nil, domain.LabelAbsent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.ComputeStatus(tt.checkIn, standardRule, activeEmployee(), now)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeStatus_TerminalLifecycleDominates(t *testing.T) {
	now := day(12, 0)

	for _, lifecycle := range []domain.Lifecycle{domain.LifecycleResigned, domain.LifecycleTerminated} {
		t.Run(string(lifecycle), func(t *testing.T) {
			emp := activeEmployee()
			emp.Lifecycle = lifecycle

			// Regardless of punch time or its absence.
			assert.Equal(t, domain.LabelInactive, domain.ComputeStatus(tp(day(9, 0)), standardRule, emp, now))
			assert.Equal(t, domain.LabelInactive, domain.ComputeStatus(nil, standardRule, emp, now))
			assert.Equal(t, domain.LabelInactive, domain.ComputeStatus(tp(day(23, 0)), standardRule, emp, now))
		})
	}
}

func TestComputeStatus_Prospective(t *testing.T) {
	now := day(9, 5)

	t.Run("hire date in the future", func(t *testing.T) {
		emp := activeEmployee()
		emp.Lifecycle = domain.LifecycleProspective
		emp.HireDate = tp(day(0, 0).AddDate(0, 0, 3))

		assert.Equal(t, domain.LabelProspective, domain.ComputeStatus(tp(day(9, 0)), standardRule, emp, now))
		assert.Equal(t, domain.LabelProspective, domain.ComputeStatus(nil, standardRule, emp, now))
	})

	t.Run("no hire date set", func(t *testing.T) {
		emp := activeEmployee()
		emp.Lifecycle = domain.LifecycleProspective

		assert.Equal(t, domain.LabelProspective, domain.ComputeStatus(tp(day(9, 0)), standardRule, emp, now))
	})

	t.Run("hire date reached, evaluated as active", func(t *testing.T) {
		emp := activeEmployee()
		emp.Lifecycle = domain.LifecycleProspective
		emp.HireDate = tp(day(0, 0)) // hired today at midnight

		assert.Equal(t, domain.LabelPresent, domain.ComputeStatus(tp(day(9, 10)), standardRule, emp, now))
		assert.Equal(t, domain.LabelAbsent, domain.ComputeStatus(nil, standardRule, emp, now))
	})

	t.Run("hire date comparison is date-only", func(t *testing.T) {
		emp := activeEmployee()
		emp.Lifecycle = domain.LifecycleProspective
		// Hired today but at a later wall-clock time; the date has arrived.
		emp.HireDate = tp(day(18, 30))

		assert.Equal(t, domain.LabelPresent, domain.ComputeStatus(tp(day(9, 0)), standardRule, emp, now))
	})
}

func TestComputeStatus_OnLeave(t *testing.T) {
	now := day(12, 0)

	t.Run("inside leave window", func(t *testing.T) {
		emp := activeEmployee()
		emp.Lifecycle = domain.LifecycleOnLeave
		emp.LeaveStart = tp(day(0, 0).AddDate(0, 0, -2))
		emp.LeaveEnd = tp(day(0, 0).AddDate(0, 0, 2))

		assert.Equal(t, domain.LabelLeave, domain.ComputeStatus(tp(day(9, 0)), standardRule, emp, now))
		assert.Equal(t, domain.LabelLeave, domain.ComputeStatus(nil, standardRule, emp, now))
	})

	t.Run("open bounds are unbounded", func(t *testing.T) {
		emp := activeEmployee()
		emp.Lifecycle = domain.LifecycleOnLeave

		assert.Equal(t, domain.LabelLeave, domain.ComputeStatus(nil, standardRule, emp, now),
			"no bounds at all means always within the window")

		emp.LeaveStart = tp(day(0, 0).AddDate(0, 0, -1))
		emp.LeaveEnd = nil
		assert.Equal(t, domain.LabelLeave, domain.ComputeStatus(nil, standardRule, emp, now))
	})

	t.Run("outside leave window falls through", func(t *testing.T) {
		emp := activeEmployee()
		emp.Lifecycle = domain.LifecycleOnLeave
		emp.LeaveStart = tp(day(0, 0).AddDate(0, 0, 5))
		emp.LeaveEnd = tp(day(0, 0).AddDate(0, 0, 10))

		assert.Equal(t, domain.LabelPresent, domain.ComputeStatus(tp(day(9, 0)), standardRule, emp, now))
		assert.Equal(t, domain.LabelAbsent, domain.ComputeStatus(nil, standardRule, emp, now))
	})
}

func TestComputeStatus_LocationBaseStatus(t *testing.T) {
	now := day(12, 0)

	t.Run("remote inside window", func(t *testing.T) {
		emp := activeEmployee()
		emp.WorkLocation = domain.LocationRemote
		emp.LocationStart = tp(day(0, 0).AddDate(0, 0, -1))
		emp.LocationEnd = tp(day(0, 0).AddDate(0, 0, 1))

		assert.Equal(t, domain.LabelWFH, domain.ComputeStatus(tp(day(9, 0)), standardRule, emp, now))
	})

	t.Run("worksite with open window", func(t *testing.T) {
		emp := activeEmployee()
		emp.WorkLocation = domain.LocationWorksite

		assert.Equal(t, domain.LabelWorksite, domain.ComputeStatus(tp(day(9, 0)), standardRule, emp, now))
	})

	t.Run("remote outside window is plain present", func(t *testing.T) {
		emp := activeEmployee()
		emp.WorkLocation = domain.LocationRemote
		emp.LocationStart = tp(day(0, 0).AddDate(0, 0, 3))

		assert.Equal(t, domain.LabelPresent, domain.ComputeStatus(tp(day(9, 0)), standardRule, emp, now))
	})

	t.Run("late check-in overrides remote base", func(t *testing.T) {
		emp := activeEmployee()
		emp.WorkLocation = domain.LocationRemote

		assert.Equal(t, domain.LabelLate, domain.ComputeStatus(tp(day(10, 0)), standardRule, emp, now))
	})

	t.Run("no check-in while remote is still absent", func(t *testing.T) {
		emp := activeEmployee()
		emp.WorkLocation = domain.LocationRemote

		assert.Equal(t, domain.LabelAbsent, domain.ComputeStatus(nil, standardRule, emp, now))
	})
}

func TestComputeStatus_Deterministic(t *testing.T) {
	now := day(12, 0)
	checkIn := tp(day(9, 42))
	emp := activeEmployee()

	first := domain.ComputeStatus(checkIn, standardRule, emp, now)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, domain.ComputeStatus(checkIn, standardRule, emp, now))
	}
}

package domain

import "time"

// ComputeStatus classifies one employee-day. It is a pure function of its
// inputs: the punch instant (nil when no check-in happened), the resolved
// attendance rule, the employee snapshot and the evaluation instant.
//
// The decision order short-circuits on the first match:
//
//  1. a prospective employee whose hire date has arrived is evaluated as
//     active; before the hire date the result is always "prospective"
//  2. on-leave inside the leave window wins over everything punch-related
//  3. resigned/terminated employees are "inactive" no matter what
//  4. the base status is "present", or "wfh"/"worksite" while a non-office
//     location window applies
//  5. no punch means "absent"
//  6. punching within grace of the standard check-in keeps the base status
//  7. punching past the absent threshold is "absent"
//  8. anything between grace and the absent threshold is "late"
func ComputeStatus(checkIn *time.Time, rule Rule, emp EmployeeSnapshot, now time.Time) Label {
	today := DateOf(now)

	lifecycle := emp.Lifecycle
	if lifecycle == LifecycleProspective {
		if emp.HireDate == nil || today.Before(DateOf(*emp.HireDate)) {
			return LabelProspective
		}
		lifecycle = LifecycleActive
	}

	if lifecycle == LifecycleOnLeave && withinWindow(today, emp.LeaveStart, emp.LeaveEnd) {
		return LabelLeave
	}

	// Terminal check uses the stored lifecycle, not the hire-date override.
	if emp.Lifecycle.Terminal() {
		return LabelInactive
	}

	base := LabelPresent
	if emp.WorkLocation != LocationOffice && withinWindow(today, emp.LocationStart, emp.LocationEnd) {
		switch emp.WorkLocation {
		case LocationRemote:
			base = LabelWFH
		case LocationWorksite:
			base = LabelWorksite
		}
	}

	if checkIn == nil {
		return LabelAbsent
	}

	deadline := rule.StandardCheckIn.At(today, now.Location())
	graceDeadline := deadline.Add(time.Duration(rule.GraceMinutes) * time.Minute)
	if !checkIn.After(graceDeadline) {
		return base
	}

	absentDeadline := deadline.Add(time.Duration(rule.AbsentMinutes) * time.Minute)
	if checkIn.After(absentDeadline) {
		return LabelAbsent
	}

	return LabelLate
}

package domain

import "time"

// Lifecycle is an employee's employment lifecycle status.
type Lifecycle string

const (
	LifecycleProspective Lifecycle = "PROSPECTIVE"
	LifecycleActive      Lifecycle = "ACTIVE"
	LifecycleOnLeave     Lifecycle = "ON_LEAVE"
	LifecycleResigned    Lifecycle = "RESIGNED"
	LifecycleTerminated  Lifecycle = "TERMINATED"
)

// Terminal reports whether the lifecycle status is a terminal one.
func (l Lifecycle) Terminal() bool {
	return l == LifecycleResigned || l == LifecycleTerminated
}

// WorkLocation is where an employee works during a location window.
type WorkLocation string

const (
	LocationOffice   WorkLocation = "OFFICE"
	LocationRemote   WorkLocation = "REMOTE"
	LocationWorksite WorkLocation = "WORKSITE"
)

// EmployeeSnapshot is the slice of employee state the status engine needs.
// Window bounds carry date-only meaning; a nil bound is unbounded.
type EmployeeSnapshot struct {
	Lifecycle     Lifecycle
	HireDate      *time.Time
	WorkLocation  WorkLocation
	LocationStart *time.Time
	LocationEnd   *time.Time
	LeaveStart    *time.Time
	LeaveEnd      *time.Time
}

package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// Punch events
	EventPunchClockIn  = "attendance.punch.clock_in"
	EventPunchClockOut = "attendance.punch.clock_out"

	// Ledger events
	EventRecordCorrected = "attendance.record.corrected"
	EventRecordDeleted   = "attendance.record.deleted"

	// Daily lifecycle events
	EventLifecycleCompleted = "attendance.lifecycle.completed"

	// Employee events
	EventEmployeeCreated = "attendance.employee.created"
	EventEmployeeUpdated = "attendance.employee.updated"
	EventEmployeeDeleted = "attendance.employee.deleted"

	// Leave events
	EventLeaveSubmitted = "attendance.leave.submitted"
	EventLeaveDecided   = "attendance.leave.decided"
)

// Exchange names
const (
	ExchangeAttendanceEvents = "attendance.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// PunchEvent is published when an employee clocks in or out
type PunchEvent struct {
	RecordID   string    `json:"record_id"`
	EmployeeID string    `json:"employee_id"`
	Status     string    `json:"status"`
	Recorder   string    `json:"recorder"`
	RecordTime time.Time `json:"record_time"`
}

// RecordChangedEvent is published when a ledger record is corrected or deleted
type RecordChangedEvent struct {
	RecordID   string `json:"record_id"`
	EmployeeID string `json:"employee_id"`
	OldStatus  string `json:"old_status,omitempty"`
	NewStatus  string `json:"new_status,omitempty"`
	Operator   string `json:"operator"`
}

// LifecycleCompletedEvent is published when a daily trigger run finishes
type LifecycleCompletedEvent struct {
	Trigger    string    `json:"trigger"`
	Considered int       `json:"considered"`
	Processed  int       `json:"processed"`
	Failed     int       `json:"failed"`
	RanAt      time.Time `json:"ran_at"`
}

// EmployeeChangedEvent is published on employee mutations
type EmployeeChangedEvent struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name,omitempty"`
	Lifecycle  string `json:"lifecycle,omitempty"`
}

// LeaveDecidedEvent is published when a leave request is approved or rejected
type LeaveDecidedEvent struct {
	RequestID  string `json:"request_id"`
	EmployeeID string `json:"employee_id"`
	Status     string `json:"status"`
	DecidedBy  string `json:"decided_by"`
}

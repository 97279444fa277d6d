package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/domain"
	"github.com/chronotrack/chronotrack-backend/internal/attendance/repository"
	"github.com/chronotrack/chronotrack-backend/pkg/errors"
	"github.com/chronotrack/chronotrack-backend/pkg/logger"
)

// In-memory store implementations backing the service tests.

type fakeEmployeeStore struct {
	employees map[string]*repository.Employee
}

func newFakeEmployeeStore(employees ...*repository.Employee) *fakeEmployeeStore {
	s := &fakeEmployeeStore{employees: make(map[string]*repository.Employee)}
	for _, emp := range employees {
		s.employees[emp.ID] = emp
	}
	return s
}

func (s *fakeEmployeeStore) Create(_ context.Context, emp *repository.Employee) error {
	s.employees[emp.ID] = emp
	return nil
}

func (s *fakeEmployeeStore) GetByID(_ context.Context, id string) (*repository.Employee, error) {
	emp, ok := s.employees[id]
	if !ok || emp.DeletedAt != nil {
		return nil, errors.NotFound("employee")
	}
	return emp, nil
}

func (s *fakeEmployeeStore) GetByIDAnyState(_ context.Context, id string) (*repository.Employee, error) {
	emp, ok := s.employees[id]
	if !ok {
		return nil, errors.NotFound("employee")
	}
	return emp, nil
}

func (s *fakeEmployeeStore) Update(_ context.Context, emp *repository.Employee) error {
	if _, ok := s.employees[emp.ID]; !ok {
		return errors.NotFound("employee")
	}
	s.employees[emp.ID] = emp
	return nil
}

func (s *fakeEmployeeStore) SoftDelete(_ context.Context, id string) error {
	emp, ok := s.employees[id]
	if !ok || emp.DeletedAt != nil {
		return errors.NotFound("employee")
	}
	now := time.Now()
	emp.DeletedAt = &now
	return nil
}

func (s *fakeEmployeeStore) List(_ context.Context, params repository.EmployeeListParams) ([]*repository.Employee, error) {
	var out []*repository.Employee
	for _, emp := range s.employees {
		if emp.DeletedAt != nil && !params.IncludeDeleted {
			continue
		}
		if emp.Lifecycle.Terminal() && !params.IncludeTerminal {
			continue
		}
		if params.Lifecycle != "" && emp.Lifecycle != params.Lifecycle {
			continue
		}
		out = append(out, emp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fakeEmployeeStore) ListActive(ctx context.Context) ([]*repository.Employee, error) {
	return s.List(ctx, repository.EmployeeListParams{})
}

type fakeDepartmentStore struct {
	departments map[string]*repository.Department
}

func newFakeDepartmentStore(departments ...*repository.Department) *fakeDepartmentStore {
	s := &fakeDepartmentStore{departments: make(map[string]*repository.Department)}
	for _, dept := range departments {
		s.departments[dept.ID] = dept
	}
	return s
}

func (s *fakeDepartmentStore) Create(_ context.Context, dept *repository.Department) error {
	s.departments[dept.ID] = dept
	return nil
}

func (s *fakeDepartmentStore) GetByID(_ context.Context, id string) (*repository.Department, error) {
	dept, ok := s.departments[id]
	if !ok {
		return nil, errors.NotFound("department")
	}
	return dept, nil
}

func (s *fakeDepartmentStore) Update(_ context.Context, dept *repository.Department) error {
	if _, ok := s.departments[dept.ID]; !ok {
		return errors.NotFound("department")
	}
	s.departments[dept.ID] = dept
	return nil
}

func (s *fakeDepartmentStore) List(_ context.Context) ([]*repository.Department, error) {
	var out []*repository.Department
	for _, dept := range s.departments {
		out = append(out, dept)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeRuleStore struct {
	rules map[string]*repository.Rule
}

func newFakeRuleStore(rules ...*repository.Rule) *fakeRuleStore {
	s := &fakeRuleStore{rules: make(map[string]*repository.Rule)}
	for _, rule := range rules {
		s.rules[rule.ID] = rule
	}
	return s
}

func (s *fakeRuleStore) Create(_ context.Context, rule *repository.Rule) error {
	s.rules[rule.ID] = rule
	return nil
}

func (s *fakeRuleStore) GetByID(_ context.Context, id string) (*repository.Rule, error) {
	rule, ok := s.rules[id]
	if !ok {
		return nil, errors.NotFound("rule")
	}
	return rule, nil
}

func (s *fakeRuleStore) GetDefault(_ context.Context) (*repository.Rule, error) {
	for _, rule := range s.rules {
		if rule.IsDefault {
			return rule, nil
		}
	}
	return nil, errors.Configuration("no default attendance rule exists")
}

func (s *fakeRuleStore) Update(_ context.Context, rule *repository.Rule) error {
	if _, ok := s.rules[rule.ID]; !ok {
		return errors.NotFound("rule")
	}
	s.rules[rule.ID] = rule
	return nil
}

func (s *fakeRuleStore) List(_ context.Context) ([]*repository.Rule, error) {
	var out []*repository.Rule
	for _, rule := range s.rules {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *fakeRuleStore) Delete(_ context.Context, id string) error {
	rule, ok := s.rules[id]
	if !ok || rule.IsDefault {
		return errors.BadRequest("rule not found or is the default rule")
	}
	delete(s.rules, id)
	return nil
}

type fakeRecordStore struct {
	mu      sync.Mutex
	seq     int64
	records []*repository.Record

	// failFor makes Create fail for the given employee ids.
	failFor map[string]error
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{failFor: make(map[string]error)}
}

func (s *fakeRecordStore) Create(_ context.Context, rec *repository.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failFor[rec.EmployeeID]; err != nil {
		return err
	}

	s.seq++
	if rec.ID == "" {
		rec.ID = "rec-" + itoa(int(s.seq))
	}
	rec.Seq = s.seq
	rec.CreatedAt = time.Now()

	stored := *rec
	s.records = append(s.records, &stored)
	return nil
}

func (s *fakeRecordStore) GetByID(_ context.Context, id string) (*repository.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.records {
		if rec.ID == id {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, errors.NotFound("record")
}

func newerThan(a, b *repository.Record) bool {
	if !a.RecordTime.Equal(b.RecordTime) {
		return a.RecordTime.After(b.RecordTime)
	}
	return a.Seq > b.Seq
}

func inRange(rec *repository.Record, from, to time.Time) bool {
	return !rec.RecordTime.Before(from) && !rec.RecordTime.After(to)
}

func (s *fakeRecordStore) LatestInRange(_ context.Context, employeeID string, from, to time.Time) (*repository.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *repository.Record
	for _, rec := range s.records {
		if rec.EmployeeID != employeeID || !inRange(rec, from, to) {
			continue
		}
		if latest == nil || newerThan(rec, latest) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (s *fakeRecordStore) LatestForAllInRange(_ context.Context, from, to time.Time) (map[string]*repository.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest := make(map[string]*repository.Record)
	for _, rec := range s.records {
		if !inRange(rec, from, to) {
			continue
		}
		if cur, ok := latest[rec.EmployeeID]; !ok || newerThan(rec, cur) {
			copied := *rec
			latest[rec.EmployeeID] = &copied
		}
	}
	return latest, nil
}

func (s *fakeRecordStore) ListForEmployee(_ context.Context, employeeID string, from, to time.Time) ([]*repository.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*repository.Record
	for _, rec := range s.records {
		if rec.EmployeeID == employeeID && inRange(rec, from, to) {
			copied := *rec
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return newerThan(out[i], out[j]) })
	return out, nil
}

func (s *fakeRecordStore) ListInRange(_ context.Context, from, to time.Time) ([]*repository.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*repository.Record
	for _, rec := range s.records {
		if inRange(rec, from, to) {
			copied := *rec
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeID != out[j].EmployeeID {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return newerThan(out[j], out[i])
	})
	return out, nil
}

func (s *fakeRecordStore) UpdateStatus(_ context.Context, id string, status domain.Label, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.records {
		if rec.ID == id {
			rec.Status = status
			rec.Reason = &reason
			return nil
		}
	}
	return errors.NotFound("record")
}

func (s *fakeRecordStore) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, rec := range s.records {
		if rec.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeRecordStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type fakeAuditStore struct {
	entries []*repository.AuditLog
	failErr error
}

func (s *fakeAuditStore) Create(_ context.Context, entry *repository.AuditLog) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *fakeAuditStore) List(_ context.Context, filter *repository.AuditListFilter, page, perPage int) ([]*repository.AuditLog, int64, error) {
	return s.entries, int64(len(s.entries)), nil
}

type fakeLeaveStore struct {
	requests map[string]*repository.LeaveRequest
	nextID   int
}

func newFakeLeaveStore() *fakeLeaveStore {
	return &fakeLeaveStore{requests: make(map[string]*repository.LeaveRequest)}
}

func (s *fakeLeaveStore) Create(_ context.Context, req *repository.LeaveRequest) error {
	if req.ID == "" {
		s.nextID++
		req.ID = "leave-" + itoa(s.nextID)
	}
	if req.Status == "" {
		req.Status = repository.LeaveStatusPending
	}
	s.requests[req.ID] = req
	return nil
}

func (s *fakeLeaveStore) GetByID(_ context.Context, id string) (*repository.LeaveRequest, error) {
	req, ok := s.requests[id]
	if !ok {
		return nil, errors.NotFound("leave request")
	}
	copied := *req
	return &copied, nil
}

func (s *fakeLeaveStore) ListForEmployee(_ context.Context, employeeID string) ([]*repository.LeaveRequest, error) {
	var out []*repository.LeaveRequest
	for _, req := range s.requests {
		if req.EmployeeID == employeeID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (s *fakeLeaveStore) ListPending(_ context.Context) ([]*repository.LeaveRequest, error) {
	var out []*repository.LeaveRequest
	for _, req := range s.requests {
		if req.Status == repository.LeaveStatusPending {
			out = append(out, req)
		}
	}
	return out, nil
}

func (s *fakeLeaveStore) Decide(_ context.Context, id, status, decidedBy string) error {
	req, ok := s.requests[id]
	if !ok || req.Status != repository.LeaveStatusPending {
		return errors.BadRequest("leave request not found or already decided")
	}
	now := time.Now()
	req.Status = status
	req.DecidedBy = &decidedBy
	req.DecidedAt = &now
	return nil
}

func (s *fakeLeaveStore) MarkRead(_ context.Context, id string) error {
	req, ok := s.requests[id]
	if !ok {
		return errors.NotFound("leave request")
	}
	req.IsReadByEmployee = true
	return nil
}

// fakePublisher counts published events per type.
type fakePublisher struct {
	mu     sync.Mutex
	counts map[string]int
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{counts: make(map[string]int)}
}

func (p *fakePublisher) bump(eventType string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[eventType]++
}

func (p *fakePublisher) PublishPunch(_ context.Context, eventType string, _ *repository.Record) {
	p.bump(eventType)
}

func (p *fakePublisher) PublishRecordChanged(_ context.Context, eventType string, _ *repository.Record, _ domain.Label, _ string) {
	p.bump(eventType)
}

func (p *fakePublisher) PublishLifecycleCompleted(_ context.Context, trigger string, _ *TriggerResult) {
	p.bump("lifecycle." + trigger)
}

func (p *fakePublisher) PublishEmployeeChanged(_ context.Context, eventType string, _ *repository.Employee) {
	p.bump(eventType)
}

func (p *fakePublisher) PublishLeaveSubmitted(_ context.Context, _ *repository.LeaveRequest) {
	p.bump("leave.submitted")
}

func (p *fakePublisher) PublishLeaveDecided(_ context.Context, _ *repository.LeaveRequest) {
	p.bump("leave.decided")
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func nopLogger() *logger.Logger {
	return logger.Nop()
}

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/domain"
	"github.com/chronotrack/chronotrack-backend/pkg/database"
	"github.com/chronotrack/chronotrack-backend/pkg/errors"
)

// Record is one attendance ledger entry. The ledger is append-only for the
// create path; seq is a database-assigned insertion counter that breaks ties
// between records sharing a record_time, so the most recently appended entry
// wins the "latest" query without any application-level locking.
type Record struct {
	ID         string       `db:"id" json:"id"`
	Seq        int64        `db:"seq" json:"-"`
	EmployeeID string       `db:"employee_id" json:"employee_id"`
	Status     domain.Label `db:"status" json:"status"`
	RecordTime time.Time    `db:"record_time" json:"record_time"`
	Recorder   string       `db:"recorder" json:"recorder"`
	Reason     *string      `db:"reason" json:"reason,omitempty"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
}

// RecordRepository handles attendance ledger persistence
type RecordRepository struct {
	db *database.DB
}

// NewRecordRepository creates a new record repository
func NewRecordRepository(db *database.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

const recordColumns = `id, seq, employee_id, status, record_time, recorder, reason, created_at`

// Create appends a new ledger record
func (r *RecordRepository) Create(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	query := `
		INSERT INTO attendance_records (id, employee_id, status, record_time, recorder, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq, created_at
	`
	return r.db.QueryRowxContext(ctx, query,
		rec.ID, rec.EmployeeID, rec.Status, rec.RecordTime, rec.Recorder, rec.Reason,
	).Scan(&rec.Seq, &rec.CreatedAt)
}

// GetByID gets a ledger record by ID
func (r *RecordRepository) GetByID(ctx context.Context, id string) (*Record, error) {
	var rec Record
	query := `SELECT ` + recordColumns + ` FROM attendance_records WHERE id = $1`

	err := r.db.GetContext(ctx, &rec, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("record")
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// LatestInRange returns the newest record for an employee with record_time
// in [from, to], by (record_time DESC, seq DESC). Nil if none exists.
func (r *RecordRepository) LatestInRange(ctx context.Context, employeeID string, from, to time.Time) (*Record, error) {
	var rec Record
	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE employee_id = $1 AND record_time BETWEEN $2 AND $3
		ORDER BY record_time DESC, seq DESC
		LIMIT 1
	`
	err := r.db.GetContext(ctx, &rec, query, employeeID, from, to)
	if err == sql.ErrNoRows {
		return nil, nil // no record for the day is not an error
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// LatestForAllInRange returns the newest record per employee with
// record_time in [from, to], keyed by employee id.
func (r *RecordRepository) LatestForAllInRange(ctx context.Context, from, to time.Time) (map[string]*Record, error) {
	query := `
		SELECT DISTINCT ON (employee_id) ` + recordColumns + `
		FROM attendance_records
		WHERE record_time BETWEEN $1 AND $2
		ORDER BY employee_id, record_time DESC, seq DESC
	`
	var records []*Record
	if err := r.db.SelectContext(ctx, &records, query, from, to); err != nil {
		return nil, err
	}

	latest := make(map[string]*Record, len(records))
	for _, rec := range records {
		latest[rec.EmployeeID] = rec
	}
	return latest, nil
}

// ListForEmployee lists an employee's records in [from, to], newest first
func (r *RecordRepository) ListForEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]*Record, error) {
	var records []*Record
	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE employee_id = $1 AND record_time BETWEEN $2 AND $3
		ORDER BY record_time DESC, seq DESC
	`
	if err := r.db.SelectContext(ctx, &records, query, employeeID, from, to); err != nil {
		return nil, err
	}
	return records, nil
}

// ListInRange lists every record in [from, to], for exports
func (r *RecordRepository) ListInRange(ctx context.Context, from, to time.Time) ([]*Record, error) {
	var records []*Record
	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE record_time BETWEEN $1 AND $2
		ORDER BY employee_id ASC, record_time ASC, seq ASC
	`
	if err := r.db.SelectContext(ctx, &records, query, from, to); err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateStatus corrects a record's status label in place. The old state is
// the caller's responsibility to audit before calling.
func (r *RecordRepository) UpdateStatus(ctx context.Context, id string, status domain.Label, reason string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE attendance_records SET status = $2, reason = $3 WHERE id = $1`, id, status, reason)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.NotFound("record")
	}
	return nil
}

// Delete hard-deletes a ledger record. Returns false when nothing matched.
func (r *RecordRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

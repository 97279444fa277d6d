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

// Rule is a stored attendance rule. StandardCheckIn is kept as HH:MM text;
// minute granularity is all the engine works with.
type Rule struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	StandardCheckIn string    `db:"standard_check_in" json:"standard_check_in"`
	GraceMinutes    int       `db:"grace_minutes" json:"grace_minutes"`
	AbsentMinutes   int       `db:"absent_minutes" json:"absent_minutes"`
	IsDefault       bool      `db:"is_default" json:"is_default"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Domain converts the stored rule into the engine's representation.
func (r *Rule) Domain() (domain.Rule, error) {
	checkIn, err := domain.ParseTimeOfDay(r.StandardCheckIn)
	if err != nil {
		return domain.Rule{}, errors.Configuration("rule " + r.ID + " has invalid standard check-in time")
	}
	return domain.Rule{
		StandardCheckIn: checkIn,
		GraceMinutes:    r.GraceMinutes,
		AbsentMinutes:   r.AbsentMinutes,
	}, nil
}

// RuleRepository handles attendance rule persistence
type RuleRepository struct {
	db *database.DB
}

// NewRuleRepository creates a new rule repository
func NewRuleRepository(db *database.DB) *RuleRepository {
	return &RuleRepository{db: db}
}

const ruleColumns = `id, name, standard_check_in, grace_minutes, absent_minutes, is_default, created_at, updated_at`

// Create creates a new rule
func (r *RuleRepository) Create(ctx context.Context, rule *Rule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}

	query := `
		INSERT INTO attendance_rules (id, name, standard_check_in, grace_minutes, absent_minutes, is_default)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query,
		rule.ID, rule.Name, rule.StandardCheckIn, rule.GraceMinutes, rule.AbsentMinutes, rule.IsDefault,
	).Scan(&rule.CreatedAt, &rule.UpdatedAt)
}

// GetByID gets a rule by ID
func (r *RuleRepository) GetByID(ctx context.Context, id string) (*Rule, error) {
	var rule Rule
	query := `SELECT ` + ruleColumns + ` FROM attendance_rules WHERE id = $1`

	err := r.db.GetContext(ctx, &rule, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("rule")
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// GetDefault gets the single system-wide default rule. Its absence is a
// fatal misconfiguration, not a recoverable runtime condition.
func (r *RuleRepository) GetDefault(ctx context.Context) (*Rule, error) {
	var rule Rule
	query := `SELECT ` + ruleColumns + ` FROM attendance_rules WHERE is_default = TRUE LIMIT 1`

	err := r.db.GetContext(ctx, &rule, query)
	if err == sql.ErrNoRows {
		return nil, errors.Configuration("no default attendance rule exists")
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// Update updates a rule
func (r *RuleRepository) Update(ctx context.Context, rule *Rule) error {
	query := `
		UPDATE attendance_rules
		SET name = $2, standard_check_in = $3, grace_minutes = $4, absent_minutes = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		rule.ID, rule.Name, rule.StandardCheckIn, rule.GraceMinutes, rule.AbsentMinutes,
	).Scan(&rule.UpdatedAt)

	if err == sql.ErrNoRows {
		return errors.NotFound("rule")
	}
	return err
}

// List lists all rules, default first
func (r *RuleRepository) List(ctx context.Context) ([]*Rule, error) {
	var rules []*Rule
	query := `SELECT ` + ruleColumns + ` FROM attendance_rules ORDER BY is_default DESC, name ASC`

	if err := r.db.SelectContext(ctx, &rules, query); err != nil {
		return nil, err
	}
	return rules, nil
}

// Delete deletes a non-default rule. The default rule must always exist.
func (r *RuleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM attendance_rules WHERE id = $1 AND is_default = FALSE`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.BadRequest("rule not found or is the default rule")
	}
	return nil
}

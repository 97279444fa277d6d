package repository_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronotrack/chronotrack-backend/internal/attendance/repository"
	"github.com/chronotrack/chronotrack-backend/pkg/errors"
	"github.com/chronotrack/chronotrack-backend/pkg/testutil"
)

func TestGetDefaultRule(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	now := time.Now()
	mockDB.ExpectQuery("WHERE is_default = TRUE").
		WillReturnRows(testutil.
			MockRows("id", "name", "standard_check_in", "grace_minutes", "absent_minutes", "is_default", "created_at", "updated_at").
			AddRow("rule-default", "Standard", "09:00", 15, 120, true, now, now))

	repo := repository.NewRuleRepository(mockDB.DB)
	rule, err := repo.GetDefault(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "rule-default", rule.ID)
	assert.True(t, rule.IsDefault)
	mockDB.ExpectationsWereMet(t)
}

func TestGetDefaultRuleMissingIsConfigurationError(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("WHERE is_default = TRUE").
		WillReturnError(sql.ErrNoRows)

	repo := repository.NewRuleRepository(mockDB.DB)
	_, err := repo.GetDefault(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))
	mockDB.ExpectationsWereMet(t)
}

func TestRuleDomainRejectsMalformedCheckIn(t *testing.T) {
	rule := &repository.Rule{ID: "rule-1", StandardCheckIn: "25:99"}

	_, err := rule.Domain()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfiguration))
}

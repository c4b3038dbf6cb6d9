package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/irmock-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: uniqueViolationCode}, store.ErrDuplicate},
		{"check violation", &pgconn.PgError{Code: checkViolationCode, ConstraintName: "submissions_status_check"}, store.ErrInvalidEntity},
		{"not null violation", &pgconn.PgError{Code: notNullViolationCode, ColumnName: "task_uuid"}, store.ErrInvalidEntity},
		{"other pg error", &pgconn.PgError{Code: "57014"}, store.ErrPersistence},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: uniqueViolationCode}), store.ErrDuplicate},
		{"plain error", errors.New("connection reset"), store.ErrPersistence},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, MapError(tc.err), tc.want)
		})
	}

	assert.NoError(t, MapError(nil))
}

func TestMapError_KeepsOriginalText(t *testing.T) {
	t.Parallel()

	err := MapError(&pgconn.PgError{Code: checkViolationCode, ConstraintName: "submissions_result_iff_completed"})
	assert.Contains(t, err.Error(), "submissions_result_iff_completed")
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: uniqueViolationCode}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: checkViolationCode}))
	assert.False(t, IsUniqueViolation(errors.New("duplicate")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	require.NoError(t, CheckRowsAffected(fakeResult{rows: 1}, "submission"))

	err := CheckRowsAffected(fakeResult{rows: 0}, "submission")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Contains(t, err.Error(), "submission")

	assert.ErrorIs(t, CheckRowsAffected(fakeResult{rows: 0}, ""), store.ErrNotFound)

	boom := errors.New("driver does not support RowsAffected")
	assert.ErrorIs(t, CheckRowsAffected(fakeResult{err: boom}, "submission"), boom)

	assert.Error(t, CheckRowsAffected(nil, "submission"))
}

func TestMigrate_UnknownCommand(t *testing.T) {
	t.Parallel()

	err := Migrate(t.Context(), nil, "sideways", nil)
	assert.ErrorIs(t, err, ErrUnknownMigrationCommand)
}

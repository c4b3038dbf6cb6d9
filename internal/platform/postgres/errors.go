package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/irmock-api/internal/store"
)

// SQLSTATE codes the submission store reacts to.
const (
	uniqueViolationCode  = "23505"
	checkViolationCode   = "23514"
	notNullViolationCode = "23502"
)

// MapError translates a driver error into the store taxonomy. The driver
// error stays in the message, and the store sentinel is what errors.Is sees.
// Anything unrecognized is a persistence failure.
func MapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	pgErr, ok := asPgError(err)
	if !ok {
		return fmt.Errorf("%w: %v", store.ErrPersistence, err)
	}

	switch pgErr.Code {
	case uniqueViolationCode:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case checkViolationCode:
		return fmt.Errorf("%w: constraint %s rejected row: %v",
			store.ErrInvalidEntity, pgErr.ConstraintName, err)
	case notNullViolationCode:
		return fmt.Errorf("%w: column %s is required: %v",
			store.ErrInvalidEntity, pgErr.ColumnName, err)
	default:
		return fmt.Errorf("%w: %v", store.ErrPersistence, err)
	}
}

// IsUniqueViolation reports whether err carries SQLSTATE 23505, which the
// store sees when an image id is inserted twice.
func IsUniqueViolation(err error) bool {
	pgErr, ok := asPgError(err)
	return ok && pgErr.Code == uniqueViolationCode
}

func asPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

// CheckRowsAffected turns an UPDATE that matched nothing into
// store.ErrNotFound, naming entity in the message when given.
func CheckRowsAffected(result sql.Result, entity string) error {
	if result == nil {
		return errors.New("no sql result to inspect")
	}

	n, err := result.RowsAffected()
	switch {
	case err != nil:
		return fmt.Errorf("failed to read affected row count: %w", err)
	case n > 0:
		return nil
	case entity == "":
		return store.ErrNotFound
	default:
		return fmt.Errorf("%w: no %s row matched", store.ErrNotFound, entity)
	}
}

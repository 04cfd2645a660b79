package implementation

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE of a CHECK constraint failure
const pgCheckViolation = "23514"

// wrapDBError prefixes err with the failing operation and, for Postgres errors,
// the SQLSTATE and constraint so per-account run errors are readable.
func wrapDBError(op string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.ConstraintName != "" {
			return fmt.Errorf("%s: sqlstate %s (%s): %w", op, pgErr.Code, pgErr.ConstraintName, err)
		}
		return fmt.Errorf("%s: sqlstate %s: %w", op, pgErr.Code, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// IsCheckViolation reports whether err comes from a CHECK constraint, e.g. a negative balance
func IsCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation
}

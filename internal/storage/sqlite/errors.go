package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/moneymatters/backend/internal/metrics"
	"github.com/moneymatters/backend/internal/storage"
)

// mapErr translates driver errors into the storage error taxonomy, keyed on
// the extended SQLite result code. Anything unrecognized is wrapped as-is.
func mapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			metrics.ConstraintRejections.WithLabelValues("uniqueness").Inc()
			return fmt.Errorf("%s: %w", op, storage.ErrUniquenessViolation)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			metrics.ConstraintRejections.WithLabelValues("foreign_key").Inc()
			return fmt.Errorf("%s: %w", op, storage.ErrForeignKeyViolation)
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL, sqlite3.SQLITE_CONSTRAINT_CHECK:
			metrics.ConstraintRejections.WithLabelValues("required_field").Inc()
			return fmt.Errorf("%s: %w", op, storage.ErrRequiredFieldMissing)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

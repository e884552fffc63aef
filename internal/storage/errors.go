package storage

import "errors"

// Deterministic validation failures surfaced synchronously by every Store
// implementation. A failed check aborts the whole transaction; none of these
// are transient, so callers must not retry them.
var (
	// ErrNotFound means the referenced entity id does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrUniquenessViolation means a unique constraint was hit: User.Email,
	// the (UserID, Key) setting pair, or the (GoalID, AccountID) pair.
	ErrUniquenessViolation = errors.New("uniqueness violation")

	// ErrForeignKeyViolation means a write referenced a nonexistent parent.
	ErrForeignKeyViolation = errors.New("foreign key violation")

	// ErrRequiredFieldMissing means a required field was empty or null.
	ErrRequiredFieldMissing = errors.New("required field missing")
)

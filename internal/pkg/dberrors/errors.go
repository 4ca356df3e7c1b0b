package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsUniqueViolation checks if the error is a PostgreSQL unique violation (23505).
// The partial unique indexes on slot_reservations and room_assignments back the
// non-overlap invariants, so a unique violation here means a concurrent
// transaction won the slot.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsUniqueConstraintViolation checks a unique violation for a specific constraint.
func IsUniqueConstraintViolation(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == constraintName
}

// IsSerializationFailure checks if the error is a PostgreSQL serialization
// failure (40001), raised when two serializable transactions both read an
// availability predicate and then write. The loser must resubmit.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

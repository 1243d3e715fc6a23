package infra

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrorClass buckets storage errors for logging and status mapping.
type ErrorClass string

const (
	ClassNone          ErrorClass = ""
	ClassNotFound      ErrorClass = "not_found"
	ClassUnique        ErrorClass = "unique_violation"
	ClassForeignKey    ErrorClass = "foreign_key_violation"
	ClassCheck         ErrorClass = "check_violation"
	ClassSerialization ErrorClass = "serialization_failure"
	ClassDeadlock      ErrorClass = "deadlock_detected"
	ClassLockTimeout   ErrorClass = "lock_not_available"
	ClassCanceled      ErrorClass = "query_canceled"
	ClassOther         ErrorClass = "other"
)

// SQLSTATE codes we care about.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014"
)

// ClassifyError maps GORM sentinels (with TranslateError enabled) and raw
// PostgreSQL errors to an ErrorClass.
func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ClassNone
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ClassNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ClassUnique
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ClassForeignKey
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return ClassCheck
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ClassUnique
		case pgForeignKeyViolation:
			return ClassForeignKey
		case pgCheckViolation:
			return ClassCheck
		case pgSerializationFailure:
			return ClassSerialization
		case pgDeadlockDetected:
			return ClassDeadlock
		case pgLockNotAvailable:
			return ClassLockTimeout
		case pgQueryCanceled:
			return ClassCanceled
		}
	}
	return ClassOther
}

// IsTransient reports whether a retry by the caller could succeed.
func IsTransient(err error) bool {
	switch ClassifyError(err) {
	case ClassSerialization, ClassDeadlock, ClassLockTimeout:
		return true
	}
	return false
}

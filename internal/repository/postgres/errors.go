package postgres

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"eventmanagement/internal/domain"
)

// PostgreSQL SQLSTATE codes handled by the repositories.
const (
	pgNumericOutOfRange    = "22003"
	pgCheckViolation       = "23514"
	pgForeignKeyViolation  = "23503"
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

var errConcurrentUpdate = domain.Conflictf("concurrent update, try again")

// Named constraints from migrations/0001_init.sql.
const (
	constraintUsersUsername      = "users_username_key"
	constraintUsersEmail         = "users_email_key"
	constraintCategoriesName     = "categories_name_key"
	constraintActiveRegistration = "event_registrations_active_uniq"
)

func pqError(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}

func isUniqueViolation(err error) (constraint string, ok bool) {
	pqErr, ok := pqError(err)
	if !ok || pqErr.Code != pgUniqueViolation {
		return "", false
	}
	return pqErr.Constraint, true
}

func isForeignKeyViolation(err error) bool {
	pqErr, ok := pqError(err)
	return ok && pqErr.Code == pgForeignKeyViolation
}

// isTransactionConflict reports a serialization failure or deadlock. Postgres
// raises these at statement time as well as at commit.
func isTransactionConflict(err error) bool {
	pqErr, ok := pqError(err)
	return ok && (pqErr.Code == pgSerializationFailure || pqErr.Code == pgDeadlockDetected)
}

// mapConstraintError translates integrity violations into domain conflicts,
// out-of-range values into invalid input, and returns any other error unchanged.
func mapConstraintError(err error) error {
	if isTransactionConflict(err) {
		return errConcurrentUpdate
	}
	if pqErr, ok := pqError(err); ok {
		switch pqErr.Code {
		case pgNumericOutOfRange:
			return domain.InvalidInputf("numeric value out of range")
		case pgCheckViolation:
			return domain.InvalidInputf("value violates constraint %s", pqErr.Constraint)
		}
	}
	if constraint, ok := isUniqueViolation(err); ok {
		switch constraint {
		case constraintUsersUsername:
			return domain.ErrDuplicateUsername
		case constraintUsersEmail:
			return domain.ErrDuplicateEmail
		case constraintCategoriesName:
			return domain.ErrDuplicateCategoryName
		case constraintActiveRegistration:
			return domain.ErrAlreadyRegistered
		}
		return domain.Conflictf("unique constraint %s violated", constraint)
	}
	if isForeignKeyViolation(err) {
		return domain.ErrReferenced
	}
	return err
}

// mapTxError marks a statement-time serialization failure or deadlock returned
// through fn as a conflict, keeping the original error in the chain.
func mapTxError(err error) error {
	if isTransactionConflict(err) && !errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("%w: %w", errConcurrentUpdate, err)
	}
	return err
}

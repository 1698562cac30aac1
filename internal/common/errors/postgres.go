package errors

import (
	"context"
	"database/sql"
	"database/sql/driver"
	stderrors "errors"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Operation identifies the statement kind that produced a driver error; the
// same SQLSTATE maps to different codes depending on it.
type Operation string

const (
	OpInsert Operation = "insert"
	OpSelect Operation = "select"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// PostgreSQL SQLSTATE codes the store distinguishes.
const (
	pqUniqueViolation       = "23505"
	pqForeignKeyViolation   = "23503"
	pqNotNullViolation      = "23502"
	pqCheckViolation        = "23514"
	pqStringTruncation      = "22001"
	pqNumericOutOfRange     = "22003"
	pqInvalidTextRepr       = "22P02"
	pqConnectionClass       = "08"
	pqQueryCanceled         = "57014"
	pqAdminShutdown         = "57P01"
	pqCannotConnectNowClass = "57P03"
)

func as(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// FromPostgres translates an error returned by gorm/lib/pq into a StandardError.
// id is only used for not-found details.
func FromPostgres(op Operation, table, id string, err error) error {
	if err == nil {
		return nil
	}

	var stdErr *StandardError
	if as(err, &stdErr) {
		return stdErr
	}

	if stderrors.Is(err, gorm.ErrRecordNotFound) || stderrors.Is(err, sql.ErrNoRows) {
		return NewRecordNotFoundError(table, id)
	}

	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return NewQueryTimeoutError(string(op)+" "+table, err)
	}

	if stderrors.Is(err, driver.ErrBadConn) || stderrors.Is(err, sql.ErrConnDone) {
		return NewDatabaseConnectionFailedError(err)
	}

	var pqErr *pq.Error
	if !as(err, &pqErr) {
		return NewQueryExecutionFailedError(string(op)+" "+table, err)
	}

	code := string(pqErr.Code)
	switch code {
	case pqUniqueViolation:
		return NewDuplicateRecordError(table, pqErr.Constraint, err)

	case pqForeignKeyViolation:
		if op == OpDelete {
			return NewReferenceProtectedError(table, pqErr.Constraint, err)
		}
		return NewForeignKeyViolationError(table, pqErr.Constraint, err)

	case pqNotNullViolation, pqCheckViolation, pqStringTruncation,
		pqNumericOutOfRange, pqInvalidTextRepr:
		v := NewValidationFailedError(table, pqErr.Message)
		v.cause = err
		if pqErr.Column != "" {
			v.WithMetadata("column", pqErr.Column)
		}
		return v

	case pqQueryCanceled:
		return NewQueryTimeoutError(string(op)+" "+table, err)

	case pqAdminShutdown, pqCannotConnectNowClass:
		return NewDatabaseConnectionFailedError(err)
	}

	if len(code) >= 2 && code[:2] == pqConnectionClass {
		return NewDatabaseConnectionFailedError(err)
	}

	return NewQueryExecutionFailedError(string(op)+" "+table, err)
}

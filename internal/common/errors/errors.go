package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Error Codes
// ==========================

type ErrorCode string

const (
	ErrCodeDuplicateRecord     ErrorCode = "DUPLICATE_RECORD"
	ErrCodeRecordNotFound      ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeReferenceProtected  ErrorCode = "REFERENCE_PROTECTED"
	ErrCodeForeignKeyViolation ErrorCode = "FOREIGN_KEY_VIOLATION"
	ErrCodeValidationFailed    ErrorCode = "VALIDATION_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeMigrationFailed          ErrorCode = "MIGRATION_FAILED"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeImportRowFailed ErrorCode = "IMPORT_ROW_FAILED"
)

// ==========================
// 2. Standard Error
// ==========================

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the driver error the StandardError was built from.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// Is matches any StandardError carrying the same code, so callers can compare
// against the sentinels below with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithMetadata returns e with key set in its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

// Sentinels for errors.Is.
var (
	ErrDuplicate          = &StandardError{Code: ErrCodeDuplicateRecord}
	ErrNotFound           = &StandardError{Code: ErrCodeRecordNotFound}
	ErrReferenceProtected = &StandardError{Code: ErrCodeReferenceProtected}
	ErrForeignKey         = &StandardError{Code: ErrCodeForeignKeyViolation}
	ErrValidation         = &StandardError{Code: ErrCodeValidationFailed}
	ErrConnection         = &StandardError{Code: ErrCodeDatabaseConnectionFailed}
	ErrTimeout            = &StandardError{Code: ErrCodeQueryTimeout}
)

// ==========================
// 3. Constructors
// ==========================

func NewDuplicateRecordError(table, constraint string, cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateRecord,
		Message:   fmt.Sprintf("Duplicate %s record", table),
		Details:   fmt.Sprintf("constraint: %s", constraint),
		Retryable: false,
		Metadata:  map[string]interface{}{"table": table, "constraint": constraint},
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func NewRecordNotFoundError(table, id string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordNotFound,
		Message:   fmt.Sprintf("%s record not found", table),
		Details:   fmt.Sprintf("id: %s", id),
		Retryable: false,
		Metadata:  map[string]interface{}{"table": table, "id": id},
		Timestamp: time.Now().UTC(),
	}
}

func NewReferenceProtectedError(table, constraint string, cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReferenceProtected,
		Message:   fmt.Sprintf("%s record is still referenced", table),
		Details:   fmt.Sprintf("constraint: %s", constraint),
		Retryable: false,
		Metadata:  map[string]interface{}{"table": table, "constraint": constraint},
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func NewForeignKeyViolationError(table, constraint string, cause error) *StandardError {
	return &StandardError{
		Code:      ErrCodeForeignKeyViolation,
		Message:   fmt.Sprintf("%s record references a missing parent", table),
		Details:   fmt.Sprintf("constraint: %s", constraint),
		Retryable: false,
		Metadata:  map[string]interface{}{"table": table, "constraint": constraint},
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func NewValidationFailedError(table, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   fmt.Sprintf("Invalid %s record", table),
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"table": table},
		Timestamp: time.Now().UTC(),
	}
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   fmt.Sprintf("Query execution failed: %s", operation),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewQueryTimeoutError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   fmt.Sprintf("Query timed out: %s", operation),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewMigrationFailedError(table string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMigrationFailed,
		Message:   fmt.Sprintf("Migration failed for %s", table),
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Elasticsearch connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewSearchQueryFailedError(operation string, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   fmt.Sprintf("Search request failed: %s", operation),
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewIndexNotFoundError(indexName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Search index not found",
		Details:   fmt.Sprintf("index: %s", indexName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewImportRowFailedError(line int, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeImportRowFailed,
		Message:   fmt.Sprintf("Import failed at line %d", line),
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"line": line},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeCacheUnavailable:
		return 3

	case ErrCodeQueryTimeout:
		return 2

	default:
		return 0 // constraint and validation errors never succeed on retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "DUPLICATE") ||
		strings.Contains(codeStr, "REFERENCE") ||
		strings.Contains(codeStr, "FOREIGN_KEY"):
		return "CONSTRAINT"
	case strings.Contains(codeStr, "NOT_FOUND") && !strings.Contains(codeStr, "INDEX"):
		return "LOOKUP"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") ||
		strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") ||
		strings.Contains(codeStr, "MIGRATION"):
		return "DATABASE"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "IMPORT"):
		return "IMPORT"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

// CodeOf returns the ErrorCode carried by err, or "" for foreign errors.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if as(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

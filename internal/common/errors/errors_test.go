package errors

import (
	"context"
	"database/sql/driver"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ==========================
// Sentinel matching
// ==========================

func TestStandardError_IsMatchesByCode(t *testing.T) {
	err := NewDuplicateRecordError("colleges", "idx_colleges_name_degree_branch", nil)

	assert.True(t, stderrors.Is(err, ErrDuplicate))
	assert.False(t, stderrors.Is(err, ErrNotFound))

	wrapped := fmt.Errorf("create college: %w", err)
	assert.True(t, stderrors.Is(wrapped, ErrDuplicate))
	assert.Equal(t, ErrCodeDuplicateRecord, CodeOf(wrapped))
	assert.Equal(t, ErrorCode(""), CodeOf(stderrors.New("plain")))
}

func TestStandardError_UnwrapExposesCause(t *testing.T) {
	cause := &pq.Error{Code: "23505", Constraint: "idx_score_types_key"}
	err := NewDuplicateRecordError("score_types", cause.Constraint, cause)

	var pqErr *pq.Error
	require.True(t, stderrors.As(err, &pqErr))
	assert.Equal(t, "idx_score_types_key", pqErr.Constraint)
}

func TestStandardError_ErrorString(t *testing.T) {
	err := NewRecordNotFoundError("students", "abc")
	assert.Equal(t, "StandardError[RECORD_NOT_FOUND]: students record not found: id: abc", err.Error())
}

// ==========================
// PostgreSQL translation
// ==========================

func TestFromPostgres(t *testing.T) {
	tests := []struct {
		name     string
		op       Operation
		err      error
		wantCode ErrorCode
		sentinel error
	}{
		{
			name:     "unique violation",
			op:       OpInsert,
			err:      &pq.Error{Code: "23505", Constraint: "idx_colleges_name_degree_branch"},
			wantCode: ErrCodeDuplicateRecord,
			sentinel: ErrDuplicate,
		},
		{
			name:     "fk violation on delete is protect",
			op:       OpDelete,
			err:      &pq.Error{Code: "23503", Constraint: "fk_score_types_assessment_scores"},
			wantCode: ErrCodeReferenceProtected,
			sentinel: ErrReferenceProtected,
		},
		{
			name:     "fk violation on insert is missing parent",
			op:       OpInsert,
			err:      &pq.Error{Code: "23503", Constraint: "fk_assessments_student"},
			wantCode: ErrCodeForeignKeyViolation,
			sentinel: ErrForeignKey,
		},
		{
			name:     "string too long",
			op:       OpUpdate,
			err:      &pq.Error{Code: "22001", Message: "value too long for type character varying(20)"},
			wantCode: ErrCodeValidationFailed,
			sentinel: ErrValidation,
		},
		{
			name:     "numeric overflow",
			op:       OpInsert,
			err:      &pq.Error{Code: "22003", Message: "numeric field overflow"},
			wantCode: ErrCodeValidationFailed,
			sentinel: ErrValidation,
		},
		{
			name:     "connection class",
			op:       OpSelect,
			err:      &pq.Error{Code: "08006"},
			wantCode: ErrCodeDatabaseConnectionFailed,
			sentinel: ErrConnection,
		},
		{
			name:     "statement cancelled",
			op:       OpSelect,
			err:      &pq.Error{Code: "57014"},
			wantCode: ErrCodeQueryTimeout,
			sentinel: ErrTimeout,
		},
		{
			name:     "record not found",
			op:       OpSelect,
			err:      gorm.ErrRecordNotFound,
			wantCode: ErrCodeRecordNotFound,
			sentinel: ErrNotFound,
		},
		{
			name:     "context deadline",
			op:       OpSelect,
			err:      fmt.Errorf("query: %w", context.DeadlineExceeded),
			wantCode: ErrCodeQueryTimeout,
			sentinel: ErrTimeout,
		},
		{
			name:     "bad conn",
			op:       OpInsert,
			err:      driver.ErrBadConn,
			wantCode: ErrCodeDatabaseConnectionFailed,
			sentinel: ErrConnection,
		},
		{
			name:     "unknown driver error",
			op:       OpInsert,
			err:      stderrors.New("something odd"),
			wantCode: ErrCodeQueryExecutionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromPostgres(tt.op, "things", "id-1", tt.err)
			require.Error(t, got)
			assert.Equal(t, tt.wantCode, CodeOf(got))
			if tt.sentinel != nil {
				assert.True(t, stderrors.Is(got, tt.sentinel))
			}
		})
	}
}

func TestFromPostgres_NilAndPassThrough(t *testing.T) {
	assert.NoError(t, FromPostgres(OpInsert, "colleges", "", nil))

	original := NewValidationFailedError("students", "email: invalid")
	got := FromPostgres(OpInsert, "students", "", fmt.Errorf("wrap: %w", original))
	assert.Same(t, original, got)
}

func TestFromPostgres_ValidationKeepsColumn(t *testing.T) {
	got := FromPostgres(OpInsert, "students", "", &pq.Error{Code: "23502", Column: "full_name", Message: "null value"})

	var stdErr *StandardError
	require.True(t, stderrors.As(got, &stdErr))
	assert.Equal(t, "full_name", stdErr.Metadata["column"])
}

// ==========================
// Utility helpers
// ==========================

func TestGetRetryCount(t *testing.T) {
	assert.Equal(t, 3, GetRetryCount(ErrCodeDatabaseConnectionFailed))
	assert.Equal(t, 2, GetRetryCount(ErrCodeQueryTimeout))
	assert.Equal(t, 0, GetRetryCount(ErrCodeDuplicateRecord))
	assert.Equal(t, 0, GetRetryCount(ErrCodeReferenceProtected))
	assert.True(t, IsRetryableErrorCode(ErrCodeCacheUnavailable))
	assert.False(t, IsRetryableErrorCode(ErrCodeValidationFailed))
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "CONSTRAINT", GetErrorCategory(ErrCodeDuplicateRecord))
	assert.Equal(t, "CONSTRAINT", GetErrorCategory(ErrCodeReferenceProtected))
	assert.Equal(t, "CONSTRAINT", GetErrorCategory(ErrCodeForeignKeyViolation))
	assert.Equal(t, "LOOKUP", GetErrorCategory(ErrCodeRecordNotFound))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryTimeout))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeMigrationFailed))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeIndexNotFound))
	assert.Equal(t, "CACHE", GetErrorCategory(ErrCodeCacheUnavailable))
	assert.Equal(t, "IMPORT", GetErrorCategory(ErrCodeImportRowFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeValidationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory("SOMETHING_ELSE"))
}

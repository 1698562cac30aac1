package app

import (
	stderrors "errors"
	"testing"
	"time"

	"placement-tracker/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestRetryWithBackoff(t *testing.T) {
	log := zaptest.NewLogger(t)
	refused := stderrors.New("connection refused")

	calls := 0
	err := retryWithBackoff(func() error {
		calls++
		if calls < 3 {
			return errors.NewDatabaseConnectionFailedError(refused)
		}
		return nil
	}, 5, time.Millisecond, log, "PostgreSQL connection")
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = retryWithBackoff(func() error {
		calls++
		return errors.NewCacheUnavailableError(refused)
	}, 2, time.Millisecond, log, "Redis connection")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Redis connection failed after 2 attempts")
	assert.Equal(t, 2, calls)
	assert.Equal(t, errors.ErrCodeCacheUnavailable, errors.CodeOf(err))
}

func TestRetryWithBackoff_StopsOnPermanentErrors(t *testing.T) {
	log := zaptest.NewLogger(t)

	tests := []struct {
		name string
		err  error
	}{
		{"plain error", stderrors.New("redis address is required")},
		{"validation", errors.NewValidationFailedError("colleges", "name is required")},
		{"duplicate", errors.NewDuplicateRecordError("colleges", "idx_colleges_name_degree_branch", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := retryWithBackoff(func() error {
				calls++
				return tt.err
			}, 5, time.Hour, log, "PostgreSQL connection")

			assert.Equal(t, 1, calls)
			assert.ErrorIs(t, err, tt.err)
			assert.Contains(t, err.Error(), "PostgreSQL connection failed")
		})
	}
}

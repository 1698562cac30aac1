// internal/store/store.go
package store

import (
	"context"
	"strings"
	"time"

	"placement-tracker/internal/common/errors"
	"placement-tracker/internal/common/logger"
	"placement-tracker/internal/common/metrics"
	"placement-tracker/internal/common/observability"
	"placement-tracker/internal/common/validation"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

type Config struct {
	QueryTimeout time.Duration
}

// Store reads and writes the six placement tables. Cascades, SET NULL and
// delete protection are left to the database constraints.
type Store struct {
	config Config
	db     *gorm.DB
	logger logger.Logger
	obs    *observability.Observability
}

func New(config Config, db *gorm.DB, log logger.Logger, obs *observability.Observability) *Store {
	if obs == nil {
		obs = observability.Noop()
	}
	return &Store{
		config: config,
		db:     db,
		logger: log,
		obs:    obs,
	}
}

// DB exposes the underlying handle for migrations and tests.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// run executes fn with the query timeout, then records the outcome as a
// span, metrics and a log line. Driver errors come back as StandardErrors.
func (s *Store) run(ctx context.Context, table string, op errors.Operation, id string, fn func(tx *gorm.DB) error) error {
	if s.config.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.QueryTimeout)
		defer cancel()
	}

	ctx, span := s.obs.StartSpan(ctx, "store."+string(op)+"."+table,
		attribute.String("db.system", "postgresql"),
		attribute.String("db.sql.table", table),
		attribute.String("db.operation", string(op)),
	)

	start := time.Now()
	err := errors.FromPostgres(op, table, id, fn(s.db.WithContext(ctx)))
	duration := time.Since(start)

	status := metrics.StatusSuccess
	if err != nil {
		status = strings.ToLower(string(errors.CodeOf(err)))
	}
	metrics.StoreOperationsTotal.WithLabelValues(table, string(op), status).Inc()
	metrics.StoreOperationDuration.WithLabelValues(table, string(op)).Observe(duration.Seconds())
	s.obs.RecordOperation(ctx, table, string(op), status, duration)
	observability.EndSpan(span, err)

	fields := map[string]interface{}{
		"table":       table,
		"operation":   string(op),
		"duration_ms": duration.Milliseconds(),
	}
	if id != "" {
		fields["id"] = id
	}

	switch {
	case err == nil:
		s.logger.Debug("Store operation completed", fields)
	case errors.CodeOf(err) == errors.ErrCodeRecordNotFound:
		s.logger.Debug("Record not found", fields)
	case isClientError(err):
		fields["error"] = err
		s.logger.Warn("Store operation rejected", fields)
	default:
		fields["error"] = err
		s.logger.Error("Store operation failed", fields)
	}
	return err
}

func isClientError(err error) bool {
	switch errors.GetErrorCategory(errors.CodeOf(err)) {
	case "CONSTRAINT", "VALIDATION":
		return true
	}
	return false
}

// validate turns a failed field check into a VALIDATION_FAILED error.
func validate(table string, res *validation.ValidationResult) error {
	if res == nil || res.Valid {
		return nil
	}
	err := errors.NewValidationFailedError(table, res.Summary())
	err.WithMetadata("fields", res.Errors)
	return err
}

// requireAffected reports not-found when an update or delete matched no row.
func requireAffected(table, id string, res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.NewRecordNotFoundError(table, id)
	}
	return nil
}

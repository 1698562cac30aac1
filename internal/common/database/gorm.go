// internal/common/database/gorm.go
package database

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"placement-tracker/internal/common/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenGorm binds GORM to an existing pool. Writes are single statements, so
// GORM's implicit per-write transaction is disabled.
func OpenGorm(db *sql.DB, log logger.Logger, sqlLevel string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 NewGormLogger(log, sqlLevel, 200*time.Millisecond),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	return gdb, nil
}

// GormLogger forwards GORM's statement log onto logger.Logger.
type GormLogger struct {
	log           logger.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func NewGormLogger(log logger.Logger, level string, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{
		log:           log,
		level:         parseGormLevel(level),
		slowThreshold: slowThreshold,
	}
}

func parseGormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	}
	return gormlogger.Warn
}

func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *GormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Info {
		g.log.Info(fmt.Sprintf(msg, args...), nil)
	}
}

func (g *GormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.log.Warn(fmt.Sprintf(msg, args...), nil)
	}
}

func (g *GormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Error {
		g.log.Error(fmt.Sprintf(msg, args...), nil)
	}
}

func (g *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	// not-found is an expected outcome for lookups and is reported by the store
	case err != nil && g.level >= gormlogger.Error && !stderrors.Is(err, gormlogger.ErrRecordNotFound):
		sql, rows := fc()
		g.log.Error("SQL statement failed", map[string]interface{}{
			"sql":         sql,
			"rows":        rows,
			"duration_ms": elapsed.Milliseconds(),
			"error":       err,
		})
	case g.slowThreshold > 0 && elapsed > g.slowThreshold && g.level >= gormlogger.Warn:
		sql, rows := fc()
		g.log.Warn("Slow SQL statement", map[string]interface{}{
			"sql":         sql,
			"rows":        rows,
			"duration_ms": elapsed.Milliseconds(),
			"threshold":   g.slowThreshold.String(),
		})
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.log.Debug("SQL statement", map[string]interface{}{
			"sql":         sql,
			"rows":        rows,
			"duration_ms": elapsed.Milliseconds(),
		})
	}
}

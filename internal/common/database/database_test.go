package database

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"placement-tracker/internal/common/config"
	"placement-tracker/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func observedLogger() (logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return logger.NewZapAdapter(zap.New(core)), logs
}

// ==========================
// Postgres
// ==========================

func TestNewPostgres_DoesNotConnect(t *testing.T) {
	client, err := NewPostgres(config.PostgresConfig{
		Host: "localhost", Port: 5432, Database: "placements", User: "postgres",
		SSLMode: "disable", MaxConnections: 4, MaxIdle: 2, ConnMaxLifetime: 60000,
	})
	require.NoError(t, err)
	assert.NotNil(t, client.GetDB())
	assert.Equal(t, 4, client.DB.Stats().MaxOpenConnections)
	assert.NoError(t, client.Close())
}

func TestOpenGorm_UsesExistingPool(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	gdb, err := OpenGorm(db, logger.NewNoOpLogger(), "warn")
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	assert.Same(t, db, sqlDB)
	assert.True(t, gdb.Config.SkipDefaultTransaction)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// GORM logger bridge
// ==========================

func TestGormLogger_TraceError(t *testing.T) {
	log, logs := observedLogger()
	g := NewGormLogger(log, "warn", time.Second)

	g.Trace(context.Background(), time.Now(), func() (string, int64) {
		return `INSERT INTO "colleges"`, 0
	}, errors.New("duplicate key"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "SQL statement failed", entry.Message)
	assert.Equal(t, `INSERT INTO "colleges"`, entry.ContextMap()["sql"])
}

func TestGormLogger_SkipsRecordNotFound(t *testing.T) {
	log, logs := observedLogger()
	g := NewGormLogger(log, "warn", time.Second)

	g.Trace(context.Background(), time.Now(), func() (string, int64) {
		return `SELECT * FROM "students"`, 0
	}, gormlogger.ErrRecordNotFound)

	assert.Equal(t, 0, logs.Len())
}

func TestGormLogger_SlowQuery(t *testing.T) {
	log, logs := observedLogger()
	g := NewGormLogger(log, "warn", time.Millisecond)

	g.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return `SELECT 1`, 1
	}, nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Slow SQL statement", logs.All()[0].Message)
}

func TestGormLogger_LevelsAndLogMode(t *testing.T) {
	log, logs := observedLogger()
	g := NewGormLogger(log, "error", 0)

	g.Warn(context.Background(), "ignored %d", 1)
	g.Info(context.Background(), "ignored")
	assert.Equal(t, 0, logs.Len())

	verbose := g.LogMode(gormlogger.Info)
	verbose.Info(context.Background(), "migrated %s", "colleges")
	verbose.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, "migrated colleges", logs.All()[0].Message)

	silent := NewGormLogger(log, "silent", 0)
	silent.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, errors.New("boom"))
	assert.Equal(t, 2, logs.Len())
}

// ==========================
// Redis
// ==========================

func TestNewRedis(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))
	assert.NotNil(t, client.GetClient())

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}

// ==========================
// Elasticsearch
// ==========================

func TestElasticsearch_Ping(t *testing.T) {
	status := http.StatusOK
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		h := http.Header{}
		h.Set("X-Elastic-Product", "Elasticsearch")
		h.Set("Content-Type", "application/json")
		return &http.Response{
			StatusCode: status,
			Header:     h,
			Body:       io.NopCloser(strings.NewReader(`{}`)),
			Request:    r,
		}, nil
	})

	client, err := NewElasticsearchWithTransport(config.ElasticsearchConfig{URL: "http://es.local:9200"}, transport)
	require.NoError(t, err)
	assert.NoError(t, client.Ping())

	status = http.StatusServiceUnavailable
	assert.Error(t, client.Ping())
}

func TestNewElasticsearch_UsesAddresses(t *testing.T) {
	client, err := NewElasticsearch(config.ElasticsearchConfig{
		Addresses: []string{"http://es-a:9200", "http://es-b:9200"},
		Timeout:   2000,
	}, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.NotNil(t, client.Client)
}

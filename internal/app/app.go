// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"time"

	"placement-tracker/internal/cache"
	"placement-tracker/internal/common/config"
	"placement-tracker/internal/common/database"
	"placement-tracker/internal/common/errors"
	"placement-tracker/internal/common/logger"
	"placement-tracker/internal/common/observability"
	"placement-tracker/internal/search"
	"placement-tracker/internal/store"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the connections shared by the command line tools.
type App struct {
	Config *config.Config
	ZapLog *zap.Logger
	Log    logger.Logger
	Obs    *observability.Observability

	Postgres *database.PostgresClient
	DB       *gorm.DB
	Store    *store.Store

	Redis         *database.RedisClient
	Elasticsearch *database.ElasticsearchClient
}

// Options selects the optional backends a tool needs.
type Options struct {
	Redis         bool
	Elasticsearch bool
}

// retryWithBackoff attempts to execute a function with exponential backoff.
// Errors whose code is not retryable (including plain errors, such as a bad
// configuration) are returned after the first attempt.
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}
		if !errors.IsRetryableErrorCode(errors.CodeOf(err)) {
			return fmt.Errorf("%s failed: %w", operationName, err)
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// Open connects to PostgreSQL, plus Redis and Elasticsearch when both the
// options and the configuration enable them. Redis and Elasticsearch failures
// are logged and leave the corresponding field nil.
func Open(ctx context.Context, cfg *config.Config, name string, opts Options) (*App, error) {
	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output).
		With(zap.String("tool", name))
	log := logger.NewZapAdapter(zapLog)

	a := &App{
		Config: cfg,
		ZapLog: zapLog,
		Log:    log,
		Obs:    observability.New(cfg.Observability, log),
	}

	err := retryWithBackoff(func() error {
		var err error
		a.Postgres, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		if err := a.Postgres.Ping(ctx); err != nil {
			a.Postgres.Close()
			a.Postgres = nil
			return errors.NewDatabaseConnectionFailedError(err)
		}
		return nil
	}, 5, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		a.Close()
		return nil, err
	}
	zapLog.Info("PostgreSQL connected successfully")

	a.DB, err = database.OpenGorm(a.Postgres.GetDB(), log, cfg.Logging.SQLLevel)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store.New(store.Config{
		QueryTimeout: config.GetDuration(cfg.Database.Postgres.QueryTimeout),
	}, a.DB, log, a.Obs)

	if opts.Redis && cfg.Database.Redis.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			a.Redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			if err := a.Redis.Ping(ctx); err != nil {
				a.Redis.Close()
				a.Redis = nil
				return errors.NewCacheUnavailableError(err)
			}
			return nil
		}, 3, time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Warn("Continuing without score type cache", zap.Error(err))
		} else {
			zapLog.Info("Redis connected successfully")
		}
	}

	if opts.Elasticsearch && cfg.Database.Elasticsearch.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			a.Elasticsearch, err = database.NewElasticsearch(cfg.Database.Elasticsearch, log)
			if err != nil {
				return err
			}
			if err := a.Elasticsearch.Ping(); err != nil {
				return errors.NewElasticsearchConnectionFailedError(err)
			}
			return nil
		}, 3, time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Warn("Continuing without search index", zap.Error(err))
			a.Elasticsearch = nil
		} else {
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	return a, nil
}

// ScoreTypes returns a cache over the store. Without Redis it reads straight
// through to the database.
func (a *App) ScoreTypes() *cache.ScoreTypeCache {
	var client *redis.Client
	if a.Redis != nil {
		client = a.Redis.GetClient()
	}
	return cache.NewScoreTypeCache(client, a.Store, a.Config.Cache, a.Log)
}

// StudentIndex returns nil when Elasticsearch is not connected.
func (a *App) StudentIndex() *search.StudentIndex {
	if a.Elasticsearch == nil {
		return nil
	}
	return search.NewStudentIndex(a.Elasticsearch.Client, a.Config.Search, a.Log)
}

func (a *App) Close() {
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.Postgres != nil {
		a.Postgres.Close()
	}
	if a.Obs != nil {
		a.Obs.Shutdown()
	}
	if a.ZapLog != nil {
		_ = a.ZapLog.Sync()
	}
}

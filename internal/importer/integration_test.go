package importer

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"placement-tracker/internal/cache"
	"placement-tracker/internal/common/config"
	"placement-tracker/internal/common/database"
	"placement-tracker/internal/common/logger"
	"placement-tracker/internal/models"
	"placement-tracker/internal/schema"
	"placement-tracker/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImport_LivePostgres(t *testing.T) {
	dsn := os.Getenv("PLACEMENT_TEST_DSN")
	if dsn == "" {
		t.Skip("PLACEMENT_TEST_DSN not set, skipping live PostgreSQL test")
	}

	client, err := database.NewPostgresFromDSN(dsn, config.PostgresConfig{MaxConnections: 4, MaxIdle: 2})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log := logger.NewTestLogger(t)
	gdb, err := database.OpenGorm(client.DB, log, "warn")
	require.NoError(t, err)

	all := models.Models()
	for i := len(all) - 1; i >= 0; i-- {
		require.NoError(t, gdb.Migrator().DropTable(all[i]))
	}
	m := schema.NewMigrator(gdb, log)
	require.NoError(t, m.Migrate(ctx))
	_, err = m.SeedScoreTypes(ctx, schema.DefaultScoreTypes)
	require.NoError(t, err)

	st := store.New(store.Config{QueryTimeout: 10 * time.Second}, gdb, log, nil)
	scoreTypes := cache.NewScoreTypeCache(nil, st, config.CacheConfig{}, log)

	first, err := New(st, scoreTypes, nil, config.ImportConfig{}, log).Import(ctx, strings.NewReader(shortlistCSV))
	require.NoError(t, err)
	assert.Equal(t, 0, first.Failed, "%v", first.Errors)
	assert.Equal(t, 3, first.ScoresCreated, "coding, dsa and verbal are all seeded")

	second, err := New(st, scoreTypes, nil, config.ImportConfig{}, log).Import(ctx, strings.NewReader(shortlistCSV))
	require.NoError(t, err)
	assert.Equal(t, 0, second.Failed, "%v", second.Errors)
	assert.Equal(t, 0, second.StudentsCreated)
	assert.Equal(t, 0, second.ScoresCreated)
	assert.Equal(t, 0, second.InterviewsCreated)

	var count int64
	require.NoError(t, gdb.Model(&models.AssessmentScore{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)
	require.NoError(t, gdb.Model(&models.Student{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

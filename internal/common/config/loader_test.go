// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  postgres:
    host: localhost
    database: placement
    user: tracker
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "placement-tracker", cfg.App.Name)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, 25, cfg.Database.Postgres.MaxConnections)
	assert.Equal(t, 5, cfg.Database.Postgres.MaxIdle)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "students", cfg.Search.StudentIndex)
	assert.Equal(t, "score_type:", cfg.Cache.KeyPrefix)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "placement-tracker", cfg.Observability.ServiceName)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("PLACEMENT_DB_PASSWORD_TEST", "s3cret")
	path := writeConfig(t, `
database:
  postgres:
    host: db.internal
    port: 6543
    database: placement
    user: tracker
    password: ${PLACEMENT_DB_PASSWORD_TEST}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
	assert.Equal(t,
		"host=db.internal port=6543 user=tracker password=s3cret dbname=placement sslmode=disable",
		cfg.Database.Postgres.GetDSN())
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "missing host",
			body:    "database:\n  postgres:\n    database: placement\n    user: tracker\n",
			wantErr: "database.postgres.host is required",
		},
		{
			name:    "missing database",
			body:    "database:\n  postgres:\n    host: localhost\n    user: tracker\n",
			wantErr: "database.postgres.database is required",
		},
		{
			name: "redis enabled without address",
			body: `
database:
  postgres:
    host: localhost
    database: placement
    user: tracker
  redis:
    enabled: true
`,
			wantErr: "database.redis.address is required",
		},
		{
			name: "elasticsearch enabled without address",
			body: `
database:
  postgres:
    host: localhost
    database: placement
    user: tracker
  elasticsearch:
    enabled: true
`,
			wantErr: "database.elasticsearch.addresses or url is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_HOST", "")
			t.Setenv("DB_NAME", "")
			t.Setenv("DB_USER", "")
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestElasticsearchConfig_GetURL(t *testing.T) {
	assert.Equal(t, "http://es:9200", ElasticsearchConfig{URL: "http://es:9200"}.GetURL())
	assert.Equal(t, "http://a:9200", ElasticsearchConfig{Addresses: []string{"http://a:9200", "http://b:9200"}}.GetURL())
	assert.Equal(t, "", ElasticsearchConfig{}.GetURL())
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}

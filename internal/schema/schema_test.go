package schema

import (
	"context"
	stderrors "errors"
	"regexp"
	"testing"

	"placement-tracker/internal/common/database"
	"placement-tracker/internal/common/errors"
	"placement-tracker/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := database.OpenGorm(db, logger.NewNoOpLogger(), "silent")
	require.NoError(t, err)
	return gdb, mock
}

// ==========================
// Describe
// ==========================

func TestDescribe_TableLayout(t *testing.T) {
	reg, err := Describe()
	require.NoError(t, err)
	assert.Empty(t, reg.Validate())
	assert.Equal(t, RegistryVersion, reg.Version)

	var names []string
	for _, tbl := range reg.Tables {
		names = append(names, tbl.Name)
	}
	assert.Equal(t, []string{"colleges", "students", "score_types", "assessments", "assessment_scores", "interviews"}, names)

	colleges := reg.Table("colleges")
	require.NotNil(t, colleges)
	assert.Equal(t, []string{"college_id"}, colleges.PrimaryKey)
	unique := colleges.Index("idx_colleges_name_degree_branch")
	require.NotNil(t, unique)
	assert.True(t, unique.Unique)
	assert.Equal(t, []string{"name", "degree", "branch"}, unique.Columns)
	assert.Equal(t, "varchar(255)", colleges.Column("name").Type)
	assert.Equal(t, "timestamptz", colleges.Column("created_at").Type)
}

func TestDescribe_ForeignKeys(t *testing.T) {
	reg, err := Describe()
	require.NoError(t, err)

	tests := []struct {
		table    string
		parent   string
		column   string
		onDelete string
	}{
		{"students", "colleges", "college_id", "SET NULL"},
		{"assessments", "students", "student_id", "CASCADE"},
		{"assessment_scores", "assessments", "assessment_id", "CASCADE"},
		{"assessment_scores", "score_types", "score_type_id", "RESTRICT"},
		{"interviews", "students", "student_id", "CASCADE"},
	}

	for _, tt := range tests {
		t.Run(tt.table+"->"+tt.parent, func(t *testing.T) {
			fk := reg.Table(tt.table).ForeignKeyTo(tt.parent)
			require.NotNil(t, fk)
			assert.Equal(t, []string{tt.column}, fk.Columns)
			assert.Equal(t, tt.onDelete, fk.OnDelete)
		})
	}

	assert.Empty(t, reg.Table("colleges").ForeignKeys)
	assert.Empty(t, reg.Table("score_types").ForeignKeys)
}

func TestDescribe_Nullability(t *testing.T) {
	reg, err := Describe()
	require.NoError(t, err)

	students := reg.Table("students")
	assert.False(t, students.Column("user_id").Nullable)
	assert.False(t, students.Column("full_name").Nullable)
	assert.True(t, students.Column("email").Nullable)
	assert.True(t, students.Column("college_id").Nullable)
	assert.Equal(t, "numeric(4,2)", students.Column("cgpa").Type)

	scores := reg.Table("assessment_scores")
	assert.False(t, scores.Column("score").Nullable)
	assert.True(t, scores.Column("duration").Nullable)
	assert.Nil(t, reg.Table("assessments").Column("scores"))
}

// ==========================
// Migrate
// ==========================

func TestMigrate_FailureIsTyped(t *testing.T) {
	gdb, mock := newMockDB(t)
	mock.ExpectQuery(".+").WillReturnError(stderrors.New("connection refused"))

	err := NewMigrator(gdb, logger.NewTestLogger(t)).Migrate(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeMigrationFailed, errors.CodeOf(err))
}

// ==========================
// SeedScoreTypes
// ==========================

func TestSeedScoreTypes_InsertsOnlyMissingKeys(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "score_types" WHERE key = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"score_type_id", "key", "display_name"}).
			AddRow(uuid.New().String(), "coding", "Coding"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "score_types" WHERE key = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"score_type_id"}))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "score_types"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := NewMigrator(gdb, logger.NewTestLogger(t)).SeedScoreTypes(context.Background(), DefaultScoreTypes[:2])
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedScoreTypes_SelectError(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "score_types"`)).
		WillReturnError(stderrors.New("boom"))

	created, err := NewMigrator(gdb, logger.NewTestLogger(t)).SeedScoreTypes(context.Background(), DefaultScoreTypes)
	require.Error(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, errors.ErrCodeQueryExecutionFailed, errors.CodeOf(err))
}

func TestDefaultScoreTypes(t *testing.T) {
	var keys []string
	for _, s := range DefaultScoreTypes {
		keys = append(keys, s.Key)
		assert.LessOrEqual(t, len(s.Key), 50)
		assert.LessOrEqual(t, len(s.DisplayName), 100)
	}
	assert.Equal(t, []string{"coding", "dsa", "cs_fund", "quant", "verbal", "logical"}, keys)
}

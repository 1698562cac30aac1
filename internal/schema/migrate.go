// internal/schema/migrate.go
package schema

import (
	"context"
	stderrors "errors"
	"fmt"

	"placement-tracker/internal/common/errors"
	"placement-tracker/internal/common/logger"
	"placement-tracker/internal/models"

	"gorm.io/gorm"
	gormschema "gorm.io/gorm/schema"
)

// ScoreTypeSeed is one default row of the score_types lookup table.
type ScoreTypeSeed struct {
	Key         string
	DisplayName string
	Description string
}

// DefaultScoreTypes are the score columns carried by the candidate CSV export.
var DefaultScoreTypes = []ScoreTypeSeed{
	{Key: "coding", DisplayName: "Coding", Description: "Hands-on coding problems"},
	{Key: "dsa", DisplayName: "Data Structures & Algorithms", Description: "Data structures and algorithms section"},
	{Key: "cs_fund", DisplayName: "CS Fundamentals", Description: "Operating systems, DBMS, networks and OOP"},
	{Key: "quant", DisplayName: "Quantitative Aptitude", Description: "Quantitative aptitude section"},
	{Key: "verbal", DisplayName: "Verbal Ability", Description: "Verbal ability section"},
	{Key: "logical", DisplayName: "Logical Reasoning", Description: "Logical reasoning section"},
}

type Migrator struct {
	db     *gorm.DB
	logger logger.Logger
}

func NewMigrator(db *gorm.DB, log logger.Logger) *Migrator {
	return &Migrator{db: db, logger: log}
}

// Migrate creates or updates every table in foreign key dependency order.
func (m *Migrator) Migrate(ctx context.Context) error {
	for _, model := range models.Models() {
		table := tableName(model)
		m.logger.Info("Migrating table", map[string]interface{}{"table": table})

		if err := m.db.WithContext(ctx).AutoMigrate(model); err != nil {
			m.logger.Error("Migration failed", map[string]interface{}{
				"table": table,
				"error": err,
			})
			return errors.NewMigrationFailedError(table, err)
		}
	}

	m.logger.Info("Schema is up to date", map[string]interface{}{"tables": len(models.Models())})
	return nil
}

// SeedScoreTypes inserts each default score type whose key is missing and
// returns how many rows were created. Existing rows are left untouched.
func (m *Migrator) SeedScoreTypes(ctx context.Context, seeds []ScoreTypeSeed) (int, error) {
	created := 0
	for _, seed := range seeds {
		var existing models.ScoreType
		err := m.db.WithContext(ctx).Where("key = ?", seed.Key).Take(&existing).Error
		if err == nil {
			continue
		}
		if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return created, errors.FromPostgres(errors.OpSelect, "score_types", seed.Key, err)
		}

		st := models.ScoreType{Key: seed.Key, DisplayName: seed.DisplayName}
		if seed.Description != "" {
			desc := seed.Description
			st.Description = &desc
		}
		if err := m.db.WithContext(ctx).Create(&st).Error; err != nil {
			return created, errors.FromPostgres(errors.OpInsert, "score_types", seed.Key, err)
		}
		created++
		m.logger.Debug("Seeded score type", map[string]interface{}{"key": seed.Key})
	}

	m.logger.Info("Score types seeded", map[string]interface{}{
		"created":  created,
		"declared": len(seeds),
	})
	return created, nil
}

func tableName(model interface{}) string {
	if t, ok := model.(gormschema.Tabler); ok {
		return t.TableName()
	}
	return fmt.Sprintf("%T", model)
}

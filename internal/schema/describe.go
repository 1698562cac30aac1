// internal/schema/describe.go
package schema

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"placement-tracker/internal/models"
	"placement-tracker/pkg/registry"

	"gorm.io/driver/postgres"
	gormschema "gorm.io/gorm/schema"
)

// RegistryVersion is bumped whenever a column, key or index changes.
const RegistryVersion = "1.1.0"

// Describe renders the persisted table layout declared by the models.
func Describe() (*registry.TableRegistry, error) {
	cache := &sync.Map{}
	dialector := postgres.Dialector{Config: &postgres.Config{}}

	reg := &registry.TableRegistry{
		Version:     RegistryVersion,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
	}

	schemas := make([]*gormschema.Schema, 0, len(models.Models()))
	for _, model := range models.Models() {
		s, err := gormschema.Parse(model, cache, gormschema.NamingStrategy{})
		if err != nil {
			return nil, fmt.Errorf("parse %T: %w", model, err)
		}
		schemas = append(schemas, s)
	}

	foreignKeys := collectForeignKeys(schemas)
	for _, s := range schemas {
		t := describeTable(s, dialector)
		t.ForeignKeys = foreignKeys[s.Table]
		reg.Tables = append(reg.Tables, t)
	}
	return reg, nil
}

// collectForeignKeys groups every declared constraint under the table that
// holds the key columns. A has-many relation declares its key on the parent
// model, so the owning table is not always the one being parsed.
func collectForeignKeys(schemas []*gormschema.Schema) map[string][]registry.ForeignKey {
	byTable := make(map[string][]registry.ForeignKey)
	seen := make(map[string]bool)

	for _, s := range schemas {
		relNames := make([]string, 0, len(s.Relationships.Relations))
		for name := range s.Relationships.Relations {
			relNames = append(relNames, name)
		}
		sort.Strings(relNames)

		for _, name := range relNames {
			c := s.Relationships.Relations[name].ParseConstraint()
			if c == nil || c.Schema == nil || c.ReferenceSchema == nil {
				continue
			}
			key := c.Schema.Table + "." + c.Name
			if seen[key] {
				continue
			}
			seen[key] = true
			byTable[c.Schema.Table] = append(byTable[c.Schema.Table], registry.ForeignKey{
				Name:             c.Name,
				Columns:          fieldNames(c.ForeignKeys),
				ReferenceTable:   c.ReferenceSchema.Table,
				ReferenceColumns: fieldNames(c.References),
				OnDelete:         c.OnDelete,
			})
		}
	}

	for table := range byTable {
		fks := byTable[table]
		sort.Slice(fks, func(i, j int) bool { return fks[i].Name < fks[j].Name })
	}
	return byTable
}

func describeTable(s *gormschema.Schema, dialector postgres.Dialector) registry.Table {
	t := registry.Table{
		Name:       s.Table,
		Entity:     s.Name,
		PrimaryKey: append([]string(nil), s.PrimaryFieldDBNames...),
	}

	for _, f := range s.Fields {
		if f.DBName == "" || f.IgnoreMigration {
			continue
		}
		t.Columns = append(t.Columns, registry.Column{
			Name:     f.DBName,
			Type:     dialector.DataTypeOf(f),
			Nullable: !f.NotNull && !f.PrimaryKey,
		})
	}

	for _, idx := range s.ParseIndexes() {
		cols := make([]string, 0, len(idx.Fields))
		for _, opt := range idx.Fields {
			cols = append(cols, opt.DBName)
		}
		t.Indexes = append(t.Indexes, registry.Index{
			Name:    idx.Name,
			Columns: cols,
			Unique:  idx.Class == "UNIQUE",
		})
	}
	sort.Slice(t.Indexes, func(i, j int) bool { return t.Indexes[i].Name < t.Indexes[j].Name })

	return t
}

func fieldNames(fields []*gormschema.Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.DBName
	}
	return names
}

// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

func LoadRegistry(path string) (*TableRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg TableRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

func SaveRegistry(path string, reg *TableRegistry) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Table returns the named table, or nil.
func (r *TableRegistry) Table(name string) *Table {
	for i := range r.Tables {
		if r.Tables[i].Name == name {
			return &r.Tables[i]
		}
	}
	return nil
}

func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

func (t *Table) Index(name string) *Index {
	for i := range t.Indexes {
		if t.Indexes[i].Name == name {
			return &t.Indexes[i]
		}
	}
	return nil
}

// ForeignKeyTo returns the first foreign key pointing at table.
func (t *Table) ForeignKeyTo(table string) *ForeignKey {
	for i := range t.ForeignKeys {
		if t.ForeignKeys[i].ReferenceTable == table {
			return &t.ForeignKeys[i]
		}
	}
	return nil
}

// Validate checks that every table has a primary key and that every column
// named by a key or index exists.
func (r *TableRegistry) Validate() []string {
	var problems []string
	seen := map[string]bool{}

	for _, t := range r.Tables {
		if seen[t.Name] {
			problems = append(problems, fmt.Sprintf("%s: duplicate table", t.Name))
		}
		seen[t.Name] = true

		if len(t.PrimaryKey) == 0 {
			problems = append(problems, fmt.Sprintf("%s: no primary key", t.Name))
		}
		for _, col := range t.PrimaryKey {
			if t.Column(col) == nil {
				problems = append(problems, fmt.Sprintf("%s: primary key column %s not declared", t.Name, col))
			}
		}
		for _, idx := range t.Indexes {
			for _, col := range idx.Columns {
				if t.Column(col) == nil {
					problems = append(problems, fmt.Sprintf("%s: index %s uses unknown column %s", t.Name, idx.Name, col))
				}
			}
		}
	}

	for _, t := range r.Tables {
		for _, fk := range t.ForeignKeys {
			for _, col := range fk.Columns {
				if t.Column(col) == nil {
					problems = append(problems, fmt.Sprintf("%s: foreign key %s uses unknown column %s", t.Name, fk.Name, col))
				}
			}
			ref := r.Table(fk.ReferenceTable)
			if ref == nil {
				problems = append(problems, fmt.Sprintf("%s: foreign key %s references unknown table %s", t.Name, fk.Name, fk.ReferenceTable))
				continue
			}
			for _, col := range fk.ReferenceColumns {
				if ref.Column(col) == nil {
					problems = append(problems, fmt.Sprintf("%s: foreign key %s references unknown column %s.%s", t.Name, fk.Name, ref.Name, col))
				}
			}
		}
	}

	return problems
}

// Diff lists the differences between a saved registry and the current one.
// Version and LastUpdated are ignored.
func Diff(saved, current *TableRegistry) []string {
	var out []string
	for _, cur := range current.Tables {
		old := saved.Table(cur.Name)
		if old == nil {
			out = append(out, fmt.Sprintf("+ table %s", cur.Name))
			continue
		}
		out = append(out, diffTable(old, &cur)...)
	}
	for _, old := range saved.Tables {
		if current.Table(old.Name) == nil {
			out = append(out, fmt.Sprintf("- table %s", old.Name))
		}
	}
	return out
}

func diffTable(old, cur *Table) []string {
	var out []string
	for _, c := range cur.Columns {
		prev := old.Column(c.Name)
		switch {
		case prev == nil:
			out = append(out, fmt.Sprintf("+ column %s.%s %s", cur.Name, c.Name, c.Type))
		case *prev != c:
			out = append(out, fmt.Sprintf("~ column %s.%s %s -> %s", cur.Name, c.Name, describeColumn(*prev), describeColumn(c)))
		}
	}
	for _, c := range old.Columns {
		if cur.Column(c.Name) == nil {
			out = append(out, fmt.Sprintf("- column %s.%s", cur.Name, c.Name))
		}
	}

	for _, idx := range cur.Indexes {
		prev := old.Index(idx.Name)
		switch {
		case prev == nil:
			out = append(out, fmt.Sprintf("+ index %s", idx.Name))
		case prev.Unique != idx.Unique || strings.Join(prev.Columns, ",") != strings.Join(idx.Columns, ","):
			out = append(out, fmt.Sprintf("~ index %s", idx.Name))
		}
	}
	for _, idx := range old.Indexes {
		if cur.Index(idx.Name) == nil {
			out = append(out, fmt.Sprintf("- index %s", idx.Name))
		}
	}

	oldFKs := map[string]ForeignKey{}
	for _, fk := range old.ForeignKeys {
		oldFKs[fk.Name] = fk
	}
	for _, fk := range cur.ForeignKeys {
		prev, ok := oldFKs[fk.Name]
		switch {
		case !ok:
			out = append(out, fmt.Sprintf("+ foreign key %s", fk.Name))
		case prev.OnDelete != fk.OnDelete || prev.ReferenceTable != fk.ReferenceTable:
			out = append(out, fmt.Sprintf("~ foreign key %s on delete %s -> %s", fk.Name, prev.OnDelete, fk.OnDelete))
		}
		delete(oldFKs, fk.Name)
	}
	for name := range oldFKs {
		out = append(out, fmt.Sprintf("- foreign key %s", name))
	}
	return out
}

func describeColumn(c Column) string {
	if c.Nullable {
		return c.Type + " null"
	}
	return c.Type + " not null"
}

// pkg/registry/schema.go
package registry

// TableRegistry describes the persisted table layout.
type TableRegistry struct {
	Version     string  `json:"version"`
	LastUpdated string  `json:"lastUpdated"`
	Tables      []Table `json:"tables"`
}

type Table struct {
	Name        string       `json:"name"`
	Entity      string       `json:"entity"`
	PrimaryKey  []string     `json:"primaryKey"`
	Columns     []Column     `json:"columns"`
	ForeignKeys []ForeignKey `json:"foreignKeys,omitempty"`
	Indexes     []Index      `json:"indexes,omitempty"`
}

type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

type ForeignKey struct {
	Name             string   `json:"name"`
	Columns          []string `json:"columns"`
	ReferenceTable   string   `json:"referenceTable"`
	ReferenceColumns []string `json:"referenceColumns"`
	OnDelete         string   `json:"onDelete,omitempty"`
}

type Index struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique"`
}

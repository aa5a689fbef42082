package core

// AdapterConfig holds configuration for connecting to a database.
type AdapterConfig struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Schema   string
	Options  map[string]string
	Params   map[string]any
}

// Column represents a column in a database table.
type Column struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type,omitempty"`
	Nullable   bool   `yaml:"nullable,omitempty"`
	PrimaryKey bool   `yaml:"primary_key,omitempty"`
	Position   int    `yaml:"-"`
}

// TableMetadata holds metadata about a database table.
type TableMetadata struct {
	Schema  string   `yaml:"schema,omitempty"`
	Name    string   `yaml:"name"`
	Columns []Column `yaml:"columns"`
}

// ColumnNames returns the column names in declaration order.
func (m *TableMetadata) ColumnNames() []string {
	names := make([]string, 0, len(m.Columns))
	for _, c := range m.Columns {
		names = append(names, c.Name)
	}
	return names
}

package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/leapstack-labs/schemafix/pkg/core"
	"gopkg.in/yaml.v3"
)

// fileSchema is the on-disk catalog layout.
//
//	tables:
//	  - name: users
//	    columns: [id, lastname]
//	  - name: orders
//	    schema: sales
//	    columns:
//	      - id
//	      - {name: total, type: numeric}
type fileSchema struct {
	Tables []fileTable `yaml:"tables"`
}

type fileTable struct {
	Name    string       `yaml:"name"`
	Schema  string       `yaml:"schema,omitempty"`
	Columns []fileColumn `yaml:"columns"`
}

type fileColumn struct {
	core.Column
}

// UnmarshalYAML accepts either a bare column name or a column mapping.
func (c *fileColumn) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		c.Name = node.Value
		return nil
	}
	return node.Decode(&c.Column)
}

// LoadError reports a malformed catalog file.
type LoadError struct {
	File    string
	Line    int
	Message string
}

func (e *LoadError) Error() string {
	if e.File != "" {
		if e.Line > 0 {
			return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
		}
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// LoadFile reads a YAML catalog file.
func LoadFile(path string, opts ...Option) (*Catalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided by design
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	c, err := Load(bytes.NewReader(data), opts...)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
		}
		return nil, err
	}
	return c, nil
}

// Load reads a YAML catalog from r.
func Load(r io.Reader, opts ...Option) (*Catalog, error) {
	var root yaml.Node
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Message: "catalog is empty"}
		}
		return nil, &LoadError{Message: err.Error()}
	}

	var fs fileSchema
	if err := root.Decode(&fs); err != nil {
		return nil, &LoadError{Message: err.Error()}
	}

	tables := make([]core.TableMetadata, 0, len(fs.Tables))
	for i, ft := range fs.Tables {
		if ft.Name == "" {
			return nil, &LoadError{Line: tableLine(&root, i), Message: fmt.Sprintf("table #%d has no name", i+1)}
		}
		md := core.TableMetadata{Schema: ft.Schema, Name: ft.Name}
		for j, fc := range ft.Columns {
			col := fc.Column
			col.Position = j + 1
			md.Columns = append(md.Columns, col)
		}
		tables = append(tables, md)
	}

	return New(tables, opts...), nil
}

// tableLine finds the source line of the i-th table entry, or 0.
func tableLine(root *yaml.Node, i int) int {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return 0
	}
	m := root.Content[0]
	for k := 0; k+1 < len(m.Content); k += 2 {
		if m.Content[k].Value == "tables" {
			seq := m.Content[k+1]
			if i < len(seq.Content) {
				return seq.Content[i].Line
			}
		}
	}
	return 0
}

// Write serializes the catalog in the LoadFile layout.
func Write(w io.Writer, c *Catalog) error {
	fs := fileSchema{}
	for _, md := range c.Metadata() {
		ft := fileTable{Name: md.Name, Schema: md.Schema}
		for _, col := range md.Columns {
			ft.Columns = append(ft.Columns, fileColumn{Column: col})
		}
		fs.Tables = append(fs.Tables, ft)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fs); err != nil {
		return err
	}
	return enc.Close()
}

// MarshalYAML writes untyped columns as bare names.
func (c fileColumn) MarshalYAML() (any, error) {
	if c.Type == "" && !c.Nullable && !c.PrimaryKey {
		return c.Name, nil
	}
	return c.Column, nil
}

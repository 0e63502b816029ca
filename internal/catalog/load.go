package catalog

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/rdfsql/internal/sqlerr"
)

// Definition is the file form of a catalog.
type Definition struct {
	Catalog string      `yaml:"catalog"`
	Schemas []SchemaDef `yaml:"schemas"`
}

// SchemaDef declares one schema.
type SchemaDef struct {
	Name   string     `yaml:"name"`
	Tables []TableDef `yaml:"tables"`
}

// TableDef declares one table.
type TableDef struct {
	Name     string      `yaml:"name"`
	URI      string      `yaml:"uri"`
	Template string      `yaml:"template,omitempty"`
	Columns  []ColumnDef `yaml:"columns"`

	pos token.Pos
}

// ColumnDef declares one column.
type ColumnDef struct {
	Name     string `yaml:"name"`
	URI      string `yaml:"uri"`
	Template string `yaml:"template,omitempty"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable"`

	pos token.Pos
}

// LoadError is a catalog definition error with a source position when the
// format provides one.
type LoadError struct {
	Path    string
	Pos     token.Pos
	Message string
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	if e.Path != "" {
		return e.Path + ": " + e.Message
	}
	return e.Message
}

// Unwrap exposes the INVALID_CATALOG classification.
func (e *LoadError) Unwrap() error {
	return sqlerr.New(sqlerr.CodeInvalidCatalog, "", "%s", e.Message)
}

// LoadFile reads a catalog from a .cue, .yaml or .yml file, or from a
// directory of CUE files.
func LoadFile(path string) (*Catalog, error) {
	def, err := ReadDefinition(path)
	if err != nil {
		return nil, err
	}
	return def.Build()
}

// ReadDefinition reads a catalog definition without building it.
func ReadDefinition(path string) (*Definition, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: err.Error()}
	}
	if info.IsDir() {
		return loadCUEDir(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: err.Error()}
	}
	switch filepath.Ext(path) {
	case ".cue":
		return ParseCUE(path, data)
	case ".yaml", ".yml":
		return ParseYAML(path, data)
	default:
		return nil, &LoadError{Path: path, Message: "unsupported catalog format (want .cue, .yaml or .yml)"}
	}
}

// ParseYAML decodes a YAML catalog definition. Unknown fields are errors.
func ParseYAML(path string, data []byte) (*Definition, error) {
	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, &LoadError{Path: path, Message: err.Error()}
	}
	return &def, nil
}

// ParseCUE decodes a CUE catalog definition:
//
//	catalog: "demo"
//	schema: sales: table: foo: {
//	    uri: "http://example.org/Foo"
//	    column: IntCol: {uri: "http://example.org/int", type: "INTEGER"}
//	}
//
// Struct field order is catalog order.
func ParseCUE(path string, data []byte) (*Definition, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	return decodeCUE(path, v)
}

func loadCUEDir(dir string) (*Definition, error) {
	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Path: dir, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Path: dir, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}
	return decodeCUE(dir, ctx.BuildInstance(inst))
}

func decodeCUE(path string, v cue.Value) (*Definition, error) {
	if err := v.Err(); err != nil {
		return nil, cueError(path, err)
	}

	def := &Definition{}
	catVal := v.LookupPath(cue.ParsePath("catalog"))
	if !catVal.Exists() {
		return nil, &LoadError{Path: path, Pos: v.Pos(), Message: "catalog is required"}
	}
	var err error
	if def.Catalog, err = catVal.String(); err != nil {
		return nil, cueError(path, err)
	}

	schemas, err := fieldsOf(v, "schema")
	if err != nil {
		return nil, cueError(path, err)
	}
	for schemas != nil && schemas.Next() {
		sd := SchemaDef{Name: schemas.Label()}
		tables, err := fieldsOf(schemas.Value(), "table")
		if err != nil {
			return nil, cueError(path, err)
		}
		for tables != nil && tables.Next() {
			td, err := decodeCUETable(tables.Label(), tables.Value())
			if err != nil {
				return nil, cueError(path, err)
			}
			sd.Tables = append(sd.Tables, td)
		}
		def.Schemas = append(def.Schemas, sd)
	}
	return def, nil
}

func decodeCUETable(tableName string, v cue.Value) (TableDef, error) {
	td := TableDef{Name: tableName, pos: v.Pos()}
	var err error
	if td.URI, err = optionalString(v, "uri"); err != nil {
		return td, err
	}
	if td.Template, err = optionalString(v, "template"); err != nil {
		return td, err
	}
	cols, err := fieldsOf(v, "column")
	if err != nil {
		return td, err
	}
	for cols != nil && cols.Next() {
		cv := cols.Value()
		cd := ColumnDef{Name: cols.Label(), pos: cv.Pos()}
		if cd.URI, err = optionalString(cv, "uri"); err != nil {
			return td, err
		}
		if cd.Template, err = optionalString(cv, "template"); err != nil {
			return td, err
		}
		if cd.Type, err = optionalString(cv, "type"); err != nil {
			return td, err
		}
		if nv := cv.LookupPath(cue.ParsePath("nullable")); nv.Exists() {
			if cd.Nullable, err = nv.Bool(); err != nil {
				return td, err
			}
		}
		td.Columns = append(td.Columns, cd)
	}
	return td, nil
}

// fieldsOf returns an iterator over the struct at path, or nil when the
// path does not exist.
func fieldsOf(v cue.Value, path string) (*cue.Iterator, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return nil, nil
	}
	return fv.Fields()
}

func optionalString(v cue.Value, path string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return "", nil
	}
	return fv.String()
}

func cueError(path string, err error) *LoadError {
	le := &LoadError{Path: path, Message: errors.Details(err, nil)}
	if errs := errors.Errors(err); len(errs) > 0 {
		le.Pos = errs[0].Position()
		le.Message = errs[0].Error()
	}
	return le
}

// Build validates the definition and returns the in-memory catalog.
func (d *Definition) Build() (*Catalog, error) {
	if errs := d.Validate(); len(errs) > 0 {
		return nil, errs[0]
	}
	cat, err := New(d.Catalog)
	if err != nil {
		return nil, err
	}
	for _, sd := range d.Schemas {
		for _, td := range sd.Tables {
			t, err := cat.AddTable(sd.Name, td.Name, td.URI, td.Template)
			if err != nil {
				return nil, err
			}
			for _, cd := range td.Columns {
				typ := TypeVarchar
				if cd.Type != "" {
					if typ, err = ParseSQLType(cd.Type); err != nil {
						return nil, &LoadError{Pos: cd.pos, Message: err.Error()}
					}
				}
				if _, err := t.AddColumn(cd.Name, cd.URI, cd.Template, typ, cd.Nullable); err != nil {
					return nil, err
				}
			}
		}
	}
	return cat, nil
}

package catalog

import (
	"fmt"

	"cuelang.org/go/cue/token"

	"github.com/roach88/rdfsql/internal/name"
	"github.com/roach88/rdfsql/internal/queryir"
)

// Validate checks a definition before it is built. It reports every
// problem found rather than stopping at the first.
//
// Rules:
//  1. Catalog, schema, table and column names are valid identifiers
//  2. Table names are unique per schema, column names unique per table
//  3. Templates parse; table templates use {subject}, column templates use
//     {subject} and {object}
//  4. A template that uses {uri} has a non-empty URI
//  5. Column types are known SQL type names (empty means VARCHAR)
func (d *Definition) Validate() []error {
	var errs []error
	add := func(pos token.Pos, format string, args ...any) {
		errs = append(errs, &LoadError{Pos: pos, Message: fmt.Sprintf(format, args...)})
	}

	if d.Catalog == "" {
		add(token.NoPos, "catalog name is required")
	} else if _, err := name.NewCatalogName(d.Catalog); err != nil {
		add(token.NoPos, "%v", err)
	}

	tables := map[string]bool{}
	for _, sd := range d.Schemas {
		if _, err := name.NewSchemaName(d.Catalog, sd.Name); err != nil {
			add(token.NoPos, "%v", err)
			continue
		}
		for _, td := range sd.Tables {
			if td.Name == "" {
				add(td.pos, "schema %s: table name is required", sd.Name)
				continue
			}
			tn, err := name.NewTableName(d.Catalog, sd.Name, td.Name)
			if err != nil {
				add(td.pos, "%v", err)
				continue
			}
			if tables[tn.QualifiedName()] {
				add(td.pos, "duplicate table %s", tn)
			}
			tables[tn.QualifiedName()] = true
			validateTemplate(td.Template, queryir.DefaultTableTemplate, td.URI, false, func(msg string) {
				add(td.pos, "table %s: %s", tn, msg)
			})

			columns := map[string]bool{}
			for _, cd := range td.Columns {
				if cd.Name == "" {
					add(cd.pos, "table %s: column name is required", tn)
					continue
				}
				cn, err := name.NewColumnName(d.Catalog, sd.Name, td.Name, cd.Name)
				if err != nil {
					add(cd.pos, "%v", err)
					continue
				}
				if columns[cd.Name] {
					add(cd.pos, "duplicate column %s", cn)
				}
				columns[cd.Name] = true
				if cd.Type != "" {
					if _, err := ParseSQLType(cd.Type); err != nil {
						add(cd.pos, "column %s: %v", cn, err)
					}
				}
				validateTemplate(cd.Template, queryir.DefaultColumnTemplate, cd.URI, true, func(msg string) {
					add(cd.pos, "column %s: %s", cn, msg)
				})
			}
		}
	}
	return errs
}

func validateTemplate(text, fallback, uri string, needsObject bool, report func(string)) {
	if text == "" {
		text = fallback
	}
	tmpl, err := queryir.ParseTemplate(text)
	if err != nil {
		report(err.Error())
		return
	}
	if !tmpl.UsesSubject() {
		report("template does not use {subject}")
	}
	if needsObject && !tmpl.UsesObject() {
		report("template does not use {object}")
	}
	if tmpl.UsesURI() && uri == "" {
		report("template uses {uri} but no uri is declared")
	}
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/rdfsql/internal/catalog"
)

// CatalogResult is the JSON payload of the catalog command.
type CatalogResult struct {
	Catalog string         `json:"catalog"`
	Tables  []TableSummary `json:"tables"`
}

// TableSummary describes one catalog table.
type TableSummary struct {
	Name    string          `json:"name"`
	URI     string          `json:"uri"`
	Columns []ColumnSummary `json:"columns"`
}

// ColumnSummary describes one catalog column.
type ColumnSummary struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	URI      string `json:"uri"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog <file>",
		Short: "Validate a catalog definition and list its tables",
		Long: `Validate a CUE or YAML catalog definition, or a directory of CUE files.

Every problem in the definition is reported, not just the first.

Exit codes:
  0 - Catalog valid
  1 - Catalog invalid
  2 - Command error (file not found, unsupported format)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runCatalog(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	def, err := catalog.ReadDefinition(path)
	if err != nil {
		return commandError(formatter, ErrCodeCatalogLoad, "loading catalog", err)
	}

	if errs := def.Validate(); len(errs) > 0 {
		return outputCatalogErrors(formatter, errs)
	}
	cat, err := def.Build()
	if err != nil {
		return outputCatalogErrors(formatter, []error{err})
	}

	result := summarize(cat)
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s Catalog %s: %d table(s)\n\n", okMark, result.Catalog, len(result.Tables))
	for _, t := range result.Tables {
		fmt.Fprintf(w, "  %s %s\n", t.Name, dim("<"+t.URI+">"))
		for _, c := range t.Columns {
			null := ""
			if c.Nullable {
				null = " NULL"
			}
			fmt.Fprintf(w, "    %-24s %s%s\n", c.Name, c.Type, null)
			formatter.VerboseLog("      <%s>", c.URI)
		}
	}
	return nil
}

func summarize(cat *catalog.Catalog) CatalogResult {
	out := CatalogResult{Catalog: cat.Name(), Tables: []TableSummary{}}
	for _, t := range cat.Tables() {
		ts := TableSummary{Name: t.Name().QualifiedName(), URI: t.URI(), Columns: []ColumnSummary{}}
		for _, c := range t.Columns() {
			ts.Columns = append(ts.Columns, ColumnSummary{
				Name:     c.Name().Column(),
				Type:     c.Type().String(),
				Nullable: c.Nullable(),
				URI:      c.URI(),
			})
		}
		out.Tables = append(out.Tables, ts)
	}
	return out
}

func outputCatalogErrors(formatter *OutputFormatter, errs []error) error {
	messages := make([]string, len(errs))
	for i, err := range errs {
		messages[i] = err.Error()
	}

	if formatter.Format == "json" {
		_ = formatter.Error(ErrCodeInvalidCatalog, fmt.Sprintf("catalog has %d problem(s)", len(errs)), messages)
	} else {
		fmt.Fprintf(formatter.Writer, "%s Catalog invalid\n\n", failMark)
		for _, m := range messages {
			fmt.Fprintf(formatter.Writer, "  %s\n", m)
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("catalog has %d problem(s)", len(errs)))
}

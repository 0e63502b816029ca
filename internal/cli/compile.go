package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/rdfsql/internal/catalog"
	"github.com/roach88/rdfsql/internal/engine"
	"github.com/roach88/rdfsql/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Catalog       string // catalog definition (.cue, .yaml or CUE directory)
	DB            string // compilation log database; empty disables logging
	DefaultSchema string // schema tried first for unqualified tables
	Output        string // write the SPARQL text here instead of stdout
}

// CompileResult is the JSON payload of a successful compilation.
type CompileResult struct {
	ID      string   `json:"id"`
	Seq     int64    `json:"seq"`
	SQLHash string   `json:"sql_hash"`
	Columns []string `json:"columns"`
	SPARQL  string   `json:"sparql"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [sql]",
		Short: "Compile a SQL statement to SPARQL",
		Long: `Compile one SQL SELECT statement to SPARQL against a catalog.

The statement is read from the argument, or from stdin when the argument
is omitted or "-".

Exit codes:
  0 - Compiled
  1 - The statement was rejected
  2 - Command error (missing catalog, unreadable input, etc.)

Examples:
  rdfsql compile --catalog demo.cue "SELECT IntCol FROM foo"
  echo "SELECT * FROM foo" | rdfsql compile --catalog demo.yaml --db log.db
  rdfsql compile --catalog demo.cue --format json "SELECT MAX(IntCol) FROM foo"`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Catalog, "catalog", "c", "", "catalog definition file or CUE directory")
	cmd.Flags().StringVar(&opts.DB, "db", "", "record the compilation in this database")
	cmd.Flags().StringVar(&opts.DefaultSchema, "default-schema", "", "schema for unqualified table names")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the SPARQL to this file")

	return cmd
}

func runCompile(ctx context.Context, opts *CompileOptions, args []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	sql, err := readStatement(args, cmd.InOrStdin())
	if err != nil {
		return commandError(formatter, ErrCodeReadFailed, "reading statement", err)
	}

	if opts.Catalog == "" {
		return commandError(formatter, ErrCodeNoCatalog, "no catalog given (use --catalog or RDFSQL_CATALOG)", nil)
	}
	cat, err := catalog.LoadFile(opts.Catalog)
	if err != nil {
		return commandError(formatter, ErrCodeCatalogLoad, "loading catalog", err)
	}
	formatter.VerboseLog("Loaded catalog %s (%d table(s))", cat.Name(), len(cat.Tables()))

	engOpts := []engine.Option{
		engine.WithLogger(opts.newLogger(cmd.ErrOrStderr())),
		engine.WithDefaultSchema(opts.DefaultSchema),
	}
	var eng *engine.Engine
	if opts.DB != "" {
		st, err := store.Open(opts.DB)
		if err != nil {
			return commandError(formatter, ErrCodeStoreFailed, "opening database", err)
		}
		defer st.Close()
		if eng, err = engine.Open(ctx, cat, st, engOpts...); err != nil {
			return commandError(formatter, ErrCodeStoreFailed, "reading database", err)
		}
	} else {
		eng = engine.New(cat, engOpts...)
	}

	p, err := eng.Prepare(ctx, sql)
	if err != nil {
		code, message, details := compileErrorInfo(err)
		if code == ErrCodeGeneric {
			return commandError(formatter, ErrCodeStoreFailed, "recording compilation", err)
		}
		_ = formatter.Error(code, message, details)
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", code, message))
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(p.SPARQL), 0644); err != nil {
			return commandError(formatter, ErrCodeWriteFailed, "writing output file", err)
		}
	}

	if formatter.Format == "json" {
		return formatter.SuccessWithTrace(CompileResult{
			ID:      p.ID,
			Seq:     p.Seq,
			SQLHash: p.SQLHash,
			Columns: p.Columns,
			SPARQL:  p.SPARQL,
		}, p.ID)
	}

	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "%s Compiled %d column(s) to %s\n", okMark, len(p.Columns), opts.Output)
		return nil
	}
	formatter.VerboseLog("%s Compiled %d column(s): %s", okMark, len(p.Columns), strings.Join(p.Columns, ", "))
	fmt.Fprint(formatter.Writer, p.SPARQL)
	return nil
}

func readStatement(args []string, stdin io.Reader) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}
	sql := strings.TrimSpace(string(data))
	if sql == "" {
		return "", fmt.Errorf("empty statement on stdin")
	}
	return sql, nil
}

// commandError reports a failure of the command itself (exit code 2).
func commandError(formatter *OutputFormatter, code, message string, err error) error {
	text := message
	if err != nil {
		text = fmt.Sprintf("%s: %v", message, err)
	}
	_ = formatter.Error(code, text, nil)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), err)
}

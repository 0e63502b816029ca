package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/rdfsql/internal/engine"
	"github.com/roach88/rdfsql/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DB    string
	Limit int
	SQL   string // only show compilations of this statement
}

// HistoryEntry is one compilation in the JSON payload.
type HistoryEntry struct {
	ID       string   `json:"id"`
	Seq      int64    `json:"seq"`
	Status   string   `json:"status"`
	SQL      string   `json:"sql"`
	SQLHash  string   `json:"sql_hash"`
	Catalog  string   `json:"catalog"`
	Columns  []string `json:"columns,omitempty"`
	Error    string   `json:"error,omitempty"`
	Fragment string   `json:"fragment,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded compilations",
		Long: `Show the compilation log written by "rdfsql compile --db".

Entries are listed newest first. With --sql only compilations of that
statement are shown, oldest first; statements that differ only in
whitespace or a trailing semicolon count as the same statement.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "database path (required)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum entries to show (0 for all)")
	cmd.Flags().StringVar(&opts.SQL, "sql", "", "only show compilations of this statement")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)

	if opts.DB == "" {
		return commandError(formatter, ErrCodeNotFound, "--db is required", nil)
	}
	if _, err := os.Stat(opts.DB); errors.Is(err, os.ErrNotExist) {
		return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.DB), nil)
	}

	st, err := store.Open(opts.DB)
	if err != nil {
		return commandError(formatter, ErrCodeStoreFailed, "opening database", err)
	}
	defer st.Close()

	var log []store.Compilation
	if opts.SQL != "" {
		log, err = st.CompilationsByHash(ctx, engine.SQLHash(opts.SQL))
		if err == nil && opts.Limit > 0 && len(log) > opts.Limit {
			log = log[len(log)-opts.Limit:]
		}
	} else {
		log, err = st.ReadCompilations(ctx, opts.Limit)
	}
	if err != nil {
		return commandError(formatter, ErrCodeStoreFailed, "reading compilations", err)
	}

	entries := make([]HistoryEntry, len(log))
	for i, c := range log {
		entries[i] = HistoryEntry{
			ID:       c.ID,
			Seq:      c.Seq,
			Status:   string(c.Status),
			SQL:      c.SQL,
			SQLHash:  c.SQLHash,
			Catalog:  c.Catalog,
			Columns:  c.Columns,
			Fragment: c.ErrorFragment,
		}
		if c.Status == store.StatusError {
			entries[i].Error = c.ErrorCode + ": " + c.ErrorMessage
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(entries)
	}

	w := formatter.Writer
	if len(entries) == 0 {
		fmt.Fprintln(w, "No compilations recorded.")
		return nil
	}
	for _, e := range entries {
		mark := okMark
		if e.Status == string(store.StatusError) {
			mark = failMark
		}
		fmt.Fprintf(w, "%s %6d  %s  %s\n", mark, e.Seq, dim(e.ID), e.SQL)
		if e.Error != "" {
			fmt.Fprintf(w, "         %s\n", e.Error)
		}
		formatter.VerboseLog("         hash=%s catalog=%s", e.SQLHash, e.Catalog)
	}
	return nil
}

package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/rdfsql/internal/catalog"
	"github.com/roach88/rdfsql/internal/engine"
	"github.com/roach88/rdfsql/internal/sqlerr"
	"github.com/roach88/rdfsql/internal/store"
	"github.com/roach88/rdfsql/internal/testutil"
)

// Option configures a scenario run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger routes engine logs to l. Default: discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = l
	}
}

// Run compiles the scenario's statement and evaluates its expectations.
//
// Each run uses a fresh in-memory store and deterministic clock and ids.
// An error is returned only when the run itself cannot proceed (catalog
// or store failures); compilation outcomes are reported in the Result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := &runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(cfg)
	}

	cat, err := loadCatalog(scenario.Catalog)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	eng := engine.New(cat,
		engine.WithStore(st),
		engine.WithLogger(cfg.logger),
		engine.WithClock(testutil.NewDeterministicClock()),
		engine.WithIDGenerator(testutil.NewSequentialIDGenerator(scenario.Name)),
		engine.WithDefaultSchema(scenario.DefaultSchema),
	)

	ctx := context.Background()
	result := NewResult()
	prepared, err := eng.Prepare(ctx, scenario.SQL)
	switch {
	case err == nil:
		result.SPARQL = prepared.SPARQL
		result.Columns = prepared.Columns
		s := prepared.Query.Where.Stats()
		result.stats = &s
	case isCompileError(err):
		result.ErrorCode = errorCode(err)
		result.ErrorMessage = err.Error()
	default:
		return nil, fmt.Errorf("failed to compile: %w", err)
	}

	if result.Log, err = st.ReadCompilations(ctx, 0); err != nil {
		return nil, fmt.Errorf("failed to read compilation log: %w", err)
	}

	checkOutcome(scenario, result)
	if result.ErrorCode == "" {
		for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
			result.AddError(msg)
		}
	}
	return result, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return testutil.DemoCatalog(), nil
	}
	cat, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}

func isCompileError(err error) bool {
	var se *sqlerr.Error
	var re *engine.RuntimeError
	return errors.As(err, &se) || errors.As(err, &re)
}

func errorCode(err error) string {
	if c := sqlerr.CodeOf(err); c != "" {
		return string(c)
	}
	return string(engine.RuntimeCodeOf(err))
}

func checkOutcome(s *Scenario, r *Result) {
	switch {
	case s.ExpectError == "" && r.ErrorCode != "":
		r.AddError(fmt.Sprintf("expected success, got %s", r.ErrorMessage))
	case s.ExpectError != "" && r.ErrorCode == "":
		r.AddError(fmt.Sprintf("expected %s, statement compiled", s.ExpectError))
	case s.ExpectError != r.ErrorCode:
		r.AddError(fmt.Sprintf("expected %s, got %s", s.ExpectError, r.ErrorMessage))
	}
}

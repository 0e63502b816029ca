package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/roach88/rdfsql/internal/catalog"
	"github.com/roach88/rdfsql/internal/compiler"
	"github.com/roach88/rdfsql/internal/queryir"
	"github.com/roach88/rdfsql/internal/querysparql"
	"github.com/roach88/rdfsql/internal/sqlerr"
	"github.com/roach88/rdfsql/internal/sqlparse"
	"github.com/roach88/rdfsql/internal/store"
)

// Engine runs statements through parse, compile, validate and render, and
// records every outcome in the compilation log.
//
// Thread-safety: Prepare and SetCatalog are safe from any goroutine. A
// statement compiles against the catalog that was current when Prepare
// started.
type Engine struct {
	catalog  atomic.Pointer[catalog.Catalog]
	parser   *sqlparse.Parser
	renderer *querysparql.Renderer
	store    *store.Store
	clock    Sequencer
	ids      IDGenerator
	logger   *slog.Logger

	defaultSchema string
	funcs         []compiler.Option
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore records every compilation in s. Without a store nothing is
// recorded.
func WithStore(s *store.Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithClock replaces the logical clock. Default: NewClock().
func WithClock(c Sequencer) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithIDGenerator replaces the compilation id generator.
// Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithDefaultSchema sets the schema tried first for unqualified tables.
func WithDefaultSchema(schema string) Option {
	return func(e *Engine) {
		e.defaultSchema = schema
	}
}

// WithCompilerOptions passes extra options to every compiler the engine
// creates.
func WithCompilerOptions(opts ...compiler.Option) Option {
	return func(e *Engine) {
		e.funcs = append(e.funcs, opts...)
	}
}

// New creates an engine compiling against cat, which may be nil until
// SetCatalog is called.
func New(cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		parser:   sqlparse.New(),
		renderer: querysparql.NewRenderer(),
		clock:    NewClock(),
		ids:      UUIDv7Generator{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if cat != nil {
		e.catalog.Store(cat)
	}
	return e
}

// Open creates an engine whose clock resumes after the last seq recorded
// in s.
func Open(ctx context.Context, cat *catalog.Catalog, s *store.Store, opts ...Option) (*Engine, error) {
	last, err := s.LastSeq(ctx)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithStore(s), WithClock(NewClockAt(last))}, opts...)
	return New(cat, opts...), nil
}

// SetCatalog swaps the catalog used by later Prepare calls.
func (e *Engine) SetCatalog(cat *catalog.Catalog) {
	e.catalog.Store(cat)
	if cat != nil {
		e.logger.Info("catalog loaded", "catalog", cat.Name(), "tables", len(cat.Tables()))
	}
}

// Catalog returns the current catalog, or nil.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog.Load()
}

// Prepared is a successfully compiled statement.
type Prepared struct {
	ID      string
	Seq     int64
	SQL     string
	SQLHash string
	SPARQL  string
	Columns []string
	Query   *queryir.Query
}

// Prepare compiles sql to SPARQL.
//
// SQL problems are returned as *sqlerr.Error, engine problems as
// *RuntimeError. Both are recorded in the log when a store is configured.
// A failure to record a successful compilation is returned as an error.
func (e *Engine) Prepare(ctx context.Context, sql string) (*Prepared, error) {
	cat := e.catalog.Load()
	if cat == nil {
		return nil, newNoCatalogError()
	}

	p := &Prepared{
		ID:      e.ids.Generate(),
		Seq:     e.clock.Next(),
		SQL:     sql,
		SQLHash: SQLHash(sql),
	}
	log := e.logger.With("id", p.ID, "seq", p.Seq)

	err := e.prepare(p, cat)
	rec := store.Compilation{
		ID:            p.ID,
		Seq:           p.Seq,
		SQL:           p.SQL,
		SQLHash:       p.SQLHash,
		Catalog:       cat.Name(),
		SPARQL:        p.SPARQL,
		Columns:       p.Columns,
		Status:        store.StatusOK,
		EngineVersion: compiler.Version,
		IRVersion:     compiler.IRVersion,
	}
	if err != nil {
		rec.Status = store.StatusError
		rec.SPARQL, rec.Columns = "", nil
		rec.ErrorMessage = err.Error()
		var se *sqlerr.Error
		var re *RuntimeError
		switch {
		case errors.As(err, &se):
			rec.ErrorCode = string(se.Code)
			rec.ErrorMessage = se.Message
			rec.ErrorFragment = se.Fragment
		case errors.As(err, &re):
			rec.ErrorCode = string(re.Code)
			rec.ErrorMessage = re.Message
		}
		log.Warn("compilation failed", "code", rec.ErrorCode, "error", err)
	}

	if e.store != nil {
		if recErr := e.store.RecordCompilation(ctx, rec); recErr != nil {
			if err != nil {
				log.Error("record compilation", "error", recErr)
				return nil, err
			}
			return nil, recErr
		}
	}
	if err != nil {
		return nil, err
	}

	log.Info("compiled", "columns", len(p.Columns), "bytes", len(p.SPARQL))
	return p, nil
}

func (e *Engine) prepare(p *Prepared, cat *catalog.Catalog) error {
	stmt, err := e.parser.Parse(p.SQL)
	if err != nil {
		return err
	}

	opts := append([]compiler.Option{
		compiler.WithLogger(e.logger),
		compiler.WithDefaultSchema(e.defaultSchema),
	}, e.funcs...)
	q, err := compiler.New(cat, opts...).Compile(stmt)
	if err != nil {
		return err
	}

	if res := queryir.Validate(q); !res.Valid {
		return newInvalidQueryError(p.ID, res.Problems)
	}

	text, err := e.renderer.Render(q)
	if err != nil {
		return newRenderError(p.ID, err)
	}

	p.Query = q
	p.SPARQL = text
	p.Columns = q.Columns()
	return nil
}

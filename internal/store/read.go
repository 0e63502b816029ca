package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

const compilationColumns = `id, seq, sql_text, sql_hash, catalog, sparql, columns, status,
	error_code, error_message, error_fragment, engine_version, ir_version`

// ReadCompilations returns the most recent compilations, newest first.
// A limit of zero or less returns every record.
//
// Returns an empty slice (not nil) if the log is empty.
func (s *Store) ReadCompilations(ctx context.Context, limit int) ([]Compilation, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+compilationColumns+`
		FROM compilations
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query compilations: %w", err)
	}
	return collect(rows)
}

// CompilationsByHash returns every compilation of statements with the
// given normalized SQL hash, oldest first.
func (s *Store) CompilationsByHash(ctx context.Context, hash string) ([]Compilation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+compilationColumns+`
		FROM compilations
		WHERE sql_hash = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("query compilations by hash: %w", err)
	}
	return collect(rows)
}

// CompilationByID returns a single compilation.
// Returns an error wrapping ErrNotFound if no record has the id.
func (s *Store) CompilationByID(ctx context.Context, id string) (Compilation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+compilationColumns+`
		FROM compilations
		WHERE id = ?
	`, id)
	c, err := scanCompilation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Compilation{}, fmt.Errorf("compilation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Compilation{}, err
	}
	return c, nil
}

// LastSeq returns the highest recorded seq, or 0 for an empty log.
// The engine resumes its clock from here.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM compilations`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	return seq.Int64, nil
}

func collect(rows *sql.Rows) ([]Compilation, error) {
	defer rows.Close()

	out := []Compilation{}
	for rows.Next() {
		c, err := scanCompilation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compilations: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCompilation(row scanner) (Compilation, error) {
	var (
		c        Compilation
		colsJSON string
		status   string
	)
	err := row.Scan(
		&c.ID,
		&c.Seq,
		&c.SQL,
		&c.SQLHash,
		&c.Catalog,
		&c.SPARQL,
		&colsJSON,
		&status,
		&c.ErrorCode,
		&c.ErrorMessage,
		&c.ErrorFragment,
		&c.EngineVersion,
		&c.IRVersion,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Compilation{}, err
	}
	if err != nil {
		return Compilation{}, fmt.Errorf("scan compilation: %w", err)
	}
	c.Status = Status(status)
	if c.Columns, err = unmarshalColumns(colsJSON); err != nil {
		return Compilation{}, err
	}
	return c, nil
}

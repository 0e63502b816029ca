package store

import (
	"context"
	"fmt"
)

// RecordCompilation inserts a compilation record into the log.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) RecordCompilation(ctx context.Context, c Compilation) error {
	switch c.Status {
	case StatusOK, StatusError:
	default:
		return fmt.Errorf("record compilation: invalid status %q", c.Status)
	}

	colsJSON, err := marshalColumns(c.Columns)
	if err != nil {
		return fmt.Errorf("record compilation: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO compilations
		(id, seq, sql_text, sql_hash, catalog, sparql, columns, status,
		 error_code, error_message, error_fragment, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		c.ID,
		c.Seq,
		c.SQL,
		c.SQLHash,
		c.Catalog,
		c.SPARQL,
		colsJSON,
		string(c.Status),
		c.ErrorCode,
		c.ErrorMessage,
		c.ErrorFragment,
		c.EngineVersion,
		c.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("record compilation: %w", err)
	}

	return nil
}

// Package datasource abstracts the analytical database behind the copilot.
// Three engines are supported: a local SQLite file, a CSV file queried
// through DuckDB, and a Postgres connection.
package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/table"
)

// Source is a queryable analytical database.
type Source interface {
	// Name identifies the engine ("sqlite", "csv", "postgres") for logging
	// and response metadata.
	Name() string

	// Schema renders the database structure as a prompt-ready string, one
	// line per table: "table(col (TYPE), ...) [FK: col -> other.col]".
	Schema(ctx context.Context) (string, error)

	// Query runs a read-only SQL statement and materializes the result.
	Query(ctx context.Context, sqlStr string) (*table.Table, error)

	// Ping verifies the underlying connection.
	Ping(ctx context.Context) error

	Close() error
}

// queryTable executes sqlStr on db and scans every row into a Table.
// Shared by all engines since they all speak database/sql.
func queryTable(ctx context.Context, db *sql.DB, sqlStr string) (*table.Table, error) {
	rows, err := db.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read result columns: %w", err)
	}

	var out [][]any
	for rows.Next() {
		cells := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan result row: %w", err)
		}
		for i, v := range cells {
			cells[i] = normalizeValue(v)
		}
		out = append(out, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result rows: %w", err)
	}

	return table.New(cols, out), nil
}

// normalizeValue maps driver-specific scan values onto the small set of
// cell types the table package understands.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return x
	default:
		return v
	}
}

package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/table"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

// PostgresSource serves queries from a Postgres database. Only the public
// schema is exposed to the model.
type PostgresSource struct {
	db *sql.DB
}

var _ Source = (*PostgresSource)(nil)

// OpenPostgres connects using a standard Postgres DSN.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresSource, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresSource{db: db}, nil
}

func (s *PostgresSource) Name() string { return "postgres" }

func (s *PostgresSource) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *PostgresSource) Close() error { return s.db.Close() }

func (s *PostgresSource) Query(ctx context.Context, sqlStr string) (*table.Table, error) {
	return queryTable(ctx, s.db, sqlStr)
}

// Schema reads information_schema for the public schema and renders one
// line per table, foreign keys included.
func (s *PostgresSource) Schema(ctx context.Context) (string, error) {
	const colQuery = `
		SELECT table_name, column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = 'public'
		ORDER BY table_name, ordinal_position`

	rows, err := s.db.QueryContext(ctx, colQuery)
	if err != nil {
		return "", fmt.Errorf("list columns: %w", err)
	}

	var order []string
	cols := make(map[string][]string)
	for rows.Next() {
		var tbl, col, typ string
		if err := rows.Scan(&tbl, &col, &typ); err != nil {
			_ = rows.Close()
			return "", fmt.Errorf("scan column: %w", err)
		}
		if _, seen := cols[tbl]; !seen {
			order = append(order, tbl)
		}
		cols[tbl] = append(cols[tbl], fmt.Sprintf("%s (%s)", col, typ))
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate columns: %w", err)
	}

	fks, err := s.foreignKeys(ctx)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, tbl := range order {
		line := fmt.Sprintf("%s(%s)", tbl, strings.Join(cols[tbl], ", "))
		if refs := fks[tbl]; len(refs) > 0 {
			line += fmt.Sprintf("  [FK: %s]", strings.Join(refs, ", "))
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, "\n"), nil
}

func (s *PostgresSource) foreignKeys(ctx context.Context) (map[string][]string, error) {
	const fkQuery = `
		SELECT tc.table_name, kcu.column_name, ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
		  ON tc.constraint_name = ccu.constraint_name
		 AND tc.table_schema = ccu.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_schema = 'public'
		ORDER BY tc.table_name, kcu.column_name`

	rows, err := s.db.QueryContext(ctx, fkQuery)
	if err != nil {
		return nil, fmt.Errorf("list foreign keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string][]string)
	for rows.Next() {
		var tbl, col, refTbl, refCol string
		if err := rows.Scan(&tbl, &col, &refTbl, &refCol); err != nil {
			return nil, fmt.Errorf("scan foreign key: %w", err)
		}
		out[tbl] = append(out[tbl], fmt.Sprintf("%s -> %s.%s", col, refTbl, refCol))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foreign keys: %w", err)
	}
	return out, nil
}

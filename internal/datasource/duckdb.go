package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/table"
	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// csvTableName is the view name CSV data is exposed under, so generated
// SQL can always say "FROM data".
const csvTableName = "data"

// CSVSource queries a CSV file through an in-memory DuckDB instance.
// The file is exposed as a view named "data" with schema auto-detection.
type CSVSource struct {
	db   *sql.DB
	path string
}

var _ Source = (*CSVSource)(nil)

// OpenCSV creates an in-memory DuckDB database and binds the CSV at path
// as the "data" view via read_csv_auto.
func OpenCSV(ctx context.Context, path string) (*CSVSource, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve csv path: %w", err)
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	stmt := fmt.Sprintf(
		"CREATE VIEW %s AS SELECT * FROM read_csv_auto('%s', header=true)",
		csvTableName, strings.ReplaceAll(absPath, "'", "''"),
	)
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bind csv %s: %w", path, err)
	}

	return &CSVSource{db: db, path: absPath}, nil
}

func (s *CSVSource) Name() string { return "csv" }

func (s *CSVSource) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *CSVSource) Close() error { return s.db.Close() }

func (s *CSVSource) Query(ctx context.Context, sqlStr string) (*table.Table, error) {
	return queryTable(ctx, s.db, sqlStr)
}

// Schema describes the inferred CSV columns as a single table line.
func (s *CSVSource) Schema(ctx context.Context) (string, error) {
	rows, err := s.db.QueryContext(ctx, "DESCRIBE "+csvTableName)
	if err != nil {
		return "", fmt.Errorf("describe csv view: %w", err)
	}
	defer func() { _ = rows.Close() }()

	// DESCRIBE returns a wide row; only the first two columns matter here.
	colNames, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("describe columns: %w", err)
	}

	var cols []string
	for rows.Next() {
		cells := make([]any, len(colNames))
		ptrs := make([]any, len(colNames))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return "", fmt.Errorf("scan describe row: %w", err)
		}
		name := stringCell(cells[0])
		typ := stringCell(cells[1])
		cols = append(cols, fmt.Sprintf("%s (%s)", name, typ))
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate describe rows: %w", err)
	}

	return fmt.Sprintf("%s(%s)", csvTableName, strings.Join(cols, ", ")), nil
}

func stringCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

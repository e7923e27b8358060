package datasource_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/datasource"
	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/table"
)

func openSeeded(t *testing.T) *datasource.SQLiteSource {
	t.Helper()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sample.db")
	if err := datasource.SeedSampleDB(ctx, path); err != nil {
		t.Fatalf("SeedSampleDB() error = %v", err)
	}
	src, err := datasource.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	t.Cleanup(func() { _ = src.Close() })
	return src
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sample.db")
	if err := datasource.SeedSampleDB(ctx, path); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := datasource.SeedSampleDB(ctx, path); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	src, err := datasource.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	got, err := src.Query(ctx, "SELECT COUNT(*) AS n FROM customers")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if v := got.Value(0, 0); v != int64(100) {
		t.Errorf("customer count after reseed = %v, want 100", v)
	}
}

func TestSchemaRendersTablesAndForeignKeys(t *testing.T) {
	src := openSeeded(t)
	schema, err := src.Schema(context.Background())
	if err != nil {
		t.Fatalf("Schema() error = %v", err)
	}

	for _, want := range []string{
		"customers(CustomerId (INTEGER)",
		"invoices(InvoiceId (INTEGER)",
		"[FK: CustomerId -> customers.CustomerId]",
		"genres(GenreId (INTEGER), Name (TEXT))",
	} {
		if !strings.Contains(schema, want) {
			t.Errorf("schema missing %q:\n%s", want, schema)
		}
	}
	if strings.Contains(schema, "sqlite_") {
		t.Errorf("schema leaked internal tables:\n%s", schema)
	}
}

func TestQueryMaterializesTable(t *testing.T) {
	src := openSeeded(t)
	got, err := src.Query(context.Background(),
		"SELECT Name, GenreId FROM genres ORDER BY GenreId LIMIT 3")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if got.RowCount() != 3 {
		t.Fatalf("RowCount() = %d, want 3", got.RowCount())
	}
	if names := got.ColumnNames(); names[0] != "Name" || names[1] != "GenreId" {
		t.Errorf("columns = %v", names)
	}
	if got.Columns[0].Kind != table.KindText {
		t.Errorf("Name kind = %v, want text", got.Columns[0].Kind)
	}
	if got.Columns[1].Kind != table.KindNumeric {
		t.Errorf("GenreId kind = %v, want numeric", got.Columns[1].Kind)
	}
	if v := got.Value(0, 0); v != "Rock" {
		t.Errorf("first genre = %v, want Rock", v)
	}
}

func TestQueryReportsEngineErrors(t *testing.T) {
	src := openSeeded(t)
	_, err := src.Query(context.Background(), "SELECT nope FROM missing_table")
	if err == nil {
		t.Fatal("Query() accepted SQL against a missing table")
	}
}

package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Shreyshah0812/Sql-analytics-copilot/internal/table"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // sqlite driver
)

// SQLiteSource serves queries from a local SQLite database file.
type SQLiteSource struct {
	db   *sql.DB
	path string
}

var _ Source = (*SQLiteSource)(nil)

// OpenSQLite opens the database at path. The file must exist; use
// SeedSampleDB first to create a demo database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	return &SQLiteSource{db: db, path: path}, nil
}

func (s *SQLiteSource) Name() string { return "sqlite" }

func (s *SQLiteSource) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLiteSource) Close() error { return s.db.Close() }

func (s *SQLiteSource) Query(ctx context.Context, sqlStr string) (*table.Table, error) {
	return queryTable(ctx, s.db, sqlStr)
}

// Schema walks sqlite_master and renders one line per table with its
// columns, declared types, and foreign keys.
func (s *SQLiteSource) Schema(ctx context.Context) (string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return "", fmt.Errorf("list tables: %w", err)
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return "", fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate tables: %w", err)
	}

	var parts []string
	for _, tbl := range tables {
		line, err := s.describeTable(ctx, tbl)
		if err != nil {
			return "", err
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, "\n"), nil
}

func (s *SQLiteSource) describeTable(ctx context.Context, tbl string) (string, error) {
	cols, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%q)", tbl))
	if err != nil {
		return "", fmt.Errorf("table_info %s: %w", tbl, err)
	}
	var colDefs []string
	for cols.Next() {
		var (
			cid        int
			name, typ  string
			notnull    int
			dfltValue  sql.NullString
			primaryKey int
		)
		if err := cols.Scan(&cid, &name, &typ, &notnull, &dfltValue, &primaryKey); err != nil {
			_ = cols.Close()
			return "", fmt.Errorf("scan table_info %s: %w", tbl, err)
		}
		colDefs = append(colDefs, fmt.Sprintf("%s (%s)", name, typ))
	}
	_ = cols.Close()
	if err := cols.Err(); err != nil {
		return "", fmt.Errorf("iterate table_info %s: %w", tbl, err)
	}

	fks, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%q)", tbl))
	if err != nil {
		return "", fmt.Errorf("foreign_key_list %s: %w", tbl, err)
	}
	var fkRefs []string
	for fks.Next() {
		var (
			id, seq          int
			refTable         string
			from, to         sql.NullString
			onUpdate         string
			onDelete, match  string
		)
		if err := fks.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			_ = fks.Close()
			return "", fmt.Errorf("scan foreign_key_list %s: %w", tbl, err)
		}
		fkRefs = append(fkRefs, fmt.Sprintf("%s -> %s.%s", from.String, refTable, to.String))
	}
	_ = fks.Close()
	if err := fks.Err(); err != nil {
		return "", fmt.Errorf("iterate foreign_key_list %s: %w", tbl, err)
	}

	line := fmt.Sprintf("%s(%s)", tbl, strings.Join(colDefs, ", "))
	if len(fkRefs) > 0 {
		line += fmt.Sprintf("  [FK: %s]", strings.Join(fkRefs, ", "))
	}
	return line, nil
}

const sampleSchema = `
CREATE TABLE IF NOT EXISTS customers (
	CustomerId INTEGER PRIMARY KEY,
	FirstName TEXT, LastName TEXT,
	Country TEXT, Email TEXT
);
CREATE TABLE IF NOT EXISTS invoices (
	InvoiceId INTEGER PRIMARY KEY,
	CustomerId INTEGER,
	InvoiceDate TEXT,
	BillingCountry TEXT,
	Total REAL,
	FOREIGN KEY (CustomerId) REFERENCES customers(CustomerId)
);
CREATE TABLE IF NOT EXISTS invoice_items (
	InvoiceLineId INTEGER PRIMARY KEY,
	InvoiceId INTEGER,
	TrackId INTEGER,
	UnitPrice REAL,
	Quantity INTEGER,
	FOREIGN KEY (InvoiceId) REFERENCES invoices(InvoiceId)
);
CREATE TABLE IF NOT EXISTS tracks (
	TrackId INTEGER PRIMARY KEY,
	Name TEXT,
	AlbumId INTEGER,
	GenreId INTEGER,
	UnitPrice REAL,
	Milliseconds INTEGER
);
CREATE TABLE IF NOT EXISTS albums (
	AlbumId INTEGER PRIMARY KEY,
	Title TEXT,
	ArtistId INTEGER
);
CREATE TABLE IF NOT EXISTS artists (
	ArtistId INTEGER PRIMARY KEY,
	Name TEXT
);
CREATE TABLE IF NOT EXISTS genres (
	GenreId INTEGER PRIMARY KEY,
	Name TEXT
);`

// SeedSampleDB creates a small Chinook-style demo database at path if no
// file exists there yet. Seeding is deterministic so repeated runs against
// a fresh path produce identical data.
func SeedSampleDB(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", path, err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, sampleSchema); err != nil {
		return fmt.Errorf("create sample schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rng := rand.New(rand.NewSource(42))
	countries := []string{"USA", "UK", "Germany", "France", "Brazil", "Canada", "Australia"}
	genres := []string{"Rock", "Jazz", "Pop", "Classical", "Hip-Hop", "Electronic"}
	artists := []string{"The Beatles", "Miles Davis", "Taylor Swift", "Bach", "Kendrick Lamar", "Daft Punk"}
	prices := []float64{0.99, 1.29, 1.99}

	for i, g := range genres {
		if _, err := tx.ExecContext(ctx, "INSERT INTO genres VALUES (?,?)", i+1, g); err != nil {
			return fmt.Errorf("seed genres: %w", err)
		}
	}
	for i, a := range artists {
		if _, err := tx.ExecContext(ctx, "INSERT INTO artists VALUES (?,?)", i+1, a); err != nil {
			return fmt.Errorf("seed artists: %w", err)
		}
	}
	for i := 1; i <= 20; i++ {
		if _, err := tx.ExecContext(ctx, "INSERT INTO albums VALUES (?,?,?)",
			i, fmt.Sprintf("Album %d", i), rng.Intn(6)+1); err != nil {
			return fmt.Errorf("seed albums: %w", err)
		}
	}
	for i := 1; i <= 200; i++ {
		if _, err := tx.ExecContext(ctx, "INSERT INTO tracks VALUES (?,?,?,?,?,?)",
			i, fmt.Sprintf("Track %d", i), rng.Intn(20)+1, rng.Intn(6)+1,
			prices[rng.Intn(len(prices))], rng.Intn(250001)+150000); err != nil {
			return fmt.Errorf("seed tracks: %w", err)
		}
	}
	for i := 1; i <= 100; i++ {
		if _, err := tx.ExecContext(ctx, "INSERT INTO customers VALUES (?,?,?,?,?)",
			i, fmt.Sprintf("First%d", i), fmt.Sprintf("Last%d", i),
			countries[rng.Intn(len(countries))], fmt.Sprintf("user%d@email.com", i)); err != nil {
			return fmt.Errorf("seed customers: %w", err)
		}
	}

	epoch := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	invoiceID := 1
	lineID := 1
	for custID := 1; custID <= 100; custID++ {
		for n := rng.Intn(5) + 1; n > 0; n-- {
			date := epoch.AddDate(0, 0, rng.Intn(731))
			total := 1.99 + rng.Float64()*24.0
			if _, err := tx.ExecContext(ctx, "INSERT INTO invoices VALUES (?,?,?,?,?)",
				invoiceID, custID, date.Format("2006-01-02"),
				countries[rng.Intn(len(countries))], float64(int(total*100))/100); err != nil {
				return fmt.Errorf("seed invoices: %w", err)
			}
			for m := rng.Intn(4) + 1; m > 0; m-- {
				if _, err := tx.ExecContext(ctx, "INSERT INTO invoice_items VALUES (?,?,?,?,?)",
					lineID, invoiceID, rng.Intn(200)+1,
					prices[rng.Intn(len(prices))], rng.Intn(3)+1); err != nil {
					return fmt.Errorf("seed invoice_items: %w", err)
				}
				lineID++
			}
			invoiceID++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	log.Info().Str("path", path).Int("invoices", invoiceID-1).Msg("sample database seeded")
	return nil
}

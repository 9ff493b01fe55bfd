package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is the inventory document store, backed by SQLite. It supports the
// query shapes the rest of the system needs: exact lookup by code, equality
// filtering by category, case-insensitive substring search, and grouping
// aggregations.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the inventory database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used by
// tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "stokbot.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't
// been run yet.
func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		var version int
		if _, err := fmt.Sscanf(entry.Name(), "%d_", &version); err != nil {
			return fmt.Errorf("parsing migration version from %q: %w", entry.Name(), err)
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

const itemColumns = "code, name, item_group, unit, category"

func scanItem(row interface{ Scan(...any) error }) (Item, error) {
	var it Item
	if err := row.Scan(&it.Code, &it.Name, &it.Group, &it.Unit, &it.Category); err != nil {
		return Item{}, err
	}
	return normalize(it), nil
}

// ItemByCode returns the item with the given code, or ErrNotFound.
func (s *Store) ItemByCode(ctx context.Context, code int) (Item, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM items WHERE code = ?", code)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return Item{}, ErrNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("querying item %d: %w", code, err)
	}
	return it, nil
}

// ItemsByCategory returns up to limit items whose category equals category.
func (s *Store) ItemsByCategory(ctx context.Context, category string, limit int) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE category = ? ORDER BY code LIMIT ?",
		category, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying category %q: %w", category, err)
	}
	return collectItems(rows)
}

// ScanItems returns the first limit items ordered by code. The explicit
// ordering keeps the critical-stock scan deterministic across runs.
func (s *Store) ScanItems(ctx context.Context, limit int) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM items ORDER BY code LIMIT ?", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning items: %w", err)
	}
	return collectItems(rows)
}

// SearchItems returns up to limit items whose name or group contains query
// (case-insensitive), or whose code equals it when the query is numeric.
func (s *Store) SearchItems(ctx context.Context, query string, limit int) ([]Item, error) {
	pattern := "%" + escapeLike(query) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE name LIKE ? ESCAPE '\' OR item_group LIKE ? ESCAPE '\' OR CAST(code AS TEXT) = ?
		 ORDER BY code LIMIT ?`,
		pattern, pattern, query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}
	return collectItems(rows)
}

// CountSearch returns the total number of items matching the search filter,
// independent of the result limit.
func (s *Store) CountSearch(ctx context.Context, query string) (int, error) {
	pattern := "%" + escapeLike(query) + "%"
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items
		 WHERE name LIKE ? ESCAPE '\' OR item_group LIKE ? ESCAPE '\' OR CAST(code AS TEXT) = ?`,
		pattern, pattern, query,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting search results: %w", err)
	}
	return n, nil
}

// CountItems returns the total number of inventory records.
func (s *Store) CountItems(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return n, nil
}

// CountByCategory returns per-category counts sorted by count descending.
func (s *Store) CountByCategory(ctx context.Context) ([]GroupCount, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT category, COUNT(*) AS n FROM items GROUP BY category ORDER BY n DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("aggregating categories: %w", err)
	}
	return collectGroupCounts(rows)
}

// CountByUnit returns the limit most common unit values with their counts.
func (s *Store) CountByUnit(ctx context.Context, limit int) ([]GroupCount, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT unit, COUNT(*) AS n FROM items GROUP BY unit ORDER BY n DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregating units: %w", err)
	}
	return collectGroupCounts(rows)
}

// InsertItems upserts the given items in a single transaction.
func (s *Store) InsertItems(ctx context.Context, items []Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning insert transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO items (code, name, item_group, unit, category)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			item_group = excluded.item_group,
			unit = excluded.unit,
			category = excluded.category`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, it := range items {
		if _, err := stmt.ExecContext(ctx, it.Code, it.Name, it.Group, it.Unit, it.Category); err != nil {
			return fmt.Errorf("inserting item %d: %w", it.Code, err)
		}
	}

	return tx.Commit()
}

func collectItems(rows *sql.Rows) ([]Item, error) {
	defer rows.Close()
	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func collectGroupCounts(rows *sql.Rows) ([]GroupCount, error) {
	defer rows.Close()
	var counts []GroupCount
	for rows.Next() {
		var gc GroupCount
		if err := rows.Scan(&gc.Key, &gc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, gc)
	}
	return counts, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

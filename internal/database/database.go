package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"shunshun-bot/internal/store"
)

// Driver names registered by the imported drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// DB encapsulates the SQL connection. It implements store.Store on top of
// SQLite (local use and tests) or PostgreSQL through pgx.
type DB struct {
	conn   *sql.DB
	driver string
}

var _ store.Store = (*DB)(nil)

// New opens (and creates when missing) a SQLite database
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open(DriverSQLite, dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, driver: DriverSQLite}

	if err := db.init(); err != nil {
		conn.Close()
		return nil, err
	}

	slog.Info("sqlite database ready", "path", dbPath)
	return db, nil
}

// NewPostgres connects to PostgreSQL. The tables are expected to exist
// already, they are the same ones the Supabase backend talks to.
func NewPostgres(ctx context.Context, dsn string) (*DB, error) {
	conn, err := sql.Open(DriverPostgres, dsn)
	if err != nil {
		return nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	slog.Info("postgres database ready")
	return &DB{conn: conn, driver: DriverPostgres}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// init creates the tables of a local database
func (db *DB) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS map_spots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		location_name TEXT NOT NULL,
		google_map_url TEXT,
		address TEXT,
		latitude REAL NOT NULL DEFAULT 0,
		longitude REAL NOT NULL DEFAULT 0,
		category TEXT NOT NULL DEFAULT '其它',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS map_spots_user_name ON map_spots (user_id, location_name);

	CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		original_url TEXT NOT NULL,
		product_name TEXT,
		current_price INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (user_id, original_url)
	);

	CREATE TABLE IF NOT EXISTS price_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id INTEGER NOT NULL REFERENCES products (id),
		price INTEGER NOT NULL,
		recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS user_states (
		user_id TEXT PRIMARY KEY,
		last_mode TEXT NOT NULL,
		last_category TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// rebind rewrites ? placeholders to $n for PostgreSQL
func (db *DB) rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (db *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.conn.ExecContext(ctx, db.rebind(query), args...)
}

func (db *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.conn.QueryContext(ctx, db.rebind(query), args...)
}

func (db *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.conn.QueryRowContext(ctx, db.rebind(query), args...)
}

type scanner interface {
	Scan(dest ...any) error
}

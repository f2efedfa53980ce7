package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"                   // postgres driver "pgx"
	_ "github.com/tursodatabase/libsql-client-go/libsql" // turso driver "libsql"
	_ "modernc.org/sqlite"                               // pure go sqlite driver
)

// SQLKV keeps one row per key in the kv_state table through database/sql.
// The same table shape is used for SQLite, Postgres and libSQL.
type SQLKV struct {
	db     *sql.DB
	driver string
}

const kvStateDDL = `CREATE TABLE IF NOT EXISTS kv_state (
	bucket TEXT PRIMARY KEY,
	payload TEXT NOT NULL
)`

// NewSQLiteKV opens a pure Go SQLite database at path
func NewSQLiteKV(path string) (*SQLKV, error) {
	if path == "" {
		path = "data/kv.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	return openSQLKV("sqlite", path)
}

// NewPostgresKV opens Postgres through the pgx stdlib driver
func NewPostgresKV(dsn string) (*SQLKV, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres backend requires DATABASE_URL")
	}
	return openSQLKV("pgx", dsn)
}

// NewLibSQLKV opens a Turso database. The token is appended as authToken.
func NewLibSQLKV(dbURL, authToken string) (*SQLKV, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("libsql backend requires TURSO_DATABASE_URL")
	}
	dsn, err := libSQLDSN(dbURL, authToken)
	if err != nil {
		return nil, err
	}
	return openSQLKV("libsql", dsn)
}

// libSQLDSN adds the auth token to the query of dbURL
func libSQLDSN(dbURL, authToken string) (string, error) {
	if authToken == "" {
		return dbURL, nil
	}
	u, err := url.Parse(dbURL)
	if err != nil {
		return "", fmt.Errorf("parse libsql url: %w", err)
	}
	q := u.Query()
	q.Set("authToken", authToken)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func openSQLKV(driver, dsn string) (*SQLKV, error) {
	database, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if _, err := database.Exec(kvStateDDL); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("create kv_state table: %w", err)
	}
	return &SQLKV{db: database, driver: driver}, nil
}

// rebind rewrites ? placeholders to $n for postgres
func (s *SQLKV) rebind(query string) string {
	if s.driver != "pgx" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT payload FROM kv_state WHERE bucket = ?`), key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select %s: %w", key, err)
	}
	return []byte(payload), true, nil
}

func (s *SQLKV) Set(ctx context.Context, key string, value []byte) error {
	query := s.rebind(`INSERT INTO kv_state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`)
	if _, err := s.db.ExecContext(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

func (s *SQLKV) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM kv_state WHERE bucket = ?`), key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLKV) Name() string { return s.driver }

func (s *SQLKV) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for tests
func (s *SQLKV) DB() *sql.DB { return s.db }

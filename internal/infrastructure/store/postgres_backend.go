package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS shop_documents (
	name       TEXT PRIMARY KEY,
	body       TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS shop_document_backups (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	body       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// DefaultDocumentName is the row key used when a single shop shares the database.
const DefaultDocumentName = "shop"

// PostgresBackend stores the whole document as text in one row. The body
// column is TEXT rather than JSONB so a corrupted document can still be
// read back and preserved.
type PostgresBackend struct {
	db   *sql.DB
	name string
}

// NewPostgresBackend ensures the tables exist.
func NewPostgresBackend(ctx context.Context, db *sql.DB, name string) (*PostgresBackend, error) {
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("create document tables: %w", err)
	}
	return &PostgresBackend{db: db, name: name}, nil
}

func (b *PostgresBackend) Read(ctx context.Context) ([]byte, bool, error) {
	var body string
	err := b.db.QueryRowContext(ctx,
		"SELECT body FROM shop_documents WHERE name = $1", b.name,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(body), true, nil
}

// Write is a single upsert, which PostgreSQL applies atomically.
func (b *PostgresBackend) Write(ctx context.Context, raw []byte) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO shop_documents (name, body, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		b.name, string(raw),
	)
	return err
}

func (b *PostgresBackend) Backup(ctx context.Context, raw []byte) (string, error) {
	var id int64
	err := b.db.QueryRowContext(ctx,
		"INSERT INTO shop_document_backups (name, body) VALUES ($1, $2) RETURNING id",
		b.name, string(raw),
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("shop_document_backups#%d", id), nil
}

var openDB = sql.Open

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := openDB("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	// One writer at a time already; a small pool covers the concurrent reads.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

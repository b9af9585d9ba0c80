package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// SQLPersister keeps one row per state key in the app_state table. It
// works with both the postgres and the sqlite driver.
type SQLPersister struct {
	db *sqlx.DB
}

// NewSQLPersister connects with driver ("postgres" or "sqlite") and makes
// sure the app_state table exists.
func NewSQLPersister(driver, dsn string) (*SQLPersister, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite" {
		// a single writer avoids SQLITE_BUSY between pooled connections
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &SQLPersister{db: db}
	if err := p.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return p, nil
}

func (p *SQLPersister) migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS app_state (
			state_key  TEXT PRIMARY KEY,
			document   TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`
	if _, err := p.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create app_state table: %w", err)
	}
	return nil
}

// Load returns the document stored under key
func (p *SQLPersister) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var document string
	err := p.db.GetContext(ctx, &document,
		p.db.Rebind("SELECT document FROM app_state WHERE state_key = ?"), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(document), true, nil
}

// Save upserts the document under key
func (p *SQLPersister) Save(ctx context.Context, key string, document []byte) error {
	query := p.db.Rebind(`
		INSERT INTO app_state (state_key, document, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (state_key) DO UPDATE
		SET document = excluded.document, updated_at = excluded.updated_at`)

	_, err := p.db.ExecContext(ctx, query, key, string(document), time.Now().UTC())
	return err
}

// Ping checks the database connection, used by the readiness probe
func (p *SQLPersister) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the database connection
func (p *SQLPersister) Close() error {
	return p.db.Close()
}

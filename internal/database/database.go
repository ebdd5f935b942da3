// Package database owns the PostgreSQL connection pool and hands out scoped
// sessions.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/aiza-ai/platform/internal/database/migrations"
)

const driverName = "postgres"

// Config describes the pool.
type Config struct {
	URL             string
	PoolSize        int
	MaxOverflow     int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DB wraps the pooled handle.
type DB struct {
	db      *sqlx.DB
	migrate func(ctx context.Context, conn *sql.Conn) error
}

// Session is a connection exclusively owned by one unit of work.
type Session struct {
	*sqlx.Conn
}

// Open creates the pool. No connection is made until first use.
func Open(cfg Config) (*DB, error) {
	if cfg.URL == "" {
		return nil, errors.New("database url not configured")
	}

	db, err := sqlx.Open(driverName, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}
	overflow := cfg.MaxOverflow
	if overflow < 0 {
		overflow = 0
	}
	db.SetMaxIdleConns(poolSize)
	db.SetMaxOpenConns(poolSize + overflow)
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	idle := cfg.ConnMaxIdleTime
	if idle <= 0 {
		idle = 5 * time.Minute
	}
	db.SetConnMaxIdleTime(idle)

	return New(db), nil
}

// New wraps an existing handle.
func New(db *sqlx.DB) *DB {
	return &DB{db: db, migrate: migrations.Up}
}

// WithSession acquires a connection, passes it to fn and releases it on every
// exit path, including a panic inside fn.
func (d *DB) WithSession(ctx context.Context, fn func(ctx context.Context, s *Session) error) (err error) {
	conn, err := d.db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("acquire session: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil && !errors.Is(cerr, sql.ErrConnDone) && err == nil {
			err = fmt.Errorf("release session: %w", cerr)
		}
	}()

	return fn(ctx, &Session{Conn: conn})
}

// WithTx runs fn inside a transaction on a scoped session. The transaction
// commits when fn returns nil and rolls back otherwise.
func (d *DB) WithTx(ctx context.Context, fn func(ctx context.Context, tx *sqlx.Tx) error) error {
	return d.WithSession(ctx, func(ctx context.Context, s *Session) error {
		tx, err := s.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}

		committed := false
		defer func() {
			if !committed {
				_ = tx.Rollback()
			}
		}()

		if err := fn(ctx, tx); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}
		committed = true
		return nil
	})
}

// InitSchema applies the embedded migrations and records the running
// application version.
func (d *DB) InitSchema(ctx context.Context, appVersion string) error {
	if err := d.WithSession(ctx, func(ctx context.Context, s *Session) error {
		return d.migrate(ctx, s.Conn.Conn)
	}); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	return d.WithSession(ctx, func(ctx context.Context, s *Session) error {
		_, err := s.ExecContext(ctx, `
			INSERT INTO platform_info (key, value, updated_at)
			VALUES ('app_version', $1, now())
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		`, appVersion)
		if err != nil {
			return fmt.Errorf("record app version: %w", err)
		}
		return nil
	})
}

// Ping verifies a connection can be established.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Stats reports pool usage.
func (d *DB) Stats() sql.DBStats {
	return d.db.Stats()
}

// Close releases every pooled connection.
func (d *DB) Close() error {
	return d.db.Close()
}

package kv

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type entry struct {
	bun.BaseModel `bun:"table:kv_entries,alias:e"`

	Namespace string `bun:"namespace,pk"`
	Key       string `bun:"entry_key,pk"`
	Value     []byte `bun:"value,notnull"`
	UpdatedAt string `bun:"updated_at,notnull"`
}

type SQLite struct {
	db *bun.DB
}

func OpenSQLite(ctx context.Context, dbPath string) (*SQLite, error) {
	if dbPath == "" {
		return nil, errors.New("DB_PATH is required")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}

	sqldb, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// Concurrent writers on separate connections fail with SQLITE_BUSY.
	sqldb.SetMaxOpenConns(1)

	if err := sqldb.PingContext(ctx); err != nil {
		if cerr := sqldb.Close(); cerr != nil {
			return nil, fmt.Errorf("ping db: %w; close failed: %w", err, cerr)
		}
		return nil, err
	}

	if err := migrate(ctx, sqldb); err != nil {
		if cerr := sqldb.Close(); cerr != nil {
			return nil, fmt.Errorf("migrate: %w; close failed: %w", err, cerr)
		}
		return nil, err
	}

	return &SQLite{db: bun.NewDB(sqldb, sqlitedialect.New())}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	var e entry
	err := s.db.NewSelect().
		Model(&e).
		Where("namespace = ?", namespace).
		Where("entry_key = ?", key).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv get %s/%s: %w", namespace, key, err)
	}
	return e.Value, nil
}

// Put upserts; the last write wins.
func (s *SQLite) Put(ctx context.Context, namespace, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	e := entry{
		Namespace: namespace,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	_, err := s.db.NewInsert().
		Model(&e).
		On("CONFLICT (namespace, entry_key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("kv put %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, namespace, key string) error {
	_, err := s.db.NewDelete().
		Model((*entry)(nil)).
		Where("namespace = ?", namespace).
		Where("entry_key = ?", key).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("kv delete %s/%s: %w", namespace, key, err)
	}
	return nil
}

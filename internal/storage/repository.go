package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"diario/internal/core"
	"diario/internal/store"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists each collection as a single JSON blob row in the
// collections table. That keeps the storage layout a flat key-value store
// (one blob per collection, read and replaced whole) while every write runs
// inside a transaction, so a replace is atomic even across concurrent HTTP
// clients.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Categories(ctx context.Context) ([]core.Category, error) {
	return readCollection[core.Category](ctx, r.db, store.CollectionCategories)
}

func (r *SQLiteRepository) SaveCategories(ctx context.Context, categories []core.Category) error {
	return writeCollection(ctx, r.db, store.CollectionCategories, categories)
}

func (r *SQLiteRepository) Points(ctx context.Context) ([]core.Point, error) {
	return readCollection[core.Point](ctx, r.db, store.CollectionPoints)
}

func (r *SQLiteRepository) SavePoints(ctx context.Context, points []core.Point) error {
	return writeCollection(ctx, r.db, store.CollectionPoints, points)
}

func (r *SQLiteRepository) Ratings(ctx context.Context) ([]core.Rating, error) {
	return readCollection[core.Rating](ctx, r.db, store.CollectionRatings)
}

func (r *SQLiteRepository) SaveRatings(ctx context.Context, ratings []core.Rating) error {
	return writeCollection(ctx, r.db, store.CollectionRatings, ratings)
}

func (r *SQLiteRepository) Trash(ctx context.Context) ([]core.TrashEntry, error) {
	return readCollection[core.TrashEntry](ctx, r.db, store.CollectionTrash)
}

func (r *SQLiteRepository) SaveTrash(ctx context.Context, trash []core.TrashEntry) error {
	return writeCollection(ctx, r.db, store.CollectionTrash, trash)
}

func readCollection[T any](ctx context.Context, db *sql.DB, name string) ([]T, error) {
	var data []byte
	err := db.QueryRowContext(ctx, `SELECT data FROM collections WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		// First-ever use: the collection simply does not exist yet.
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read collection %s: %w", name, err)
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", name, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func writeCollection[T any](ctx context.Context, db *sql.DB, name string, records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", name, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin write %s: %w", name, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO collections (name, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP`,
		name, data)
	if err != nil {
		return fmt.Errorf("write collection %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit write %s: %w", name, err)
	}

	slog.DebugContext(ctx, "Collection saved", "collection", name, "records", len(records), "bytes", len(data))
	return nil
}

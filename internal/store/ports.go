package store

import (
	"context"

	"diario/internal/core"
)

// Store is the port every persistence backend implements. Each collection is
// read and replaced as a whole, order preserved; there is no per-record
// update. Callers read, mutate in memory and write back. Absent collections
// read as empty slices on first use.
type Store interface {
	Categories(ctx context.Context) ([]core.Category, error)
	SaveCategories(ctx context.Context, categories []core.Category) error

	Points(ctx context.Context) ([]core.Point, error)
	SavePoints(ctx context.Context, points []core.Point) error

	Ratings(ctx context.Context) ([]core.Rating, error)
	SaveRatings(ctx context.Context, ratings []core.Rating) error

	Trash(ctx context.Context) ([]core.TrashEntry, error)
	SaveTrash(ctx context.Context, trash []core.TrashEntry) error

	Close() error
}

// Collection names as persisted. Kept stable so data outlives refactors.
const (
	CollectionCategories = "categories"
	CollectionPoints     = "points"
	CollectionRatings    = "ratings"
	CollectionTrash      = "trash"
)

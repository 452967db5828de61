package memory

import (
	"context"
	"sync"

	"diario/internal/core"
)

// Store keeps all four collections in memory behind one mutex. It backs the
// "memory" data backend and the service tests; nothing survives a restart.
type Store struct {
	mu         sync.Mutex
	categories []core.Category
	points     []core.Point
	ratings    []core.Rating
	trash      []core.TrashEntry
}

func New() *Store {
	return &Store{}
}

func (s *Store) Categories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category{}, s.categories...), nil
}

func (s *Store) SaveCategories(_ context.Context, categories []core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append([]core.Category{}, categories...)
	return nil
}

func (s *Store) Points(_ context.Context) ([]core.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Point{}, s.points...), nil
}

func (s *Store) SavePoints(_ context.Context, points []core.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = append([]core.Point{}, points...)
	return nil
}

func (s *Store) Ratings(_ context.Context) ([]core.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Rating{}, s.ratings...), nil
}

func (s *Store) SaveRatings(_ context.Context, ratings []core.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings = append([]core.Rating{}, ratings...)
	return nil
}

func (s *Store) Trash(_ context.Context) ([]core.TrashEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.TrashEntry{}, s.trash...), nil
}

func (s *Store) SaveTrash(_ context.Context, trash []core.TrashEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trash = append([]core.TrashEntry{}, trash...)
	return nil
}

func (s *Store) Close() error {
	return nil
}

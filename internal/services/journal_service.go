package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"diario/internal/core"
	applog "diario/internal/log"
	"diario/internal/store"
)

// JournalService owns every mutation of the four collections. Each operation
// is a read-validate-mutate-write cycle over whole collections; the mutex
// serializes those cycles so concurrent HTTP clients cannot interleave a
// read-modify-write against the same store. Validation failures abort before
// any write, so a rejected mutation leaves no partial state.
type JournalService struct {
	mu     sync.Mutex
	store  store.Store
	logger *applog.Logger
	now    func() time.Time
}

func NewJournalService(st store.Store) *JournalService {
	return &JournalService{
		store:  st,
		logger: applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentJournal),
		now:    time.Now,
	}
}

// WithClock replaces the service clock. Test hook.
func (s *JournalService) WithClock(now func() time.Time) *JournalService {
	s.now = now
	return s
}

// Categories lists categories in declared order.
func (s *JournalService) Categories(ctx context.Context) ([]core.Category, error) {
	return s.store.Categories(ctx)
}

// CreateCategory appends a new category. An empty color falls back to the
// default token.
func (s *JournalService) CreateCategory(ctx context.Context, name, color string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if color == "" {
		color = core.DefaultColor
	}
	category := core.Category{
		ID:    uuid.New().String(),
		Name:  strings.TrimSpace(name),
		Color: color,
	}
	if err := category.Validate(); err != nil {
		return core.Category{}, err
	}

	categories, err := s.store.Categories(ctx)
	if err != nil {
		return core.Category{}, fmt.Errorf("load categories: %w", err)
	}
	categories = append(categories, category)
	if err := s.store.SaveCategories(ctx, categories); err != nil {
		return core.Category{}, fmt.Errorf("save categories: %w", err)
	}

	s.logger.InfoContext(ctx, "Category created", applog.FieldCategoryID, category.ID, applog.FieldCategoryName, category.Name)
	return category, nil
}

// UpdateCategory renames and recolors an existing category.
func (s *JournalService) UpdateCategory(ctx context.Context, id, name, color string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return core.Category{}, core.ErrEmptyName
	}
	if color == "" {
		color = core.DefaultColor
	}

	categories, err := s.store.Categories(ctx)
	if err != nil {
		return core.Category{}, fmt.Errorf("load categories: %w", err)
	}

	for i := range categories {
		if categories[i].ID == id {
			categories[i].Name = name
			categories[i].Color = color
			if err := s.store.SaveCategories(ctx, categories); err != nil {
				return core.Category{}, fmt.Errorf("save categories: %w", err)
			}
			s.logger.InfoContext(ctx, "Category updated", applog.FieldCategoryID, id, applog.FieldCategoryName, name)
			return categories[i], nil
		}
	}
	return core.Category{}, core.ErrUnknownCategory
}

// ToggleCategory flips the collapsed presentation flag.
func (s *JournalService) ToggleCategory(ctx context.Context, id string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := s.store.Categories(ctx)
	if err != nil {
		return core.Category{}, fmt.Errorf("load categories: %w", err)
	}

	for i := range categories {
		if categories[i].ID == id {
			categories[i].Collapsed = !categories[i].Collapsed
			if err := s.store.SaveCategories(ctx, categories); err != nil {
				return core.Category{}, fmt.Errorf("save categories: %w", err)
			}
			return categories[i], nil
		}
	}
	return core.Category{}, core.ErrUnknownCategory
}

// DeleteCategory removes a category and cascades: every owned point is
// snapshotted into the trash with its full rating history, then points and
// category are dropped from the live collections. Trash is written first so
// an interrupted cascade can duplicate data but never lose it; there is no
// multi-collection rollback.
func (s *JournalService) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := s.store.Categories(ctx)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}
	found := false
	for _, c := range categories {
		if c.ID == id {
			found = true
			break
		}
	}
	if !found {
		return core.ErrUnknownCategory
	}

	points, err := s.store.Points(ctx)
	if err != nil {
		return fmt.Errorf("load points: %w", err)
	}
	ratings, err := s.store.Ratings(ctx)
	if err != nil {
		return fmt.Errorf("load ratings: %w", err)
	}
	trash, err := s.store.Trash(ctx)
	if err != nil {
		return fmt.Errorf("load trash: %w", err)
	}

	keptPoints := make([]core.Point, 0, len(points))
	moved := 0
	for _, p := range points {
		if p.CategoryID == id {
			trash = append(trash, snapshotPoint(p, ratings))
			moved++
			continue
		}
		keptPoints = append(keptPoints, p)
	}

	keptCategories := make([]core.Category, 0, len(categories))
	for _, c := range categories {
		if c.ID != id {
			keptCategories = append(keptCategories, c)
		}
	}

	if err := s.store.SaveTrash(ctx, trash); err != nil {
		return fmt.Errorf("save trash: %w", err)
	}
	if err := s.store.SavePoints(ctx, keptPoints); err != nil {
		return fmt.Errorf("save points: %w", err)
	}
	if err := s.store.SaveCategories(ctx, keptCategories); err != nil {
		return fmt.Errorf("save categories: %w", err)
	}

	s.logger.InfoContext(ctx, "Category deleted", applog.FieldCategoryID, id, "points_trashed", moved)
	return nil
}

// Points lists points in declared order.
func (s *JournalService) Points(ctx context.Context) ([]core.Point, error) {
	return s.store.Points(ctx)
}

// CreatePoint appends a new point. The category must exist at creation
// time; after that, no foreign-key upkeep happens (deletions cascade
// explicitly instead).
func (s *JournalService) CreatePoint(ctx context.Context, name, categoryID string) (core.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	point := core.Point{
		ID:         uuid.New().String(),
		Name:       strings.TrimSpace(name),
		CategoryID: categoryID,
	}
	if err := point.Validate(); err != nil {
		return core.Point{}, err
	}

	categories, err := s.store.Categories(ctx)
	if err != nil {
		return core.Point{}, fmt.Errorf("load categories: %w", err)
	}
	known := false
	for _, c := range categories {
		if c.ID == categoryID {
			known = true
			break
		}
	}
	if !known {
		return core.Point{}, core.ErrUnknownCategory
	}

	points, err := s.store.Points(ctx)
	if err != nil {
		return core.Point{}, fmt.Errorf("load points: %w", err)
	}
	points = append(points, point)
	if err := s.store.SavePoints(ctx, points); err != nil {
		return core.Point{}, fmt.Errorf("save points: %w", err)
	}

	s.logger.InfoContext(ctx, "Point created", applog.FieldPointID, point.ID, applog.FieldPointName, point.Name, applog.FieldCategoryID, categoryID)
	return point, nil
}

// RenamePoint changes a point's display name.
func (s *JournalService) RenamePoint(ctx context.Context, id, name string) (core.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return core.Point{}, core.ErrEmptyName
	}

	points, err := s.store.Points(ctx)
	if err != nil {
		return core.Point{}, fmt.Errorf("load points: %w", err)
	}
	for i := range points {
		if points[i].ID == id {
			points[i].Name = name
			if err := s.store.SavePoints(ctx, points); err != nil {
				return core.Point{}, fmt.Errorf("save points: %w", err)
			}
			s.logger.InfoContext(ctx, "Point renamed", applog.FieldPointID, id, applog.FieldPointName, name)
			return points[i], nil
		}
	}
	return core.Point{}, core.ErrUnknownPoint
}

// DeletePoint moves one point to the trash with its full rating history.
func (s *JournalService) DeletePoint(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	points, err := s.store.Points(ctx)
	if err != nil {
		return fmt.Errorf("load points: %w", err)
	}
	idx := -1
	for i, p := range points {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.ErrUnknownPoint
	}

	ratings, err := s.store.Ratings(ctx)
	if err != nil {
		return fmt.Errorf("load ratings: %w", err)
	}
	trash, err := s.store.Trash(ctx)
	if err != nil {
		return fmt.Errorf("load trash: %w", err)
	}

	trash = append(trash, snapshotPoint(points[idx], ratings))
	kept := append(append([]core.Point{}, points[:idx]...), points[idx+1:]...)

	if err := s.store.SaveTrash(ctx, trash); err != nil {
		return fmt.Errorf("save trash: %w", err)
	}
	if err := s.store.SavePoints(ctx, kept); err != nil {
		return fmt.Errorf("save points: %w", err)
	}

	s.logger.InfoContext(ctx, "Point deleted", applog.FieldPointID, id)
	return nil
}

// RecordDay creates one day record from a point score mapping. At creation
// time every currently existing point must be scored; several records on the
// same calendar date are allowed. Records are immutable afterwards.
func (s *JournalService) RecordDay(ctx context.Context, scores map[string]int) (core.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	points, err := s.store.Points(ctx)
	if err != nil {
		return core.Rating{}, fmt.Errorf("load points: %w", err)
	}
	for _, p := range points {
		if _, ok := scores[p.ID]; !ok {
			return core.Rating{}, core.ErrIncompleteDay
		}
	}

	now := s.now()
	rating := core.Rating{
		ID:        uuid.New().String(),
		Date:      core.FormatDate(now),
		Timestamp: now.Format(time.RFC3339),
		Scores:    copyScores(scores),
	}
	if err := rating.Validate(); err != nil {
		return core.Rating{}, err
	}

	ratings, err := s.store.Ratings(ctx)
	if err != nil {
		return core.Rating{}, fmt.Errorf("load ratings: %w", err)
	}
	ratings = append(ratings, rating)
	if err := s.store.SaveRatings(ctx, ratings); err != nil {
		return core.Rating{}, fmt.Errorf("save ratings: %w", err)
	}

	s.logger.InfoContext(ctx, "Day recorded", applog.FieldRatingID, rating.ID, applog.FieldRatingDate, rating.Date, applog.FieldScoreCount, len(rating.Scores))
	return rating, nil
}

// ListRatings returns the rating history newest first, ordering by the full
// timestamp when present and by calendar date for legacy records.
func (s *JournalService) ListRatings(ctx context.Context) ([]core.Rating, error) {
	ratings, err := s.store.Ratings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}
	sort.SliceStable(ratings, func(i, j int) bool {
		return ratings[i].When().After(ratings[j].When())
	})
	return ratings, nil
}

// DeleteRating removes one day record entirely.
func (s *JournalService) DeleteRating(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ratings, err := s.store.Ratings(ctx)
	if err != nil {
		return fmt.Errorf("load ratings: %w", err)
	}
	kept := make([]core.Rating, 0, len(ratings))
	for _, r := range ratings {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(ratings) {
		return core.ErrUnknownRating
	}
	if err := s.store.SaveRatings(ctx, kept); err != nil {
		return fmt.Errorf("save ratings: %w", err)
	}

	s.logger.InfoContext(ctx, "Rating deleted", applog.FieldRatingID, id)
	return nil
}

// Trash lists trash entries in the order points were deleted.
func (s *JournalService) Trash(ctx context.Context) ([]core.TrashEntry, error) {
	return s.store.Trash(ctx)
}

// PurgeTrashEntry permanently removes a trash entry. There is no restore;
// this is the end of the line for a deleted point.
func (s *JournalService) PurgeTrashEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	trash, err := s.store.Trash(ctx)
	if err != nil {
		return fmt.Errorf("load trash: %w", err)
	}
	kept := make([]core.TrashEntry, 0, len(trash))
	for _, e := range trash {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(trash) {
		return core.ErrUnknownTrashItem
	}
	if err := s.store.SaveTrash(ctx, kept); err != nil {
		return fmt.Errorf("save trash: %w", err)
	}

	s.logger.InfoContext(ctx, "Trash entry purged", applog.FieldTrashID, id)
	return nil
}

// snapshotPoint denormalizes every historical score of a point into a trash
// entry, preserving each score's date and timestamp.
func snapshotPoint(p core.Point, ratings []core.Rating) core.TrashEntry {
	entry := core.TrashEntry{
		ID:                 p.ID,
		Name:               p.Name,
		OriginalCategoryID: p.CategoryID,
		Ratings:            []core.TrashRating{},
	}
	for _, r := range ratings {
		if v, ok := r.Scores[p.ID]; ok {
			entry.Ratings = append(entry.Ratings, core.TrashRating{
				Date:      r.Date,
				Timestamp: r.Timestamp,
				Value:     v,
			})
		}
	}
	return entry
}

func copyScores(scores map[string]int) map[string]int {
	out := make(map[string]int, len(scores))
	for k, v := range scores {
		out[k] = v
	}
	return out
}

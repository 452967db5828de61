package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"diario/internal/core"
	"diario/internal/store/memory"
)

func newTestJournal(t *testing.T) (*JournalService, *memory.Store) {
	t.Helper()
	st := memory.New()
	svc := NewJournalService(st).WithClock(func() time.Time {
		return time.Date(2024, 1, 2, 15, 4, 5, 0, time.Local)
	})
	return svc, st
}

func seedCategory(t *testing.T, svc *JournalService, name string) core.Category {
	t.Helper()
	c, err := svc.CreateCategory(context.Background(), name, "#111")
	if err != nil {
		t.Fatalf("CreateCategory(%s): %v", name, err)
	}
	return c
}

func seedPoint(t *testing.T, svc *JournalService, name, categoryID string) core.Point {
	t.Helper()
	p, err := svc.CreatePoint(context.Background(), name, categoryID)
	if err != nil {
		t.Fatalf("CreatePoint(%s): %v", name, err)
	}
	return p
}

func TestCreateCategory(t *testing.T) {
	svc, _ := newTestJournal(t)
	ctx := context.Background()

	c, err := svc.CreateCategory(ctx, "  Mind  ", "")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if c.ID == "" {
		t.Error("created category should get an id")
	}
	if c.Name != "Mind" {
		t.Errorf("name = %q, want trimmed Mind", c.Name)
	}
	if c.Color != core.DefaultColor {
		t.Errorf("color = %q, want default %q", c.Color, core.DefaultColor)
	}

	if _, err := svc.CreateCategory(ctx, "   ", "#222"); !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("empty name error = %v, want ErrEmptyName", err)
	}
	cats, _ := svc.Categories(ctx)
	if len(cats) != 1 {
		t.Errorf("rejected create must not write; have %d categories, want 1", len(cats))
	}
}

func TestUpdateAndToggleCategory(t *testing.T) {
	svc, _ := newTestJournal(t)
	ctx := context.Background()
	c := seedCategory(t, svc, "Mind")

	updated, err := svc.UpdateCategory(ctx, c.ID, "Spirit", "#333")
	if err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	if updated.Name != "Spirit" || updated.Color != "#333" {
		t.Errorf("updated = %+v, want renamed and recolored", updated)
	}

	toggled, err := svc.ToggleCategory(ctx, c.ID)
	if err != nil {
		t.Fatalf("ToggleCategory: %v", err)
	}
	if !toggled.Collapsed {
		t.Error("first toggle should collapse")
	}
	toggled, _ = svc.ToggleCategory(ctx, c.ID)
	if toggled.Collapsed {
		t.Error("second toggle should expand")
	}

	if _, err := svc.UpdateCategory(ctx, "nope", "X", "#1"); !errors.Is(err, core.ErrUnknownCategory) {
		t.Errorf("unknown id error = %v, want ErrUnknownCategory", err)
	}
}

func TestCreatePointRequiresLiveCategory(t *testing.T) {
	svc, _ := newTestJournal(t)
	ctx := context.Background()
	c := seedCategory(t, svc, "Mind")

	if _, err := svc.CreatePoint(ctx, "Focus", c.ID); err != nil {
		t.Fatalf("CreatePoint: %v", err)
	}
	if _, err := svc.CreatePoint(ctx, "Focus", "ghost"); !errors.Is(err, core.ErrUnknownCategory) {
		t.Errorf("dangling category error = %v, want ErrUnknownCategory", err)
	}
	if _, err := svc.CreatePoint(ctx, "", c.ID); !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("empty name error = %v, want ErrEmptyName", err)
	}

	points, _ := svc.Points(ctx)
	if len(points) != 1 {
		t.Errorf("rejected creates must not write; have %d points, want 1", len(points))
	}
}

func TestRecordDay(t *testing.T) {
	svc, _ := newTestJournal(t)
	ctx := context.Background()
	c := seedCategory(t, svc, "Mind")
	p1 := seedPoint(t, svc, "Focus", c.ID)
	p2 := seedPoint(t, svc, "Energy", c.ID)

	t.Run("incomplete day rejected", func(t *testing.T) {
		_, err := svc.RecordDay(ctx, map[string]int{p1.ID: 8})
		if !errors.Is(err, core.ErrIncompleteDay) {
			t.Fatalf("error = %v, want ErrIncompleteDay", err)
		}
		ratings, _ := svc.ListRatings(ctx)
		if len(ratings) != 0 {
			t.Error("rejected record must not write")
		}
	})

	t.Run("score out of range rejected", func(t *testing.T) {
		_, err := svc.RecordDay(ctx, map[string]int{p1.ID: 8, p2.ID: 11})
		if !errors.Is(err, core.ErrScoreOutOfRange) {
			t.Fatalf("error = %v, want ErrScoreOutOfRange", err)
		}
	})

	t.Run("complete day recorded", func(t *testing.T) {
		r, err := svc.RecordDay(ctx, map[string]int{p1.ID: 8, p2.ID: 5})
		if err != nil {
			t.Fatalf("RecordDay: %v", err)
		}
		if r.Date != "2024-01-02" {
			t.Errorf("date = %q, want 2024-01-02", r.Date)
		}
		if r.Timestamp == "" {
			t.Error("new records should carry a timestamp")
		}
	})

	t.Run("multiple records per day allowed", func(t *testing.T) {
		if _, err := svc.RecordDay(ctx, map[string]int{p1.ID: 4, p2.ID: 6}); err != nil {
			t.Fatalf("second record same day: %v", err)
		}
		ratings, _ := svc.ListRatings(ctx)
		if len(ratings) != 2 {
			t.Errorf("ratings = %d, want 2 (no date uniqueness)", len(ratings))
		}
	})
}

func TestListRatingsNewestFirstWithLegacyRecords(t *testing.T) {
	_, st := newTestJournal(t)
	ctx := context.Background()

	// Mix of timestamped and legacy (date-only) records, stored out of
	// order on purpose.
	err := st.SaveRatings(ctx, []core.Rating{
		{ID: "old", Date: "2024-01-01", Scores: map[string]int{"p": 5}},
		{ID: "newest", Date: "2024-01-03", Timestamp: "2024-01-03T20:00:00Z", Scores: map[string]int{"p": 5}},
		{ID: "mid", Date: "2024-01-02", Scores: map[string]int{"p": 5}},
	})
	if err != nil {
		t.Fatalf("SaveRatings: %v", err)
	}

	svc := NewJournalService(st)
	ratings, err := svc.ListRatings(ctx)
	if err != nil {
		t.Fatalf("ListRatings: %v", err)
	}
	got := []string{ratings[0].ID, ratings[1].ID, ratings[2].ID}
	want := []string{"newest", "mid", "old"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestDeletePointSnapshotsHistory(t *testing.T) {
	svc, st := newTestJournal(t)
	ctx := context.Background()
	c := seedCategory(t, svc, "Mind")
	p := seedPoint(t, svc, "Focus", c.ID)

	err := st.SaveRatings(ctx, []core.Rating{
		{ID: "r1", Date: "2024-01-01", Scores: map[string]int{p.ID: 8}},
		{ID: "r2", Date: "2024-01-02", Scores: map[string]int{p.ID: 6}},
	})
	if err != nil {
		t.Fatalf("SaveRatings: %v", err)
	}

	if err := svc.DeletePoint(ctx, p.ID); err != nil {
		t.Fatalf("DeletePoint: %v", err)
	}

	points, _ := svc.Points(ctx)
	if len(points) != 0 {
		t.Errorf("live points = %d, want 0", len(points))
	}

	trash, _ := svc.Trash(ctx)
	if len(trash) != 1 {
		t.Fatalf("trash entries = %d, want 1", len(trash))
	}
	entry := trash[0]
	if entry.ID != p.ID || entry.Name != "Focus" || entry.OriginalCategoryID != c.ID {
		t.Errorf("entry = %+v, want snapshot of the deleted point", entry)
	}
	if len(entry.Ratings) != 2 {
		t.Fatalf("snapshot count = %d, want 2", len(entry.Ratings))
	}
	if entry.Ratings[0].Date != "2024-01-01" || entry.Ratings[0].Value != 8 {
		t.Errorf("snapshot[0] = %+v, want 2024-01-01 value 8", entry.Ratings[0])
	}
	if entry.Ratings[1].Date != "2024-01-02" || entry.Ratings[1].Value != 6 {
		t.Errorf("snapshot[1] = %+v, want 2024-01-02 value 6", entry.Ratings[1])
	}
	if entry.Average() != 7 {
		t.Errorf("trash average = %v, want 7", entry.Average())
	}

	// Deletion snapshots, it does not rewrite history.
	ratings, _ := st.Ratings(ctx)
	if len(ratings) != 2 {
		t.Errorf("rating collection = %d records, want 2 (unchanged)", len(ratings))
	}
}

func TestDeleteCategoryCascades(t *testing.T) {
	svc, st := newTestJournal(t)
	ctx := context.Background()
	doomed := seedCategory(t, svc, "Mind")
	kept := seedCategory(t, svc, "Body")
	p1 := seedPoint(t, svc, "Focus", doomed.ID)
	p2 := seedPoint(t, svc, "Prep", doomed.ID)
	p3 := seedPoint(t, svc, "Energy", kept.ID)

	err := st.SaveRatings(ctx, []core.Rating{
		{ID: "r1", Date: "2024-01-01", Scores: map[string]int{p1.ID: 8, p2.ID: 7, p3.ID: 6}},
		{ID: "r2", Date: "2024-01-02", Scores: map[string]int{p1.ID: 4}},
	})
	if err != nil {
		t.Fatalf("SaveRatings: %v", err)
	}

	if err := svc.DeleteCategory(ctx, doomed.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	cats, _ := svc.Categories(ctx)
	if len(cats) != 1 || cats[0].ID != kept.ID {
		t.Errorf("live categories = %+v, want only %s", cats, kept.ID)
	}
	points, _ := svc.Points(ctx)
	if len(points) != 1 || points[0].ID != p3.ID {
		t.Errorf("live points = %+v, want only %s", points, p3.ID)
	}

	// Two points owned by the category, three of their scores in history:
	// the cascade makes two trash entries whose snapshots sum to three.
	trash, _ := svc.Trash(ctx)
	if len(trash) != 2 {
		t.Fatalf("trash entries = %d, want 2", len(trash))
	}
	total := 0
	for _, e := range trash {
		total += len(e.Ratings)
	}
	if total != 3 {
		t.Errorf("combined snapshots = %d, want 3", total)
	}

	if err := svc.DeleteCategory(ctx, "ghost"); !errors.Is(err, core.ErrUnknownCategory) {
		t.Errorf("unknown category error = %v, want ErrUnknownCategory", err)
	}
}

func TestDeleteRating(t *testing.T) {
	svc, st := newTestJournal(t)
	ctx := context.Background()

	_ = st.SaveRatings(ctx, []core.Rating{
		{ID: "r1", Date: "2024-01-01", Scores: map[string]int{"p": 5}},
		{ID: "r2", Date: "2024-01-02", Scores: map[string]int{"p": 6}},
	})

	if err := svc.DeleteRating(ctx, "r1"); err != nil {
		t.Fatalf("DeleteRating: %v", err)
	}
	ratings, _ := st.Ratings(ctx)
	if len(ratings) != 1 || ratings[0].ID != "r2" {
		t.Errorf("remaining = %+v, want only r2", ratings)
	}

	if err := svc.DeleteRating(ctx, "r1"); !errors.Is(err, core.ErrUnknownRating) {
		t.Errorf("double delete error = %v, want ErrUnknownRating", err)
	}
}

func TestPurgeTrashEntry(t *testing.T) {
	svc, st := newTestJournal(t)
	ctx := context.Background()

	_ = st.SaveTrash(ctx, []core.TrashEntry{
		{ID: "p1", Name: "Focus"},
		{ID: "p2", Name: "Energy"},
	})

	if err := svc.PurgeTrashEntry(ctx, "p1"); err != nil {
		t.Fatalf("PurgeTrashEntry: %v", err)
	}
	trash, _ := svc.Trash(ctx)
	if len(trash) != 1 || trash[0].ID != "p2" {
		t.Errorf("remaining trash = %+v, want only p2", trash)
	}

	if err := svc.PurgeTrashEntry(ctx, "p1"); !errors.Is(err, core.ErrUnknownTrashItem) {
		t.Errorf("double purge error = %v, want ErrUnknownTrashItem", err)
	}
}

func TestRenamePoint(t *testing.T) {
	svc, _ := newTestJournal(t)
	ctx := context.Background()
	c := seedCategory(t, svc, "Mind")
	p := seedPoint(t, svc, "Focus", c.ID)

	renamed, err := svc.RenamePoint(ctx, p.ID, "Deep Focus")
	if err != nil {
		t.Fatalf("RenamePoint: %v", err)
	}
	if renamed.Name != "Deep Focus" {
		t.Errorf("name = %q, want Deep Focus", renamed.Name)
	}
	if _, err := svc.RenamePoint(ctx, p.ID, "  "); !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("empty rename error = %v, want ErrEmptyName", err)
	}
	if _, err := svc.RenamePoint(ctx, "ghost", "X"); !errors.Is(err, core.ErrUnknownPoint) {
		t.Errorf("unknown point error = %v, want ErrUnknownPoint", err)
	}
}

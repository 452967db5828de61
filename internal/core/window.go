package core

import (
	"errors"
	"time"
)

// TimeFilter selects how far back the charts look.
type TimeFilter string

const (
	FilterWeek   TimeFilter = "week"
	FilterMonth  TimeFilter = "month"
	FilterYear   TimeFilter = "year"
	FilterCustom TimeFilter = "custom"
)

var (
	ErrInvalidDateRange = errors.New("start date after end date")
	ErrMissingDateRange = errors.New("custom filter requires start and end dates")
)

type (
	// DateRange is an explicit user-supplied range, both ends calendar dates.
	DateRange struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}

	// Window is a resolved [Start, End] instant pair. All marks the
	// pass-through window that applies no filtering at all.
	Window struct {
		Start time.Time
		End   time.Time
		All   bool
	}
)

// ResolveWindow turns a filter selection into a concrete window anchored at
// now. Presets end at now; month and year subtract in calendar terms, with
// day overflow normalized forward (one month before 2024-03-31 lands on
// March 2nd, not in April). An unrecognized token resolves to the
// pass-through window; that is long-standing permissive behavior, not an
// error.
func ResolveWindow(filter TimeFilter, custom *DateRange, now time.Time) (Window, error) {
	if filter == FilterCustom {
		if custom == nil || custom.Start == "" || custom.End == "" {
			return Window{}, ErrMissingDateRange
		}
		start, err := ParseDate(custom.Start)
		if err != nil {
			return Window{}, err
		}
		end, err := ParseDate(custom.End)
		if err != nil {
			return Window{}, err
		}
		if start.After(end) {
			return Window{}, ErrInvalidDateRange
		}
		return Window{Start: start, End: end}, nil
	}

	switch filter {
	case FilterWeek:
		return Window{Start: now.Add(-7 * 24 * time.Hour), End: now}, nil
	case FilterMonth:
		start := time.Date(now.Year(), now.Month()-1, now.Day(), 0, 0, 0, 0, now.Location())
		return Window{Start: start, End: now}, nil
	case FilterYear:
		start := time.Date(now.Year()-1, now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return Window{Start: start, End: now}, nil
	default:
		return Window{All: true}, nil
	}
}

// Contains reports whether an instant falls inside the window, both ends
// inclusive.
func (w Window) Contains(t time.Time) bool {
	if w.All {
		return true
	}
	return !t.Before(w.Start) && !t.After(w.End)
}

// FilterRatings returns the ratings whose date falls inside the window,
// preserving order. The pass-through window returns the input unfiltered;
// otherwise records with unparseable dates are dropped, since they cannot be
// placed on the timeline.
func FilterRatings(ratings []Rating, w Window) []Rating {
	if w.All {
		return ratings
	}
	out := make([]Rating, 0, len(ratings))
	for _, r := range ratings {
		day, err := r.Day()
		if err != nil {
			continue
		}
		if w.Contains(day) {
			out = append(out, r)
		}
	}
	return out
}

package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// MinScore and MaxScore bound a single point rating.
	MinScore = 1
	MaxScore = 10

	// DefaultColor is used for points whose category no longer exists.
	DefaultColor = "#AAC0AA"
	// TrashColor is the single color used for the deleted-points series.
	TrashColor = "#CF5C36"

	// DateLayout is the calendar-date form every rating carries.
	DateLayout = "2006-01-02"
)

type (
	// Category is a named, colored grouping of points. Collapsed is
	// presentation state kept alongside the record so clients round-trip it.
	Category struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Color     string `json:"color"`
		Collapsed bool   `json:"collapsed"`
	}

	// Point is an individually rateable attribute belonging to one category.
	Point struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		CategoryID string `json:"categoryId"`
	}

	// Rating is one recorded day: a score per point, tagged with a calendar
	// date. Timestamp is absent on legacy records and must stay optional.
	// Ratings are immutable after creation except by full deletion.
	Rating struct {
		ID        string         `json:"id"`
		Date      string         `json:"date"`
		Timestamp string         `json:"timestamp,omitempty"`
		Scores    map[string]int `json:"ratings"`
	}

	// TrashRating is one snapshotted historical score of a deleted point.
	TrashRating struct {
		Date      string `json:"date"`
		Timestamp string `json:"timestamp,omitempty"`
		Value     int    `json:"value"`
	}

	// TrashEntry preserves a deleted point and its full rating history.
	// Entries are terminal: there is no restore, only permanent deletion.
	TrashEntry struct {
		ID                 string        `json:"id"`
		Name               string        `json:"name"`
		OriginalCategoryID string        `json:"originalCategoryId"`
		Ratings            []TrashRating `json:"ratings"`
	}
)

var (
	ErrEmptyName        = errors.New("empty name")
	ErrMissingCategory  = errors.New("missing category selection")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrUnknownPoint     = errors.New("unknown point")
	ErrUnknownRating    = errors.New("unknown rating")
	ErrUnknownTrashItem = errors.New("unknown trash item")
	ErrIncompleteDay    = errors.New("incomplete day rating")
	ErrScoreOutOfRange  = errors.New("score out of range")
	ErrInvalidDate      = errors.New("invalid date")
)

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (p Point) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(p.CategoryID) == "" {
		return ErrMissingCategory
	}
	return nil
}

// Validate checks the record shape: a parseable date and every score in
// range. Completeness against the live point list is a creation-time rule
// enforced by the service, not here, because old records legitimately miss
// points added later.
func (r Rating) Validate() error {
	if _, err := ParseDate(r.Date); err != nil {
		return err
	}
	for _, v := range r.Scores {
		if v < MinScore || v > MaxScore {
			return ErrScoreOutOfRange
		}
	}
	return nil
}

// Day returns the rating's calendar date at local midnight.
func (r Rating) Day() (time.Time, error) {
	return ParseDate(r.Date)
}

// When returns the best available instant for ordering: the full timestamp
// when present, otherwise the calendar date. Unparseable records sort to the
// zero time.
func (r Rating) When() time.Time {
	if r.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339, r.Timestamp); err == nil {
			return t
		}
	}
	t, err := ParseDate(r.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Average is the mean of the entry's snapshotted values, 0 when none exist.
func (e TrashEntry) Average() float64 {
	if len(e.Ratings) == 0 {
		return 0
	}
	sum := 0
	for _, tr := range e.Ratings {
		sum += tr.Value
	}
	return float64(sum) / float64(len(e.Ratings))
}

// ParseDate parses a YYYY-MM-DD calendar date at local midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatDate renders an instant as the calendar date ratings carry.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

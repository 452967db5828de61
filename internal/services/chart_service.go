package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"diario/internal/cache"
	"diario/internal/core"
	applog "diario/internal/log"
	"diario/internal/store"
)

// Chart kinds served to the rendering layer.
const (
	ChartPoints     = "points"
	ChartCategories = "categories"
	ChartTrash      = "trash"
)

// ChartService builds the chart-ready series pulled by the rendering layer.
// It always re-reads the collections from the store — nothing outside the
// store holds authoritative state — and caches only the derived series,
// which every mutation invalidates whole. Identical concurrent requests
// collapse into one computation via singleflight.
type ChartService struct {
	store  store.Store
	cache  *cache.LRUCache[core.ChartSeries]
	logger *applog.Logger
	group  singleflight.Group
	now    func() time.Time
}

func NewChartService(st store.Store, c *cache.LRUCache[core.ChartSeries]) *ChartService {
	return &ChartService{
		store:  st,
		cache:  c,
		logger: applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentCharts),
		now:    time.Now,
	}
}

// WithClock replaces the service clock. Test hook.
func (s *ChartService) WithClock(now func() time.Time) *ChartService {
	s.now = now
	return s
}

// PointSummary returns per-point averages inside the resolved window.
func (s *ChartService) PointSummary(ctx context.Context, filter core.TimeFilter, custom *core.DateRange) (core.ChartSeries, error) {
	return s.windowed(ctx, ChartPoints, filter, custom, func(ratings []core.Rating, points []core.Point, categories []core.Category) core.ChartSeries {
		return core.PointAverages(ratings, points, categories)
	})
}

// CategorySummary returns per-category averages inside the resolved window.
func (s *ChartService) CategorySummary(ctx context.Context, filter core.TimeFilter, custom *core.DateRange) (core.ChartSeries, error) {
	return s.windowed(ctx, ChartCategories, filter, custom, core.CategoryAverages)
}

// TrashSummary returns the deleted-points series. Trash snapshots carry
// their full history, so no time filter applies.
func (s *ChartService) TrashSummary(ctx context.Context) (core.ChartSeries, error) {
	key := ChartTrash
	if series, found := s.cache.Get(key); found {
		return series, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		trash, err := s.store.Trash(ctx)
		if err != nil {
			return nil, fmt.Errorf("load trash: %w", err)
		}
		series := core.TrashAverages(trash)
		s.cache.Set(key, series)
		return series, nil
	})
	if err != nil {
		return core.ChartSeries{}, err
	}
	return v.(core.ChartSeries), nil
}

// Invalidate drops every cached series. Called after any journal mutation.
func (s *ChartService) Invalidate() {
	s.cache.Purge()
}

type aggregateFunc func([]core.Rating, []core.Point, []core.Category) core.ChartSeries

func (s *ChartService) windowed(ctx context.Context, kind string, filter core.TimeFilter, custom *core.DateRange, aggregate aggregateFunc) (core.ChartSeries, error) {
	// Resolve first: an invalid custom range must be rejected before any
	// aggregation happens.
	window, err := core.ResolveWindow(filter, custom, s.now())
	if err != nil {
		return core.ChartSeries{}, err
	}

	key := chartCacheKey(kind, filter, custom)
	if series, found := s.cache.Get(key); found {
		s.logger.DebugContext(ctx, "Chart cache hit", applog.FieldChartKind, kind, applog.FieldTimeFilter, string(filter))
		return series, nil
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		ratings, err := s.store.Ratings(ctx)
		if err != nil {
			return nil, fmt.Errorf("load ratings: %w", err)
		}
		points, err := s.store.Points(ctx)
		if err != nil {
			return nil, fmt.Errorf("load points: %w", err)
		}
		categories, err := s.store.Categories(ctx)
		if err != nil {
			return nil, fmt.Errorf("load categories: %w", err)
		}

		series := aggregate(core.FilterRatings(ratings, window), points, categories)
		s.cache.Set(key, series)
		s.logger.DebugContext(ctx, "Chart series computed", applog.FieldChartKind, kind, applog.FieldTimeFilter, string(filter), "entries", series.Len())
		return series, nil
	})
	if err != nil {
		return core.ChartSeries{}, err
	}
	return v.(core.ChartSeries), nil
}

func chartCacheKey(kind string, filter core.TimeFilter, custom *core.DateRange) string {
	if filter == core.FilterCustom && custom != nil {
		return kind + "|custom|" + custom.Start + "|" + custom.End
	}
	return kind + "|" + string(filter)
}

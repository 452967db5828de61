package core

// ChartSeries is the chart-ready shape handed to the rendering layer:
// three parallel, index-aligned sequences of equal length. This is the only
// contract the charts depend on.
type ChartSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Colors []string  `json:"colors"`
}

func newChartSeries(capacity int) ChartSeries {
	return ChartSeries{
		Labels: make([]string, 0, capacity),
		Values: make([]float64, 0, capacity),
		Colors: make([]string, 0, capacity),
	}
}

func (s *ChartSeries) append(label string, value float64, color string) {
	s.Labels = append(s.Labels, label)
	s.Values = append(s.Values, value)
	s.Colors = append(s.Colors, color)
}

// Len returns the number of entries in the series.
func (s ChartSeries) Len() int {
	return len(s.Labels)
}

// PointAverages computes the arithmetic mean score per point across the
// given (already window-filtered) ratings. Points with no scores in the set
// are omitted rather than shown as zero; output follows the declared point
// order. Each point is colored by its owning category, falling back to
// DefaultColor when the category is gone.
func PointAverages(ratings []Rating, points []Point, categories []Category) ChartSeries {
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, r := range ratings {
		for pointID, score := range r.Scores {
			sums[pointID] += score
			counts[pointID]++
		}
	}

	colors := categoryColors(categories)
	series := newChartSeries(len(points))
	for _, p := range points {
		n := counts[p.ID]
		if n == 0 {
			continue
		}
		color, ok := colors[p.CategoryID]
		if !ok {
			color = DefaultColor
		}
		series.append(p.Name, float64(sums[p.ID])/float64(n), color)
	}
	return series
}

// CategoryAverages computes the mean over every individual point-score under
// each category. Each score counts once, so a category with one heavily
// rated point and one rarely rated point is weighted by scores, not by
// points (deliberately not a mean of point means). Categories without scores
// in the set are omitted; output follows the declared category order.
// Scores of points that no longer exist are skipped: they cannot be mapped
// to a category.
func CategoryAverages(ratings []Rating, points []Point, categories []Category) ChartSeries {
	pointCategory := make(map[string]string, len(points))
	for _, p := range points {
		pointCategory[p.ID] = p.CategoryID
	}

	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, r := range ratings {
		for pointID, score := range r.Scores {
			categoryID, ok := pointCategory[pointID]
			if !ok {
				continue
			}
			sums[categoryID] += score
			counts[categoryID]++
		}
	}

	series := newChartSeries(len(categories))
	for _, c := range categories {
		n := counts[c.ID]
		if n == 0 {
			continue
		}
		series.append(c.Name, float64(sums[c.ID])/float64(n), c.Color)
	}
	return series
}

// TrashAverages builds the deleted-points series. Unlike the live charts,
// every entry is rendered: a trash entry is a concrete deleted item, so one
// without snapshotted scores shows as zero instead of disappearing.
func TrashAverages(trash []TrashEntry) ChartSeries {
	series := newChartSeries(len(trash))
	for _, e := range trash {
		series.append(e.Name, e.Average(), TrashColor)
	}
	return series
}

func categoryColors(categories []Category) map[string]string {
	colors := make(map[string]string, len(categories))
	for _, c := range categories {
		colors[c.ID] = c.Color
	}
	return colors
}

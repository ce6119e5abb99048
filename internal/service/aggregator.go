package service

import (
	"sort"

	"trackit/internal/model"
)

// Progress is the completion state of one day.
type Progress struct {
	Total     float64
	Completed float64
	Percent   float64
}

// ComputeProgress sums points over the visible instances. Percent is 0 for an empty day.
func ComputeProgress(tasks []model.Instance) Progress {
	var p Progress
	for _, task := range tasks {
		if !task.Visible {
			continue
		}
		p.Total += task.Points
		if task.Completed {
			p.Completed += task.Points
		}
	}
	if p.Total > 0 {
		p.Percent = clampPercent(p.Completed / p.Total * 100)
	}
	return p
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

// DayPoints is one point of the analytics series.
type DayPoints struct {
	Date   model.Date
	Points float64
}

// BuildSeries groups completed, visible instances by date, ascending.
func BuildSeries(tasks []model.Instance) []DayPoints {
	byDate := make(map[model.Date]float64)
	for _, task := range tasks {
		if !task.Completed || !task.Visible {
			continue
		}
		byDate[task.Date] += task.Points
	}

	series := make([]DayPoints, 0, len(byDate))
	for day, points := range byDate {
		series = append(series, DayPoints{Date: day, Points: points})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	return series
}

// Summary holds the derived analytics stats.
type Summary struct {
	TotalPoints float64
	BestDay     DayPoints
}

// HasBestDay is false when nothing has been completed yet.
func (s Summary) HasBestDay() bool {
	return !s.BestDay.Date.IsZero()
}

// Summarize totals the series and picks the best day. Ties go to the earliest date.
func Summarize(series []DayPoints) Summary {
	var s Summary
	for i, day := range series {
		s.TotalPoints += day.Points
		if i == 0 || day.Points > s.BestDay.Points {
			s.BestDay = day
		}
	}
	return s
}

// Analytics is the cross-day view.
type Analytics struct {
	Series  []DayPoints
	Summary Summary
}
